package layout

import (
	"math"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dbitech/cardtimeline/internal/config"
	"github.com/dbitech/cardtimeline/internal/geometry"
	"github.com/dbitech/cardtimeline/internal/model"
)

// maxLevels bounds the degradation loop. Cluster distance doubles from
// level 4 on, so this covers any realistic axis width.
const maxLevels = 40

// Engine lays out events. It holds configuration only; every call to
// Layout works on fresh state.
type Engine struct {
	cfg config.Layout
	log log.FieldLogger
}

// Option customises an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for pass diagnostics.
func WithLogger(l log.FieldLogger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// New returns an engine for the given layout configuration.
func New(cfg config.Layout, opts ...Option) *Engine {
	e := &Engine{cfg: cfg, log: log.StandardLogger()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the outcome of a layout pass.
type Result struct {
	Cards   []model.PlacedCard `json:"cards" yaml:"cards"`
	Anchors []model.Anchor     `json:"-" yaml:"-"`
	// Stage is the last resolver stage that had to run.
	Stage Stage `json:"stage" yaml:"stage"`
	// Level is the degradation level the layout was produced at; 0 means
	// the configured capacities were honoured.
	Level  int       `json:"level" yaml:"level"`
	Width  float64   `json:"width" yaml:"width"`
	Height float64   `json:"height" yaml:"height"`
	AxisY  float64   `json:"axis_y" yaml:"axis_y"`
	Start  time.Time `json:"start" yaml:"start"`
	End    time.Time `json:"end" yaml:"end"`
}

// Layout places a card for every event. The returned cards never overlap
// and together reference every event id exactly once. Identical inputs
// give identical results. A container smaller than one summary card is a
// caller error; the result is then overlap-free but may leave the
// container.
func (e *Engine) Layout(events []model.Event, vp model.Viewport) Result {
	width, height := vp.Width, vp.Height
	if width <= 0 {
		width = e.cfg.Width
	}
	if height <= 0 {
		height = e.cfg.Height
	}
	f := newFrame(e.cfg, width, height)
	res := Result{Cards: []model.PlacedCard{}, Width: width, Height: height, AxisY: f.axisY}
	if len(events) == 0 {
		return res
	}

	first, last := span(events)
	res.Start, res.End = vp.Window.Resolve(first, last)
	inset := e.cfg.SafetyMargin + e.cfg.Tiers.Summary.Width/2
	scale := geometry.NewScale(res.Start, res.End, inset, width-inset)
	res.Start, res.End = scale.Start, scale.End

	p := planner{cfg: e.cfg, laneHeight: f.laneHeight()}
	for level := 0; level < maxLevels; level++ {
		b, distance := e.level(level)
		anchors := buildAnchors(events, scale, distance)

		pc := newPackContext(f)
		var cards []model.PlacedCard
		for _, a := range anchors {
			cards = append(cards, pc.pack(a, p.plan(a, b))...)
		}
		cards, stage := resolver{frame: f, log: e.log}.resolve(cards)

		res.Cards, res.Anchors, res.Stage, res.Level = cards, anchors, stage, level
		fits := f.inside(cards)
		e.log.WithFields(log.Fields{
			"level":   level,
			"anchors": len(anchors),
			"cards":   len(cards),
			"stage":   stage,
			"fits":    fits,
		}).Debug("layout pass")
		if fits || (b.summaryOnly && len(anchors) == 1) {
			break
		}
	}
	return res
}

// level returns the capacity budget and clustering distance of a
// degradation level. Level 0 is the configured behaviour; each later level
// gives up a richer tier, then merges anchors by doubling the distance.
func (e *Engine) level(n int) (budget, float64) {
	b := budget{maxFull: e.cfg.MaxFull, maxCompact: e.cfg.MaxCompact, groups: true}
	d := e.cfg.ClusterDistance
	switch {
	case n == 0:
	case n == 1:
		b.maxFull = 0
	case n == 2:
		b.maxFull, b.maxCompact = 0, 0
	default:
		b = budget{summaryOnly: true}
		d *= math.Pow(2, float64(n-3))
	}
	return b, d
}

func span(events []model.Event) (time.Time, time.Time) {
	first, last := events[0].Timestamp(), events[0].Timestamp()
	for _, ev := range events[1:] {
		t := ev.Timestamp()
		if t.Before(first) {
			first = t
		}
		if t.After(last) {
			last = t
		}
	}
	return first, last
}
