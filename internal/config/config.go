// Package config holds the layout, render and server settings and loads
// them from defaults, an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"

	"github.com/dbitech/cardtimeline/internal/model"
)

// EnvPrefix is the prefix of environment variables that override the
// configuration, e.g. CARDTIMELINE_LAYOUT_GUTTER=12.
const EnvPrefix = "CARDTIMELINE_"

// Config is the complete configuration of the tool.
type Config struct {
	Layout Layout `koanf:"layout" yaml:"layout"`
	Render Render `koanf:"render" yaml:"render"`
	Server Server `koanf:"server" yaml:"server"`
	Log    Log    `koanf:"log" yaml:"log"`
}

// TierSpec is the nominal size of a card tier and which event fields it
// shows.
type TierSpec struct {
	Width           float64 `koanf:"width" yaml:"width"`
	Height          float64 `koanf:"height" yaml:"height"`
	ShowDate        bool    `koanf:"show_date" yaml:"show_date"`
	ShowTime        bool    `koanf:"show_time" yaml:"show_time"`
	ShowDescription bool    `koanf:"show_description" yaml:"show_description"`
}

type Tiers struct {
	Full    TierSpec `koanf:"full" yaml:"full"`
	Compact TierSpec `koanf:"compact" yaml:"compact"`
	Group   TierSpec `koanf:"group" yaml:"group"`
	Summary TierSpec `koanf:"summary" yaml:"summary"`
}

// Layout controls the placement engine. All distances are pixels.
//
// Tuning tips:
//   - Lower cluster_distance keeps more events on their own anchor.
//   - Raising columns_per_anchor lets dense anchors fan out sideways before
//     falling back to compact and grouped cards.
//   - max_passes bounds the pairwise deconfliction stage; the sweep-line
//     stage that follows always produces a legal layout.
type Layout struct {
	Width              float64 `koanf:"width" yaml:"width"`                               // container width used when the caller gives none
	Height             float64 `koanf:"height" yaml:"height"`                             // container height used when the caller gives none
	SafetyMargin       float64 `koanf:"safety_margin" yaml:"safety_margin"`               // cards stay this far from the container edges
	AxisClearance      float64 `koanf:"axis_clearance" yaml:"axis_clearance"`             // gap between the axis and the first row of cards
	Gutter             float64 `koanf:"gutter" yaml:"gutter"`                             // minimum gap between neighbouring cards
	ClusterDistance    float64 `koanf:"cluster_distance" yaml:"cluster_distance"`         // events closer than this to an anchor's mean join it
	ColumnsPerAnchor   int     `koanf:"columns_per_anchor" yaml:"columns_per_anchor"`     // lanes per side budgeted to each anchor
	MaxRows            int     `koanf:"max_rows" yaml:"max_rows"`                         // rows per side enumerated by the slot packer
	MaxFull            int     `koanf:"max_full" yaml:"max_full"`                         // full cards per anchor
	MaxCompact         int     `koanf:"max_compact" yaml:"max_compact"`                   // compact cards per anchor
	GroupSize          int     `koanf:"group_size" yaml:"group_size"`                     // events per multi-event card
	MaxSlotAttempts    int     `koanf:"max_slot_attempts" yaml:"max_slot_attempts"`       // grid candidates tried before the dense scan
	DenseScanStep      float64 `koanf:"dense_scan_step" yaml:"dense_scan_step"`           // fine scan step
	LegalizeCoarseStep float64 `koanf:"legalize_coarse_step" yaml:"legalize_coarse_step"` // coarse scan step of the legalization stage
	MaxPasses          int     `koanf:"max_passes" yaml:"max_passes"`                     // pairwise deconfliction pass limit
	MaxScanPoints      int     `koanf:"max_scan_points" yaml:"max_scan_points"`           // points visited by one dense or legalization scan
	Tiers              Tiers   `koanf:"tiers" yaml:"tiers"`
}

// Spec returns the geometry of tier t.
func (l Layout) Spec(t model.Tier) TierSpec {
	switch t {
	case model.TierFull:
		return l.Tiers.Full
	case model.TierCompact:
		return l.Tiers.Compact
	case model.TierGroup:
		return l.Tiers.Group
	default:
		return l.Tiers.Summary
	}
}

// Render controls SVG output.
type Render struct {
	Font struct {
		Family string `koanf:"family" yaml:"family"`
		Size   int    `koanf:"size" yaml:"size"`
	} `koanf:"font" yaml:"font"`
	Colors struct {
		Background string `koanf:"background" yaml:"background"`
		Timeline   string `koanf:"timeline" yaml:"timeline"`
		Text       string `koanf:"text" yaml:"text"`
		Notes      string `koanf:"notes" yaml:"notes"`
		CardStroke string `koanf:"card_stroke" yaml:"card_stroke"`
		Full       string `koanf:"full" yaml:"full"`
		Compact    string `koanf:"compact" yaml:"compact"`
		Group      string `koanf:"group" yaml:"group"`
		Summary    string `koanf:"summary" yaml:"summary"`
	} `koanf:"colors" yaml:"colors"`
	LineWidth   int `koanf:"line_width" yaml:"line_width"`
	EventMarker struct {
		Shape       string `koanf:"shape" yaml:"shape"` // circle, square, diamond or triangle
		Size        int    `koanf:"size" yaml:"size"`
		FillColor   string `koanf:"fill_color" yaml:"fill_color"`
		StrokeColor string `koanf:"stroke_color" yaml:"stroke_color"`
		StrokeWidth int    `koanf:"stroke_width" yaml:"stroke_width"`
	} `koanf:"event_marker" yaml:"event_marker"`
}

// Server bounds what a single HTTP request may ask the engine to do.
type Server struct {
	Listen      string  `koanf:"listen" yaml:"listen"`
	MaxViewport float64 `koanf:"max_viewport" yaml:"max_viewport"` // largest accepted viewport width or height
	MaxEvents   int     `koanf:"max_events" yaml:"max_events"`     // largest accepted event count
}

type Log struct {
	Level string `koanf:"level" yaml:"level"`
}

// Default returns the built-in configuration. The layout defaults fit a
// 1200x800 container with roughly four full cards per anchor.
func Default() Config {
	var c Config
	c.Layout = Layout{
		Width:              1200,
		Height:             800,
		SafetyMargin:       8,
		AxisClearance:      24,
		Gutter:             8,
		ClusterDistance:    120,
		ColumnsPerAnchor:   1,
		MaxRows:            8,
		MaxFull:            4,
		MaxCompact:         6,
		GroupSize:          3,
		MaxSlotAttempts:    64,
		DenseScanStep:      8,
		LegalizeCoarseStep: 32,
		MaxPasses:          20,
		MaxScanPoints:      20000,
		Tiers: Tiers{
			Full:    TierSpec{Width: 220, Height: 96, ShowDate: true, ShowTime: true, ShowDescription: true},
			Compact: TierSpec{Width: 160, Height: 56, ShowDate: true},
			Group:   TierSpec{Width: 180, Height: 72, ShowDate: true},
			Summary: TierSpec{Width: 110, Height: 40},
		},
	}

	c.Render.Font.Family = "Arial, sans-serif"
	c.Render.Font.Size = 12
	c.Render.Colors.Background = "#ffffff"
	c.Render.Colors.Timeline = "#333333"
	c.Render.Colors.Text = "#333333"
	c.Render.Colors.Notes = "#666666"
	c.Render.Colors.CardStroke = "#999999"
	c.Render.Colors.Full = "#f5f8ff"
	c.Render.Colors.Compact = "#f7f7f7"
	c.Render.Colors.Group = "#fff8e6"
	c.Render.Colors.Summary = "#eeeeee"
	c.Render.LineWidth = 2
	c.Render.EventMarker.Shape = "circle"
	c.Render.EventMarker.Size = 5
	c.Render.EventMarker.FillColor = "#4285f4"
	c.Render.EventMarker.StrokeColor = "#333333"
	c.Render.EventMarker.StrokeWidth = 1

	c.Server.Listen = ":8080"
	c.Server.MaxViewport = 5000
	c.Server.MaxEvents = 5000
	c.Log.Level = "info"
	return c
}

// Load builds the configuration from the defaults, the YAML file at path
// (skipped when empty or missing) and CARDTIMELINE_ environment variables,
// in that order of precedence.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("error loading default config: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("error loading config file %s: %w", path, err)
			}
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Debugf("Loaded configuration from file: %s", path)
		}
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ToLower(strings.TrimPrefix(k, EnvPrefix))
			return envKey(k), v
		},
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("error loading config from environment: %w", err)
	}

	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
