// Package telemetry derives diagnostic statistics from finished layouts
// and hands them to subscribers. It is a side channel: nothing in the
// layout engine reads it back.
package telemetry

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/dbitech/cardtimeline/internal/layout"
	"github.com/dbitech/cardtimeline/internal/model"
)

// Stats describes one layout pass.
type Stats struct {
	EventCount     int                `json:"event_count" yaml:"event_count"`
	AnchorCount    int                `json:"anchor_count" yaml:"anchor_count"`
	CardCount      int                `json:"card_count" yaml:"card_count"`
	CardsPerAnchor map[string]int     `json:"cards_per_anchor" yaml:"cards_per_anchor"`
	TierCounts     map[model.Tier]int `json:"tier_counts" yaml:"tier_counts"`
	// Utilization is the share of the container area covered by cards.
	Utilization float64 `json:"utilization" yaml:"utilization"`
	// Migrations counts events whose tier or anchor differs from the
	// previously recorded layout.
	Migrations int          `json:"migrations" yaml:"migrations"`
	Stage      layout.Stage `json:"stage" yaml:"stage"`
	Level      int          `json:"level" yaml:"level"`
}

type placement struct {
	tier    model.Tier
	cluster string
}

// Recorder computes Stats for successive layouts and publishes them to
// subscribers synchronously, in subscription order.
type Recorder struct {
	mu          sync.Mutex
	previous    map[string]placement
	subscribers map[uint64]func(Stats)
	order       []uint64
	nextID      uint64
}

func NewRecorder() *Recorder {
	return &Recorder{subscribers: make(map[uint64]func(Stats))}
}

// Subscribe registers fn and returns a function that removes it again.
func (r *Recorder) Subscribe(fn func(Stats)) (unsubscribe func()) {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.subscribers[id] = fn
	r.order = append(r.order, id)
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subscribers, id)
		for i, v := range r.order {
			if v == id {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
}

// Record computes the statistics of res, remembers it as the baseline for
// the next migration count and publishes the result.
func (r *Recorder) Record(res layout.Result) Stats {
	current := make(map[string]placement)
	for _, c := range res.Cards {
		for _, id := range c.SourceEventIDs {
			current[id] = placement{tier: c.Tier, cluster: c.ClusterID}
		}
	}

	r.mu.Lock()
	stats := Compute(res)
	if r.previous != nil {
		stats.Migrations = migrations(r.previous, current)
	}
	r.previous = current
	handlers := make([]func(Stats), 0, len(r.order))
	for _, id := range r.order {
		handlers = append(handlers, r.subscribers[id])
	}
	r.mu.Unlock()

	log.WithFields(log.Fields{
		"events":      stats.EventCount,
		"anchors":     stats.AnchorCount,
		"cards":       stats.CardCount,
		"utilization": stats.Utilization,
		"migrations":  stats.Migrations,
		"stage":       stats.Stage,
		"level":       stats.Level,
	}).Debug("layout recorded")

	for _, h := range handlers {
		h(stats)
	}
	return stats
}

// Reset forgets the migration baseline.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.previous = nil
	r.mu.Unlock()
}

// Compute derives the statistics of a single layout. Migrations is left at
// zero.
func Compute(res layout.Result) Stats {
	s := Stats{
		AnchorCount:    len(res.Anchors),
		CardCount:      len(res.Cards),
		CardsPerAnchor: make(map[string]int),
		TierCounts:     make(map[model.Tier]int),
		Stage:          res.Stage,
		Level:          res.Level,
	}
	var covered float64
	for _, c := range res.Cards {
		s.EventCount += len(c.SourceEventIDs)
		s.CardsPerAnchor[c.ClusterID]++
		s.TierCounts[c.Tier]++
		covered += c.Area()
	}
	if area := res.Width * res.Height; area > 0 {
		s.Utilization = covered / area
	}
	return s
}

func migrations(prev, cur map[string]placement) int {
	n := 0
	for id, p := range cur {
		if old, ok := prev[id]; ok && old != p {
			n++
		}
	}
	return n
}
