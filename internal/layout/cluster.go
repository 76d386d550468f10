package layout

import (
	"math"
	"sort"

	"github.com/dbitech/cardtimeline/internal/geometry"
	"github.com/dbitech/cardtimeline/internal/model"
)

type projected struct {
	event model.Event
	x     float64
}

// project maps events to axis positions, sorted by position with
// timestamp and id as tie breakers.
func project(events []model.Event, scale geometry.Scale) []projected {
	out := make([]projected, len(events))
	for i, e := range events {
		out[i] = projected{event: e, x: scale.X(e.Timestamp())}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].x != out[j].x {
			return out[i].x < out[j].x
		}
		ti, tj := out[i].event.Timestamp(), out[j].event.Timestamp()
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return out[i].event.ID < out[j].event.ID
	})
	return out
}

// buildAnchors sweeps the projected events left to right. An event joins
// the most recent anchor when it lies within distance of that anchor's
// running mean; otherwise it starts a new anchor. Closed anchors are never
// revisited.
func buildAnchors(events []model.Event, scale geometry.Scale, distance float64) []model.Anchor {
	points := project(events, scale)
	var anchors []model.Anchor
	var mean float64
	for _, p := range points {
		n := len(anchors)
		if n > 0 && math.Abs(p.x-mean) <= distance {
			a := &anchors[n-1]
			a.Members = append(a.Members, p.event)
			mean += (p.x - mean) / float64(len(a.Members))
			a.X = mean
			continue
		}
		mean = p.x
		anchors = append(anchors, model.Anchor{X: p.x, Members: []model.Event{p.event}})
	}
	for i := range anchors {
		anchors[i].ID = anchorID(anchors[i].Members)
	}
	return anchors
}
