package layout

import (
	"fmt"
	"strings"

	"github.com/dbitech/cardtimeline/internal/config"
	"github.com/dbitech/cardtimeline/internal/model"
)

// intent is a planned card: a tier and the events it represents.
type intent struct {
	tier        model.Tier
	members     []model.Event
	preferAbove bool
	// synthesized marks a card the capacity model had no room for. It is
	// parked next to the axis and left for the resolver to move.
	synthesized bool
}

// budget is the capacity a plan is drawn against: how many full and
// compact cards an anchor may use and whether richer tiers are allowed at
// all.
type budget struct {
	maxFull     int
	maxCompact  int
	groups      bool
	summaryOnly bool
}

// lanes tracks the remaining height of each (side, column) lane of an
// anchor. Even indexes are above the axis.
type lanes []float64

func newLanes(columns int, height float64) lanes {
	l := make(lanes, 2*columns)
	for i := range l {
		l[i] = height
	}
	return l
}

// take reserves need pixels in the lane with the most room left, the
// lowest index winning ties, and returns the lane or -1.
func (l lanes) take(need float64) int {
	best := -1
	for i, room := range l {
		if room+eps < need {
			continue
		}
		if best < 0 || room > l[best]+eps {
			best = i
		}
	}
	if best >= 0 {
		l[best] -= need
	}
	return best
}

// planner splits an anchor's members over the content tiers.
type planner struct {
	cfg        config.Layout
	laneHeight float64
}

// plan covers every member of the anchor exactly once. Members are
// consumed in axis order: the first ones get full cards, then compact
// cards, then groups of GroupSize, and whatever is left goes into a single
// summary card.
func (p planner) plan(a model.Anchor, b budget) []intent {
	if len(a.Members) == 0 {
		return nil
	}
	if b.summaryOnly {
		return p.summaryOnly(a.Members)
	}
	intents, rest := p.fill(a.Members, b, false)
	if len(rest) == 0 {
		return intents
	}
	reserved, left := p.fill(a.Members, b, true)
	if len(left) == 0 {
		return reserved
	}
	// No lane can hold even the summary card.
	return append(intents, p.synthesize(rest))
}

func (p planner) summaryOnly(members []model.Event) []intent {
	l := newLanes(p.cfg.ColumnsPerAnchor, p.laneHeight)
	lane := l.take(p.pitch(model.TierSummary))
	if lane < 0 {
		return []intent{p.synthesize(members)}
	}
	return []intent{{tier: model.TierSummary, members: members, preferAbove: lane%2 == 0}}
}

// fill runs the tier cascade against fresh lanes. With reserve set, room
// for one summary card is taken first and the summary covering the
// remainder is appended.
func (p planner) fill(members []model.Event, b budget, reserve bool) ([]intent, []model.Event) {
	l := newLanes(p.cfg.ColumnsPerAnchor, p.laneHeight)
	summaryLane := -1
	if reserve {
		summaryLane = l.take(p.pitch(model.TierSummary))
		if summaryLane < 0 {
			return nil, members
		}
	}

	var intents []intent
	rest := members
	emit := func(tier model.Tier, limit, batch int) {
		for n := 0; n < limit && len(rest) > 0; n++ {
			lane := l.take(p.pitch(tier))
			if lane < 0 {
				return
			}
			k := min(batch, len(rest))
			intents = append(intents, intent{tier: tier, members: rest[:k:k], preferAbove: lane%2 == 0})
			rest = rest[k:]
		}
	}
	emit(model.TierFull, b.maxFull, 1)
	emit(model.TierCompact, b.maxCompact, 1)
	if b.groups {
		emit(model.TierGroup, len(rest), max(1, p.cfg.GroupSize))
	}

	if reserve && len(rest) > 0 {
		intents = append(intents, intent{tier: model.TierSummary, members: rest, preferAbove: summaryLane%2 == 0})
		rest = nil
	}
	return intents, rest
}

func (p planner) synthesize(members []model.Event) intent {
	return intent{tier: model.TierSummary, members: members, preferAbove: true, synthesized: true}
}

func (p planner) pitch(t model.Tier) float64 {
	return p.cfg.Spec(t).Height + p.cfg.Gutter
}

// label is the text a grouped or summary card shows in place of a single
// event's title.
func label(tier model.Tier, members []model.Event) string {
	switch tier {
	case model.TierGroup:
		titles := make([]string, len(members))
		for i, m := range members {
			titles[i] = m.Title
		}
		return strings.Join(titles, ", ")
	case model.TierSummary:
		if len(members) == 1 {
			return "1 event"
		}
		return fmt.Sprintf("%d events", len(members))
	default:
		if len(members) > 0 {
			return members[0].Title
		}
		return ""
	}
}
