package layout

import (
	"cmp"
	"fmt"
	"slices"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/dbitech/cardtimeline/internal/geometry"
	"github.com/dbitech/cardtimeline/internal/model"
)

// Stage identifies the last resolver stage that had to run.
type Stage int

const (
	StageNone Stage = iota
	StageLocal
	StagePairwise
	StageLegalize
	StageSweep
	StageLinear
)

var stageNames = []string{"none", "local", "pairwise", "legalize", "sweep", "linear"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Stage) UnmarshalText(b []byte) error {
	for i, n := range stageNames {
		if n == string(b) {
			*s = Stage(i)
			return nil
		}
	}
	return fmt.Errorf("unknown resolver stage %q", b)
}

// resolver removes overlaps left by the packer. Each stage runs only while
// overlaps remain and is more conservative than the one before; the sweep
// stage cannot fail, and the linear stage exists only as a last guard.
type resolver struct {
	frame
	log log.FieldLogger
}

func (rs resolver) resolve(cards []model.PlacedCard) ([]model.PlacedCard, Stage) {
	stages := []struct {
		stage Stage
		run   func([]model.PlacedCard)
	}{
		{StageLocal, rs.relocateLocal},
		{StagePairwise, rs.deconflict},
		{StageLegalize, rs.legalize},
		{StageSweep, rs.sweep},
		{StageLinear, rs.linear},
	}

	stage := StageNone
	for _, s := range stages {
		if len(collisions(cards)) == 0 {
			break
		}
		s.run(cards)
		stage = s.stage
		rs.log.WithFields(log.Fields{"stage": s.stage, "remaining": len(collisions(cards))}).Debug("resolver stage finished")
	}
	for i := range cards {
		cards[i].Unresolved = false
	}
	return cards, stage
}

// collisions lists every overlapping pair (i < j) in index order.
func collisions(cards []model.PlacedCard) [][2]int {
	var pairs [][2]int
	for i := range cards {
		ri := cards[i].Rect()
		for j := i + 1; j < len(cards); j++ {
			if ri.Overlaps(cards[j].Rect()) {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	return pairs
}

// victim returns the member of a colliding pair that gives way: the
// smaller card, then the poorer tier, then the later id.
func victim(cards []model.PlacedCard, i, j int) int {
	a, b := cards[i], cards[j]
	switch {
	case a.Area() != b.Area():
		if a.Area() < b.Area() {
			return i
		}
		return j
	case a.Tier != b.Tier:
		if a.Tier > b.Tier {
			return i
		}
		return j
	case a.ID > b.ID:
		return i
	default:
		return j
	}
}

// obstacles returns the rectangles of every card except skip.
func obstacles(cards []model.PlacedCard, skip int) []geometry.Rect {
	rects := make([]geometry.Rect, 0, len(cards))
	for k, c := range cards {
		if k != skip {
			rects = append(rects, c.Rect())
		}
	}
	return rects
}

// nearestGridSlot searches the anchor grid of card k for the free slot
// closest to the card's current position.
func (rs resolver) nearestGridSlot(cards []model.PlacedCard, k int) (point, bool) {
	c := cards[k]
	slots := rs.gridSlots(c.AnchorX, c.Width, c.Height, c.IsAbove)
	for i := range slots {
		slots[i].d = dist(slots[i].x, slots[i].y, c.X, c.Y)
	}
	slices.SortStableFunc(slots, func(a, b slot) int {
		return cmp.Compare(a.d, b.d)
	})
	obs := obstacles(cards, k)
	attempts := 0
	for _, s := range slots {
		if rs.fits(s.point, c.Width, c.Height, obs) {
			return s.point, true
		}
		attempts++
		if attempts >= rs.cfg.MaxSlotAttempts {
			break
		}
	}
	return point{}, false
}

// relocateLocal moves the giving-way card of each colliding pair to the
// nearest free slot of its own anchor grid, smallest cards first.
func (rs resolver) relocateLocal(cards []model.PlacedCard) {
	for _, k := range relocationOrder(cards, collisions(cards)) {
		if !geometry.OverlapsAny(cards[k].Rect(), obstacles(cards, k)) {
			continue
		}
		if p, ok := rs.nearestGridSlot(cards, k); ok {
			cards[k].MoveTo(p.x, p.y)
		}
	}
}

// relocationOrder returns the victim of every pair once, ordered by area,
// then poorer tier first, then id.
func relocationOrder(cards []model.PlacedCard, pairs [][2]int) []int {
	seen := make(map[int]bool, len(pairs))
	var order []int
	for _, pr := range pairs {
		k := victim(cards, pr[0], pr[1])
		if !seen[k] {
			seen[k] = true
			order = append(order, k)
		}
	}
	slices.SortStableFunc(order, func(a, b int) int {
		ca, cb := cards[a], cards[b]
		if c := cmp.Compare(ca.Area(), cb.Area()); c != 0 {
			return c
		}
		if ca.Tier != cb.Tier {
			return cmp.Compare(cb.Tier, ca.Tier)
		}
		return cmp.Compare(ca.ID, cb.ID)
	})
	return order
}

// deconflict repeats pairwise re-placement against the current state of
// all other cards, falling back to a dense scan of the container, for at
// most MaxPasses passes.
func (rs resolver) deconflict(cards []model.PlacedCard) {
	for pass := 0; pass < rs.cfg.MaxPasses; pass++ {
		pairs := collisions(cards)
		if len(pairs) == 0 {
			return
		}
		var scanFailed sizeMemo
		moved := false
		for _, pr := range pairs {
			if !cards[pr[0]].Rect().Overlaps(cards[pr[1]].Rect()) {
				continue
			}
			k := victim(cards, pr[0], pr[1])
			c := &cards[k]
			if p, ok := rs.nearestGridSlot(cards, k); ok {
				c.MoveTo(p.x, p.y)
				moved = true
				continue
			}
			if scanFailed.covers(c.Width, c.Height) {
				continue
			}
			obs := obstacles(cards, k)
			p, ok := rs.scan(c.Width, c.Height, rs.cfg.DenseScanStep, c.X, c.Y, func(p point) bool {
				return rs.fits(p, c.Width, c.Height, obs)
			})
			if !ok {
				scanFailed.add(c.Width, c.Height)
				continue
			}
			c.MoveTo(p.x, p.y)
			moved = true
		}
		rs.log.WithFields(log.Fields{"pass": pass + 1, "moved": moved}).Debug("deconfliction pass")
		if !moved {
			return
		}
	}
}

// legalize discards tentative positions and greedily re-packs every card,
// largest first, onto the first free point of a coarse and then a fine
// scan of the container. A card is only tested against cards accepted
// before it. Cards that find no point keep their position for the sweep.
func (rs resolver) legalize(cards []model.PlacedCard) {
	order := make([]int, len(cards))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ca, cb := cards[order[a]], cards[order[b]]
		if ca.Area() != cb.Area() {
			return ca.Area() > cb.Area()
		}
		if ca.Tier != cb.Tier {
			return ca.Tier < cb.Tier
		}
		return ca.ID < cb.ID
	})

	var accepted []geometry.Rect
	var scanFailed sizeMemo
	for _, k := range order {
		c := &cards[k]
		if p, ok := rs.firstFree(c, accepted, &scanFailed); ok {
			c.MoveTo(p.x, p.y)
			accepted = append(accepted, c.Rect())
		}
	}
}

func (rs resolver) firstFree(c *model.PlacedCard, accepted []geometry.Rect, scanFailed *sizeMemo) (point, bool) {
	for _, step := range []float64{rs.cfg.LegalizeCoarseStep, rs.cfg.DenseScanStep} {
		if step == rs.cfg.DenseScanStep && scanFailed.covers(c.Width, c.Height) {
			break
		}
		p, ok := rs.scan(c.Width, c.Height, step, c.X, c.Y, func(p point) bool {
			return rs.fits(p, c.Width, c.Height, accepted)
		})
		if ok {
			return p, true
		}
	}
	scanFailed.add(c.Width, c.Height)
	return point{}, false
}

// sweep visits cards by top edge and pushes each one below every earlier
// card whose horizontal extent it shares, leaving a gutter. Earlier cards
// never move again, so any two horizontally overlapping cards end up
// vertically separated and no overlap can remain.
func (rs resolver) sweep(cards []model.PlacedCard) {
	order := make([]int, len(cards))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := cards[order[a]].Rect(), cards[order[b]].Rect()
		if ra.Top != rb.Top {
			return ra.Top < rb.Top
		}
		if ra.Left != rb.Left {
			return ra.Left < rb.Left
		}
		return cards[order[a]].ID < cards[order[b]].ID
	})

	done := make([]geometry.Rect, 0, len(cards))
	for _, k := range order {
		c := &cards[k]
		r := c.Rect()
		for moved := true; moved; {
			moved = false
			for _, d := range done {
				if r.OverlapsX(d) && r.Top < d.Bottom+rs.cfg.Gutter && r.Bottom > d.Top {
					top := d.Bottom + rs.cfg.Gutter
					r = geometry.Rect{Left: r.Left, Top: top, Right: r.Right, Bottom: top + c.Height}
					moved = true
				}
			}
		}
		c.MoveTo(r.Center())
		done = append(done, r)
	}
}

// linear stacks every card in one column. It sacrifices clustering and may
// leave the container, but cannot overlap.
func (rs resolver) linear(cards []model.PlacedCard) {
	order := make([]int, len(cards))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if cards[order[a]].AnchorX != cards[order[b]].AnchorX {
			return cards[order[a]].AnchorX < cards[order[b]].AnchorX
		}
		return cards[order[a]].ID < cards[order[b]].ID
	})
	top := rs.safe.Top
	for _, k := range order {
		c := &cards[k]
		c.MoveTo(rs.safe.Left+c.Width/2, top+c.Height/2)
		top += c.Height + rs.cfg.Gutter
	}
}
