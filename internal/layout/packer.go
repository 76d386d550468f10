package layout

import (
	"github.com/dbitech/cardtimeline/internal/geometry"
	"github.com/dbitech/cardtimeline/internal/model"
)

// packContext is the mutable state of one packing pass. Cards are packed
// anchor by anchor; each placement is checked only against cards placed
// before it, so the result is collision-free locally at best and the
// resolver has the final word.
type packContext struct {
	frame
	occupied   []geometry.Rect
	scanFailed sizeMemo
}

func newPackContext(f frame) *packContext {
	return &packContext{frame: f}
}

// pack turns an anchor's intents into candidate cards.
func (pc *packContext) pack(a model.Anchor, intents []intent) []model.PlacedCard {
	cards := make([]model.PlacedCard, 0, len(intents))
	for _, in := range intents {
		c := pc.newCard(a, in)
		if !in.synthesized {
			pc.place(&c, a.X, in.preferAbove)
		}
		pc.occupied = append(pc.occupied, c.Rect())
		cards = append(cards, c)
	}
	return cards
}

func (pc *packContext) newCard(a model.Anchor, in intent) model.PlacedCard {
	spec := pc.cfg.Spec(in.tier)
	ids := make([]string, len(in.members))
	for i, m := range in.members {
		ids[i] = m.ID
	}
	c := model.PlacedCard{
		ID:             cardID(in.tier, in.members),
		SourceEventIDs: ids,
		Tier:           in.tier,
		Width:          spec.Width,
		Height:         spec.Height,
		AnchorX:        a.X,
		AnchorY:        pc.axisY,
		ClusterID:      a.ID,
		Label:          label(in.tier, in.members),
		Count:          len(in.members),
		Unresolved:     in.synthesized,
	}
	c.MoveTo(pc.clampX(a.X, spec.Width), pc.rowY(0, spec.Height, in.preferAbove))
	return c
}

// place moves c to the nearest free grid slot around anchorX. After
// MaxSlotAttempts in-bounds candidates it scans the safe area outward from
// the preferred row, up to MaxScanPoints points; if that fails too the card stays on its first in-bounds candidate, flagged
// for the resolver.
func (pc *packContext) place(c *model.PlacedCard, anchorX float64, preferAbove bool) {
	var fallback *point
	attempts := 0
	for _, s := range pc.gridSlots(anchorX, c.Width, c.Height, preferAbove) {
		if !pc.safe.Inflate(eps).Contains(geometry.RectFromCenter(s.x, s.y, c.Width, c.Height)) {
			continue
		}
		if fallback == nil {
			p := s.point
			fallback = &p
		}
		if pc.fits(s.point, c.Width, c.Height, pc.occupied) {
			c.MoveTo(s.x, s.y)
			return
		}
		attempts++
		if attempts >= pc.cfg.MaxSlotAttempts {
			break
		}
	}

	if !pc.scanFailed.covers(c.Width, c.Height) {
		oy := pc.rowY(0, c.Height, preferAbove)
		p, ok := pc.scan(c.Width, c.Height, pc.cfg.DenseScanStep, anchorX, oy, func(p point) bool {
			return pc.fits(p, c.Width, c.Height, pc.occupied)
		})
		if ok {
			c.MoveTo(p.x, p.y)
			return
		}
		pc.scanFailed.add(c.Width, c.Height)
	}

	if fallback != nil {
		c.MoveTo(fallback.x, fallback.y)
	} else {
		r := pc.safe.ClampInside(c.Rect())
		c.MoveTo(r.Center())
	}
	c.Unresolved = true
}
