package layout

import (
	"cmp"
	"math"
	"slices"

	"github.com/dbitech/cardtimeline/internal/config"
	"github.com/dbitech/cardtimeline/internal/geometry"
	"github.com/dbitech/cardtimeline/internal/model"
)

// eps absorbs floating point noise when cards sit exactly one gutter apart.
const eps = 1e-6

// frame is the fixed geometry of one pass: the container, its safe area
// and the axis.
type frame struct {
	cfg    config.Layout
	width  float64
	height float64
	axisY  float64
	safe   geometry.Rect
}

func newFrame(cfg config.Layout, width, height float64) frame {
	m := cfg.SafetyMargin
	return frame{
		cfg:    cfg,
		width:  width,
		height: height,
		axisY:  height / 2,
		safe:   geometry.Rect{Left: m, Top: m, Right: width - m, Bottom: height - m},
	}
}

// laneHeight is the vertical budget available on one side of the axis.
func (f frame) laneHeight() float64 {
	return f.height/2 - f.cfg.AxisClearance - f.cfg.SafetyMargin
}

// point is a candidate card centre.
type point struct {
	x, y float64
}

// slot is a grid candidate around an anchor.
type slot struct {
	point
	above bool
	row   int
	fan   int
	d     float64 // distance from the point the slots are ordered by
}

// fanOffset maps the fan index 0, 1, 2, 3, 4, ... to column offsets
// 0, -1, +1, -2, +2, ...
func fanOffset(i int) int {
	if i == 0 {
		return 0
	}
	if i%2 == 1 {
		return -(i + 1) / 2
	}
	return i / 2
}

// rowY returns the centre of row k on one side of the axis for a card of
// height h.
func (f frame) rowY(k int, h float64, above bool) float64 {
	off := f.cfg.AxisClearance + h/2 + float64(k)*(h+f.cfg.Gutter)
	if above {
		return f.axisY - off
	}
	return f.axisY + off
}

// clampX keeps a card of width w horizontally inside the safe area.
func (f frame) clampX(x, w float64) float64 {
	lo, hi := f.safe.Left+w/2, f.safe.Right-w/2
	if hi < lo {
		return lo
	}
	return math.Max(lo, math.Min(hi, x))
}

// gridSlots enumerates the row/column grid around anchorX for a w x h card,
// ordered by distance from the anchor point. Equal distances prefer the
// requested side, then lower rows, then lower fan indexes.
func (f frame) gridSlots(anchorX, w, h float64, preferAbove bool) []slot {
	pitch := w + f.cfg.Gutter
	fans := 2*int(math.Ceil(f.width/pitch)) + 1
	slots := make([]slot, 0, f.cfg.MaxRows*2*fans)
	for k := 0; k < f.cfg.MaxRows; k++ {
		for _, above := range []bool{preferAbove, !preferAbove} {
			y := f.rowY(k, h, above)
			for i := 0; i < fans; i++ {
				x := f.clampX(anchorX+float64(fanOffset(i))*pitch, w)
				slots = append(slots, slot{point: point{x, y}, above: above, row: k, fan: i})
			}
		}
	}
	for i := range slots {
		slots[i].d = dist(slots[i].x, slots[i].y, anchorX, f.axisY)
	}
	slices.SortStableFunc(slots, func(a, b slot) int {
		if math.Abs(a.d-b.d) > eps {
			return cmp.Compare(a.d, b.d)
		}
		if a.above != b.above {
			if a.above == preferAbove {
				return -1
			}
			return 1
		}
		if a.row != b.row {
			return cmp.Compare(a.row, b.row)
		}
		return cmp.Compare(a.fan, b.fan)
	})
	return slots
}

// scan visits card centres on a step-spaced grid covering the safe area,
// ring by ring outward from the grid cell nearest (ox, oy), and returns the
// first one accept takes. Within a ring, points closer to the origin come
// first. At most MaxScanPoints points are visited.
func (f frame) scan(w, h, step, ox, oy float64, accept func(point) bool) (point, bool) {
	x0, x1 := f.safe.Left+w/2, f.safe.Right-w/2
	y0, y1 := f.safe.Top+h/2, f.safe.Bottom-h/2
	if x1 < x0-eps || y1 < y0-eps || step <= 0 {
		return point{}, false
	}
	nx := int(math.Floor((x1-x0)/step+eps)) + 1
	ny := int(math.Floor((y1-y0)/step+eps)) + 1
	cx := clampIndex(int(math.Round((ox-x0)/step)), nx)
	cy := clampIndex(int(math.Round((oy-y0)/step)), ny)
	maxR := max(cx, nx-1-cx, cy, ny-1-cy)

	budget := f.cfg.MaxScanPoints
	var ring []scanCell
	for r := 0; r <= maxR; r++ {
		ring = ring[:0]
		for j := cy - r; j <= cy+r; j++ {
			if j < 0 || j >= ny {
				continue
			}
			if j == cy-r || j == cy+r {
				for i := max(cx-r, 0); i <= min(cx+r, nx-1); i++ {
					ring = append(ring, newScanCell(x0+float64(i)*step, y0+float64(j)*step, ox, oy))
				}
				continue
			}
			if i := cx - r; i >= 0 {
				ring = append(ring, newScanCell(x0+float64(i)*step, y0+float64(j)*step, ox, oy))
			}
			if i := cx + r; i < nx {
				ring = append(ring, newScanCell(x0+float64(i)*step, y0+float64(j)*step, ox, oy))
			}
		}
		slices.SortFunc(ring, compareScanCells)
		for _, c := range ring {
			if budget <= 0 {
				return point{}, false
			}
			budget--
			if accept(c.point) {
				return c.point, true
			}
		}
	}
	return point{}, false
}

// scanCell is a scan candidate with its squared distance to the origin.
type scanCell struct {
	point
	d2 float64
}

func newScanCell(x, y, ox, oy float64) scanCell {
	dx, dy := x-ox, y-oy
	return scanCell{point: point{x, y}, d2: dx*dx + dy*dy}
}

func compareScanCells(a, b scanCell) int {
	switch {
	case math.Abs(a.d2-b.d2) > eps:
		return cmp.Compare(a.d2, b.d2)
	case a.y != b.y:
		return cmp.Compare(a.y, b.y)
	default:
		return cmp.Compare(a.x, b.x)
	}
}

func clampIndex(i, n int) int {
	return max(0, min(i, n-1))
}

// fits reports whether a w x h card centred on p lies in the safe area and
// keeps a gutter to every obstacle.
func (f frame) fits(p point, w, h float64, obstacles []geometry.Rect) bool {
	r := geometry.RectFromCenter(p.x, p.y, w, h)
	if !f.safe.Inflate(eps).Contains(r) {
		return false
	}
	return !geometry.OverlapsAny(r.Inflate(math.Max(0, f.cfg.Gutter-eps)), obstacles)
}

// inside reports whether every card lies within the safe area.
func (f frame) inside(cards []model.PlacedCard) bool {
	bounds := f.safe.Inflate(eps)
	for _, c := range cards {
		if !bounds.Contains(c.Rect()) {
			return false
		}
	}
	return true
}

func dist(x0, y0, x1, y1 float64) float64 {
	return math.Hypot(x1-x0, y1-y0)
}

// sizeMemo remembers card sizes for which a scan found nothing. While the
// obstacle set only grows, cards at least as large skip the scan and are
// left to the later resolver stages.
type sizeMemo []point

func (m sizeMemo) covers(w, h float64) bool {
	for _, s := range m {
		if w >= s.x && h >= s.y {
			return true
		}
	}
	return false
}

func (m *sizeMemo) add(w, h float64) {
	*m = append(*m, point{w, h})
}
