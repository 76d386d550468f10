// Package geometry holds the pixel-space primitives shared by the layout
// engine and the renderer: axis-aligned rectangles and the time to pixel
// projection.
package geometry

import "fmt"

// Rect is an axis-aligned rectangle in container pixels. Y grows downwards.
type Rect struct {
	Left, Top     float64
	Right, Bottom float64
}

// RectFromCenter builds a rectangle of the given size centred on (cx, cy).
func RectFromCenter(cx, cy, width, height float64) Rect {
	return Rect{
		Left:   cx - width/2,
		Top:    cy - height/2,
		Right:  cx + width/2,
		Bottom: cy + height/2,
	}
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }
func (r Rect) Area() float64   { return r.Width() * r.Height() }

// Center returns the centre point of the rectangle.
func (r Rect) Center() (float64, float64) {
	return (r.Left + r.Right) / 2, (r.Top + r.Bottom) / 2
}

// Overlaps reports whether two rectangles intersect. Rectangles that only
// share an edge do not overlap: a box is separate when it lies completely
// to the left, right, above or below the other.
func (r Rect) Overlaps(o Rect) bool {
	if r.Right <= o.Left || r.Left >= o.Right ||
		r.Bottom <= o.Top || r.Top >= o.Bottom {
		return false
	}
	return true
}

// OverlapsX reports whether the horizontal extents of two rectangles
// intersect.
func (r Rect) OverlapsX(o Rect) bool {
	return r.Right > o.Left && r.Left < o.Right
}

// Inflate grows the rectangle by d on every side. Negative d shrinks it.
func (r Rect) Inflate(d float64) Rect {
	return Rect{Left: r.Left - d, Top: r.Top - d, Right: r.Right + d, Bottom: r.Bottom + d}
}

// Translate moves the rectangle by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

// Contains reports whether o lies completely inside r. Shared edges count
// as inside.
func (r Rect) Contains(o Rect) bool {
	return o.Left >= r.Left && o.Right <= r.Right && o.Top >= r.Top && o.Bottom <= r.Bottom
}

// ClampInside shifts o the minimum distance needed to put it inside r. When
// o is larger than r along an axis it is aligned to r's left or top edge.
func (r Rect) ClampInside(o Rect) Rect {
	dx, dy := 0.0, 0.0
	switch {
	case o.Width() > r.Width() || o.Left < r.Left:
		dx = r.Left - o.Left
	case o.Right > r.Right:
		dx = r.Right - o.Right
	}
	switch {
	case o.Height() > r.Height() || o.Top < r.Top:
		dy = r.Top - o.Top
	case o.Bottom > r.Bottom:
		dy = r.Bottom - o.Bottom
	}
	return o.Translate(dx, dy)
}

func (r Rect) String() string {
	return fmt.Sprintf("[%.1f,%.1f]-[%.1f,%.1f]", r.Left, r.Top, r.Right, r.Bottom)
}

// OverlapsAny reports whether r intersects any rectangle in set.
func OverlapsAny(r Rect, set []Rect) bool {
	for _, o := range set {
		if r.Overlaps(o) {
			return true
		}
	}
	return false
}
