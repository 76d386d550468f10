package geometry

import "time"

// Scale projects timestamps onto the horizontal pixel range [X0, X1].
// Timestamps outside [Start, End] are clamped to the nearest end of the
// range so that every event still maps to a drawable position.
type Scale struct {
	Start, End time.Time
	X0, X1     float64
}

// NewScale returns a scale for the given window and pixel range. A zero or
// negative window is widened by half a day on each side so that a single
// timestamp lands in the middle of the range.
func NewScale(start, end time.Time, x0, x1 float64) Scale {
	if !end.After(start) {
		mid := start
		start = mid.Add(-12 * time.Hour)
		end = mid.Add(12 * time.Hour)
	}
	return Scale{Start: start, End: end, X0: x0, X1: x1}
}

// X returns the projected pixel position of t.
func (s Scale) X(t time.Time) float64 {
	span := s.End.Sub(s.Start)
	if span <= 0 {
		return (s.X0 + s.X1) / 2
	}
	p := float64(t.Sub(s.Start)) / float64(span)
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return s.X0 + p*(s.X1-s.X0)
}
