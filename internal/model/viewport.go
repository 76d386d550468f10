package model

import (
	"fmt"
	"time"
)

// Window selects the visible part of the time axis. When Start and End are
// both set they are used as-is; otherwise StartFraction and EndFraction
// select a slice of the data range, 0 being the earliest event and 1 the
// latest. A zero EndFraction means 1, so the zero Window shows the whole
// data range.
type Window struct {
	Start         time.Time `json:"start,omitempty" yaml:"start,omitempty"`
	End           time.Time `json:"end,omitempty" yaml:"end,omitempty"`
	StartFraction float64   `json:"start_fraction,omitempty" yaml:"start_fraction,omitempty"`
	EndFraction   float64   `json:"end_fraction,omitempty" yaml:"end_fraction,omitempty"`
}

// Explicit reports whether the window carries a timestamp pair.
func (w Window) Explicit() bool {
	return !w.Start.IsZero() && !w.End.IsZero()
}

// Resolve turns the window into concrete bounds for data spanning
// [first, last].
func (w Window) Resolve(first, last time.Time) (time.Time, time.Time) {
	if w.Explicit() {
		return w.Start, w.End
	}
	from, to := w.StartFraction, w.EndFraction
	if to == 0 {
		to = 1
	}
	span := last.Sub(first)
	start := first.Add(time.Duration(from * float64(span)))
	end := first.Add(time.Duration(to * float64(span)))
	return start, end
}

// Validate checks that the window bounds are ordered.
func (w Window) Validate() error {
	if w.Explicit() && w.End.Before(w.Start) {
		return fmt.Errorf("window end %s is before start %s", w.End.Format(time.RFC3339), w.Start.Format(time.RFC3339))
	}
	if w.StartFraction < 0 || w.EndFraction > 1 || (w.EndFraction != 0 && w.EndFraction < w.StartFraction) {
		return fmt.Errorf("window fractions [%g, %g] must satisfy 0 <= start <= end <= 1", w.StartFraction, w.EndFraction)
	}
	return nil
}

// Viewport is the container the cards are laid out in.
type Viewport struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
	Window Window  `json:"window" yaml:"window"`
}
