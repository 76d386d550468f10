package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dbitech/cardtimeline/internal/config"
	"github.com/dbitech/cardtimeline/internal/model"
	"github.com/dbitech/cardtimeline/internal/sources"
)

// viewFlags select the container size and the visible time window.
type viewFlags struct {
	width     float64
	height    float64
	from      string
	to        string
	startFrac float64
	endFrac   float64
}

func (v *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&v.width, "width", 0, "container width in pixels (default from config)")
	cmd.Flags().Float64Var(&v.height, "height", 0, "container height in pixels (default from config)")
	cmd.Flags().StringVar(&v.from, "from", "", "window start date (YYYY-MM-DD or RFC3339)")
	cmd.Flags().StringVar(&v.to, "to", "", "window end date (YYYY-MM-DD or RFC3339)")
	cmd.Flags().Float64Var(&v.startFrac, "start-frac", 0, "window start as a fraction of the data range")
	cmd.Flags().Float64Var(&v.endFrac, "end-frac", 0, "window end as a fraction of the data range (0 means 1)")
}

// viewport builds the viewport from the flags, falling back to the
// configured container size.
func (v *viewFlags) viewport(cfg config.Layout) (model.Viewport, error) {
	vp := model.Viewport{Width: v.width, Height: v.height}
	if vp.Width <= 0 {
		vp.Width = cfg.Width
	}
	if vp.Height <= 0 {
		vp.Height = cfg.Height
	}
	if (v.from == "") != (v.to == "") {
		return vp, fmt.Errorf("--from and --to must be given together")
	}
	if v.from != "" {
		start, err := parseDate(v.from)
		if err != nil {
			return vp, fmt.Errorf("--from: %w", err)
		}
		end, err := parseDate(v.to)
		if err != nil {
			return vp, fmt.Errorf("--to: %w", err)
		}
		vp.Window = model.Window{Start: start, End: end}
	} else {
		vp.Window = model.Window{StartFraction: v.startFrac, EndFraction: v.endFrac}
	}
	return vp, vp.Window.Validate()
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date %q", s)
}

// loadInput reads the events file and resolves the viewport.
func loadInput(path string, v *viewFlags, cfg config.Config) ([]model.Event, model.Viewport, error) {
	vp, err := v.viewport(cfg.Layout)
	if err != nil {
		return nil, vp, WrapExitError(ExitCommandError, "invalid view", err)
	}
	events, err := sources.Load(path, sources.Options{From: vp.Window.Start, To: vp.Window.End})
	if err != nil {
		return nil, vp, WrapExitError(ExitCommandError, "error loading events", err)
	}
	return events, vp, nil
}
