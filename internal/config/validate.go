package config

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/dbitech/cardtimeline/internal/model"
)

// Validate reports the first setting that would make layout impossible.
func (c Config) Validate() error {
	l := c.Layout
	positive := []struct {
		name  string
		value float64
	}{
		{"layout.width", l.Width},
		{"layout.height", l.Height},
		{"layout.cluster_distance", l.ClusterDistance},
		{"layout.dense_scan_step", l.DenseScanStep},
		{"layout.legalize_coarse_step", l.LegalizeCoarseStep},
		{"layout.columns_per_anchor", float64(l.ColumnsPerAnchor)},
		{"layout.max_rows", float64(l.MaxRows)},
		{"layout.group_size", float64(l.GroupSize)},
		{"layout.max_slot_attempts", float64(l.MaxSlotAttempts)},
		{"layout.max_scan_points", float64(l.MaxScanPoints)},
		{"server.max_viewport", c.Server.MaxViewport},
		{"server.max_events", float64(c.Server.MaxEvents)},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("invalid config: %s must be positive, got %g", p.name, p.value)
		}
	}

	nonNegative := []struct {
		name  string
		value float64
	}{
		{"layout.safety_margin", l.SafetyMargin},
		{"layout.axis_clearance", l.AxisClearance},
		{"layout.gutter", l.Gutter},
		{"layout.max_full", float64(l.MaxFull)},
		{"layout.max_compact", float64(l.MaxCompact)},
		{"layout.max_passes", float64(l.MaxPasses)},
	}
	for _, p := range nonNegative {
		if p.value < 0 {
			return fmt.Errorf("invalid config: %s must not be negative, got %g", p.name, p.value)
		}
	}

	for _, t := range model.Tiers {
		s := l.Spec(t)
		if s.Width <= 0 || s.Height <= 0 {
			return fmt.Errorf("invalid config: layout.tiers.%s needs a positive width and height, got %gx%g", t, s.Width, s.Height)
		}
	}

	if c.Server.MaxViewport < l.Width || c.Server.MaxViewport < l.Height {
		return fmt.Errorf("invalid config: server.max_viewport %g is smaller than the default container %gx%g", c.Server.MaxViewport, l.Width, l.Height)
	}

	if c.Log.Level != "" {
		if _, err := log.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("invalid config: log.level: %w", err)
		}
	}

	switch strings.ToLower(c.Render.EventMarker.Shape) {
	case "", "circle", "square", "diamond", "triangle":
	default:
		return fmt.Errorf("invalid config: render.event_marker.shape %q is not one of circle, square, diamond, triangle", c.Render.EventMarker.Shape)
	}
	return nil
}
