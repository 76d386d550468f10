// Package model defines the values exchanged between the event sources,
// the layout engine and the renderer.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/dbitech/cardtimeline/internal/geometry"
)

// Event is a single dated entry on the timeline. Events are owned by the
// caller and never modified by the engine.
type Event struct {
	ID          string        `json:"id" yaml:"id"`
	Date        time.Time     `json:"date" yaml:"date"`
	Time        time.Duration `json:"time,omitempty" yaml:"time,omitempty"` // offset from midnight, valid when HasTime
	HasTime     bool          `json:"has_time,omitempty" yaml:"has_time,omitempty"`
	Title       string        `json:"title" yaml:"title"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
}

// Timestamp returns the instant used to project the event onto the axis.
// Events without a time of day sit at midnight of their date.
func (e Event) Timestamp() time.Time {
	d := time.Date(e.Date.Year(), e.Date.Month(), e.Date.Day(), 0, 0, 0, 0, e.Date.Location())
	if e.HasTime {
		return d.Add(e.Time)
	}
	return d
}

// DateLabel formats the event date, including the time when present.
func (e Event) DateLabel() string {
	if e.HasTime {
		return e.Timestamp().Format("2006-01-02 15:04")
	}
	return e.Date.Format("2006-01-02")
}

// Anchor is a point on the axis that stands for one or more events whose
// projected positions fall within the clustering distance.
type Anchor struct {
	ID      string  `json:"id" yaml:"id"`
	X       float64 `json:"x" yaml:"x"`
	Members []Event `json:"members" yaml:"members"`
}

// Tier is the content richness a card is rendered at.
type Tier int

const (
	TierFull Tier = iota
	TierCompact
	TierGroup
	TierSummary
)

var tierNames = []string{"full", "compact", "group", "summary"}

// Tiers lists every tier from richest to poorest.
var Tiers = []Tier{TierFull, TierCompact, TierGroup, TierSummary}

func (t Tier) String() string {
	if t < 0 || int(t) >= len(tierNames) {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return tierNames[t]
}

// ParseTier is the inverse of Tier.String.
func ParseTier(s string) (Tier, error) {
	for i, n := range tierNames {
		if strings.EqualFold(s, n) {
			return Tier(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tier %q", s)
}

func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(b []byte) error {
	v, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// PlacedCard is a card with its final geometry. X and Y are the centre of
// the card in container pixels; AnchorX/AnchorY is the point on the axis
// the connector line is drawn to.
type PlacedCard struct {
	ID             string   `json:"id" yaml:"id"`
	SourceEventIDs []string `json:"source_event_ids" yaml:"source_event_ids"`
	Tier           Tier     `json:"tier" yaml:"tier"`
	X              float64  `json:"x" yaml:"x"`
	Y              float64  `json:"y" yaml:"y"`
	Width          float64  `json:"width" yaml:"width"`
	Height         float64  `json:"height" yaml:"height"`
	AnchorX        float64  `json:"anchor_x" yaml:"anchor_x"`
	AnchorY        float64  `json:"anchor_y" yaml:"anchor_y"`
	IsAbove        bool     `json:"is_above" yaml:"is_above"`
	ClusterID      string   `json:"cluster_id" yaml:"cluster_id"`
	Label          string   `json:"label,omitempty" yaml:"label,omitempty"`
	Count          int      `json:"count" yaml:"count"`
	Unresolved     bool     `json:"-" yaml:"-"`
}

// Rect returns the card's bounding rectangle.
func (c PlacedCard) Rect() geometry.Rect {
	return geometry.RectFromCenter(c.X, c.Y, c.Width, c.Height)
}

// MoveTo re-centres the card on (x, y) and refreshes its side of the axis.
func (c *PlacedCard) MoveTo(x, y float64) {
	c.X, c.Y = x, y
	c.IsAbove = y < c.AnchorY
}

// Area is the card's footprint in square pixels.
func (c PlacedCard) Area() float64 {
	return c.Width * c.Height
}
