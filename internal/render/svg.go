// Package render draws laid-out cards as SVG.
package render

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/dbitech/cardtimeline/internal/config"
	"github.com/dbitech/cardtimeline/internal/layout"
	"github.com/dbitech/cardtimeline/internal/model"
)

const (
	cardPadding = 6
	// steppedConnector is the connector length above which a stepped path
	// is drawn instead of a straight line.
	steppedConnector = 80
)

// Renderer turns a layout result into an SVG document.
type Renderer struct {
	style  config.Render
	layout config.Layout
}

func New(style config.Render, lay config.Layout) *Renderer {
	return &Renderer{style: style, layout: lay}
}

// SVG renders res. events supplies the titles, dates and descriptions of
// the ids the cards refer to; unknown ids are skipped.
func (r *Renderer) SVG(res layout.Result, events []model.Event) string {
	byID := make(map[string]model.Event, len(events))
	for _, e := range events {
		byID[e.ID] = e
	}
	s := r.style
	fs := s.Font.Size

	var svg strings.Builder
	fmt.Fprintf(&svg, `<?xml version="1.0" encoding="UTF-8"?>
<svg width="%s" height="%s" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="%s"/>
<defs>
<style>
.title-text { font-family: %s; font-size: %dpx; font-weight: bold; fill: %s; }
.date-text { font-family: %s; font-size: %dpx; fill: %s; }
.notes-text { font-family: %s; font-size: %dpx; fill: %s; }
</style>
</defs>
`, num(res.Width), num(res.Height), s.Colors.Background,
		s.Font.Family, fs, s.Colors.Text,
		s.Font.Family, fs-1, s.Colors.Text,
		s.Font.Family, fs-2, s.Colors.Notes)

	m := r.layout.SafetyMargin
	fmt.Fprintf(&svg, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%d"/>`+"\n",
		num(m), num(res.AxisY), num(res.Width-m), num(res.AxisY), s.Colors.Timeline, s.LineWidth)

	for _, c := range res.Cards {
		r.drawConnector(&svg, c)
	}
	for _, x := range anchorPositions(res.Cards) {
		drawEventMarker(&svg, x, res.AxisY, s)
	}
	for _, c := range res.Cards {
		r.drawCard(&svg, c, byID)
	}

	svg.WriteString("</svg>\n")
	return svg.String()
}

// drawConnector links the anchor on the axis to the card edge facing it.
// Long connectors get a stepped path that leaves the axis vertically.
func (r *Renderer) drawConnector(svg *strings.Builder, c model.PlacedCard) {
	rect := c.Rect()
	endY := rect.Top
	if c.IsAbove {
		endY = rect.Bottom
	}
	color := r.style.Colors.Timeline
	if math.Abs(endY-c.AnchorY) > steppedConnector && c.X != c.AnchorX {
		midY := c.AnchorY + (endY-c.AnchorY)/3
		fmt.Fprintf(svg, `<path d="M%s,%s L%s,%s L%s,%s" stroke="%s" stroke-width="1" fill="none"/>`+"\n",
			num(c.AnchorX), num(c.AnchorY), num(c.AnchorX), num(midY), num(c.X), num(endY), color)
		return
	}
	fmt.Fprintf(svg, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="1"/>`+"\n",
		num(c.AnchorX), num(c.AnchorY), num(c.X), num(endY), color)
}

func (r *Renderer) drawCard(svg *strings.Builder, c model.PlacedCard, byID map[string]model.Event) {
	rect := c.Rect()
	fmt.Fprintf(svg, `<g class="card card-%s" data-id="%s">`+"\n", c.Tier, escapeXML(c.ID))
	fmt.Fprintf(svg, `<rect x="%s" y="%s" width="%s" height="%s" rx="4" fill="%s" stroke="%s" stroke-width="1"/>`+"\n",
		num(rect.Left), num(rect.Top), num(c.Width), num(c.Height), r.fill(c.Tier), r.style.Colors.CardStroke)

	fs := r.style.Font.Size
	maxW := c.Width - 2*cardPadding
	y := rect.Top + cardPadding
	for _, ln := range r.lines(c, byID) {
		size := fs
		switch ln.class {
		case "date-text":
			size = fs - 1
		case "notes-text":
			size = fs - 2
		}
		y += float64(size)
		if y > rect.Bottom-cardPadding/2 {
			break
		}
		fmt.Fprintf(svg, `<text x="%s" y="%s" class="%s">%s</text>`+"\n",
			num(rect.Left+cardPadding), num(y), ln.class, escapeXML(fitText(ln.text, maxW, size)))
		y += 4
	}
	svg.WriteString("</g>\n")
}

type line struct {
	class string
	text  string
}

// lines returns the text rows of a card according to its tier's field
// visibility.
func (r *Renderer) lines(c model.PlacedCard, byID map[string]model.Event) []line {
	spec := r.layout.Spec(c.Tier)
	var members []model.Event
	for _, id := range c.SourceEventIDs {
		if e, ok := byID[id]; ok {
			members = append(members, e)
		}
	}

	var out []line
	switch c.Tier {
	case model.TierFull, model.TierCompact:
		if len(members) == 0 {
			return []line{{"title-text", c.Label}}
		}
		e := members[0]
		out = append(out, line{"title-text", e.Title})
		if spec.ShowDate {
			d := e.Date.Format("2006-01-02")
			if spec.ShowTime && e.HasTime {
				d = e.DateLabel()
			}
			out = append(out, line{"date-text", d})
		}
		if spec.ShowDescription && e.Description != "" {
			out = append(out, line{"notes-text", e.Description})
		}
	default:
		out = append(out, line{"title-text", c.Label})
		if spec.ShowDate && len(members) > 0 {
			first, last := members[0].Date, members[len(members)-1].Date
			d := first.Format("2006-01-02")
			if !last.Equal(first) {
				d += " – " + last.Format("2006-01-02")
			}
			out = append(out, line{"date-text", d})
		}
	}
	return out
}

func (r *Renderer) fill(t model.Tier) string {
	switch t {
	case model.TierFull:
		return r.style.Colors.Full
	case model.TierCompact:
		return r.style.Colors.Compact
	case model.TierGroup:
		return r.style.Colors.Group
	default:
		return r.style.Colors.Summary
	}
}

// drawEventMarker draws the configured marker shape centred on (x, y):
// circle, square, diamond or an upward triangle. Unknown shapes fall back
// to a circle.
func drawEventMarker(svg *strings.Builder, x, y float64, s config.Render) {
	m := s.EventMarker
	size := float64(m.Size)
	switch strings.ToLower(m.Shape) {
	case "square":
		fmt.Fprintf(svg, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s" stroke="%s" stroke-width="%d"/>`+"\n",
			num(x-size), num(y-size), num(size*2), num(size*2), m.FillColor, m.StrokeColor, m.StrokeWidth)
	case "diamond":
		fmt.Fprintf(svg, `<polygon points="%s,%s %s,%s %s,%s %s,%s" fill="%s" stroke="%s" stroke-width="%d"/>`+"\n",
			num(x), num(y-size), num(x+size), num(y), num(x), num(y+size), num(x-size), num(y),
			m.FillColor, m.StrokeColor, m.StrokeWidth)
	case "triangle":
		h := size * 1.5
		fmt.Fprintf(svg, `<polygon points="%s,%s %s,%s %s,%s" fill="%s" stroke="%s" stroke-width="%d"/>`+"\n",
			num(x), num(y-h), num(x-size), num(y+h/2), num(x+size), num(y+h/2),
			m.FillColor, m.StrokeColor, m.StrokeWidth)
	default:
		fmt.Fprintf(svg, `<circle cx="%s" cy="%s" r="%s" fill="%s" stroke="%s" stroke-width="%d"/>`+"\n",
			num(x), num(y), num(size), m.FillColor, m.StrokeColor, m.StrokeWidth)
	}
}

// anchorPositions returns the distinct anchor positions of cards, left to
// right.
func anchorPositions(cards []model.PlacedCard) []float64 {
	seen := make(map[float64]bool)
	var xs []float64
	for _, c := range cards {
		if !seen[c.AnchorX] {
			seen[c.AnchorX] = true
			xs = append(xs, c.AnchorX)
		}
	}
	sort.Float64s(xs)
	return xs
}

// num formats a coordinate with at most one decimal.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}
