package render

import (
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbitech/cardtimeline/internal/config"
	"github.com/dbitech/cardtimeline/internal/layout"
	"github.com/dbitech/cardtimeline/internal/model"
)

func testRenderer() *Renderer {
	c := config.Default()
	return New(c.Render, c.Layout)
}

func TestSVG_Golden(t *testing.T) {
	events := []model.Event{{
		ID:          "e1",
		Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Time:        14*time.Hour + 30*time.Minute,
		HasTime:     true,
		Title:       "Launch & <go>",
		Description: "Public release",
	}}
	res := layout.Result{
		Width:  400,
		Height: 300,
		AxisY:  150,
		Cards: []model.PlacedCard{
			{
				ID: "f1", SourceEventIDs: []string{"e1"}, Tier: model.TierFull,
				X: 200, Y: 222, Width: 220, Height: 96, AnchorX: 200, AnchorY: 150,
				Label: "Launch & <go>", Count: 1,
			},
			{
				ID: "s1", SourceEventIDs: []string{"e2", "e3", "e4"}, Tier: model.TierSummary,
				X: 200, Y: 106, Width: 110, Height: 40, AnchorX: 200, AnchorY: 150, IsAbove: true,
				Label: "3 events", Count: 3,
			},
		},
	}

	svg := testRenderer().SVG(res, events)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "two_cards", []byte(svg))
}

func TestSVG_SteppedConnector(t *testing.T) {
	res := layout.Result{Width: 800, Height: 600, AxisY: 300, Cards: []model.PlacedCard{{
		ID: "c", Tier: model.TierCompact, X: 500, Y: 100, Width: 160, Height: 56,
		AnchorX: 300, AnchorY: 300, IsAbove: true, Label: "far", Count: 1,
	}}}
	svg := testRenderer().SVG(res, nil)
	assert.Contains(t, svg, `<path d="M300,300 L300,242.7 L500,128"`)
	assert.Contains(t, svg, `>far</text>`)
}

func TestSVG_GroupShowsDateRange(t *testing.T) {
	d := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	events := []model.Event{
		{ID: "a", Date: d, Title: "A"},
		{ID: "b", Date: d.AddDate(0, 0, 2), Title: "B"},
	}
	res := layout.Result{Width: 800, Height: 600, AxisY: 300, Cards: []model.PlacedCard{{
		ID: "g", SourceEventIDs: []string{"a", "b"}, Tier: model.TierGroup, X: 300, Y: 200,
		Width: 180, Height: 72, AnchorX: 300, AnchorY: 300, IsAbove: true, Label: "A, B", Count: 2,
	}}}
	svg := testRenderer().SVG(res, events)
	assert.Contains(t, svg, `class="card card-group"`)
	assert.Contains(t, svg, ">A, B</text>")
	assert.Contains(t, svg, ">2024-05-01 – 2024-05-03</text>")
}

func TestSVG_MarkerShapes(t *testing.T) {
	testCases := []struct {
		shape string
		want  string
	}{
		{"circle", "<circle"},
		{"square", `<rect x="295" y="295" width="10" height="10"`},
		{"diamond", `<polygon points="300,295 305,300 300,305 295,300"`},
		{"triangle", "<polygon"},
		{"unknown", "<circle"},
	}
	for _, tc := range testCases {
		t.Run(tc.shape, func(t *testing.T) {
			c := config.Default()
			c.Render.EventMarker.Shape = tc.shape
			var b strings.Builder
			drawEventMarker(&b, 300, 300, c.Render)
			assert.True(t, strings.HasPrefix(b.String(), tc.want), b.String())
		})
	}
}

func TestSVG_EmptyLayout(t *testing.T) {
	svg := testRenderer().SVG(layout.Result{Width: 100, Height: 50, AxisY: 25, Cards: []model.PlacedCard{}}, nil)
	require.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.True(t, strings.HasSuffix(svg, "</svg>\n"))
	assert.NotContains(t, svg, "<g ")
}

func TestAnchorPositions(t *testing.T) {
	cards := []model.PlacedCard{{AnchorX: 30}, {AnchorX: 10}, {AnchorX: 30}}
	assert.Equal(t, []float64{10, 30}, anchorPositions(cards))
}

func TestNum(t *testing.T) {
	assert.Equal(t, "12", num(12))
	assert.Equal(t, "12.3", num(12.34))
	assert.Equal(t, "-0.5", num(-0.5))
}
