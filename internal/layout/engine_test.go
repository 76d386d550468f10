package layout

import (
	"fmt"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbitech/cardtimeline/internal/model"
)

func testEngine() *Engine {
	logger := log.New()
	logger.SetLevel(log.WarnLevel)
	return New(testConfig(), WithLogger(logger))
}

func TestLayout_Empty(t *testing.T) {
	res := testEngine().Layout(nil, model.Viewport{Width: 1200, Height: 800})
	assert.NotNil(t, res.Cards)
	assert.Empty(t, res.Cards)
	assert.Equal(t, 400.0, res.AxisY)
}

func TestLayout_SingleEventIsCentred(t *testing.T) {
	events := sameDay(1)
	res := testEngine().Layout(events, model.Viewport{Width: 1200, Height: 800})
	require.Len(t, res.Cards, 1)
	c := res.Cards[0]
	assert.Equal(t, model.TierFull, c.Tier)
	assert.InDelta(t, 600, c.AnchorX, 1e-6)
	assert.InDelta(t, 600, c.X, 1e-6)
	assert.True(t, c.IsAbove)
	assert.Equal(t, []string{"ev-000"}, c.SourceEventIDs)
	assert.Equal(t, StageNone, res.Stage)
	assert.Equal(t, 0, res.Level)
}

func TestLayout_DefaultsToConfiguredContainer(t *testing.T) {
	res := testEngine().Layout(sameDay(2), model.Viewport{})
	assert.Equal(t, 1200.0, res.Width)
	assert.Equal(t, 800.0, res.Height)
}

func TestLayout_SameDateAlternates(t *testing.T) {
	res := testEngine().Layout(sameDay(3), model.Viewport{Width: 1200, Height: 1000})
	require.Len(t, res.Cards, 3)
	var sides []bool
	for _, c := range res.Cards {
		assert.Equal(t, model.TierFull, c.Tier)
		sides = append(sides, c.IsAbove)
	}
	assert.Equal(t, []bool{true, false, true}, sides)
	requireNoOverlap(t, res.Cards)
}

func TestLayout_DenseClusterSummarises(t *testing.T) {
	events := make([]model.Event, 50)
	for i := range events {
		events[i] = model.Event{
			ID:      fmt.Sprintf("dense-%02d", i),
			Date:    day0.AddDate(0, 0, i%2),
			Time:    time.Duration(i) * 20 * time.Minute,
			HasTime: true,
			Title:   fmt.Sprintf("Dense %d", i),
		}
	}
	vp := model.Viewport{
		Width:  1200,
		Height: 700,
		Window: model.Window{
			Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		},
	}
	res := testEngine().Layout(events, vp)

	requireNoOverlap(t, res.Cards)
	requireComplete(t, events, res.Cards)
	require.Len(t, res.Anchors, 1)

	var summaries []model.PlacedCard
	total := 0
	for _, c := range res.Cards {
		if c.Tier == model.TierSummary {
			summaries = append(summaries, c)
		}
		assert.Equal(t, res.Anchors[0].ID, c.ClusterID)
		total += c.Count
	}
	require.Len(t, summaries, 1)
	assert.Equal(t, 45, summaries[0].Count)
	assert.Equal(t, "45 events", summaries[0].Label)
	assert.Equal(t, 50, total)
}

func TestLayout_Properties(t *testing.T) {
	testCases := []struct {
		name          string
		n, days       int
		width, height float64
	}{
		{"sparse", 8, 365, 1200, 800},
		{"moderate", 40, 90, 1200, 800},
		{"dense", 200, 30, 1200, 800},
		{"narrow", 60, 365, 500, 600},
		{"short", 30, 10, 1600, 240},
	}

	for i, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			events := randomEvents(int64(i+1), tc.n, tc.days)
			vp := model.Viewport{Width: tc.width, Height: tc.height}
			e := testEngine()

			res := e.Layout(events, vp)
			requireNoOverlap(t, res.Cards)
			requireComplete(t, events, res.Cards)

			f := newFrame(testConfig(), tc.width, tc.height)
			assert.True(t, f.inside(res.Cards), "cards stay inside the safe area")

			for _, c := range res.Cards {
				assert.Equal(t, c.Y < res.AxisY, c.IsAbove)
			}

			again := e.Layout(events, vp)
			assert.Equal(t, res.Cards, again.Cards, "identical input gives identical output")
		})
	}
}

func TestLayout_InputOrderIrrelevant(t *testing.T) {
	events := randomEvents(7, 25, 60)
	reversed := make([]model.Event, len(events))
	for i, e := range events {
		reversed[len(events)-1-i] = e
	}
	vp := model.Viewport{Width: 1200, Height: 800}
	a := testEngine().Layout(events, vp)
	b := testEngine().Layout(reversed, vp)
	assert.Equal(t, a.Cards, b.Cards)
}

func TestLayout_DoesNotModifyEvents(t *testing.T) {
	events := randomEvents(3, 20, 30)
	before := append([]model.Event(nil), events...)
	testEngine().Layout(events, model.Viewport{Width: 1200, Height: 800})
	assert.Equal(t, before, events)
}

func TestLayout_FractionalWindow(t *testing.T) {
	events := []model.Event{
		{ID: "a", Date: day0, Title: "a"},
		{ID: "b", Date: day0.AddDate(0, 0, 100), Title: "b"},
	}
	res := testEngine().Layout(events, model.Viewport{
		Width:  1200,
		Height: 800,
		Window: model.Window{StartFraction: 0.5, EndFraction: 1},
	})
	assert.Equal(t, day0.AddDate(0, 0, 50), res.Start)
	requireComplete(t, events, res.Cards)
	// a lies before the window and is pinned to the left end.
	for _, c := range res.Cards {
		if c.SourceEventIDs[0] == "a" {
			assert.InDelta(t, 63, c.AnchorX, 1e-6)
		}
	}
}

func TestEngine_Levels(t *testing.T) {
	e := testEngine()
	b, d := e.level(0)
	assert.Equal(t, budget{maxFull: 4, maxCompact: 6, groups: true}, b)
	assert.Equal(t, 120.0, d)

	b, _ = e.level(1)
	assert.Equal(t, 0, b.maxFull)
	assert.Equal(t, 6, b.maxCompact)

	b, _ = e.level(2)
	assert.Equal(t, 0, b.maxCompact)
	assert.True(t, b.groups)

	b, d = e.level(3)
	assert.True(t, b.summaryOnly)
	assert.Equal(t, 120.0, d)

	_, d = e.level(5)
	assert.Equal(t, 480.0, d)
}

// Degradation levels cap every anchor, including quiet ones.
func TestLayout_LevelAppliesToEveryAnchor(t *testing.T) {
	for _, seed := range []int64{11, 12, 13} {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			events := randomEvents(seed, 200, 365)
			res := testEngine().Layout(events, model.Viewport{Width: 1600, Height: 900})
			requireComplete(t, events, res.Cards)
			for _, c := range res.Cards {
				if res.Level >= 1 {
					assert.NotEqual(t, model.TierFull, c.Tier, "card %s at level %d", c.ID, res.Level)
				}
				if res.Level >= 2 {
					assert.NotEqual(t, model.TierCompact, c.Tier, "card %s at level %d", c.ID, res.Level)
				}
				if res.Level >= 3 {
					assert.Equal(t, model.TierSummary, c.Tier, "card %s at level %d", c.ID, res.Level)
				}
			}
		})
	}
}

func TestLayout_LargeContainerStaysFast(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}
	events := randomEvents(5, 300, 3)
	start := time.Now()
	res := testEngine().Layout(events, model.Viewport{Width: 3000, Height: 3000})
	elapsed := time.Since(start)

	requireComplete(t, events, res.Cards)
	requireNoOverlap(t, res.Cards)
	assert.Less(t, elapsed, 5*time.Second)
}

func BenchmarkLayout(b *testing.B) {
	for _, size := range []float64{1200, 3000} {
		events := randomEvents(5, 300, 3)
		vp := model.Viewport{Width: size, Height: size}
		b.Run(fmt.Sprintf("300 events %gx%g", size, size), func(b *testing.B) {
			e := testEngine()
			for i := 0; i < b.N; i++ {
				e.Layout(events, vp)
			}
		})
	}
}
