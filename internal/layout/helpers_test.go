package layout

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dbitech/cardtimeline/internal/config"
	"github.com/dbitech/cardtimeline/internal/model"
)

var day0 = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

func testConfig() config.Layout {
	return config.Default().Layout
}

// sameDay returns n untimed events on one date.
func sameDay(n int) []model.Event {
	events := make([]model.Event, n)
	for i := range events {
		events[i] = model.Event{
			ID:    fmt.Sprintf("ev-%03d", i),
			Date:  day0,
			Title: fmt.Sprintf("Event %d", i),
		}
	}
	return events
}

// randomEvents spreads n timed events over the given number of days.
func randomEvents(seed int64, n, days int) []model.Event {
	rng := rand.New(rand.NewSource(seed))
	events := make([]model.Event, n)
	for i := range events {
		events[i] = model.Event{
			ID:      fmt.Sprintf("r%d-%03d", seed, i),
			Date:    day0.AddDate(0, 0, rng.Intn(days)),
			Time:    time.Duration(rng.Intn(24*60)) * time.Minute,
			HasTime: true,
			Title:   fmt.Sprintf("Random %d", i),
		}
	}
	return events
}

func requireNoOverlap(t *testing.T, cards []model.PlacedCard) {
	t.Helper()
	for i := range cards {
		for j := i + 1; j < len(cards); j++ {
			require.False(t, cards[i].Rect().Overlaps(cards[j].Rect()),
				"cards %s and %s overlap: %s / %s", cards[i].ID, cards[j].ID, cards[i].Rect(), cards[j].Rect())
		}
	}
}

// requireComplete checks that every event id is referenced exactly once.
func requireComplete(t *testing.T, events []model.Event, cards []model.PlacedCard) {
	t.Helper()
	seen := make(map[string]int, len(events))
	for _, c := range cards {
		require.Equal(t, len(c.SourceEventIDs), c.Count, "card %s count", c.ID)
		for _, id := range c.SourceEventIDs {
			seen[id]++
		}
	}
	require.Len(t, seen, len(events))
	for _, e := range events {
		require.Equal(t, 1, seen[e.ID], "event %s", e.ID)
	}
}

func countTiers(intents []intent) map[model.Tier]int {
	counts := make(map[model.Tier]int)
	for _, in := range intents {
		counts[in.tier]++
	}
	return counts
}
