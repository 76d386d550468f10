// Package sources reads timeline events from files. It supplies the
// layout engine's input and is not used by the engine itself.
package sources

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/dbitech/cardtimeline/internal/model"
)

var rowSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/dbitech/cardtimeline/row"))

// Options narrows what Load returns. From and To bound recurrence
// expansion for calendar files; other formats ignore them.
type Options struct {
	From time.Time
	To   time.Time
}

// Load reads events from path, choosing the parser by file extension:
// .csv, .yaml/.yml or .ics.
func Load(path string, opts Options) ([]model.Event, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path)
	case ".yaml", ".yml":
		return LoadYAML(path)
	case ".ics", ".ical":
		return LoadICS(path, opts)
	default:
		return nil, fmt.Errorf("unsupported event file %q: expected .csv, .yaml or .ics", path)
	}
}

// derivedID returns a stable id for an event that came without one.
func derivedID(parts ...string) string {
	return uuid.NewSHA1(rowSpace, []byte(strings.Join(parts, "\x00"))).String()
}

func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// sortEvents orders events by timestamp, then id.
func sortEvents(events []model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		ti, tj := events[i].Timestamp(), events[j].Timestamp()
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return events[i].ID < events[j].ID
	})
}

// checkUnique rejects duplicate ids: every card refers to events by id.
func checkUnique(events []model.Event) error {
	seen := make(map[string]struct{}, len(events))
	for _, e := range events {
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("duplicate event id %q", e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}
