package sources

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dbitech/cardtimeline/internal/model"
)

// timestampFormats are tried in order for the date column.
var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
}

var timeFormats = []string{"15:04:05", "15:04"}

// LoadCSV reads events from a CSV file with a header row. Column names are
// matched case-insensitively: "date" (or "timestamp") is required, "id",
// "time", "title" (or "name") and "description" (or "notes") are optional.
// A date value carrying a time of day sets the event time unless a "time"
// column overrides it. Rows without an id get one derived from their
// content and row number.
func LoadCSV(path string) ([]model.Event, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer file.Close()

	events, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return events, nil
}

// ReadCSV is LoadCSV over an arbitrary reader.
func ReadCSV(r io.Reader) ([]model.Event, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}
	columns := make(map[string]int)
	for i, col := range header {
		columns[strings.ToLower(strings.TrimSpace(col))] = i
	}
	dateCol, ok := column(columns, "date", "timestamp")
	if !ok {
		return nil, fmt.Errorf("date column not found in CSV. Available columns: %v", header)
	}
	idCol, _ := column(columns, "id")
	timeCol, _ := column(columns, "time")
	titleCol, _ := column(columns, "title", "name")
	descCol, _ := column(columns, "description", "notes")

	var events []model.Event
	for row := 2; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}

		ev := model.Event{
			ID:          field(record, idCol),
			Title:       normalize(field(record, titleCol)),
			Description: normalize(field(record, descCol)),
		}
		raw := field(record, dateCol)
		ts, err := parseTimestamp(raw)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		ev.Date = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
		if ts.Hour() != 0 || ts.Minute() != 0 || ts.Second() != 0 {
			ev.Time, ev.HasTime = ts.Sub(ev.Date), true
		}
		if tv := field(record, timeCol); tv != "" {
			d, err := parseTimeOfDay(tv)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", row, err)
			}
			ev.Time, ev.HasTime = d, true
		}
		if ev.ID == "" {
			ev.ID = derivedID(strconv.Itoa(row), raw, ev.Title)
		}
		events = append(events, ev)
	}

	if err := checkUnique(events); err != nil {
		return nil, err
	}
	sortEvents(events)
	return events, nil
}

func column(columns map[string]int, names ...string) (int, bool) {
	for _, n := range names {
		if i, ok := columns[n]; ok {
			return i, true
		}
	}
	return -1, false
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseTimestamp(s string) (time.Time, error) {
	var err error
	for _, format := range timestampFormats {
		var t time.Time
		if t, err = time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp '%s': %w", s, err)
}

func parseTimeOfDay(s string) (time.Duration, error) {
	var err error
	for _, format := range timeFormats {
		var t time.Time
		if t, err = time.Parse(format, s); err == nil {
			return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("unable to parse time '%s': %w", s, err)
}
