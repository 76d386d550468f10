package sources

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	log "github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"

	"github.com/dbitech/cardtimeline/internal/model"
)

const (
	// maxOccurrences caps the expansion of a single recurring event.
	maxOccurrences = 500
	// defaultHorizon bounds expansion when the caller gives no window.
	defaultHorizon = 2 * 365 * 24 * time.Hour
)

// LoadICS reads VEVENTs from an iCalendar file. Recurring events are
// expanded into one event per occurrence inside [opts.From, opts.To]; when
// no window is given, occurrences within two years of DTSTART are used.
func LoadICS(path string, opts Options) ([]model.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening ICS file: %w", err)
	}
	defer f.Close()

	events, err := ReadICS(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return events, nil
}

// ReadICS is LoadICS over an arbitrary reader.
func ReadICS(r io.Reader, opts Options) ([]model.Event, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("error parsing ICS: %w", err)
	}

	events := make([]model.Event, 0)
	for _, ve := range cal.Events() {
		occ, err := expandVEvent(ve, opts)
		if err != nil {
			// One broken VEVENT should not hide the rest of the calendar.
			log.WithError(err).Warn("skipping calendar event")
			continue
		}
		events = append(events, occ...)
	}

	if err := checkUnique(events); err != nil {
		return nil, err
	}
	sortEvents(events)
	return events, nil
}

func expandVEvent(ve *ical.VEvent, opts Options) ([]model.Event, error) {
	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return nil, errors.New("missing UID")
	}
	start, err := ve.GetStartAt()
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", uidProp.Value, err)
	}

	base := model.Event{ID: uidProp.Value}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		base.Title = normalize(unescapeText(p.Value))
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		base.Description = normalize(unescapeText(p.Value))
	}
	allDay := isAllDay(ve.GetProperty(ical.ComponentPropertyDtStart))

	rr := ve.GetProperty(ical.ComponentPropertyRrule)
	if rr == nil || rr.Value == "" {
		return []model.Event{occurrence(base, start, allDay, false)}, nil
	}

	rule, err := rrule.StrToRRule(rr.Value)
	if err != nil {
		return nil, fmt.Errorf("event %s: bad RRULE %q: %w", base.ID, rr.Value, err)
	}
	rule.DTStart(start)
	var set rrule.Set
	set.RRule(rule)
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			if t, err := parseICSTime(part, start.Location()); err == nil {
				set.ExDate(t)
			}
		}
	}

	from, to := opts.From, opts.To
	if from.IsZero() {
		from = start
	}
	if to.IsZero() {
		to = from.Add(defaultHorizon)
	}
	times := set.Between(from.In(start.Location()), to.In(start.Location()), true)
	if len(times) > maxOccurrences {
		log.WithFields(log.Fields{"uid": base.ID, "cap": maxOccurrences}).Warn("truncated recurring event")
		times = times[:maxOccurrences]
	}
	out := make([]model.Event, 0, len(times))
	for _, t := range times {
		out = append(out, occurrence(base, t, allDay, true))
	}
	return out, nil
}

// occurrence builds the event for one instance. Instances of a recurring
// event get the instance start appended to the UID.
func occurrence(base model.Event, start time.Time, allDay, recurring bool) model.Event {
	ev := base
	ev.Date = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	if !allDay {
		ev.Time, ev.HasTime = start.Sub(ev.Date), true
	}
	if recurring {
		ev.ID = base.ID + "@" + start.UTC().Format("20060102T150405Z")
	}
	return ev
}

// isAllDay detects DATE-valued DTSTART properties.
func isAllDay(p *ical.IANAProperty) bool {
	if p == nil {
		return false
	}
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return time.Time{}, errors.New("empty time value")
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}

var textUnescaper = strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)

func unescapeText(s string) string {
	return textUnescaper.Replace(s)
}
