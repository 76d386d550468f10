package sources

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dbitech/cardtimeline/internal/model"
)

// yamlEvent is the on-disk shape of an event:
//
//	- id: launch
//	  date: 2024-03-01
//	  time: "14:30"
//	  title: Launch
//	  description: Public release
type yamlEvent struct {
	ID          string `yaml:"id"`
	Date        string `yaml:"date"`
	Time        string `yaml:"time"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type yamlFile struct {
	Events []yamlEvent `yaml:"events"`
}

// LoadYAML reads events from a YAML file holding either a list of events
// or a mapping with an "events" list.
func LoadYAML(path string) ([]model.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening YAML file: %w", err)
	}
	defer f.Close()

	events, err := ReadYAML(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return events, nil
}

// ReadYAML is LoadYAML over an arbitrary reader.
func ReadYAML(r io.Reader) ([]model.Event, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading YAML: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("error parsing YAML: %w", err)
	}
	if node.Kind == 0 {
		return []model.Event{}, nil
	}
	var raw []yamlEvent
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
		err = node.Content[0].Decode(&raw)
	} else {
		var file yamlFile
		err = node.Decode(&file)
		raw = file.Events
	}
	if err != nil {
		return nil, fmt.Errorf("error decoding events: %w", err)
	}

	events := make([]model.Event, 0, len(raw))
	for i, y := range raw {
		ts, err := parseTimestamp(y.Date)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i+1, err)
		}
		ev := model.Event{
			ID:          y.ID,
			Date:        time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location()),
			Title:       normalize(y.Title),
			Description: normalize(y.Description),
		}
		if ts.Hour() != 0 || ts.Minute() != 0 || ts.Second() != 0 {
			ev.Time, ev.HasTime = ts.Sub(ev.Date), true
		}
		if y.Time != "" {
			d, err := parseTimeOfDay(y.Time)
			if err != nil {
				return nil, fmt.Errorf("event %d: %w", i+1, err)
			}
			ev.Time, ev.HasTime = d, true
		}
		if ev.ID == "" {
			ev.ID = derivedID(strconv.Itoa(i+1), y.Date, ev.Title)
		}
		events = append(events, ev)
	}

	if err := checkUnique(events); err != nil {
		return nil, err
	}
	sortEvents(events)
	return events, nil
}
