package sources

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCSV(t *testing.T) {
	events, err := LoadCSV("testdata/events.csv")
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, "kickoff", events[0].ID)
	assert.True(t, events[0].HasTime)
	assert.Equal(t, 9*time.Hour, events[0].Time)
	assert.Equal(t, "Project start", events[0].Description)

	assert.Equal(t, "Design review", events[1].Title)
	assert.NotEmpty(t, events[1].ID, "missing ids are derived")
	assert.False(t, events[1].HasTime)

	assert.Equal(t, "launch", events[2].ID)
	assert.Equal(t, 14*time.Hour+30*time.Minute, events[2].Time)
	assert.Equal(t, "Public release, v1", events[2].Description)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), events[2].Date)
}

func TestReadCSV_DerivedIDsAreStable(t *testing.T) {
	input := "date,title\n2024-01-01,A\n2024-01-01,A\n"
	first, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	second, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.NotEqual(t, first[0].ID, first[1].ID, "the row number keeps identical rows apart")
	assert.Equal(t, first, second)
}

func TestReadCSV_AlternativeColumns(t *testing.T) {
	input := "Timestamp,Name,Notes\n03/15/2024 08:00,Standup,daily\n"
	events, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Standup", events[0].Title)
	assert.Equal(t, "daily", events[0].Description)
	assert.Equal(t, 8*time.Hour, events[0].Time)
}

func TestReadCSV_NormalizesText(t *testing.T) {
	// "e" followed by a combining acute accent.
	input := "date,title\n2024-01-01,  Cafe\u0301  \n"
	events, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "Caf\u00e9", events[0].Title)
}

func TestReadCSV_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		errMsg string
	}{
		{"empty", "", "header"},
		{"no date column", "title\nA\n", "date column not found"},
		{"bad date", "date\nyesterday\n", "row 2"},
		{"bad time", "date,time\n2024-01-01,noon\n", "unable to parse time"},
		{"duplicate id", "id,date\na,2024-01-01\na,2024-01-02\n", "duplicate event id"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tc.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestLoad_DispatchesOnExtension(t *testing.T) {
	for _, path := range []string{"testdata/events.csv", "testdata/events.yaml", "testdata/events.ics"} {
		events, err := Load(path, Options{})
		require.NoError(t, err, path)
		assert.NotEmpty(t, events, path)
	}

	_, err := Load("events.txt", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")

	_, err = Load("testdata/missing.csv", Options{})
	assert.Error(t, err)
}
