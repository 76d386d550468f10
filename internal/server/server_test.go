package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbitech/cardtimeline/internal/config"
	"github.com/dbitech/cardtimeline/internal/model"
	"github.com/dbitech/cardtimeline/internal/telemetry"
)

const threeEvents = `{
  "events": [
    {"id": "a", "date": "2024-03-01T00:00:00Z", "title": "Alpha"},
    {"id": "b", "date": "2024-03-01T00:00:00Z", "title": "Beta"},
    {"id": "c", "date": "2024-04-15T00:00:00Z", "title": "Gamma", "description": "Later"}
  ],
  "viewport": {"width": 1000, "height": 600}
}`

func newTestServer(t *testing.T) (*httptest.Server, *telemetry.Recorder) {
	t.Helper()
	recorder := telemetry.NewRecorder()
	srv := httptest.NewServer(NewHandler(config.Default(), recorder).Router())
	t.Cleanup(srv.Close)
	return srv, recorder
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestLayoutEndpoint(t *testing.T) {
	srv, recorder := newTestServer(t)
	var published []telemetry.Stats
	recorder.Subscribe(func(s telemetry.Stats) { published = append(published, s) })

	resp, err := http.Post(srv.URL+"/v1/layout", "application/json", strings.NewReader(threeEvents))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body struct {
		Layout struct {
			Cards  []model.PlacedCard `json:"cards"`
			Width  float64            `json:"width"`
			Height float64            `json:"height"`
			Stage  string             `json:"stage"`
		} `json:"layout"`
		Stats struct {
			EventCount int            `json:"event_count"`
			TierCounts map[string]int `json:"tier_counts"`
		} `json:"stats"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1000.0, body.Layout.Width)
	assert.Equal(t, 600.0, body.Layout.Height)
	assert.Equal(t, "none", body.Layout.Stage)
	assert.Len(t, body.Layout.Cards, 3)
	assert.Equal(t, 3, body.Stats.EventCount)
	assert.Equal(t, 3, body.Stats.TierCounts["full"])

	require.Len(t, published, 1)
	assert.Equal(t, 3, published[0].CardCount)
}

func TestRenderEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Post(srv.URL+"/v1/render", "application/json", strings.NewReader(threeEvents))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))

	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<svg")
	assert.Contains(t, buf.String(), ">Gamma</text>")
}

func TestLayoutEndpoint_BadRequests(t *testing.T) {
	testCases := []struct {
		name   string
		body   string
		errMsg string
	}{
		{"not json", "{", "invalid request body"},
		{"unknown field", `{"events": [], "colour": "red"}`, "invalid request body"},
		{"missing id", `{"events": [{"date": "2024-01-01T00:00:00Z"}]}`, "has no id"},
		{"missing date", `{"events": [{"id": "a"}]}`, "has no date"},
		{"duplicate id", `{"events": [{"id": "a", "date": "2024-01-01T00:00:00Z"}, {"id": "a", "date": "2024-01-02T00:00:00Z"}]}`, "duplicate event id"},
		{"bad window", `{"events": [], "viewport": {"window": {"start_fraction": 0.8, "end_fraction": 0.2}}}`, "window fractions"},
	}
	srv, _ := newTestServer(t)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/v1/layout", "application/json", strings.NewReader(tc.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body errorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Contains(t, body.Error, tc.errMsg)
		})
	}
}

func TestLayoutEndpoint_EmptyEvents(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Post(srv.URL+"/v1/layout", "application/json", strings.NewReader(`{"events": []}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body LayoutResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body.Layout.Cards)
}

func TestLayoutEndpoint_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/v1/layout")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestLayoutEndpoint_Limits(t *testing.T) {
	cfg := config.Default()
	cfg.Server.MaxViewport = 2000
	cfg.Server.MaxEvents = 2
	srv := httptest.NewServer(NewHandler(cfg, telemetry.NewRecorder()).Router())
	t.Cleanup(srv.Close)

	testCases := []struct {
		name   string
		path   string
		body   string
		errMsg string
	}{
		{"wide viewport", "/v1/layout", `{"events": [], "viewport": {"width": 6000, "height": 600}}`, "viewport width 6000 exceeds the maximum of 2000"},
		{"tall viewport", "/v1/render", `{"events": [], "viewport": {"width": 600, "height": 6000}}`, "viewport height 6000 exceeds the maximum of 2000"},
		{"negative viewport", "/v1/layout", `{"events": [], "viewport": {"width": -1}}`, "must not be negative"},
		{"too many events", "/v1/layout", threeEvents, "request has 3 events, the maximum is 2"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+tc.path, "application/json", strings.NewReader(tc.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body errorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Contains(t, body.Error, tc.errMsg)
		})
	}

	resp, err := http.Post(srv.URL+"/v1/layout", "application/json",
		strings.NewReader(`{"events": [{"id": "a", "date": "2024-01-01T00:00:00Z"}], "viewport": {"width": 2000, "height": 2000}}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "limits are inclusive")
}
