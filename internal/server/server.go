// Package server exposes the layout engine over HTTP.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/dbitech/cardtimeline/internal/config"
	"github.com/dbitech/cardtimeline/internal/layout"
	"github.com/dbitech/cardtimeline/internal/model"
	"github.com/dbitech/cardtimeline/internal/render"
	"github.com/dbitech/cardtimeline/internal/telemetry"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 8 << 20

// LayoutRequest is the body of the layout and render endpoints.
type LayoutRequest struct {
	Events   []model.Event  `json:"events"`
	Viewport model.Viewport `json:"viewport"`
}

// LayoutResponse is returned by POST /v1/layout.
type LayoutResponse struct {
	Layout layout.Result   `json:"layout"`
	Stats  telemetry.Stats `json:"stats"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves layout requests. Layout passes share no state; the
// telemetry recorder is the only shared object.
type Handler struct {
	engine   *layout.Engine
	renderer *render.Renderer
	recorder *telemetry.Recorder
	limits   config.Server
}

func NewHandler(cfg config.Config, recorder *telemetry.Recorder) *Handler {
	return &Handler{
		engine:   layout.New(cfg.Layout),
		renderer: render.New(cfg.Render, cfg.Layout),
		recorder: recorder,
		limits:   cfg.Server,
	}
}

// Router returns the HTTP routes.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	api := r.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/layout", h.layout).Methods(http.MethodPost)
	api.HandleFunc("/render", h.render).Methods(http.MethodPost)
	r.Use(logRequests)
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) layout(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	res := h.engine.Layout(req.Events, req.Viewport)
	stats := h.recorder.Record(res)
	writeJSON(w, http.StatusOK, LayoutResponse{Layout: res, Stats: stats})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	res := h.engine.Layout(req.Events, req.Viewport)
	h.recorder.Record(res)
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(h.renderer.SVG(res, req.Events))); err != nil {
		log.WithError(err).Warn("error writing SVG response")
	}
}

func (h *Handler) decodeRequest(r *http.Request) (LayoutRequest, error) {
	var req LayoutRequest
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("invalid request body: %w", err)
	}
	if err := h.checkLimits(req); err != nil {
		return req, err
	}
	if err := req.Viewport.Window.Validate(); err != nil {
		return req, err
	}
	seen := make(map[string]bool, len(req.Events))
	for i, e := range req.Events {
		if e.ID == "" {
			return req, fmt.Errorf("event %d has no id", i)
		}
		if e.Date.IsZero() {
			return req, fmt.Errorf("event %q has no date", e.ID)
		}
		if seen[e.ID] {
			return req, fmt.Errorf("duplicate event id %q", e.ID)
		}
		seen[e.ID] = true
	}
	return req, nil
}

// checkLimits rejects requests whose viewport or event count exceeds the
// configured server limits. A zero viewport size selects the configured
// container.
func (h *Handler) checkLimits(req LayoutRequest) error {
	vp := req.Viewport
	for _, d := range []struct {
		name  string
		value float64
	}{{"width", vp.Width}, {"height", vp.Height}} {
		if d.value < 0 {
			return fmt.Errorf("viewport %s must not be negative, got %g", d.name, d.value)
		}
		if d.value > h.limits.MaxViewport {
			return fmt.Errorf("viewport %s %g exceeds the maximum of %g", d.name, d.value, h.limits.MaxViewport)
		}
	}
	if n := len(req.Events); n > h.limits.MaxEvents {
		return fmt.Errorf("request has %d events, the maximum is %d", n, h.limits.MaxEvents)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("error writing JSON response")
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.WithFields(log.Fields{"method": r.Method, "path": r.URL.Path}).Debug("request")
		next.ServeHTTP(w, r)
	})
}
