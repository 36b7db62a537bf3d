// Package api serves the tracker page to a browser map front end. Every
// request is applied to the controller one at a time, so the controller
// sees a single event thread.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/briangreenhill/mapty/internal/app"
	"github.com/briangreenhill/mapty/internal/view"
	"github.com/briangreenhill/mapty/internal/workout"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	mu     sync.Mutex
	app    *app.App
	page   *view.Page
	logger *slog.Logger
	router chi.Router
}

// New wires the routes. ui is the directory of the static front end; an
// empty ui serves no static files.
func New(a *app.App, page *view.Page, ui string, logger *slog.Logger) *Server {
	s := &Server{
		app:    a,
		page:   page,
		logger: logger,
		router: chi.NewRouter(),
	}
	s.routes(ui)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes(ui string) {
	s.router.Use(RequestLogging(s.logger))

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Post("/position", s.handlePosition)
		r.Post("/map/click", s.handleMapClick)
		r.Post("/form/submit", s.handleSubmit)
		r.Post("/form/type", s.handleType)
		r.Post("/list/click", s.handleListClick)
		r.Post("/reset", s.handleReset)
		r.Get("/export.gpx", s.handleExportGPX)
	})
	s.router.Handle("/metrics", promhttp.Handler())

	if ui != "" {
		s.router.Handle("/*", http.FileServer(http.Dir(ui)))
	}
}

type coordsRequest struct {
	Lat   *float64 `json:"lat"`
	Lng   *float64 `json:"lng"`
	Error string   `json:"error"`
}

func (c coordsRequest) coords() (workout.Coords, bool) {
	if c.Lat == nil || c.Lng == nil {
		return workout.Coords{}, false
	}
	return workout.Coords{Lat: *c.Lat, Lng: *c.Lng}, true
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.page.Snapshot()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	var req coordsRequest
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if at, ok := req.coords(); ok {
		err = s.page.ReportPosition(at)
	} else {
		err = s.page.ReportPositionError(req.Error)
	}
	s.respond(w, err)
}

func (s *Server) handleMapClick(w http.ResponseWriter, r *http.Request) {
	var req coordsRequest
	if !decode(w, r, &req) {
		return
	}
	at, ok := req.coords()
	if !ok {
		writeError(w, http.StatusBadRequest, "lat and lng are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.respond(w, s.page.ClickMap(at))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var in app.FormInput
	if !decode(w, r, &in) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.respond(w, s.page.Submit(r.Context(), in))
}

func (s *Server) handleType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string `json:"type"`
	}
	if !decode(w, r, &req) {
		return
	}
	t, err := workout.ParseType(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.respond(w, s.page.SelectType(t))
}

func (s *Server) handleListClick(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.page.ClickList(req.ID)
	s.respond(w, nil)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.respond(w, s.app.Reset(r.Context()))
}

func (s *Server) handleExportGPX(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	workouts := s.app.Workouts()
	s.mu.Unlock()

	data, err := workout.ExportGPX(workouts)
	if err != nil {
		s.logger.Error("Error exporting workouts", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", "application/gpx+xml")
	w.Header().Set("Content-Disposition", `attachment; filename="workouts.gpx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("Error writing gpx", slog.Any("error", err))
	}
}

// respond writes the page snapshot, or maps err to a status. Must be called
// with s.mu held.
func (s *Server) respond(w http.ResponseWriter, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, s.page.Snapshot())
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, app.ErrMissingFields), errors.Is(err, app.ErrNotPositive), errors.Is(err, app.ErrUnknownType):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, app.ErrNoPendingLocation), errors.Is(err, view.ErrMapNotReady),
		errors.Is(err, view.ErrNotStarted), errors.Is(err, view.ErrNoLocateRequest):
		status = http.StatusConflict
	default:
		s.logger.Error("Error handling request", slog.Any("error", err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()}.withState(s.page.Snapshot()))
}

type errorResponse struct {
	Error string         `json:"error"`
	State *view.Snapshot `json:"state,omitempty"`
}

func (e errorResponse) withState(snap view.Snapshot) errorResponse {
	e.State = &snap
	return e
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
