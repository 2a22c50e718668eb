// Package server exposes the engine to the dashboard as a JSON API.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cedarstats/regstats/internal/regstats"
)

// Server is the HTTP server for serving anomaly bundles.
type Server struct {
	engine *regstats.Engine
	router chi.Router
}

// New creates a new Server around an engine.
func New(engine *regstats.Engine) *Server {
	s := &Server{engine: engine}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/v1/health", s.handleHealth)
	r.Get("/api/v1/regstats", s.handleRegStats)
	r.Get("/api/v1/summary", s.handleSummary)

	s.router = r
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve starts the server on the given port and blocks.
func Serve(engine *regstats.Engine, port int) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      New(engine).Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegStats(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	bundle, err := s.engine.Run(r.Context(), opts)
	if err != nil {
		log.Printf("regstats run failed: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	bundle, err := s.engine.Run(r.Context(), opts)
	if err != nil {
		log.Printf("regstats run failed: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, bundle.TieredSummary)
}

// optionsFromQuery builds an OptionSet from query params. Threshold params
// construct an override, which bypasses the cache.
func optionsFromQuery(r *http.Request) (regstats.OptionSet, error) {
	q := r.URL.Query()
	opts := regstats.OptionSet{
		Term:    q.Get("term"),
		College: q.Get("college"),
		Campus:  q.Get("campus"),
		Level:   q.Get("level"),
	}

	var override regstats.ThresholdOverride
	custom := false

	if v := q.Get("min_impacted"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("invalid min_impacted: %q", v)
		}
		override.MinImpacted = &n
		custom = true
	}
	if v := q.Get("pct_sd"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, fmt.Errorf("invalid pct_sd: %q", v)
		}
		override.PctSD = &f
		custom = true
	}
	if v := q.Get("min_wait"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("invalid min_wait: %q", v)
		}
		override.MinWait = &n
		custom = true
	}
	if v := q.Get("min_squeeze"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, fmt.Errorf("invalid min_squeeze: %q", v)
		}
		override.MinSqueeze = &f
		custom = true
	}

	if custom {
		opts.Thresholds = &override
	}
	return opts, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encoding response: %v", err)
	}
}
