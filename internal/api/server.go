package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/chilly/internal/dataset"
	"github.com/MikeSquared-Agency/chilly/internal/store"
)

const defaultRunLimit = 20

// RunStore reads persisted dataset runs.
type RunStore interface {
	ListRuns(ctx context.Context, limit int) ([]store.RunSummary, error)
	RunSamples(ctx context.Context, runID uuid.UUID, split string) ([]string, error)
}

type Server struct {
	router       *chi.Mux
	port         int
	manifestPath string
	runs         RunStore
}

// NewServer builds the HTTP API. runs may be nil when no database is configured.
func NewServer(port int, manifestPath string, runs RunStore) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:       router,
		port:         port,
		manifestPath: manifestPath,
		runs:         runs,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/chilly/status", s.status)
	router.Get("/api/v1/runs", s.listRuns)
	router.Get("/api/v1/runs/{id}/samples", s.runSamples)
	router.Handle("/metrics", promhttp.Handler())

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// status reports the manifest of the most recent generation run.
func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	m, err := dataset.LoadManifest(s.manifestPath)
	if errors.Is(err, os.ErrNotExist) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no dataset run recorded"})
		return
	}
	if err != nil {
		slog.Error("failed to load manifest", "path", s.manifestPath, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "manifest unreadable"})
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "run store not configured"})
		return
	}

	limit := defaultRunLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	runs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		slog.Error("failed to list runs", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list runs"})
		return
	}
	if runs == nil {
		runs = []store.RunSummary{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// runSamples returns the stored texts of one split of a run, in split order.
func (s *Server) runSamples(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "run store not configured"})
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid run id"})
		return
	}

	split := r.URL.Query().Get("split")
	switch split {
	case "":
		split = store.SplitTrain
	case store.SplitTrain, store.SplitVal:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "split must be train or val"})
		return
	}

	texts, err := s.runs.RunSamples(r.Context(), id, split)
	if err != nil {
		slog.Error("failed to load samples", "run_id", id, "split", split, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load samples"})
		return
	}

	records := make([]dataset.Record, len(texts))
	for i, t := range texts {
		records[i] = dataset.Record{Text: t}
	}
	writeJSON(w, http.StatusOK, records)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
