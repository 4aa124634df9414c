package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/chilly/internal/dataset"
	"github.com/MikeSquared-Agency/chilly/internal/store"
)

type fakeLister struct {
	runs      []store.RunSummary
	samples   map[string][]string
	err       error
	lastLimit int
	lastRun   uuid.UUID
}

func (f *fakeLister) ListRuns(_ context.Context, limit int) ([]store.RunSummary, error) {
	f.lastLimit = limit
	return f.runs, f.err
}

func (f *fakeLister) RunSamples(_ context.Context, runID uuid.UUID, split string) ([]string, error) {
	f.lastRun = runID
	return f.samples[split], f.err
}

func TestHealthEndpoint(t *testing.T) {
	srv := NewServer(8760, filepath.Join(t.TempDir(), "manifest.json"), nil)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestStatusEndpoint_NoRun(t *testing.T) {
	srv := NewServer(8760, filepath.Join(t.TempDir(), "manifest.json"), nil)

	req := httptest.NewRequest("GET", "/api/v1/chilly/status", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestStatusEndpoint_LatestManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	m := dataset.NewManifest(path)
	m.Profile = "chat"
	m.Finish(dataset.Result{Survivors: 12, Train: 10, Val: 2})
	if err := m.Save(); err != nil {
		t.Fatalf("save manifest: %v", err)
	}

	srv := NewServer(8760, path, nil)
	req := httptest.NewRequest("GET", "/api/v1/chilly/status", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var got dataset.Manifest
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.RunID != m.RunID {
		t.Errorf("run id = %s, want %s", got.RunID, m.RunID)
	}
	if got.Profile != "chat" || got.Result.Survivors != 12 {
		t.Errorf("unexpected manifest: %+v", got)
	}
}

func TestRunsEndpoint(t *testing.T) {
	id := uuid.New()
	lister := &fakeLister{runs: []store.RunSummary{{ID: id, Profile: "plain", Train: 5}}}
	srv := NewServer(8760, "", lister)

	req := httptest.NewRequest("GET", "/api/v1/runs?limit=3", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if lister.lastLimit != 3 {
		t.Errorf("limit = %d, want 3", lister.lastLimit)
	}

	var runs []store.RunSummary
	if err := json.NewDecoder(w.Body).Decode(&runs); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != id {
		t.Errorf("runs = %+v", runs)
	}
}

func TestRunsEndpoint_EmptyIsArray(t *testing.T) {
	srv := NewServer(8760, "", &fakeLister{})

	req := httptest.NewRequest("GET", "/api/v1/runs", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("expected empty array, got %q", w.Body.String())
	}
}

func TestRunsEndpoint_Errors(t *testing.T) {
	tests := []struct {
		name   string
		lister RunStore
		query  string
		want   int
	}{
		{"no store", nil, "", http.StatusServiceUnavailable},
		{"bad limit", &fakeLister{}, "?limit=abc", http.StatusBadRequest},
		{"zero limit", &fakeLister{}, "?limit=0", http.StatusBadRequest},
		{"store failure", &fakeLister{err: errors.New("boom")}, "", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(8760, "", tt.lister)
			req := httptest.NewRequest("GET", "/api/v1/runs"+tt.query, nil)
			w := httptest.NewRecorder()
			srv.router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestRunSamplesEndpoint(t *testing.T) {
	id := uuid.New()
	lister := &fakeLister{samples: map[string][]string{
		store.SplitTrain: {"User: a.\nChilly: b."},
		store.SplitVal:   {"User: c.\nChilly: d.", "User: e.\nChilly: f."},
	}}
	srv := NewServer(8760, "", lister)

	req := httptest.NewRequest("GET", "/api/v1/runs/"+id.String()+"/samples?split=val", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if lister.lastRun != id {
		t.Errorf("run id = %s, want %s", lister.lastRun, id)
	}

	var records []dataset.Record
	if err := json.NewDecoder(w.Body).Decode(&records); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(records) != 2 || records[0].Text != "User: c.\nChilly: d." {
		t.Errorf("records = %+v", records)
	}
}

func TestRunSamplesEndpoint_DefaultsToTrain(t *testing.T) {
	lister := &fakeLister{samples: map[string][]string{store.SplitTrain: {"x."}}}
	srv := NewServer(8760, "", lister)

	req := httptest.NewRequest("GET", "/api/v1/runs/"+uuid.NewString()+"/samples", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	var records []dataset.Record
	if err := json.NewDecoder(w.Body).Decode(&records); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(records) != 1 || records[0].Text != "x." {
		t.Errorf("records = %+v", records)
	}
}

func TestRunSamplesEndpoint_Errors(t *testing.T) {
	tests := []struct {
		name   string
		lister RunStore
		path   string
		want   int
	}{
		{"no store", nil, "/api/v1/runs/" + uuid.NewString() + "/samples", http.StatusServiceUnavailable},
		{"bad id", &fakeLister{}, "/api/v1/runs/not-a-uuid/samples", http.StatusBadRequest},
		{"bad split", &fakeLister{}, "/api/v1/runs/" + uuid.NewString() + "/samples?split=test", http.StatusBadRequest},
		{"store failure", &fakeLister{err: errors.New("boom")}, "/api/v1/runs/" + uuid.NewString() + "/samples", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(8760, "", tt.lister)
			req := httptest.NewRequest("GET", tt.path, nil)
			w := httptest.NewRecorder()
			srv.router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := NewServer(8760, "", nil)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv := NewServer(8760, "", nil)

	req := httptest.NewRequest("GET", "/nonexistent", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
