package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// DefaultManifestPath is where the latest run's manifest is kept.
const DefaultManifestPath = "data/manifest.json"

// Manifest records what a generation run did, for later inspection.
type Manifest struct {
	RunID      uuid.UUID `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	InputDir   string    `json:"input_dir"`
	Archive    string    `json:"archive,omitempty"`
	Profile    string    `json:"profile"`
	Seed       uint64    `json:"seed"`
	Options    Options   `json:"options"`
	Result     Result    `json:"result"`
	Errors     []string  `json:"errors"`

	path string // not serialized
}

// NewManifest starts a manifest for a run that will be saved to path.
func NewManifest(path string) *Manifest {
	return &Manifest{
		RunID:     uuid.New(),
		StartedAt: time.Now().UTC(),
		path:      ExpandHome(path),
	}
}

// LoadManifest reads a manifest from disk.
func LoadManifest(path string) (*Manifest, error) {
	p := ExpandHome(path)

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m.path = p
	return &m, nil
}

// Path returns the file the manifest is saved to.
func (m *Manifest) Path() string {
	return m.path
}

// Finish stamps the completion time and records the result.
func (m *Manifest) Finish(res Result) {
	m.FinishedAt = time.Now().UTC()
	m.Result = res
}

// AddError records a non-fatal error, such as a failed notification.
func (m *Manifest) AddError(msg string) {
	m.Errors = append(m.Errors, msg)
}

// Save persists the manifest to disk.
func (m *Manifest) Save() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	return os.WriteFile(m.path, data, 0o644)
}

// ExpandHome resolves a leading "~/" against the user's home directory.
func ExpandHome(path string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
