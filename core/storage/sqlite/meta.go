package sqlite

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// CurrentSchemaVersion is the highest version in Migrations.
const CurrentSchemaVersion = 3

// PhaseTiming is one driver phase's recorded duration, written to meta.json.
type PhaseTiming struct {
	Phase      string `json:"phase"`
	Skipped    bool   `json:"skipped"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// Meta is the per-run summary persisted to .axon/meta.json, per spec.md §6's
// "schema version, commit hash indexed, phase timings, counts per node/edge
// kind" requirement.
type Meta struct {
	SchemaVersion int            `json:"schema_version"`
	CommitHash    string         `json:"commit_hash,omitempty"`
	RunAt         time.Time      `json:"run_at"`
	Phases        []PhaseTiming  `json:"phases"`
	NodeCounts    map[string]int `json:"node_counts"`
	EdgeCounts    map[string]int `json:"edge_counts"`
}

// WriteMeta writes m as meta.json under dir, creating dir if needed.
func WriteMeta(dir string, m *Meta) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "meta.json"), data, 0o644)
}

// ReadMeta reads meta.json from dir.
func ReadMeta(dir string) (*Meta, error) {
	data, err := os.ReadFile(filepath.Join(dir, "meta.json"))
	if err != nil {
		return nil, err
	}
	m := &Meta{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, err
	}
	return m, nil
}
