// Package archive keeps immutable copies of analyzed fact documents so a
// report can always be traced back to the exact input that produced it.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Snapshot describes one archived fact document. The document itself sits
// next to the metadata file under Dir.
type Snapshot struct {
	RunID      string    `json:"run_id" yaml:"run_id"`
	SnapshotID string    `json:"snapshot_id" yaml:"snapshot_id"`
	Label      string    `json:"label" yaml:"label"`
	Dir        string    `json:"dir" yaml:"dir"`
	FactPath   string    `json:"fact_path" yaml:"fact_path"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
}

const metaFile = "snapshot.json"

// Save writes doc under <baseDir>/snapshots/<runID>/<snapshotID>/facts<ext>
// with a snapshot.json describing it. ext selects the document's serialized
// form (".json", ".yaml"); anything else falls back to ".json". Runs without
// a tracked id are archived under "adhoc".
func Save(baseDir, runID, label string, doc []byte, ext string) (*Snapshot, error) {
	if baseDir == "" {
		baseDir = "out"
	}
	if runID == "" {
		runID = "adhoc"
	}
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		ext = ".json"
	}

	sid := uuid.New().String()
	dir := filepath.Join(baseDir, "snapshots", runID, sid)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	factPath := filepath.Join(dir, "facts"+ext)
	if err := os.WriteFile(factPath, doc, 0o644); err != nil {
		return nil, err
	}

	s := &Snapshot{
		RunID:      runID,
		SnapshotID: sid,
		Label:      label,
		Dir:        dir,
		FactPath:   factPath,
		CreatedAt:  time.Now().UTC(),
	}

	meta, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, metaFile), meta, 0o644); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads the metadata of a previously saved snapshot.
func Load(baseDir, runID, snapshotID string) (*Snapshot, error) {
	if baseDir == "" {
		baseDir = "out"
	}
	if runID == "" || snapshotID == "" {
		return nil, fmt.Errorf("archive: run id and snapshot id are required")
	}

	b, err := os.ReadFile(filepath.Join(baseDir, "snapshots", runID, snapshotID, metaFile))
	if err != nil {
		return nil, err
	}
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns the snapshot ids recorded for a run, lexicographically
// sorted. A run with no archive directory yields an empty list, not an
// error.
func List(baseDir, runID string) ([]string, error) {
	if baseDir == "" {
		baseDir = "out"
	}
	if runID == "" {
		return nil, fmt.Errorf("archive: run id is required")
	}

	entries, err := os.ReadDir(filepath.Join(baseDir, "snapshots", runID))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	return ids, nil
}
