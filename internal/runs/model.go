package runs

import (
	"errors"
	"time"
)

var ErrRunNotFound = errors.New("analysis run not found")

// Run status constants
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	// StatusPartial marks a run whose detector phase hit its deadline: the
	// stored report is usable but names unfinished detectors.
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// Run source constants
const (
	SourceUpload  = "upload"
	SourceWatcher = "watcher"
)

// AnalysisRun tracks one submitted fact model through the engine. The run
// record is the lightweight index entry; the full report lives in Postgres
// keyed by RunID.
type AnalysisRun struct {
	RunID         string     `json:"run_id"`
	UserID        string     `json:"user_id"`
	Source        string     `json:"source"`
	Status        string     `json:"status"`
	FindingCount  int        `json:"finding_count"`
	CriticalCount int        `json:"critical_count"`
	Error         string     `json:"error,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}
