package http

import (
	"github.com/archlens/archlens-backend/internal/analysis/domain"
	"github.com/archlens/archlens-backend/internal/analysis/remedy"
	"github.com/archlens/archlens-backend/internal/runs"
)

// AnalyzeResponse is the payload of a completed (or partial) analysis.
type AnalyzeResponse struct {
	RunID  string                   `json:"run_id,omitempty"`
	Status string                   `json:"status"`
	Report *domain.AnalysisReport   `json:"report"`
	Plans  []remedy.RemediationPlan `json:"plans"`
	// Missing names the detectors that did not finish before the deadline.
	Missing []string `json:"missing,omitempty"`
	// Warning surfaces persistence failures that did not invalidate the
	// analysis itself.
	Warning string `json:"warning,omitempty"`
}

// RunResponse wraps one run record.
type RunResponse struct {
	Run *runs.AnalysisRun `json:"run"`
}

// RunListResponse wraps a user's run records.
type RunListResponse struct {
	Runs []*runs.AnalysisRun `json:"runs"`
}
