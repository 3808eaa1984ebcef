package detect

import (
	"github.com/archlens/archlens-backend/internal/analysis/config"
	"github.com/archlens/archlens-backend/internal/analysis/domain"
	"github.com/archlens/archlens-backend/internal/analysis/graph"
	"github.com/archlens/archlens-backend/internal/analysis/metrics"
)

// Detector implements one anti-pattern's detection algorithm. Detect must
// be pure: it reads the shared topology and metric set, never mutates them,
// and never communicates with other detectors.
type Detector interface {
	Name() string
	Detect(t *graph.Topology, m *metrics.Set, cfg config.Thresholds) ([]domain.FindingCandidate, error)
}
