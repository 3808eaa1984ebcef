package rules

import (
	"github.com/archlens/archlens-backend/internal/analysis/config"
	"github.com/archlens/archlens-backend/internal/analysis/detect"
	"github.com/archlens/archlens-backend/internal/analysis/domain"
	"github.com/archlens/archlens-backend/internal/analysis/graph"
	"github.com/archlens/archlens-backend/internal/analysis/metrics"
)

type sharedDatabase struct{}

func (sharedDatabase) Name() string { return "shared_database" }

// A database owned by two or more services couples their schemas and
// deployments. Affected entities are the sorted owners followed by the
// database itself.
func (sharedDatabase) Detect(t *graph.Topology, m *metrics.Set, cfg config.Thresholds) ([]domain.FindingCandidate, error) {
	var out []domain.FindingCandidate
	for _, dbID := range t.DatabaseIDs() {
		owners := t.DatabaseOwners(dbID)
		if len(owners) < cfg.SharedDatabaseOwnerThreshold {
			continue
		}
		affected := make([]string, 0, len(owners)+1)
		affected = append(affected, owners...)
		affected = append(affected, dbID)
		out = append(out, domain.FindingCandidate{
			PatternType:      domain.PatternSharedDatabase,
			AffectedEntities: affected,
			MetricSnapshot: map[string]float64{
				"owner_count": float64(len(owners)),
			},
		})
	}
	return out, nil
}

func init() { detect.Register(sharedDatabase{}) }
