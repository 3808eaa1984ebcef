package rules

import (
	"github.com/archlens/archlens-backend/internal/analysis/config"
	"github.com/archlens/archlens-backend/internal/analysis/detect"
	"github.com/archlens/archlens-backend/internal/analysis/domain"
	"github.com/archlens/archlens-backend/internal/analysis/graph"
	"github.com/archlens/archlens-backend/internal/analysis/metrics"
)

type missingAbstraction struct{}

func (missingAbstraction) Name() string { return "missing_abstraction" }

// This rule relays an extractor-provided classification into the standard
// candidate shape: a capability tag from the configured infra-marker set
// (direct-sql, direct-http-client, ...) means the service reaches past an
// abstraction layer it should own.
func (missingAbstraction) Detect(t *graph.Topology, m *metrics.Set, cfg config.Thresholds) ([]domain.FindingCandidate, error) {
	markers := make(map[string]bool, len(cfg.InfraMarkerTags))
	for _, tag := range cfg.InfraMarkerTags {
		markers[tag] = true
	}

	var out []domain.FindingCandidate
	for _, id := range t.ServiceIDs() {
		svc, _ := t.Service(id)
		matched := 0
		for _, tag := range svc.Capabilities {
			if markers[tag] {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		out = append(out, domain.FindingCandidate{
			PatternType:      domain.PatternMissingAbstraction,
			AffectedEntities: []string{id},
			MetricSnapshot: map[string]float64{
				"infra_marker_tags": float64(matched),
			},
		})
	}
	return out, nil
}

func init() { detect.Register(missingAbstraction{}) }
