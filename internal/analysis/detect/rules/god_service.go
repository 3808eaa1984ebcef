package rules

import (
	"github.com/archlens/archlens-backend/internal/analysis/config"
	"github.com/archlens/archlens-backend/internal/analysis/detect"
	"github.com/archlens/archlens-backend/internal/analysis/domain"
	"github.com/archlens/archlens-backend/internal/analysis/graph"
	"github.com/archlens/archlens-backend/internal/analysis/metrics"
)

type godService struct{}

func (godService) Name() string { return "god_service" }

// A god service owns too many endpoints across too many capabilities in
// too much code. The endpoint and lines-of-code bounds are exclusive, the
// capability bound inclusive.
func (godService) Detect(t *graph.Topology, m *metrics.Set, cfg config.Thresholds) ([]domain.FindingCandidate, error) {
	var out []domain.FindingCandidate
	for _, id := range t.ServiceIDs() {
		sm := m.Services[id]
		svc, _ := t.Service(id)
		if sm.EndpointCount > cfg.GodServiceEndpointThreshold &&
			sm.DistinctCapabilityCount >= cfg.GodServiceCapabilityThreshold &&
			svc.LinesOfCode > cfg.GodServiceLOCThreshold {
			out = append(out, domain.FindingCandidate{
				PatternType:      domain.PatternGodService,
				AffectedEntities: []string{id},
				MetricSnapshot: map[string]float64{
					"endpoint_count":            float64(sm.EndpointCount),
					"distinct_capability_count": float64(sm.DistinctCapabilityCount),
					"lines_of_code":             float64(svc.LinesOfCode),
				},
			})
		}
	}
	return out, nil
}

func init() { detect.Register(godService{}) }
