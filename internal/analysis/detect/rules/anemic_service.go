package rules

import (
	"github.com/archlens/archlens-backend/internal/analysis/config"
	"github.com/archlens/archlens-backend/internal/analysis/detect"
	"github.com/archlens/archlens-backend/internal/analysis/domain"
	"github.com/archlens/archlens-backend/internal/analysis/graph"
	"github.com/archlens/archlens-backend/internal/analysis/metrics"
)

type anemicService struct{}

func (anemicService) Name() string { return "anemic_service" }

// An anemic service is a data shell: the extractor classified every one of
// its endpoints as plain CRUD and it calls no other service. A heuristic
// signal, not syntactic proof.
func (anemicService) Detect(t *graph.Topology, m *metrics.Set, cfg config.Thresholds) ([]domain.FindingCandidate, error) {
	var out []domain.FindingCandidate
	for _, id := range t.ServiceIDs() {
		svc, _ := t.Service(id)
		sm := m.Services[id]
		if !svc.AllEndpointsCRUD || sm.FanOut != 0 {
			continue
		}
		out = append(out, domain.FindingCandidate{
			PatternType:      domain.PatternAnemicService,
			AffectedEntities: []string{id},
			MetricSnapshot: map[string]float64{
				"fan_out":        float64(sm.FanOut),
				"endpoint_count": float64(sm.EndpointCount),
			},
		})
	}
	return out, nil
}

func init() { detect.Register(anemicService{}) }
