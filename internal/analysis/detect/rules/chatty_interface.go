package rules

import (
	"github.com/archlens/archlens-backend/internal/analysis/config"
	"github.com/archlens/archlens-backend/internal/analysis/detect"
	"github.com/archlens/archlens-backend/internal/analysis/domain"
	"github.com/archlens/archlens-backend/internal/analysis/graph"
	"github.com/archlens/archlens-backend/internal/analysis/metrics"
)

type chattyInterface struct{}

func (chattyInterface) Name() string { return "chatty_interface" }

// Chattiness means excessive serialization inside one request, not fan-out:
// the sequential call depth already discounts steps issued in the same
// parallel group. A trace is flagged when the depth or the accumulated
// burst latency exceeds its threshold. No traces supplied means no
// candidates, silently.
func (chattyInterface) Detect(t *graph.Topology, m *metrics.Set, cfg config.Thresholds) ([]domain.FindingCandidate, error) {
	var out []domain.FindingCandidate
	for _, tm := range m.Traces {
		if tm.SequentialCallDepth <= cfg.ChattySequentialDepthThreshold &&
			tm.TotalLatencyMs <= cfg.ChattyTotalLatencyMsThreshold {
			continue
		}
		if len(tm.SequentialServices) == 0 {
			continue
		}
		out = append(out, domain.FindingCandidate{
			PatternType:      domain.PatternChattyInterface,
			AffectedEntities: tm.SequentialServices,
			MetricSnapshot: map[string]float64{
				"sequential_call_depth": float64(tm.SequentialCallDepth),
				"total_latency_ms":      tm.TotalLatencyMs,
			},
		})
	}
	return out, nil
}

func init() { detect.Register(chattyInterface{}) }
