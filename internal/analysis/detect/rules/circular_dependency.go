package rules

import (
	"github.com/archlens/archlens-backend/internal/analysis/config"
	"github.com/archlens/archlens-backend/internal/analysis/detect"
	"github.com/archlens/archlens-backend/internal/analysis/domain"
	"github.com/archlens/archlens-backend/internal/analysis/graph"
	"github.com/archlens/archlens-backend/internal/analysis/metrics"
)

type circularDependency struct{}

func (circularDependency) Name() string { return "circular_dependency" }

// Detect runs Tarjan's SCC algorithm over the graph restricted to sync
// edges. Only synchronous cycles block independent deployability; async
// event loops are deliberately not flagged. One candidate per SCC of size
// two or more, entities in traversal order.
func (circularDependency) Detect(t *graph.Topology, m *metrics.Set, cfg config.Thresholds) ([]domain.FindingCandidate, error) {
	index := 0
	stack := []string{}
	onStack := map[string]bool{}
	id := map[string]int{}
	low := map[string]int{}
	var out []domain.FindingCandidate

	var dfs func(v string)
	dfs = func(v string) {
		index++
		id[v], low[v] = index, index
		stack = append(stack, v)
		onStack[v] = true

		for _, ei := range t.OutEdges(v) {
			if !m.EdgeSync[ei] {
				continue
			}
			w := t.Edge(ei).Callee
			if _, seen := id[w]; !seen {
				dfs(w)
				if low[w] < low[v] {
					low[v] = low[w]
				}
			} else if onStack[w] && id[w] < low[v] {
				low[v] = id[w]
			}
		}

		if low[v] == id[v] {
			comp := []string{}
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			if len(comp) > 1 {
				out = append(out, domain.FindingCandidate{
					PatternType:      domain.PatternCircularDependency,
					AffectedEntities: comp,
					MetricSnapshot: map[string]float64{
						"scc_size": float64(len(comp)),
					},
				})
			}
		}
	}

	for _, v := range t.ServiceIDs() {
		if _, seen := id[v]; !seen {
			dfs(v)
		}
	}
	return out, nil
}

func init() { detect.Register(circularDependency{}) }
