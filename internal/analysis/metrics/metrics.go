package metrics

import (
	"github.com/archlens/archlens-backend/internal/analysis/domain"
	"github.com/archlens/archlens-backend/internal/analysis/graph"
)

// ServiceMetrics holds the per-service derived statistics.
type ServiceMetrics struct {
	FanOut                  int
	FanIn                   int
	DistinctCapabilityCount int
	EndpointCount           int
}

// TraceMetrics holds the per-trace derived statistics.
//
// SequentialCallDepth counts the steps whose parallel group differs from
// the immediately preceding step's group, i.e. true serialization points.
// A trace that fans out fifteen calls in one group has depth zero.
//
// TotalLatencyMs treats each run of consecutive same-group steps as one
// parallel burst contributing its max duration; bursts add up.
//
// SequentialServices is the ordered, de-duplicated list of services touched
// by the trace's sequential steps (the first step plus every group change).
type TraceMetrics struct {
	RequestID           string
	SequentialCallDepth int
	TotalLatencyMs      float64
	SequentialServices  []string
}

// Set is the read-only metric set of one analysis run. It is computed
// exactly once per topology; detectors must not mutate it.
type Set struct {
	Services map[string]ServiceMetrics
	// EdgeSync[i] reports whether topology edge i is synchronous.
	EdgeSync []bool
	// SyncEdgeRatio is the sync share of all inter-service edges,
	// zero when the graph has no edges.
	SyncEdgeRatio float64
	// SyncDensity is the share of possible directed service pairs that are
	// connected by at least one sync edge: how much of the whole graph is
	// synchronously coupled, as opposed to how sync-heavy the existing
	// edges happen to be. Zero for fewer than two services.
	SyncDensity float64
	// Traces is parallel to Topology.Traces().
	Traces []TraceMetrics
}

// Compute derives the metric set. Pure: same topology, same result.
func Compute(t *graph.Topology) *Set {
	set := &Set{
		Services: make(map[string]ServiceMetrics, len(t.ServiceIDs())),
		EdgeSync: make([]bool, len(t.Edges())),
	}

	for _, id := range t.ServiceIDs() {
		svc, _ := t.Service(id)
		set.Services[id] = ServiceMetrics{
			FanOut:                  len(t.OutEdges(id)),
			FanIn:                   len(t.InEdges(id)),
			DistinctCapabilityCount: distinct(svc.Capabilities),
			EndpointCount:           svc.EndpointCount,
		}
	}

	syncCount := 0
	syncPairs := map[[2]string]bool{}
	for i, e := range t.Edges() {
		if e.Protocol == domain.ProtocolSync {
			set.EdgeSync[i] = true
			syncCount++
			if e.Caller != e.Callee {
				syncPairs[[2]string{e.Caller, e.Callee}] = true
			}
		}
	}
	if n := len(t.Edges()); n > 0 {
		set.SyncEdgeRatio = float64(syncCount) / float64(n)
	}
	if n := len(t.ServiceIDs()); n > 1 {
		set.SyncDensity = float64(len(syncPairs)) / float64(n*(n-1))
	}

	for _, tr := range t.Traces() {
		set.Traces = append(set.Traces, computeTrace(tr))
	}

	return set
}

func computeTrace(tr domain.Trace) TraceMetrics {
	tm := TraceMetrics{RequestID: tr.RequestID}
	if len(tr.Steps) == 0 {
		return tm
	}

	seen := map[string]bool{}
	touch := func(id string) {
		if !seen[id] {
			seen[id] = true
			tm.SequentialServices = append(tm.SequentialServices, id)
		}
	}

	// Walk the steps once, accumulating one parallel burst at a time.
	burstMax := tr.Steps[0].DurationMs
	touch(tr.Steps[0].Caller)
	touch(tr.Steps[0].Callee)

	for i := 1; i < len(tr.Steps); i++ {
		st := tr.Steps[i]
		if st.ParallelGroup != tr.Steps[i-1].ParallelGroup {
			tm.SequentialCallDepth++
			tm.TotalLatencyMs += burstMax
			burstMax = st.DurationMs
			touch(st.Caller)
			touch(st.Callee)
			continue
		}
		if st.DurationMs > burstMax {
			burstMax = st.DurationMs
		}
	}
	tm.TotalLatencyMs += burstMax

	return tm
}

func distinct(tags []string) int {
	if len(tags) == 0 {
		return 0
	}
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		seen[tag] = true
	}
	return len(seen)
}
