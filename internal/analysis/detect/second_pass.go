package detect

import (
	"sort"

	"github.com/archlens/archlens-backend/internal/analysis/config"
	"github.com/archlens/archlens-backend/internal/analysis/domain"
	"github.com/archlens/archlens-backend/internal/analysis/graph"
	"github.com/archlens/archlens-backend/internal/analysis/metrics"
)

const monolithName = "distributed_monolith"

// The composite weighs four whole-graph signals.
const monolithSignalsConsidered = 4

// detectDistributedMonolith is the one rule with an ordering dependency:
// it consumes the candidates of CircularDependency and SharedDatabase, so
// the engine runs it after the join barrier.
//
// Signals: (a) a shared database was found, (b) the sync coupling density
// of the graph exceeds the configured threshold, (c) the extractor asserted
// that no service versions its endpoints, (d) a synchronous cycle was
// found. The candidate fires when at least DistributedMonolithMinSignals
// hold within this run.
func detectDistributedMonolith(t *graph.Topology, m *metrics.Set, cfg config.Thresholds, prior []domain.FindingCandidate) []domain.FindingCandidate {
	seen := map[string]bool{}
	var evidence []string
	collect := func(ids []string) {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				evidence = append(evidence, id)
			}
		}
	}

	sharedCount, cycleCount := 0, 0
	for _, c := range prior {
		switch c.PatternType {
		case domain.PatternSharedDatabase:
			sharedCount++
			collect(c.AffectedEntities)
		case domain.PatternCircularDependency:
			cycleCount++
			collect(c.AffectedEntities)
		}
	}

	signals := 0
	snapshot := map[string]float64{
		"shared_database_candidates":     float64(sharedCount),
		"sync_density":                   m.SyncDensity,
		"sync_edge_ratio":                m.SyncEdgeRatio,
		"circular_dependency_candidates": float64(cycleCount),
		"lacks_endpoint_versioning":      0,
	}
	if sharedCount > 0 {
		signals++
	}
	if m.SyncDensity > cfg.SyncDensityThreshold {
		signals++
	}
	if t.LacksEndpointVersioning() {
		signals++
		snapshot["lacks_endpoint_versioning"] = 1
	}
	if cycleCount > 0 {
		signals++
	}
	snapshot["signals_present"] = float64(signals)

	if signals < cfg.DistributedMonolithMinSignals {
		return nil
	}

	// Whole-graph verdict: affected entities are the union of the
	// contributing findings' entities, or every service when the
	// contributing signals carry none.
	sort.Strings(evidence)
	if len(evidence) == 0 {
		evidence = append(evidence, t.ServiceIDs()...)
	}

	return []domain.FindingCandidate{{
		PatternType:       domain.PatternDistributedMonolith,
		AffectedEntities:  evidence,
		MetricSnapshot:    snapshot,
		SignalsPresent:    signals,
		SignalsConsidered: monolithSignalsConsidered,
	}}
}
