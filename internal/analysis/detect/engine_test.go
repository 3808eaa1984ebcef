package detect

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archlens/archlens-backend/internal/analysis/config"
	"github.com/archlens/archlens-backend/internal/analysis/domain"
	"github.com/archlens/archlens-backend/internal/analysis/graph"
	"github.com/archlens/archlens-backend/internal/analysis/metrics"
)

type stubDetector struct {
	name  string
	cands []domain.FindingCandidate
	err   error
	delay time.Duration
	boom  bool
}

func (s stubDetector) Name() string { return s.name }

func (s stubDetector) Detect(t *graph.Topology, m *metrics.Set, cfg config.Thresholds) ([]domain.FindingCandidate, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.boom {
		panic("stub exploded")
	}
	return s.cands, s.err
}

func stubCandidate(p domain.PatternType, ids ...string) domain.FindingCandidate {
	return domain.FindingCandidate{PatternType: p, AffectedEntities: ids}
}

func testPair(t *testing.T) (*graph.Topology, *metrics.Set) {
	t.Helper()
	topo, err := graph.Build(&domain.FactModel{
		Services: []domain.Service{{ID: "a"}, {ID: "b"}},
	})
	require.NoError(t, err)
	return topo, metrics.Compute(topo)
}

func TestRunDetectorsMergesInRegistrationOrder(t *testing.T) {
	topo, m := testPair(t)

	// The slow detector finishes last but was registered first; its
	// candidates must still come first.
	dets := []Detector{
		stubDetector{name: "slow", delay: 30 * time.Millisecond,
			cands: []domain.FindingCandidate{stubCandidate(domain.PatternGodService, "a")}},
		stubDetector{name: "fast",
			cands: []domain.FindingCandidate{stubCandidate(domain.PatternAnemicService, "b")}},
	}

	cands, detErrs, err := RunDetectors(context.Background(), dets, topo, m, config.Default())
	require.NoError(t, err)
	assert.Empty(t, detErrs)
	require.Len(t, cands, 2)
	assert.Equal(t, domain.PatternGodService, cands[0].PatternType)
	assert.Equal(t, domain.PatternAnemicService, cands[1].PatternType)
}

func TestRunDetectorsIsolatesPanic(t *testing.T) {
	topo, m := testPair(t)

	dets := []Detector{
		stubDetector{name: "healthy",
			cands: []domain.FindingCandidate{stubCandidate(domain.PatternGodService, "a")}},
		stubDetector{name: "broken", boom: true},
	}

	cands, detErrs, err := RunDetectors(context.Background(), dets, topo, m, config.Default())
	require.NoError(t, err, "a panicking detector must not sink the run")
	require.Len(t, cands, 1)
	assert.Equal(t, domain.PatternGodService, cands[0].PatternType)
	require.Len(t, detErrs, 1)
	assert.Equal(t, "broken", detErrs[0].Detector)
	assert.Contains(t, detErrs[0].Error, "panic")
}

func TestRunDetectorsRecordsErrors(t *testing.T) {
	topo, m := testPair(t)

	dets := []Detector{
		stubDetector{name: "failing", err: errors.New("bad facts")},
		stubDetector{name: "healthy",
			cands: []domain.FindingCandidate{stubCandidate(domain.PatternAnemicService, "b")}},
	}

	cands, detErrs, err := RunDetectors(context.Background(), dets, topo, m, config.Default())
	require.NoError(t, err)
	require.Len(t, detErrs, 1)
	assert.Equal(t, "failing", detErrs[0].Detector)
	assert.Equal(t, "bad facts", detErrs[0].Error)
	require.Len(t, cands, 1)
}

func TestRunDetectorsDeadlineYieldsPartial(t *testing.T) {
	topo, m := testPair(t)

	dets := []Detector{
		stubDetector{name: "fast",
			cands: []domain.FindingCandidate{stubCandidate(domain.PatternGodService, "a")}},
		stubDetector{name: "stuck", delay: 2 * time.Second},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	cands, detErrs, err := RunDetectors(ctx, dets, topo, m, config.Default())
	require.Error(t, err)

	var partial *PartialAnalysisError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, []string{"stuck"}, partial.Missing)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The fast detector's work survives; the second pass does not run.
	require.Len(t, cands, 1)
	assert.Equal(t, domain.PatternGodService, cands[0].PatternType)
	assert.Empty(t, detErrs)
	for _, c := range cands {
		assert.NotEqual(t, domain.PatternDistributedMonolith, c.PatternType)
	}
}

func TestDetectDistributedMonolith(t *testing.T) {
	cfg := config.Default()

	triangle := func(t *testing.T, lacksVersioning bool) (*graph.Topology, *metrics.Set) {
		t.Helper()
		topo, err := graph.Build(&domain.FactModel{
			Services: []domain.Service{{ID: "x"}, {ID: "y"}, {ID: "z"}},
			Edges: []domain.Edge{
				{Caller: "x", Callee: "y", Protocol: domain.ProtocolSync},
				{Caller: "y", Callee: "z", Protocol: domain.ProtocolSync},
				{Caller: "z", Callee: "x", Protocol: domain.ProtocolSync},
			},
			LacksEndpointVersioning: lacksVersioning,
		})
		require.NoError(t, err)
		return topo, metrics.Compute(topo)
	}

	shared := stubCandidate(domain.PatternSharedDatabase, "y", "z", "db1")
	cycle := stubCandidate(domain.PatternCircularDependency, "x", "y", "z")

	t.Run("two signals stay below the default minimum", func(t *testing.T) {
		// A full sync triangle has density 3/6: at the bound, not over it.
		topo, m := triangle(t, false)
		require.InDelta(t, 0.5, m.SyncDensity, 1e-9)

		got := detectDistributedMonolith(topo, m, cfg, []domain.FindingCandidate{shared, cycle})
		assert.Empty(t, got)
	})

	t.Run("versioning assertion tips the run over the minimum", func(t *testing.T) {
		topo, m := triangle(t, true)

		got := detectDistributedMonolith(topo, m, cfg, []domain.FindingCandidate{shared, cycle})
		require.Len(t, got, 1)
		c := got[0]
		assert.Equal(t, domain.PatternDistributedMonolith, c.PatternType)
		assert.Equal(t, 3, c.SignalsPresent)
		assert.Equal(t, 4, c.SignalsConsidered)
		assert.Equal(t, []string{"db1", "x", "y", "z"}, c.AffectedEntities)
		assert.Equal(t, 1.0, c.MetricSnapshot["lacks_endpoint_versioning"])
		assert.Equal(t, 3.0, c.MetricSnapshot["signals_present"])
	})

	t.Run("density strictly over the bound counts as a signal", func(t *testing.T) {
		topo, err := graph.Build(&domain.FactModel{
			Services: []domain.Service{{ID: "x"}, {ID: "y"}},
			Edges: []domain.Edge{
				{Caller: "x", Callee: "y", Protocol: domain.ProtocolSync},
				{Caller: "y", Callee: "x", Protocol: domain.ProtocolSync},
			},
		})
		require.NoError(t, err)
		m := metrics.Compute(topo)
		require.InDelta(t, 1.0, m.SyncDensity, 1e-9)

		pair := stubCandidate(domain.PatternCircularDependency, "x", "y")
		sharedPair := stubCandidate(domain.PatternSharedDatabase, "x", "y", "db9")
		got := detectDistributedMonolith(topo, m, cfg, []domain.FindingCandidate{pair, sharedPair})
		require.Len(t, got, 1)
		assert.Equal(t, 3, got[0].SignalsPresent)
	})

	t.Run("no contributing entities falls back to the whole graph", func(t *testing.T) {
		loose := config.Default()
		loose.DistributedMonolithMinSignals = 2

		topo, err := graph.Build(&domain.FactModel{
			Services: []domain.Service{{ID: "x"}, {ID: "y"}},
			Edges: []domain.Edge{
				{Caller: "x", Callee: "y", Protocol: domain.ProtocolSync},
				{Caller: "y", Callee: "x", Protocol: domain.ProtocolSync},
			},
			LacksEndpointVersioning: true,
		})
		require.NoError(t, err)
		m := metrics.Compute(topo)

		got := detectDistributedMonolith(topo, m, loose, nil)
		require.Len(t, got, 1)
		assert.Equal(t, []string{"x", "y"}, got[0].AffectedEntities)
		assert.Equal(t, 2, got[0].SignalsPresent)
	})
}
