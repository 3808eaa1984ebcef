package rules

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archlens/archlens-backend/internal/analysis/config"
	"github.com/archlens/archlens-backend/internal/analysis/domain"
	"github.com/archlens/archlens-backend/internal/analysis/graph"
	"github.com/archlens/archlens-backend/internal/analysis/metrics"
)

func mustTopo(t *testing.T, facts *domain.FactModel) (*graph.Topology, *metrics.Set) {
	t.Helper()
	topo, err := graph.Build(facts)
	require.NoError(t, err)
	return topo, metrics.Compute(topo)
}

func syncEdge(caller, callee string) domain.Edge {
	return domain.Edge{Caller: caller, Callee: callee, Protocol: domain.ProtocolSync}
}

func asyncEdge(caller, callee string) domain.Edge {
	return domain.Edge{Caller: caller, Callee: callee, Protocol: domain.ProtocolAsync}
}

func services(ids ...string) []domain.Service {
	out := make([]domain.Service, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Service{ID: id})
	}
	return out
}

func TestCircularDependency(t *testing.T) {
	cfg := config.Default()

	t.Run("flags a synchronous cycle as one component", func(t *testing.T) {
		topo, m := mustTopo(t, &domain.FactModel{
			Services: services("a", "b", "c"),
			Edges:    []domain.Edge{syncEdge("a", "b"), syncEdge("b", "c"), syncEdge("c", "a")},
		})
		cands, err := circularDependency{}.Detect(topo, m, cfg)
		require.NoError(t, err)
		require.Len(t, cands, 1)
		assert.Equal(t, domain.PatternCircularDependency, cands[0].PatternType)
		assert.ElementsMatch(t, []string{"a", "b", "c"}, cands[0].AffectedEntities)
		assert.Equal(t, 3.0, cands[0].MetricSnapshot["scc_size"])
	})

	t.Run("a chain is not a cycle", func(t *testing.T) {
		topo, m := mustTopo(t, &domain.FactModel{
			Services: services("a", "b", "c"),
			Edges:    []domain.Edge{syncEdge("a", "b"), syncEdge("b", "c")},
		})
		cands, err := circularDependency{}.Detect(topo, m, cfg)
		require.NoError(t, err)
		assert.Empty(t, cands)
	})

	t.Run("async cycles are deliberately ignored", func(t *testing.T) {
		topo, m := mustTopo(t, &domain.FactModel{
			Services: services("a", "b", "c"),
			Edges:    []domain.Edge{asyncEdge("a", "b"), asyncEdge("b", "c"), asyncEdge("c", "a")},
		})
		cands, err := circularDependency{}.Detect(topo, m, cfg)
		require.NoError(t, err)
		assert.Empty(t, cands)
	})

	t.Run("async back edge breaks the sync cycle", func(t *testing.T) {
		topo, m := mustTopo(t, &domain.FactModel{
			Services: services("a", "b"),
			Edges:    []domain.Edge{syncEdge("a", "b"), asyncEdge("b", "a")},
		})
		cands, err := circularDependency{}.Detect(topo, m, cfg)
		require.NoError(t, err)
		assert.Empty(t, cands)
	})

	t.Run("disjoint cycles produce one candidate each", func(t *testing.T) {
		topo, m := mustTopo(t, &domain.FactModel{
			Services: services("a", "b", "c", "d"),
			Edges: []domain.Edge{
				syncEdge("a", "b"), syncEdge("b", "a"),
				syncEdge("c", "d"), syncEdge("d", "c"),
			},
		})
		cands, err := circularDependency{}.Detect(topo, m, cfg)
		require.NoError(t, err)
		require.Len(t, cands, 2)
		var got [][]string
		for _, c := range cands {
			got = append(got, c.AffectedEntities)
		}
		all := append(append([]string{}, got[0]...), got[1]...)
		assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, all)
	})
}

func TestGodService(t *testing.T) {
	cfg := config.Default()

	cases := []struct {
		name      string
		endpoints int
		caps      []string
		loc       int
		want      bool
	}{
		{"all three dimensions over their bounds", 21, []string{"x", "y", "z"}, 10001, true},
		{"endpoint count exactly at the bound stays quiet", 20, []string{"x", "y", "z"}, 10001, false},
		{"two capabilities is under the inclusive bound", 21, []string{"x", "y"}, 10001, false},
		{"lines of code exactly at the bound stays quiet", 21, []string{"x", "y", "z"}, 10000, false},
		{"three capabilities meets the inclusive bound", 21, []string{"x", "y", "z"}, 10001, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			topo, m := mustTopo(t, &domain.FactModel{Services: []domain.Service{{
				ID:            "catalog",
				EndpointCount: tc.endpoints,
				Capabilities:  tc.caps,
				LinesOfCode:   tc.loc,
			}}})
			cands, err := godService{}.Detect(topo, m, cfg)
			require.NoError(t, err)
			if !tc.want {
				assert.Empty(t, cands)
				return
			}
			require.Len(t, cands, 1)
			assert.Equal(t, domain.PatternGodService, cands[0].PatternType)
			assert.Equal(t, []string{"catalog"}, cands[0].AffectedEntities)
			assert.Equal(t, float64(tc.endpoints), cands[0].MetricSnapshot["endpoint_count"])
			assert.Equal(t, float64(tc.loc), cands[0].MetricSnapshot["lines_of_code"])
		})
	}

	t.Run("repeated capability tags collapse before the bound check", func(t *testing.T) {
		topo, m := mustTopo(t, &domain.FactModel{Services: []domain.Service{{
			ID:            "catalog",
			EndpointCount: 21,
			Capabilities:  []string{"x", "x", "x", "y"},
			LinesOfCode:   10001,
		}}})
		cands, err := godService{}.Detect(topo, m, cfg)
		require.NoError(t, err)
		assert.Empty(t, cands)
	})
}

func chattyFacts(steps int, sameGroup bool, dur float64) *domain.FactModel {
	facts := &domain.FactModel{Services: services("hub")}
	tr := domain.Trace{RequestID: "r1"}
	for i := 0; i < steps; i++ {
		callee := fmt.Sprintf("s%02d", i)
		facts.Services = append(facts.Services, domain.Service{ID: callee})
		group := "g0"
		if !sameGroup {
			group = fmt.Sprintf("g%d", i)
		}
		tr.Steps = append(tr.Steps, domain.TraceStep{
			Caller: "hub", Callee: callee, DurationMs: dur, ParallelGroup: group,
		})
	}
	facts.Traces = []domain.Trace{tr}
	return facts
}

func TestChattyInterface(t *testing.T) {
	cfg := config.Default()

	t.Run("deep sequential trace is chatty", func(t *testing.T) {
		topo, m := mustTopo(t, chattyFacts(15, false, 10))
		cands, err := chattyInterface{}.Detect(topo, m, cfg)
		require.NoError(t, err)
		require.Len(t, cands, 1)
		assert.Equal(t, domain.PatternChattyInterface, cands[0].PatternType)
		assert.Equal(t, 14.0, cands[0].MetricSnapshot["sequential_call_depth"])
		assert.Contains(t, cands[0].AffectedEntities, "hub")
		assert.Contains(t, cands[0].AffectedEntities, "s14")
	})

	t.Run("wide parallel fan-out is not chatty", func(t *testing.T) {
		topo, m := mustTopo(t, chattyFacts(15, true, 10))
		cands, err := chattyInterface{}.Detect(topo, m, cfg)
		require.NoError(t, err)
		assert.Empty(t, cands)
	})

	t.Run("latency alone can trip the rule", func(t *testing.T) {
		// depth 2 is far under the bound; three 500ms serialized bursts are not
		topo, m := mustTopo(t, chattyFacts(3, false, 500))
		cands, err := chattyInterface{}.Detect(topo, m, cfg)
		require.NoError(t, err)
		require.Len(t, cands, 1)
		assert.Equal(t, 1500.0, cands[0].MetricSnapshot["total_latency_ms"])
	})

	t.Run("no traces means no candidates", func(t *testing.T) {
		topo, m := mustTopo(t, &domain.FactModel{Services: services("a")})
		cands, err := chattyInterface{}.Detect(topo, m, cfg)
		require.NoError(t, err)
		assert.Empty(t, cands)
	})
}

func TestSharedDatabase(t *testing.T) {
	cfg := config.Default()

	t.Run("two owners is a shared database", func(t *testing.T) {
		topo, m := mustTopo(t, &domain.FactModel{
			Services: []domain.Service{
				{ID: "orders", DatabaseRefs: []string{"db1"}},
				{ID: "billing", DatabaseRefs: []string{"db1"}},
				{ID: "audit", DatabaseRefs: []string{"db2"}},
			},
			Databases: []domain.Database{
				{ID: "db1", Kind: domain.DatabaseRelational},
				{ID: "db2", Kind: domain.DatabaseDocument},
			},
		})
		cands, err := sharedDatabase{}.Detect(topo, m, cfg)
		require.NoError(t, err)
		require.Len(t, cands, 1)
		assert.Equal(t, domain.PatternSharedDatabase, cands[0].PatternType)
		assert.Equal(t, []string{"billing", "orders", "db1"}, cands[0].AffectedEntities)
		assert.Equal(t, 2.0, cands[0].MetricSnapshot["owner_count"])
	})

	t.Run("single owner stays quiet", func(t *testing.T) {
		topo, m := mustTopo(t, &domain.FactModel{
			Services:  []domain.Service{{ID: "audit", DatabaseRefs: []string{"db2"}}},
			Databases: []domain.Database{{ID: "db2", Kind: domain.DatabaseCache}},
		})
		cands, err := sharedDatabase{}.Detect(topo, m, cfg)
		require.NoError(t, err)
		assert.Empty(t, cands)
	})

	t.Run("raised owner bound suppresses a two-owner database", func(t *testing.T) {
		strict := config.Default()
		strict.SharedDatabaseOwnerThreshold = 3
		topo, m := mustTopo(t, &domain.FactModel{
			Services: []domain.Service{
				{ID: "orders", DatabaseRefs: []string{"db1"}},
				{ID: "billing", DatabaseRefs: []string{"db1"}},
			},
			Databases: []domain.Database{{ID: "db1", Kind: domain.DatabaseRelational}},
		})
		cands, err := sharedDatabase{}.Detect(topo, m, strict)
		require.NoError(t, err)
		assert.Empty(t, cands)
	})
}

func TestAnemicService(t *testing.T) {
	cfg := config.Default()

	t.Run("crud shell with no outbound calls is anemic", func(t *testing.T) {
		topo, m := mustTopo(t, &domain.FactModel{
			Services: []domain.Service{
				{ID: "profiles", EndpointCount: 4, AllEndpointsCRUD: true},
				{ID: "gateway"},
			},
			Edges: []domain.Edge{syncEdge("gateway", "profiles")},
		})
		cands, err := anemicService{}.Detect(topo, m, cfg)
		require.NoError(t, err)
		require.Len(t, cands, 1)
		assert.Equal(t, domain.PatternAnemicService, cands[0].PatternType)
		assert.Equal(t, []string{"profiles"}, cands[0].AffectedEntities)
		assert.Equal(t, 0.0, cands[0].MetricSnapshot["fan_out"])
	})

	t.Run("outbound calls clear the service", func(t *testing.T) {
		topo, m := mustTopo(t, &domain.FactModel{
			Services: []domain.Service{
				{ID: "profiles", AllEndpointsCRUD: true},
				{ID: "audit"},
			},
			Edges: []domain.Edge{asyncEdge("profiles", "audit")},
		})
		cands, err := anemicService{}.Detect(topo, m, cfg)
		require.NoError(t, err)
		assert.Empty(t, cands)
	})

	t.Run("non-crud endpoints clear the service", func(t *testing.T) {
		topo, m := mustTopo(t, &domain.FactModel{
			Services: []domain.Service{{ID: "profiles", AllEndpointsCRUD: false}},
		})
		cands, err := anemicService{}.Detect(topo, m, cfg)
		require.NoError(t, err)
		assert.Empty(t, cands)
	})
}

func TestMissingAbstraction(t *testing.T) {
	cfg := config.Default()

	t.Run("infra marker capability is relayed as a candidate", func(t *testing.T) {
		topo, m := mustTopo(t, &domain.FactModel{
			Services: []domain.Service{
				{ID: "reporting", Capabilities: []string{"direct-sql", "report-render"}},
				{ID: "billing", Capabilities: []string{"invoicing"}},
			},
		})
		cands, err := missingAbstraction{}.Detect(topo, m, cfg)
		require.NoError(t, err)
		require.Len(t, cands, 1)
		assert.Equal(t, domain.PatternMissingAbstraction, cands[0].PatternType)
		assert.Equal(t, []string{"reporting"}, cands[0].AffectedEntities)
		assert.Equal(t, 1.0, cands[0].MetricSnapshot["infra_marker_tags"])
	})

	t.Run("marker set is configurable", func(t *testing.T) {
		custom := config.Default()
		custom.InfraMarkerTags = []string{"legacy-soap"}
		topo, m := mustTopo(t, &domain.FactModel{
			Services: []domain.Service{
				{ID: "reporting", Capabilities: []string{"direct-sql"}},
				{ID: "partners", Capabilities: []string{"legacy-soap"}},
			},
		})
		cands, err := missingAbstraction{}.Detect(topo, m, custom)
		require.NoError(t, err)
		require.Len(t, cands, 1)
		assert.Equal(t, []string{"partners"}, cands[0].AffectedEntities)
	})
}
