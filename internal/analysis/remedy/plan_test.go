package remedy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archlens/archlens-backend/internal/analysis/domain"
)

func TestPlanCoversEveryPattern(t *testing.T) {
	for _, p := range domain.AllPatternTypes() {
		t.Run(string(p), func(t *testing.T) {
			plan := Plan(domain.Finding{PatternType: p, AffectedEntities: []string{"svc"}})
			assert.Equal(t, p, plan.PatternType)
			assert.NotEqual(t, TemplateNone, plan.TemplateID)
			assert.NotEmpty(t, plan.Steps)
			assert.Equal(t, []string{"svc"}, plan.Parameters)
		})
	}
}

func TestPlanTemplateIDs(t *testing.T) {
	cases := map[domain.PatternType]string{
		domain.PatternDistributedMonolith: "distributed-monolith-decomposition",
		domain.PatternGodService:          "god-service-split",
		domain.PatternChattyInterface:     "chatty-interface-batching",
		domain.PatternSharedDatabase:      "shared-database-separation",
		domain.PatternCircularDependency:  "circular-dependency-break",
		domain.PatternAnemicService:       "anemic-service-consolidation",
		domain.PatternMissingAbstraction:  "missing-abstraction-layer",
	}
	for p, want := range cases {
		assert.Equal(t, want, Plan(domain.Finding{PatternType: p}).TemplateID)
	}
}

func TestPlanUnknownPatternDegrades(t *testing.T) {
	plan := Plan(domain.Finding{PatternType: domain.PatternType("telepathic_coupling")})
	assert.Equal(t, TemplateNone, plan.TemplateID)
	assert.Empty(t, plan.Steps)
	assert.NotNil(t, plan.Steps, "renders as [] not null")
}

func TestPlanIsPure(t *testing.T) {
	f := domain.Finding{
		PatternType:      domain.PatternDistributedMonolith,
		AffectedEntities: []string{"orders", "payments"},
	}
	first := Plan(f)
	second := Plan(f)
	require.Equal(t, first, second)

	// Mutating one plan's slices must not leak into the next.
	first.Steps[0] = "tampered"
	first.Parameters[0] = "tampered"
	third := Plan(f)
	assert.Equal(t, "database-per-service", third.Steps[0])
	assert.Equal(t, "orders", third.Parameters[0])
}
