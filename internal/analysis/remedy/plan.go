package remedy

import (
	"github.com/archlens/archlens-backend/internal/analysis/domain"
)

// TemplateNone is returned for pattern types with no registered template,
// so the planner never fails: future pattern types degrade to an explicit
// "nothing to suggest" plan instead of an error.
const TemplateNone = "no-remediation-available"

// RemediationPlan names the template the external reporter should render
// and the ordered remediation steps, parameterized with the finding's
// affected entities for substitution.
type RemediationPlan struct {
	PatternType domain.PatternType `json:"pattern_type" yaml:"pattern_type"`
	TemplateID  string             `json:"template_id" yaml:"template_id"`
	Steps       []string           `json:"steps" yaml:"steps"`
	Parameters  []string           `json:"parameters" yaml:"parameters"`
}

type template struct {
	id    string
	steps []string
}

var templates = map[domain.PatternType]template{
	domain.PatternDistributedMonolith: {
		id: "distributed-monolith-decomposition",
		steps: []string{
			"database-per-service",
			"api-versioning",
			"event-driven-migration",
			"independent-deployment",
		},
	},
	domain.PatternGodService: {
		id: "god-service-split",
		steps: []string{
			"identify-capability-seams",
			"extract-bounded-context",
			"strangler-fig-migration",
		},
	},
	domain.PatternChattyInterface: {
		id: "chatty-interface-batching",
		steps: []string{
			"introduce-batch-endpoint",
			"cache-remote-reads",
			"coarsen-api-granularity",
		},
	},
	domain.PatternSharedDatabase: {
		id: "shared-database-separation",
		steps: []string{
			"assign-data-ownership",
			"database-per-service",
			"expose-data-api",
		},
	},
	domain.PatternCircularDependency: {
		id: "circular-dependency-break",
		steps: []string{
			"pick-weakest-link",
			"invert-dependency",
			"replace-call-with-event",
		},
	},
	domain.PatternAnemicService: {
		id: "anemic-service-consolidation",
		steps: []string{
			"locate-consuming-context",
			"move-behavior-to-data",
			"merge-or-inline-service",
		},
	},
	domain.PatternMissingAbstraction: {
		id: "missing-abstraction-layer",
		steps: []string{
			"introduce-owned-client-facade",
			"route-calls-through-facade",
			"forbid-direct-infra-access",
		},
	},
}

// Plan maps a finding to its remediation plan. Pure table lookup, no
// failures: calling it twice with the same finding yields the same plan.
func Plan(f domain.Finding) RemediationPlan {
	p := RemediationPlan{
		PatternType: f.PatternType,
		TemplateID:  TemplateNone,
		Steps:       []string{},
		Parameters:  append([]string{}, f.AffectedEntities...),
	}
	if t, ok := templates[f.PatternType]; ok {
		p.TemplateID = t.id
		p.Steps = append([]string{}, t.steps...)
	}
	return p
}
