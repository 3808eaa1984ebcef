package scoring

import (
	"github.com/archlens/archlens-backend/internal/analysis/config"
	"github.com/archlens/archlens-backend/internal/analysis/domain"
)

// SeverityFor maps a pattern type to its severity. The built-in table can
// be replaced per pattern through the config.
func SeverityFor(p domain.PatternType, cfg config.Thresholds) domain.Severity {
	if s, ok := cfg.SeverityOverrides[p]; ok {
		return s
	}
	switch p {
	case domain.PatternCircularDependency, domain.PatternDistributedMonolith:
		return domain.SeverityCritical
	case domain.PatternGodService, domain.PatternChattyInterface, domain.PatternSharedDatabase:
		return domain.SeverityHigh
	case domain.PatternAnemicService, domain.PatternMissingAbstraction:
		return domain.SeverityMedium
	}
	return domain.SeverityLow
}
