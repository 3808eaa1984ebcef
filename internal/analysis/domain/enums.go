package domain

// PatternType identifies one architectural anti-pattern. The set is closed:
// detectors may only emit these values.
type PatternType string

const (
	PatternDistributedMonolith PatternType = "distributed_monolith"
	PatternGodService          PatternType = "god_service"
	PatternChattyInterface     PatternType = "chatty_interface"
	PatternSharedDatabase      PatternType = "shared_database"
	PatternCircularDependency  PatternType = "circular_dependency"
	PatternAnemicService       PatternType = "anemic_service"
	PatternMissingAbstraction  PatternType = "missing_abstraction"
)

// AllPatternTypes returns every pattern type in a fixed order.
func AllPatternTypes() []PatternType {
	return []PatternType{
		PatternDistributedMonolith,
		PatternGodService,
		PatternChattyInterface,
		PatternSharedDatabase,
		PatternCircularDependency,
		PatternAnemicService,
		PatternMissingAbstraction,
	}
}

func (p PatternType) IsValid() bool {
	switch p {
	case PatternDistributedMonolith, PatternGodService, PatternChattyInterface,
		PatternSharedDatabase, PatternCircularDependency, PatternAnemicService,
		PatternMissingAbstraction:
		return true
	}
	return false
}

func (p PatternType) String() string { return string(p) }

type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// Rank orders severities for sorting. Higher is more severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// MaxSeverity returns the more severe of a and b.
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// Protocol classifies a call edge. Synchronous edges are the ones that
// propagate blocking and participate in cycle detection.
type Protocol string

const (
	ProtocolSync  Protocol = "sync"
	ProtocolAsync Protocol = "async"
)

func (p Protocol) IsValid() bool {
	return p == ProtocolSync || p == ProtocolAsync
}

type DatabaseKind string

const (
	DatabaseRelational DatabaseKind = "relational"
	DatabaseDocument   DatabaseKind = "document"
	DatabaseCache      DatabaseKind = "cache"
)

func (k DatabaseKind) IsValid() bool {
	switch k {
	case DatabaseRelational, DatabaseDocument, DatabaseCache:
		return true
	}
	return false
}
