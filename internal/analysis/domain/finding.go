package domain

// FindingCandidate is the raw output of a single detector, before the
// aggregator merges overlaps and assigns severity and confidence.
type FindingCandidate struct {
	PatternType      PatternType
	AffectedEntities []string
	MetricSnapshot   map[string]float64
	// Signal counters drive the confidence of composite rules. Single-signal
	// detectors leave both at zero and score 1.0.
	SignalsPresent    int
	SignalsConsidered int
}

// Finding is one reported anti-pattern instance. AffectedEntities is the
// ordered evidence chain of service/database ids; MetricSnapshot retains the
// numeric values that triggered the rule for auditability.
type Finding struct {
	PatternType           PatternType        `json:"pattern_type" yaml:"pattern_type"`
	Severity              Severity           `json:"severity" yaml:"severity"`
	Confidence            float64            `json:"confidence" yaml:"confidence"`
	AffectedEntities      []string           `json:"affected_entities" yaml:"affected_entities"`
	MetricSnapshot        map[string]float64 `json:"metric_snapshot,omitempty" yaml:"metric_snapshot,omitempty"`
	RemediationTemplateID string             `json:"remediation_template_id,omitempty" yaml:"remediation_template_id,omitempty"`
}

// DetectorError records one detector failure that was isolated from the
// rest of the run.
type DetectorError struct {
	Detector string `json:"detector" yaml:"detector"`
	Error    string `json:"error" yaml:"error"`
}

// AnalysisReport is the engine's sole output contract.
type AnalysisReport struct {
	Findings                  []Finding       `json:"findings" yaml:"findings"`
	DetectorErrors            []DetectorError `json:"detector_errors" yaml:"detector_errors"`
	GeneratedAtLogicalVersion int             `json:"generated_at_logical_version" yaml:"generated_at_logical_version"`
}
