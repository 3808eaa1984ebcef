package service

import (
	"context"

	"github.com/archlens/archlens-backend/internal/analysis/config"
	"github.com/archlens/archlens-backend/internal/analysis/detect"
	_ "github.com/archlens/archlens-backend/internal/analysis/detect/rules"
	"github.com/archlens/archlens-backend/internal/analysis/domain"
	"github.com/archlens/archlens-backend/internal/analysis/graph"
	"github.com/archlens/archlens-backend/internal/analysis/ingest/mapper"
	"github.com/archlens/archlens-backend/internal/analysis/ingest/parser"
	"github.com/archlens/archlens-backend/internal/analysis/ingest/validator"
	"github.com/archlens/archlens-backend/internal/analysis/metrics"
	"github.com/archlens/archlens-backend/internal/analysis/remedy"
	"github.com/archlens/archlens-backend/internal/analysis/scoring"
)

// ReportLogicalVersion identifies the report shape and rule semantics this
// build emits. Bumped on change, never derived from wall-clock time, so two
// runs over the same input stay byte-identical.
const ReportLogicalVersion = 1

// Result bundles the report with the remediation plans for its findings.
type Result struct {
	Report *domain.AnalysisReport   `json:"report" yaml:"report"`
	Plans  []remedy.RemediationPlan `json:"plans" yaml:"plans"`
}

// Analyze runs config validation, graph build, metric computation,
// detection, aggregation and remediation lookup over one fact model.
//
// Fatal errors (bad config, duplicate or dangling ids) return a nil report.
// A deadline on ctx can instead yield a non-nil partial report together
// with a *detect.PartialAnalysisError.
func Analyze(ctx context.Context, facts *domain.FactModel, cfg config.Thresholds) (*domain.AnalysisReport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t, err := graph.Build(facts)
	if err != nil {
		return nil, err
	}
	m := metrics.Compute(t)

	cands, detErrs, runErr := detect.Run(ctx, t, m, cfg)

	findings := scoring.Aggregate(cands, cfg)
	for i := range findings {
		findings[i].RemediationTemplateID = remedy.Plan(findings[i]).TemplateID
	}

	// Normalized empty slices keep the serialized report stable.
	if findings == nil {
		findings = []domain.Finding{}
	}
	if detErrs == nil {
		detErrs = []domain.DetectorError{}
	}

	return &domain.AnalysisReport{
		Findings:                  findings,
		DetectorErrors:            detErrs,
		GeneratedAtLogicalVersion: ReportLogicalVersion,
	}, runErr
}

// Plans looks up the remediation plan of every finding, in finding order.
func Plans(findings []domain.Finding) []remedy.RemediationPlan {
	plans := make([]remedy.RemediationPlan, 0, len(findings))
	for _, f := range findings {
		plans = append(plans, remedy.Plan(f))
	}
	return plans
}

// AnalyzeJSON parses, validates and analyzes a JSON fact document.
func AnalyzeJSON(ctx context.Context, b []byte, base config.Thresholds) (*Result, error) {
	doc, err := parser.ParseJSONBytes(b)
	if err != nil {
		return nil, err
	}
	return analyzeDocument(ctx, doc, base)
}

// AnalyzeYAML parses, validates and analyzes a YAML fact document.
func AnalyzeYAML(ctx context.Context, b []byte, base config.Thresholds) (*Result, error) {
	doc, err := parser.ParseYAMLBytes(b)
	if err != nil {
		return nil, err
	}
	return analyzeDocument(ctx, doc, base)
}

func analyzeDocument(ctx context.Context, doc *parser.Document, base config.Thresholds) (*Result, error) {
	if err := validator.Validate(doc); err != nil {
		return nil, err
	}
	cfg := mapper.MergeThresholds(base, doc.Config)

	report, err := Analyze(ctx, &doc.FactModel, cfg)
	if report == nil {
		return nil, err
	}
	// err may still carry a PartialAnalysisError next to a usable report.
	return &Result{Report: report, Plans: Plans(report.Findings)}, err
}
