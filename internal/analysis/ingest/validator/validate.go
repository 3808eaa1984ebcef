package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/archlens/archlens-backend/internal/analysis/domain"
	"github.com/archlens/archlens-backend/internal/analysis/ingest/parser"
)

// ErrInvalidDocument marks a document that fails shape-level validation
// before the graph builder sees it: blank ids, unknown enum values,
// negative counts. Referential integrity (duplicates, dangling ids) is the
// graph builder's job.
var ErrInvalidDocument = errors.New("invalid fact document")

func Validate(d *parser.Document) error {
	if d == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	for i, svc := range d.Services {
		if strings.TrimSpace(svc.ID) == "" {
			return fmt.Errorf("%w: services[%d] has an empty id", ErrInvalidDocument, i)
		}
		if svc.EndpointCount < 0 {
			return fmt.Errorf("%w: service %q has negative endpoint_count", ErrInvalidDocument, svc.ID)
		}
		if svc.LinesOfCode < 0 {
			return fmt.Errorf("%w: service %q has negative lines_of_code", ErrInvalidDocument, svc.ID)
		}
	}

	for i, db := range d.Databases {
		if strings.TrimSpace(db.ID) == "" {
			return fmt.Errorf("%w: databases[%d] has an empty id", ErrInvalidDocument, i)
		}
		if db.Kind != "" && !db.Kind.IsValid() {
			return fmt.Errorf("%w: database %q has unknown kind %q", ErrInvalidDocument, db.ID, db.Kind)
		}
	}

	for i, e := range d.Edges {
		if strings.TrimSpace(e.Caller) == "" || strings.TrimSpace(e.Callee) == "" {
			return fmt.Errorf("%w: edges[%d] has an empty caller or callee", ErrInvalidDocument, i)
		}
		if !e.Protocol.IsValid() {
			return fmt.Errorf("%w: edges[%d] has unknown protocol %q", ErrInvalidDocument, i, e.Protocol)
		}
		if e.CallCountObserved < 0 {
			return fmt.Errorf("%w: edges[%d] has negative call_count_observed", ErrInvalidDocument, i)
		}
		if e.LatencyMsP50 < 0 {
			return fmt.Errorf("%w: edges[%d] has negative latency_ms_p50", ErrInvalidDocument, i)
		}
	}

	for _, tr := range d.Traces {
		for j, st := range tr.Steps {
			if strings.TrimSpace(st.Caller) == "" || strings.TrimSpace(st.Callee) == "" {
				return fmt.Errorf("%w: trace %q step %d has an empty caller or callee", ErrInvalidDocument, tr.RequestID, j)
			}
			if st.DurationMs < 0 {
				return fmt.Errorf("%w: trace %q step %d has negative duration_ms", ErrInvalidDocument, tr.RequestID, j)
			}
		}
	}

	if d.Config != nil {
		for p, s := range d.Config.SeverityOverrides {
			if !domain.PatternType(p).IsValid() {
				return fmt.Errorf("%w: severity override for unknown pattern %q", ErrInvalidDocument, p)
			}
			if !domain.Severity(s).IsValid() {
				return fmt.Errorf("%w: severity override for %q has unknown severity %q", ErrInvalidDocument, p, s)
			}
		}
	}

	return nil
}
