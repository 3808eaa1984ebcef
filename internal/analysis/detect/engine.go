package detect

import (
	"context"
	"fmt"

	"github.com/archlens/archlens-backend/internal/analysis/config"
	"github.com/archlens/archlens-backend/internal/analysis/domain"
	"github.com/archlens/archlens-backend/internal/analysis/graph"
	"github.com/archlens/archlens-backend/internal/analysis/metrics"
)

type slotResult struct {
	idx   int
	cands []domain.FindingCandidate
	err   error
}

// Run executes every registered detector plus the distributed-monolith
// second pass over the shared read-only (topology, metrics) pair.
func Run(ctx context.Context, t *graph.Topology, m *metrics.Set, cfg config.Thresholds) ([]domain.FindingCandidate, []domain.DetectorError, error) {
	return RunDetectors(ctx, All(), t, m, cfg)
}

// RunDetectors fans the given detectors out to goroutines and joins their
// results. A detector that errors or panics is recorded and isolated: the
// others still run and the aggregate still forms. Candidates are merged in
// detector order regardless of completion order, so output is
// deterministic.
//
// When ctx expires mid-run, whatever finished so far is returned together
// with a *PartialAnalysisError naming the unfinished detectors; the second
// pass is skipped.
func RunDetectors(ctx context.Context, detectors []Detector, t *graph.Topology, m *metrics.Set, cfg config.Thresholds) ([]domain.FindingCandidate, []domain.DetectorError, error) {
	results := make(chan slotResult, len(detectors))
	for i, d := range detectors {
		go func(idx int, d Detector) {
			defer func() {
				if r := recover(); r != nil {
					results <- slotResult{idx: idx, err: fmt.Errorf("panic: %v", r)}
				}
			}()
			cands, err := d.Detect(t, m, cfg)
			results <- slotResult{idx: idx, cands: cands, err: err}
		}(i, d)
	}

	slots := make([]*slotResult, len(detectors))
	var expired error
	for received := 0; received < len(detectors); {
		select {
		case r := <-results:
			slots[r.idx] = &r
			received++
		case <-ctx.Done():
			expired = ctx.Err()
		}
		if expired != nil {
			break
		}
	}

	var cands []domain.FindingCandidate
	var detErrs []domain.DetectorError
	var missing []string
	for i, d := range detectors {
		s := slots[i]
		switch {
		case s == nil:
			missing = append(missing, d.Name())
		case s.err != nil:
			detErrs = append(detErrs, domain.DetectorError{Detector: d.Name(), Error: s.err.Error()})
		default:
			cands = append(cands, s.cands...)
		}
	}

	if expired != nil {
		return cands, detErrs, &PartialAnalysisError{Missing: missing, Cause: expired}
	}
	if err := ctx.Err(); err != nil {
		return cands, detErrs, &PartialAnalysisError{Missing: []string{monolithName}, Cause: err}
	}

	comp, err := runSecondPass(t, m, cfg, cands)
	if err != nil {
		detErrs = append(detErrs, domain.DetectorError{Detector: monolithName, Error: err.Error()})
		return cands, detErrs, nil
	}
	return append(cands, comp...), detErrs, nil
}

func runSecondPass(t *graph.Topology, m *metrics.Set, cfg config.Thresholds, prior []domain.FindingCandidate) (cands []domain.FindingCandidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return detectDistributedMonolith(t, m, cfg, prior), nil
}
