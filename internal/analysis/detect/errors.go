package detect

import (
	"fmt"
	"strings"
)

// PartialAnalysisError reports that the caller's deadline expired while
// detectors were still running. The candidates returned alongside it are
// everything that finished in time; Missing names the detectors that did
// not.
type PartialAnalysisError struct {
	Missing []string
	Cause   error
}

func (e *PartialAnalysisError) Error() string {
	return fmt.Sprintf("analysis incomplete, missing detectors [%s]: %v",
		strings.Join(e.Missing, ", "), e.Cause)
}

func (e *PartialAnalysisError) Unwrap() error { return e.Cause }
