package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dbsmedya/intersync/internal/logger"
)

// Record is the structured form of one handled error.
type Record struct {
	Code      Code                   `json:"code"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Severity  Severity               `json:"severity"`
	Timestamp time.Time              `json:"timestamp"`
}

// Summary is the run-level error rollup.
type Summary struct {
	TotalErrors  int          `json:"total_errors"`
	CountsByCode map[Code]int `json:"counts_by_code"`
}

// Aggregator classifies errors into Records and keeps run-level counts.
// It is the single owner of error state during a run; tasks hand errors
// over and never read each other's partial results.
type Aggregator struct {
	mu           sync.Mutex
	records      []Record
	counts       map[Code]int
	criticalSeen bool
	critical     *CriticalError
	log          *logger.Logger
}

// NewAggregator creates an empty Aggregator.
func NewAggregator(log *logger.Logger) *Aggregator {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Aggregator{
		counts: make(map[Code]int),
		log:    log,
	}
}

// Handle classifies an error, records it, and returns the resulting Record.
// Critical errors flip a run-level flag consulted by the scheduler.
func (a *Aggregator) Handle(err error, context map[string]interface{}) Record {
	code, severity := Classify(err)

	rec := Record{
		Code:      code,
		Message:   err.Error(),
		Context:   context,
		Severity:  severity,
		Timestamp: time.Now(),
	}

	// Build the critical detail from the live error before Add falls
	// back to reconstructing it from the record.
	if severity == SeverityCritical {
		a.mu.Lock()
		if a.critical == nil {
			a.critical = asCritical(err)
		}
		a.mu.Unlock()
		a.log.Errorw("Critical error", "code", code, "error", err.Error())
	} else {
		a.log.Debugw("Recorded error", "code", code, "error", err.Error())
	}

	a.Add(rec)

	return rec
}

// Add records an already-classified Record. Critical records flip the
// run-level halt flag and, when first, become the run's CriticalError so
// recovery suggestions reach the operator.
func (a *Aggregator) Add(rec Record) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	a.records = append(a.records, rec)
	a.counts[rec.Code]++
	if rec.Severity == SeverityCritical {
		a.criticalSeen = true
		if a.critical == nil {
			a.critical = criticalFromRecord(rec)
		}
	}
}

// CriticalSeen reports whether a critical error has been recorded.
// The orchestrator consults this between task schedules.
func (a *Aggregator) CriticalSeen() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.criticalSeen
}

// Critical returns the first critical error handled, or nil.
func (a *Aggregator) Critical() *CriticalError {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.critical
}

// Summary returns the total error count and per-code counts.
func (a *Aggregator) Summary() Summary {
	a.mu.Lock()
	defer a.mu.Unlock()

	counts := make(map[Code]int, len(a.counts))
	for code, n := range a.counts {
		counts[code] = n
	}
	return Summary{
		TotalErrors:  len(a.records),
		CountsByCode: counts,
	}
}

// Records returns a copy of all recorded errors.
func (a *Aggregator) Records() []Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Record, len(a.records))
	copy(out, a.records)
	return out
}

// ExportReport writes the full error detail to path as JSON for offline
// diagnosis. It is best effort and never affects the run's pass/fail.
func (a *Aggregator) ExportReport(path string) error {
	report := struct {
		GeneratedAt time.Time `json:"generated_at"`
		Summary     Summary   `json:"summary"`
		Errors      []Record  `json:"errors"`
	}{
		GeneratedAt: time.Now(),
		Summary:     a.Summary(),
		Errors:      a.Records(),
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal error report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write error report: %w", err)
	}

	a.log.Infow("Error report written", "path", path, "errors", len(report.Errors))
	return nil
}

// Classify maps an error to its code and severity. Unrecognized errors
// are recoverable: they count against the task that produced them but do
// not stop the run.
func Classify(err error) (Code, Severity) {
	var (
		validationErr *ValidationError
		transportErr  *TransportError
		authErr       *AuthenticationError
		connErr       *ConnectionError
		criticalErr   *CriticalError
	)

	switch {
	case errors.As(err, &authErr):
		return CodeAuthentication, SeverityCritical
	case errors.As(err, &connErr):
		return CodeConnection, SeverityCritical
	case errors.As(err, &criticalErr):
		return CodeCritical, SeverityCritical
	case errors.As(err, &validationErr):
		return CodeValidation, SeverityRecoverable
	case errors.As(err, &transportErr):
		return CodeTransport, SeverityRecoverable
	default:
		return CodeUnknown, SeverityRecoverable
	}
}

// Suggestion lists per critical class, shared by error- and
// record-based construction.
var (
	authSuggestions = []string{
		"verify the API_KEY environment variable or api.key_id config value",
		"verify API_SECRET points to a valid key",
		"verify the key has sufficient permissions and is not expired or revoked",
	}
	connectionSuggestions = []string{
		"verify the api.endpoint config value",
		"check network connectivity and proxy settings",
	}
)

// asCritical wraps err into a CriticalError with recovery suggestions
// appropriate to its class.
func asCritical(err error) *CriticalError {
	var criticalErr *CriticalError
	if errors.As(err, &criticalErr) {
		return criticalErr
	}

	var authErr *AuthenticationError
	if errors.As(err, &authErr) {
		return &CriticalError{
			Message:     "authentication failed",
			Cause:       err,
			Suggestions: authSuggestions,
		}
	}

	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return &CriticalError{
			Message:     "remote endpoint unreachable",
			Cause:       err,
			Suggestions: connectionSuggestions,
		}
	}

	return &CriticalError{Message: "critical failure", Cause: err}
}

// criticalFromRecord rebuilds the operator-facing CriticalError from a
// record absorbed out of a task result, where the original error value
// is no longer available.
func criticalFromRecord(rec Record) *CriticalError {
	switch rec.Code {
	case CodeAuthentication:
		return &CriticalError{
			Message:     "authentication failed",
			Cause:       errors.New(rec.Message),
			Suggestions: authSuggestions,
		}
	case CodeConnection:
		return &CriticalError{
			Message:     "remote endpoint unreachable",
			Cause:       errors.New(rec.Message),
			Suggestions: connectionSuggestions,
		}
	default:
		return &CriticalError{
			Message: "critical failure",
			Cause:   errors.New(rec.Message),
		}
	}
}
