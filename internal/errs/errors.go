// Package errs defines the error taxonomy and run-level error aggregation
// for intersync. Task-level failures are recorded and counted without
// aborting sibling tasks; critical failures stop the run.
package errs

import (
	"fmt"
	"strings"
)

// Code categorizes an error for counting and reporting.
type Code string

const (
	CodeValidation       Code = "VALIDATION_ERROR"
	CodeTransport        Code = "TRANSPORT_ERROR"
	CodeAuthentication   Code = "AUTHENTICATION_ERROR"
	CodeConnection       Code = "API_CONNECTION_ERROR"
	CodeDuplicateType    Code = "DUPLICATE_TYPE_ERROR"
	CodeCyclicDependency Code = "CYCLIC_DEPENDENCY_ERROR"
	CodeFilesystem       Code = "FILESYSTEM_ERROR"
	CodeYAMLParsing      Code = "YAML_PARSING_ERROR"
	CodeCritical         Code = "CRITICAL_ERROR"
	CodeUnknown          Code = "UNKNOWN_ERROR"
)

// Severity determines whether an error aborts the run or only counts
// against the task that produced it.
type Severity string

const (
	SeverityRecoverable Severity = "recoverable"
	SeverityCritical    Severity = "critical"
)

// ValidationError reports a single object instance failing constraints.
// The instance is skipped; processing of its type continues.
type ValidationError struct {
	TypeID string
	Object string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Object != "" {
		return fmt.Sprintf("validation failed for %s %q: %s", e.TypeID, e.Object, e.Reason)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.TypeID, e.Reason)
}

// TransportError reports a single failed remote call. It is recoverable
// and counted against the type that issued the call.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s failed with status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthenticationError reports rejected credentials. It is critical: no
// further remote call can succeed, so the run is aborted.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// ConnectionError reports an unreachable remote endpoint. Critical.
type ConnectionError struct {
	Endpoint string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot reach %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// CriticalError aborts the whole run and carries operator-facing
// recovery suggestions.
type CriticalError struct {
	Message     string
	Suggestions []string
	Cause       error
}

func (e *CriticalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CriticalError) Unwrap() error { return e.Cause }

// FormatSuggestions renders recovery suggestions as an indented list.
func (e *CriticalError) FormatSuggestions() string {
	if len(e.Suggestions) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Recovery suggestions:")
	for _, s := range e.Suggestions {
		b.WriteString("\n  - ")
		b.WriteString(s)
	}
	return b.String()
}
