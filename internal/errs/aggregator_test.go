package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantCode     Code
		wantSeverity Severity
	}{
		{
			name:         "validation error",
			err:          &ValidationError{TypeID: "bios.Policy", Reason: "missing Name"},
			wantCode:     CodeValidation,
			wantSeverity: SeverityRecoverable,
		},
		{
			name:         "transport error",
			err:          &TransportError{Op: "list bios/Policies", StatusCode: 503},
			wantCode:     CodeTransport,
			wantSeverity: SeverityRecoverable,
		},
		{
			name:         "authentication error",
			err:          &AuthenticationError{Err: errors.New("status 401")},
			wantCode:     CodeAuthentication,
			wantSeverity: SeverityCritical,
		},
		{
			name:         "connection error",
			err:          &ConnectionError{Endpoint: "https://store.example.com"},
			wantCode:     CodeConnection,
			wantSeverity: SeverityCritical,
		},
		{
			name:         "wrapped authentication error",
			err:          fmt.Errorf("import failed: %w", &AuthenticationError{}),
			wantCode:     CodeAuthentication,
			wantSeverity: SeverityCritical,
		},
		{
			name:         "unknown error",
			err:          errors.New("something odd"),
			wantCode:     CodeUnknown,
			wantSeverity: SeverityRecoverable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, severity := Classify(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantSeverity, severity)
		})
	}
}

func TestAggregator_Handle(t *testing.T) {
	agg := NewAggregator(nil)

	rec := agg.Handle(&ValidationError{TypeID: "ntp.Policy", Reason: "bad YAML"},
		map[string]interface{}{"file": "ntp.yaml"})

	assert.Equal(t, CodeValidation, rec.Code)
	assert.Equal(t, SeverityRecoverable, rec.Severity)
	assert.False(t, rec.Timestamp.IsZero())
	assert.False(t, agg.CriticalSeen())

	summary := agg.Summary()
	assert.Equal(t, 1, summary.TotalErrors)
	assert.Equal(t, 1, summary.CountsByCode[CodeValidation])
}

func TestAggregator_CriticalFlag(t *testing.T) {
	agg := NewAggregator(nil)
	assert.False(t, agg.CriticalSeen())

	agg.Handle(&AuthenticationError{Err: errors.New("status 403")}, nil)

	assert.True(t, agg.CriticalSeen())
	critical := agg.Critical()
	require.NotNil(t, critical)
	assert.NotEmpty(t, critical.Suggestions, "auth failures carry recovery suggestions")
}

func TestAggregator_AddRecordFlipsCritical(t *testing.T) {
	agg := NewAggregator(nil)

	// Records absorbed from task results must also trip the halt flag.
	agg.Add(Record{Code: CodeConnection, Message: "unreachable", Severity: SeverityCritical})

	assert.True(t, agg.CriticalSeen())
}

func TestAggregator_AddRecordBuildsCritical(t *testing.T) {
	agg := NewAggregator(nil)

	// A critical record arriving without the original error value must
	// still yield a CriticalError with recovery suggestions.
	agg.Add(Record{
		Code:     CodeAuthentication,
		Message:  "authentication failed: status 401",
		Severity: SeverityCritical,
	})

	critical := agg.Critical()
	require.NotNil(t, critical)
	assert.NotEmpty(t, critical.Suggestions)
	require.NotNil(t, critical.Cause)
	assert.Contains(t, critical.Cause.Error(), "status 401")
}

func TestAggregator_FirstCriticalWins(t *testing.T) {
	agg := NewAggregator(nil)
	agg.Add(Record{Code: CodeAuthentication, Message: "first", Severity: SeverityCritical})
	agg.Add(Record{Code: CodeConnection, Message: "second", Severity: SeverityCritical})

	critical := agg.Critical()
	require.NotNil(t, critical)
	assert.Contains(t, critical.Cause.Error(), "first")
}

func TestAggregator_Summary_MultipleCodes(t *testing.T) {
	agg := NewAggregator(nil)
	agg.Handle(&ValidationError{Reason: "one"}, nil)
	agg.Handle(&ValidationError{Reason: "two"}, nil)
	agg.Handle(&TransportError{Op: "list", StatusCode: 500}, nil)

	summary := agg.Summary()
	assert.Equal(t, 3, summary.TotalErrors)
	assert.Equal(t, 2, summary.CountsByCode[CodeValidation])
	assert.Equal(t, 1, summary.CountsByCode[CodeTransport])
}

func TestAggregator_ExportReport(t *testing.T) {
	agg := NewAggregator(nil)
	agg.Handle(&ValidationError{TypeID: "bios.Policy", Reason: "bad field"},
		map[string]interface{}{"object": "my-policy"})

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, agg.ExportReport(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var report struct {
		Summary Summary  `json:"summary"`
		Errors  []Record `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(data, &report))

	assert.Equal(t, 1, report.Summary.TotalErrors)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, CodeValidation, report.Errors[0].Code)
	assert.Equal(t, "my-policy", report.Errors[0].Context["object"])
}

func TestCriticalError_FormatSuggestions(t *testing.T) {
	critical := &CriticalError{
		Message:     "authentication failed",
		Suggestions: []string{"check the key", "check permissions"},
	}

	formatted := critical.FormatSuggestions()
	assert.Contains(t, formatted, "check the key")
	assert.Contains(t, formatted, "check permissions")
}
