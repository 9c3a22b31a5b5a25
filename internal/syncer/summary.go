package syncer

import (
	"time"

	"github.com/dbsmedya/intersync/internal/objtype"
)

// Outcome is the overall result of one run. Interruption is distinct
// from failure: an operator stopping a run is not an error condition.
type Outcome string

const (
	OutcomeSuccess     Outcome = "success"
	OutcomeFailure     Outcome = "failure"
	OutcomeInterrupted Outcome = "interrupted"
)

// RunSummary is the aggregated result of one export or import run. It
// is assembled at a single point from per-type results delivered over a
// channel; tasks never share mutable state.
type RunSummary struct {
	Operation   string
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration

	// Order lists the processed type ids in processing order; PerType
	// holds their results.
	Order   []string
	PerType map[string]*objtype.Result

	TotalObjects int
	TotalErrors  int
	Interrupted  bool
}

func newRunSummary(operation string) *RunSummary {
	return &RunSummary{
		Operation: operation,
		StartedAt: time.Now(),
		PerType:   make(map[string]*objtype.Result),
	}
}

// add merges one per-type result into the summary. Delete-phase results
// for an already-seen type are folded into the existing entry.
func (s *RunSummary) add(res *objtype.Result) {
	if res == nil {
		return
	}

	existing, seen := s.PerType[res.TypeID]
	if !seen {
		s.Order = append(s.Order, res.TypeID)
		s.PerType[res.TypeID] = res
	} else {
		existing.SuccessCount += res.SuccessCount
		existing.ErrorCount += res.ErrorCount
		existing.Errors = append(existing.Errors, res.Errors...)
		existing.Created += res.Created
		existing.Updated += res.Updated
		existing.Deleted += res.Deleted
		existing.Unchanged += res.Unchanged
		existing.ExportedFiles = append(existing.ExportedFiles, res.ExportedFiles...)
	}

	s.TotalObjects += res.SuccessCount
	s.TotalErrors += res.ErrorCount
}

// finish stamps the end time and duration.
func (s *RunSummary) finish() *RunSummary {
	s.CompletedAt = time.Now()
	s.Duration = s.CompletedAt.Sub(s.StartedAt)
	return s
}

// Outcome classifies the run. Interruption dominates: a run stopped by
// the operator reports interrupted even when errors were recorded.
func (s *RunSummary) Outcome() Outcome {
	switch {
	case s.Interrupted:
		return OutcomeInterrupted
	case s.TotalErrors > 0:
		return OutcomeFailure
	default:
		return OutcomeSuccess
	}
}

// Success reports whether the run completed without errors.
func (s *RunSummary) Success() bool {
	return s.Outcome() == OutcomeSuccess
}
