// Package display renders run results for the terminal. Logging is
// for operators tailing a run; display is the human-facing summary
// printed at the end.
package display

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"

	"github.com/dbsmedya/intersync/internal/errs"
	"github.com/dbsmedya/intersync/internal/syncer"
)

// Renderer writes human-readable output to a terminal or buffer.
type Renderer struct {
	out io.Writer
}

// New creates a Renderer writing to out.
func New(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// RunSummary prints the end-of-run report: a per-type table followed
// by totals and the colored outcome line.
func (r *Renderer) RunSummary(s *syncer.RunSummary) {
	title := strings.ToUpper(s.Operation[:1]) + s.Operation[1:]
	fmt.Fprintf(r.out, "\n=== %s Complete ===\n", title)

	if len(s.Order) > 0 {
		r.resultTable(s)
	}

	fmt.Fprintf(r.out, "\nTypes Processed: %d\n", len(s.Order))
	fmt.Fprintf(r.out, "Objects:         %d\n", s.TotalObjects)
	fmt.Fprintf(r.out, "Errors:          %d\n", s.TotalErrors)
	fmt.Fprintf(r.out, "Duration:        %s\n", s.Duration.Round(time.Millisecond))
	fmt.Fprintf(r.out, "Outcome:         %s\n", outcomeLabel(s.Outcome()))
}

// resultTable prints one row per processed type, columns aligned by
// display width so wide runes in type names do not skew the layout.
func (r *Renderer) resultTable(s *syncer.RunSummary) {
	headers := []string{"TYPE", "OK", "CREATED", "UPDATED", "DELETED", "UNCHANGED", "ERRORS"}

	rows := make([][]string, 0, len(s.Order))
	for _, id := range s.Order {
		res := s.PerType[id]
		rows = append(rows, []string{
			id,
			fmt.Sprintf("%d", res.SuccessCount),
			fmt.Sprintf("%d", res.Created),
			fmt.Sprintf("%d", res.Updated),
			fmt.Sprintf("%d", res.Deleted),
			fmt.Sprintf("%d", res.Unchanged),
			fmt.Sprintf("%d", res.ErrorCount),
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	fmt.Fprintln(r.out)
	r.tableRow(headers, widths)
	divider := make([]string, len(headers))
	for i := range divider {
		divider[i] = strings.Repeat("-", widths[i])
	}
	r.tableRow(divider, widths)
	for _, row := range rows {
		r.tableRow(row, widths)
	}
}

func (r *Renderer) tableRow(cells []string, widths []int) {
	padded := make([]string, len(cells))
	for i, cell := range cells {
		padded[i] = runewidth.FillRight(cell, widths[i])
	}
	fmt.Fprintln(r.out, strings.TrimRight(strings.Join(padded, "  "), " "))
}

// ErrorSummary prints per-code error counts, sorted by code.
func (r *Renderer) ErrorSummary(summary errs.Summary) {
	if summary.TotalErrors == 0 {
		return
	}

	fmt.Fprintf(r.out, "\nErrors by category:\n")

	codes := make([]string, 0, len(summary.CountsByCode))
	for code := range summary.CountsByCode {
		codes = append(codes, string(code))
	}
	sort.Strings(codes)

	for _, code := range codes {
		fmt.Fprintf(r.out, "  %s: %d\n", code, summary.CountsByCode[errs.Code(code)])
	}
}

// Critical prints a critical failure with its recovery suggestions.
func (r *Renderer) Critical(critical *errs.CriticalError) {
	if critical == nil {
		return
	}

	fmt.Fprintf(r.out, "\n%s %s\n", color.Red.Sprint("CRITICAL:"), critical.Message)
	if critical.Cause != nil {
		fmt.Fprintf(r.out, "  cause: %v\n", critical.Cause)
	}
	if len(critical.Suggestions) > 0 {
		fmt.Fprintf(r.out, "\nSuggested actions:\n")
		for _, suggestion := range critical.Suggestions {
			fmt.Fprintf(r.out, "  - %s\n", suggestion)
		}
	}
}

// Interrupted prints the interruption notice.
func (r *Renderer) Interrupted() {
	fmt.Fprintf(r.out, "\n%s run stopped before completion\n", color.Yellow.Sprint("INTERRUPTED:"))
}

func outcomeLabel(outcome syncer.Outcome) string {
	switch outcome {
	case syncer.OutcomeSuccess:
		return color.Green.Sprint("success")
	case syncer.OutcomeInterrupted:
		return color.Yellow.Sprint("interrupted")
	default:
		return color.Red.Sprint("failure")
	}
}
