// Package syncer coordinates export and import runs across all
// registered object types, in dependency order.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/dbsmedya/intersync/internal/errs"
	"github.com/dbsmedya/intersync/internal/logger"
	"github.com/dbsmedya/intersync/internal/objtype"
	"github.com/dbsmedya/intersync/internal/registry"
)

// ErrInterrupted is returned when a run is stopped by context
// cancellation. Callers map it to a distinct exit status.
var ErrInterrupted = errors.New("run interrupted")

// ExportOptions controls one export run.
type ExportOptions struct {
	// OutputDir is the root of the local file tree.
	OutputDir string
	// Types restricts the run to the named types (canonical ids or
	// aliases). Empty means all registered types.
	Types []string
	// DryRun reports intended actions without writing any files.
	DryRun bool
	// Verbose enables per-object logging during export.
	Verbose bool
	// Concurrency caps parallel export tasks. Zero means one task per
	// logical CPU.
	Concurrency int
}

// ImportOptions controls one import run.
type ImportOptions struct {
	// InputDir is the root of the local file tree.
	InputDir string
	// Types restricts the run to the named types (canonical ids or
	// aliases). Empty means all registered types.
	Types []string
	// SafeMode suppresses every delete; intended deletions are logged.
	SafeMode bool
	// DryRun reports intended actions without issuing remote mutations.
	DryRun bool
}

// Orchestrator runs export and import across the registered types. It
// owns ordering, concurrency and the critical-error halt; descriptors
// own per-type semantics.
type Orchestrator struct {
	registry   *registry.Registry
	agg        *errs.Aggregator
	reconciler *DirectoryReconciler
	log        *logger.Logger
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(reg *registry.Registry, agg *errs.Aggregator, log *logger.Logger) (*Orchestrator, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}
	if agg == nil {
		agg = errs.NewAggregator(log)
	}

	return &Orchestrator{
		registry:   reg,
		agg:        agg,
		reconciler: NewReconciler(log),
		log:        log,
	}, nil
}

// Aggregator returns the error aggregator used by this orchestrator.
func (o *Orchestrator) Aggregator() *errs.Aggregator {
	return o.agg
}

// ExportAll pulls remote state into the local file tree. Per-type tasks
// run concurrently with bounded parallelism; one type's failure never
// aborts its siblings. A critical error stops scheduling of further
// tasks, in-flight tasks are drained, and the run fails.
func (o *Orchestrator) ExportAll(ctx context.Context, opts ExportOptions) (*RunSummary, error) {
	summary := newRunSummary("export")

	selected, err := o.selectTypes(opts.Types)
	if err != nil {
		return summary.finish(), err
	}
	if len(selected) == 0 {
		o.log.Warnw("No registered types match the requested filters", "filters", opts.Types)
		return summary.finish(), nil
	}

	// Every export mirrors remote state exactly, so stale files go
	// before anything is written, filtered or not.
	if _, err := o.reconciler.Reset(opts.OutputDir, opts.DryRun); err != nil {
		return summary.finish(), err
	}

	o.log.Infow("Starting export",
		"types", len(selected),
		"output_dir", opts.OutputDir,
		"dry_run", opts.DryRun,
	)

	results := make(chan *objtype.Result, len(selected))

	var g errgroup.Group
	g.SetLimit(taskLimit(opts.Concurrency, len(selected)))

	scheduled := 0
	for _, id := range selected {
		if ctx.Err() != nil {
			break
		}
		if o.agg.CriticalSeen() {
			o.log.Errorw("Critical error encountered, halting export scheduling",
				"scheduled", scheduled, "remaining", len(selected)-scheduled)
			break
		}

		id := id
		desc, _ := o.registry.Get(id)
		scheduled++

		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					res := objtype.NewResult(id)
					res.AddError(fmt.Errorf("export task panicked: %v", r),
						map[string]interface{}{"type": id})
					o.absorb(res)
					results <- res
				}
			}()

			res := desc.Export(ctx, opts.OutputDir, objtype.ExportOptions{
				DryRun:  opts.DryRun,
				Verbose: opts.Verbose,
			})
			// Absorbed here, not at collection, so a critical failure
			// halts scheduling as soon as the task finishes.
			o.absorb(res)
			results <- res
			return nil
		})
	}

	// Wait drains in-flight tasks even after a halt.
	_ = g.Wait()
	close(results)

	byType := make(map[string]*objtype.Result, scheduled)
	for res := range results {
		byType[res.TypeID] = res
	}
	for _, id := range selected {
		if res, ok := byType[id]; ok {
			summary.add(res)
		}
	}

	return o.conclude(ctx, summary)
}

// ImportAll pushes the local file tree into remote state. Creates and
// updates run strictly in dependency order; deletions run afterwards in
// reverse order so no object is removed before its dependents.
func (o *Orchestrator) ImportAll(ctx context.Context, opts ImportOptions) (*RunSummary, error) {
	summary := newRunSummary("import")

	selected, err := o.selectTypes(opts.Types)
	if err != nil {
		return summary.finish(), err
	}
	if len(selected) == 0 {
		o.log.Warnw("No registered types match the requested filters", "filters", opts.Types)
		return summary.finish(), nil
	}

	o.log.Infow("Starting import",
		"types", len(selected),
		"input_dir", opts.InputDir,
		"safe_mode", opts.SafeMode,
		"dry_run", opts.DryRun,
	)

	// Phase 1: creates and updates, dependencies before dependents.
	// Strictly sequential: a dependent type must see its dependencies
	// already materialized remotely.
	pending := make(map[string][]string, len(selected))
	for _, id := range selected {
		if ctx.Err() != nil || o.agg.CriticalSeen() {
			break
		}

		desc, _ := o.registry.Get(id)
		res := desc.Import(ctx, opts.InputDir, objtype.ImportOptions{DryRun: opts.DryRun})
		o.absorb(res)
		summary.add(res)
		pending[id] = res.PendingDeletes
	}

	// Phase 2: deletions, dependents before dependencies.
	for i := len(selected) - 1; i >= 0; i-- {
		id := selected[i]
		names := pending[id]
		if len(names) == 0 {
			continue
		}
		if ctx.Err() != nil || o.agg.CriticalSeen() {
			break
		}

		if opts.SafeMode {
			for _, name := range names {
				o.log.Warnw("Safe mode: delete suppressed", "type", id, "object", name)
			}
			continue
		}
		if opts.DryRun {
			for _, name := range names {
				o.log.Infow("Dry run: would delete object", "type", id, "object", name)
			}
			continue
		}

		desc, _ := o.registry.Get(id)
		res := desc.Delete(ctx, names)
		o.absorb(res)
		summary.add(res)
	}

	return o.conclude(ctx, summary)
}

// selectTypes validates the registry, resolves filters through the
// alias table and returns the matching type ids in processing order.
// Unknown filters are warnings, not errors.
func (o *Orchestrator) selectTypes(filters []string) ([]string, error) {
	if err := o.registry.Validate(); err != nil {
		return nil, err
	}

	order, err := o.registry.ProcessingOrder()
	if err != nil {
		return nil, err
	}
	if len(filters) == 0 {
		return order, nil
	}

	wanted := make(map[string]bool, len(filters))
	for _, filter := range filters {
		// Exact registered ids win; otherwise consult the alias table.
		if _, registered := o.registry.Get(filter); registered {
			wanted[filter] = true
			continue
		}
		id, ok := objtype.ResolveAlias(filter)
		if !ok {
			o.log.Warnw("Unknown object type filter", "filter", filter)
			continue
		}
		if _, registered := o.registry.Get(id); !registered {
			o.log.Warnw("Object type not registered", "filter", filter, "type", id)
			continue
		}
		wanted[id] = true
	}

	selected := make([]string, 0, len(wanted))
	for _, id := range order {
		if wanted[id] {
			selected = append(selected, id)
		}
	}
	return selected, nil
}

// absorb feeds a task's error records into the run-level aggregator.
func (o *Orchestrator) absorb(res *objtype.Result) {
	for _, rec := range res.Errors {
		o.agg.Add(rec)
	}
}

// conclude finalizes the summary and maps the run state to the
// orchestrator's return contract: interruption and critical failures
// are errors, recoverable per-type failures are reported through the
// summary alone.
func (o *Orchestrator) conclude(ctx context.Context, summary *RunSummary) (*RunSummary, error) {
	summary.finish()

	if ctx.Err() != nil {
		summary.Interrupted = true
		o.log.Warnw("Run interrupted",
			"operation", summary.Operation,
			"completed_types", len(summary.Order),
		)
		return summary, ErrInterrupted
	}

	if o.agg.CriticalSeen() {
		if critical := o.agg.Critical(); critical != nil {
			return summary, critical
		}
		return summary, &errs.CriticalError{Message: "run aborted after critical error"}
	}

	o.log.Infow("Run complete",
		"operation", summary.Operation,
		"outcome", string(summary.Outcome()),
		"objects", summary.TotalObjects,
		"errors", summary.TotalErrors,
		"duration", summary.Duration,
	)
	return summary, nil
}

// taskLimit bounds parallelism by the configured cap, the task count
// and the host's logical CPUs.
func taskLimit(configured, tasks int) int {
	limit := configured
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	if tasks < limit {
		limit = tasks
	}
	if n := runtime.NumCPU(); n < limit {
		limit = n
	}
	if limit < 1 {
		limit = 1
	}
	return limit
}
