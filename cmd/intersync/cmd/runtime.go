package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/dbsmedya/intersync/internal/config"
	"github.com/dbsmedya/intersync/internal/display"
	"github.com/dbsmedya/intersync/internal/errs"
	"github.com/dbsmedya/intersync/internal/logger"
	"github.com/dbsmedya/intersync/internal/objtype"
	"github.com/dbsmedya/intersync/internal/registry"
	"github.com/dbsmedya/intersync/internal/syncer"
	"github.com/dbsmedya/intersync/internal/transport"
)

// appRuntime bundles everything a synchronization command needs.
type appRuntime struct {
	cfg      *config.Config
	log      *logger.Logger
	client   *transport.Client
	registry *registry.Registry
	orch     *syncer.Orchestrator
	render   *display.Renderer
}

// newRuntime loads configuration, applies CLI overrides and wires the
// client, registry and orchestrator for one command invocation.
func newRuntime() (*appRuntime, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.ApplyOverrides(logLevel, logFormat, filesRoot, 0, false)

	if problems := cfg.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(problems...))
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	client := transport.New(cfg.API, log)

	reg, err := newCatalogRegistry(client, log)
	if err != nil {
		return nil, err
	}

	orch, err := syncer.NewOrchestrator(reg, errs.NewAggregator(log), log)
	if err != nil {
		return nil, err
	}

	return &appRuntime{
		cfg:      cfg,
		log:      log,
		client:   client,
		registry: reg,
		orch:     orch,
		render:   display.New(os.Stdout),
	}, nil
}

// newCatalogRegistry registers every catalog type into a fresh registry.
func newCatalogRegistry(api objtype.API, log *logger.Logger) (*registry.Registry, error) {
	reg := registry.New()
	for _, desc := range objtype.NewCatalogDescriptors(api, log) {
		if err := reg.Register(desc); err != nil {
			return nil, fmt.Errorf("failed to build type registry: %w", err)
		}
	}
	return reg, nil
}

// finishRun renders the run outcome, writes the optional error report
// and maps the run state onto the command's returned error.
func finishRun(rt *appRuntime, summary *syncer.RunSummary, runErr error) error {
	rt.render.RunSummary(summary)
	rt.render.ErrorSummary(rt.orch.Aggregator().Summary())

	if errorReport != "" {
		if err := rt.orch.Aggregator().ExportReport(errorReport); err != nil {
			rt.log.Warnw("Failed to write error report", "error", err)
		}
	}

	var critical *errs.CriticalError
	switch {
	case errors.Is(runErr, syncer.ErrInterrupted):
		rt.render.Interrupted()
		return syncer.ErrInterrupted
	case errors.As(runErr, &critical):
		rt.render.Critical(critical)
		return runErr
	case runErr != nil:
		return runErr
	case !summary.Success():
		return fmt.Errorf("%s completed with %d errors", summary.Operation, summary.TotalErrors)
	}

	return nil
}
