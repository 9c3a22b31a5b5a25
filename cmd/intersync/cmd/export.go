package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dbsmedya/intersync/internal/syncer"
)

var (
	exportOutput      string
	exportTypes       []string
	exportDryRun      bool
	exportVerbose     bool
	exportConcurrency int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export remote objects to the local file tree",
	Long: `Export pulls all user-defined objects from the remote store and
writes them as YAML files under the configured files root, one file per
object, grouped by category folder.

Every export first clears the output directory so the tree mirrors
remote state exactly; stale files never survive a run.

Example:
  intersync export --config intersync.yaml
  intersync export --type bios --type ntp --dry-run`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "",
		"Output directory (defaults to files.root from config)")
	exportCmd.Flags().StringSliceVarP(&exportTypes, "type", "t", nil,
		"Restrict to these object types (canonical id or alias, repeatable)")
	exportCmd.Flags().BoolVar(&exportDryRun, "dry-run", false,
		"Report what would be exported without writing files")
	exportCmd.Flags().BoolVarP(&exportVerbose, "verbose", "v", false,
		"Log every exported object individually")
	exportCmd.Flags().IntVar(&exportConcurrency, "concurrency", 0,
		"Override maximum parallel export tasks")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.log.Sync()

	ctx, cancel := signalContext(rt.log)
	defer cancel()

	outputDir := exportOutput
	if outputDir == "" {
		outputDir = rt.cfg.Files.Root
	}
	concurrency := exportConcurrency
	if concurrency <= 0 {
		concurrency = rt.cfg.Export.Concurrency
	}

	summary, runErr := rt.orch.ExportAll(ctx, syncer.ExportOptions{
		OutputDir:   outputDir,
		Types:       exportTypes,
		DryRun:      exportDryRun,
		Verbose:     exportVerbose,
		Concurrency: concurrency,
	})

	return finishRun(rt, summary, runErr)
}
