package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dbsmedya/intersync/internal/syncer"
)

var (
	importInput      string
	importTypes      []string
	importSafeMode   bool
	importNoSafeMode bool
	importDryRun     bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the local file tree into the remote store",
	Long: `Import pushes the local YAML tree into remote state. Creates and
updates run in dependency order (an organization before the policies
that reference it); remote objects with no local counterpart are then
deleted in reverse order.

Unchanged objects are detected by content comparison and skipped, so
re-importing an identical tree issues no remote mutations.

Safe mode suppresses all deletions and logs them instead.

Example:
  intersync import --config intersync.yaml
  intersync import --safe-mode --dry-run`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importInput, "input", "i", "",
		"Input directory (defaults to files.root from config)")
	importCmd.Flags().StringSliceVarP(&importTypes, "type", "t", nil,
		"Restrict to these object types (canonical id or alias, repeatable)")
	importCmd.Flags().BoolVar(&importSafeMode, "safe-mode", false,
		"Suppress all deletions; log intended deletes instead")
	importCmd.Flags().BoolVar(&importNoSafeMode, "no-safe-mode", false,
		"Allow deletions even when safe_mode is enabled in the config")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false,
		"Report intended changes without issuing remote mutations")

	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.log.Sync()

	ctx, cancel := signalContext(rt.log)
	defer cancel()

	inputDir := importInput
	if inputDir == "" {
		inputDir = rt.cfg.Files.Root
	}

	summary, runErr := rt.orch.ImportAll(ctx, syncer.ImportOptions{
		InputDir: inputDir,
		Types:    importTypes,
		SafeMode: resolveSafeMode(importSafeMode, importNoSafeMode, rt.cfg.Import.SafeMode),
		DryRun:   importDryRun,
	})

	return finishRun(rt, summary, runErr)
}

// resolveSafeMode combines the CLI flags with the config default.
// --no-safe-mode wins so a config-level safe_mode can be lifted for one
// run without editing the file.
func resolveSafeMode(enable, disable, configured bool) bool {
	if disable {
		return false
	}
	return enable || configured
}
