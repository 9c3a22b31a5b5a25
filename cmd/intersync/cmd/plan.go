package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/intersync/internal/display"
	"github.com/dbsmedya/intersync/internal/logger"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the computed type processing order",
	Long: `Plan prints the order object types are processed in, derived from
their declared dependencies: creates and updates run dependencies-first,
deletions run in the reverse order.

Plan needs no configuration or remote connectivity.`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	// Ordering is static catalog metadata; no remote client needed.
	reg, err := newCatalogRegistry(nil, logger.NewDefault())
	if err != nil {
		return err
	}

	return display.New(os.Stdout).Plan(reg)
}
