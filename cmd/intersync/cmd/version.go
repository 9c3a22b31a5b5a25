package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the release version and the build it was produced from.`,
	Run:   runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) {
	cmd.Printf("intersync %s (%s/%s)\n", Version, runtime.GOOS, runtime.GOARCH)
	cmd.Printf("  commit:     %s\n", Commit)
	cmd.Printf("  build date: %s\n", BuildDate)
	cmd.Printf("  go:         %s\n", runtime.Version())
}
