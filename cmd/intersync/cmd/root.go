package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/intersync/internal/logger"
	"github.com/dbsmedya/intersync/internal/syncer"
)

// Version information (set via ldflags at build time)
var (
	Version   = "0.0.1-dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile     string
	logLevel    string
	logFormat   string
	filesRoot   string
	errorReport string
)

// Exit codes. Interruption is reported distinctly so wrapping scripts
// can tell an operator stop from a failed run.
const (
	exitFailure     = 1
	exitInterrupted = 130
)

var rootCmd = &cobra.Command{
	Use:   "intersync",
	Short: "GitOps synchronization for infrastructure objects",
	Long: `A CLI tool for bidirectional synchronization between a remote
infrastructure object store and a local YAML file tree kept in Git.

Features:
  - Export remote objects (policies, pools, profiles) to versioned YAML files
  - Import the file tree back, creating, updating and deleting remote objects
  - Automatic type ordering via dependency resolution (Kahn's algorithm)
  - Safe mode and dry run for risk-free previews`,
	Version:      Version,
	SilenceUsage: true,
}

// Execute runs the root command and maps the outcome to an exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, syncer.ErrInterrupted) {
			os.Exit(exitInterrupted)
		}
		os.Exit(exitFailure)
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "intersync.yaml",
		"Path to configuration file")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// File tree override
	rootCmd.PersistentFlags().StringVar(&filesRoot, "files-root", "",
		"Override the local file tree root directory")

	// Diagnostics
	rootCmd.PersistentFlags().StringVar(&errorReport, "error-report", "",
		"Write a JSON error report to this path after the run")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
// In-flight work is drained; nothing is killed mid-call.
func signalContext(log *logger.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Warn("Received shutdown signal - finishing in-flight work...")
		cancel()
	}()

	return ctx, cancel
}
