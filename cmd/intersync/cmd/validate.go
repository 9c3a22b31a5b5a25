package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dbsmedya/intersync/internal/config"
	"github.com/dbsmedya/intersync/internal/logger"
	"github.com/dbsmedya/intersync/internal/objtype"
	"github.com/dbsmedya/intersync/internal/transport"
)

var validateSkipAPI bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration, type ordering and the local file tree",
	Long: `Validate checks the configuration file, the object type dependency
graph, and the local YAML tree, without touching the remote store.

Checks performed:
  - Configuration syntax and required fields
  - Dependency graph is acyclic (a valid processing order exists)
  - Every local YAML file parses and carries a Name field
  - Every local file's ObjectType resolves to a known type
  - The remote endpoint accepts the configured credentials (--skip-api to omit)

Example:
  intersync validate --config intersync.yaml`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateSkipAPI, "skip-api", false,
		"Skip the remote endpoint reachability probe")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()
	problems := 0

	fmt.Printf("=== Configuration ===\n")
	fmt.Printf("Config file: %s\n", configFile)

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return fmt.Errorf("validation failed")
	}
	cfg.ApplyOverrides(logLevel, logFormat, filesRoot, 0, false)

	configOK := true
	if errsList := cfg.Validate(); len(errsList) > 0 {
		for _, e := range errsList {
			fmt.Printf("❌ %v\n", e)
		}
		problems += len(errsList)
		configOK = false
	} else {
		fmt.Printf("✅ Configuration valid\n")
	}

	fmt.Printf("\n=== Type Ordering ===\n")
	reg, err := newCatalogRegistry(nil, logger.NewDefault())
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		problems++
	} else if err := reg.Validate(); err != nil {
		fmt.Printf("❌ %v\n", err)
		problems++
	} else {
		fmt.Printf("✅ %d types, dependency graph is acyclic\n", reg.Len())
	}

	fmt.Printf("\n=== Local File Tree ===\n")
	fmt.Printf("Files root: %s\n", cfg.Files.Root)
	checked, fileProblems := validateTree(cfg.Files.Root)
	problems += fileProblems
	if fileProblems == 0 {
		fmt.Printf("✅ %d files valid\n", checked)
	}

	fmt.Printf("\n=== Remote Endpoint ===\n")
	switch {
	case validateSkipAPI:
		fmt.Printf("⚠️  skipped (--skip-api)\n")
	case !configOK:
		fmt.Printf("⚠️  skipped (configuration invalid)\n")
	default:
		client := transport.New(cfg.API, logger.NewDefault())
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()
		if err := client.Ping(ctx); err != nil {
			fmt.Printf("❌ %v\n", err)
			problems++
		} else {
			fmt.Printf("✅ %s reachable, credentials accepted\n", client.Endpoint())
		}
	}

	if problems > 0 {
		return fmt.Errorf("validation failed with %d problem(s)", problems)
	}
	fmt.Printf("\nAll checks passed.\n")
	return nil
}

// validateTree walks the files root and checks every YAML file for
// parseability, a Name field and a resolvable ObjectType.
func validateTree(root string) (checked, problems int) {
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		checked++

		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("❌ %s: %v\n", path, err)
			problems++
			return nil
		}

		var doc map[string]interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			fmt.Printf("❌ %s: invalid YAML: %v\n", path, err)
			problems++
			return nil
		}

		if name, ok := doc["Name"].(string); !ok || name == "" {
			fmt.Printf("❌ %s: missing required Name field\n", path)
			problems++
		}

		if typeID, ok := doc["ObjectType"].(string); ok && typeID != "" {
			if _, known := objtype.ResolveAlias(typeID); !known {
				fmt.Printf("❌ %s: unknown ObjectType %q\n", path, typeID)
				problems++
			}
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("⚠️  files root does not exist yet\n")
			return checked, problems
		}
		fmt.Printf("❌ failed to walk %s: %v\n", root, err)
		problems++
	}
	return checked, problems
}
