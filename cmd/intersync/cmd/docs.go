package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/intersync/internal/logger"
	"github.com/dbsmedya/intersync/internal/objtype"
)

var docsOutput string

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Generate reference documentation for supported object types",
	Long: `Docs writes one Markdown reference page per supported object type:
folder location, dependencies, accepted aliases, documented fields and
an example YAML file.

Without --output the combined reference is printed to stdout.`,
	RunE: runDocs,
}

func init() {
	docsCmd.Flags().StringVarP(&docsOutput, "output", "o", "",
		"Directory to write per-type Markdown files into")

	rootCmd.AddCommand(docsCmd)
}

func runDocs(cmd *cobra.Command, args []string) error {
	reg, err := newCatalogRegistry(nil, logger.NewDefault())
	if err != nil {
		return err
	}

	aliasesByType := make(map[string][]string)
	for alias, id := range objtype.Aliases() {
		if alias == strings.ToLower(id) {
			continue
		}
		aliasesByType[id] = append(aliasesByType[id], alias)
	}
	for _, aliases := range aliasesByType {
		sort.Strings(aliases)
	}

	if docsOutput != "" {
		if err := os.MkdirAll(docsOutput, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", docsOutput, err)
		}
	}

	for _, id := range reg.IDs() {
		desc, _ := reg.Get(id)
		page := renderDocPage(desc.Document(), aliasesByType[id])

		if docsOutput == "" {
			fmt.Print(page)
			fmt.Println()
			continue
		}

		path := filepath.Join(docsOutput, strings.ReplaceAll(id, ".", "_")+".md")
		if err := os.WriteFile(path, []byte(page), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	if docsOutput != "" {
		cmd.Printf("Documentation written to %s\n", docsOutput)
	}
	return nil
}

// renderDocPage formats one type's reference page as Markdown.
func renderDocPage(doc *objtype.Document, aliases []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s (`%s`)\n\n", doc.DisplayName, doc.ObjectType)
	if doc.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", doc.Description)
	}
	fmt.Fprintf(&b, "- Folder: `%s/`\n", doc.FolderPath)
	if len(doc.Dependencies) > 0 {
		fmt.Fprintf(&b, "- Depends on: %s\n", strings.Join(doc.Dependencies, ", "))
	}
	if len(aliases) > 0 {
		fmt.Fprintf(&b, "- Aliases: %s\n", strings.Join(aliases, ", "))
	}
	b.WriteString("\n## Fields\n\n")
	b.WriteString("| Name | Type | Required | Description |\n")
	b.WriteString("|------|------|----------|-------------|\n")
	for _, field := range doc.Fields {
		required := "no"
		if field.Required {
			required = "yes"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", field.Name, field.Type, required, field.Description)
	}
	fmt.Fprintf(&b, "\n## Example\n\n```yaml\n%s```\n", doc.Example)

	return b.String()
}
