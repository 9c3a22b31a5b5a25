// Package objtype defines the object type descriptor contract and the
// static catalog of supported types. Each descriptor knows how to
// export and import one resource category against the remote store.
package objtype

import (
	"context"

	"github.com/dbsmedya/intersync/internal/errs"
)

// Descriptor is the capability contract for one object type. Static
// metadata is immutable once the descriptor is registered.
type Descriptor interface {
	// ID returns the canonical type identifier, e.g. "bios.Policy".
	ID() string
	// DisplayName returns the human-readable type name.
	DisplayName() string
	// FolderPath returns the folder objects of this type live under,
	// relative to the configured files root.
	FolderPath() string
	// Dependencies returns the ids of types that must be processed
	// before this one.
	Dependencies() []string

	// Export pulls remote objects of this type into outputDir, one
	// YAML file per instance under FolderPath.
	Export(ctx context.Context, outputDir string, opts ExportOptions) *Result

	// Import pushes the local tree into remote state: creates and
	// updates only. Remote objects with no local counterpart are
	// reported in Result.PendingDeletes for the reverse-order delete
	// phase; Import never deletes.
	Import(ctx context.Context, inputDir string, opts ImportOptions) *Result

	// Delete removes the named remote objects. Callers are responsible
	// for ordering and for safe-mode suppression.
	Delete(ctx context.Context, names []string) *Result

	// Document returns the reference documentation for this type.
	Document() *Document
}

// ExportOptions controls export behavior for one export task.
type ExportOptions struct {
	// DryRun reports intended actions without touching the filesystem.
	DryRun bool
	// Verbose logs every exported object individually.
	Verbose bool
}

// ImportOptions controls create/update behavior for one import task.
type ImportOptions struct {
	// DryRun reports intended actions without issuing remote calls.
	DryRun bool
}

// Result is the outcome of one per-type task.
type Result struct {
	TypeID       string
	SuccessCount int
	ErrorCount   int
	Errors       []errs.Record

	// Export only.
	ExportedFiles []string

	// Import only.
	Created        int
	Updated        int
	Deleted        int
	Unchanged      int
	PendingDeletes []string
}

// NewResult creates an empty Result for the given type.
func NewResult(typeID string) *Result {
	return &Result{TypeID: typeID}
}

// AddError records a classified error against this result.
func (r *Result) AddError(err error, context map[string]interface{}) {
	code, severity := errs.Classify(err)
	r.Errors = append(r.Errors, errs.Record{
		Code:     code,
		Message:  err.Error(),
		Context:  context,
		Severity: severity,
	})
	r.ErrorCount++
}

// Document describes one object type for generated reference docs.
type Document struct {
	DisplayName  string   `yaml:"display_name"`
	ObjectType   string   `yaml:"object_type"`
	FolderPath   string   `yaml:"folder_path"`
	Description  string   `yaml:"description,omitempty"`
	Dependencies []string `yaml:"dependencies,omitempty"`
	Fields       []Field  `yaml:"fields"`
	Example      string   `yaml:"example"`
}

// Field describes one documented attribute of an object type.
type Field struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Required    bool   `yaml:"required"`
	Description string `yaml:"description,omitempty"`
}
