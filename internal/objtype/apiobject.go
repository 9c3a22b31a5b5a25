package objtype

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dbsmedya/intersync/internal/errs"
	"github.com/dbsmedya/intersync/internal/logger"
)

// API is the remote store capability a descriptor needs. Implemented by
// transport.Client; tests substitute fakes.
type API interface {
	List(ctx context.Context, restPath string) ([]map[string]interface{}, error)
	Create(ctx context.Context, restPath string, obj map[string]interface{}) (map[string]interface{}, error)
	Update(ctx context.Context, restPath, moid string, obj map[string]interface{}) (map[string]interface{}, error)
	Delete(ctx context.Context, restPath, moid string) error
}

// Metadata is the static description of one object type. The catalog in
// catalog.go is the single source of these.
type Metadata struct {
	ID           string
	DisplayName  string
	RestPath     string
	FolderPath   string
	Description  string
	Dependencies []string
	Aliases      []string
}

// serverManagedFields are set by the store and never round-tripped
// through the local file tree.
var serverManagedFields = map[string]bool{
	"Moid":                true,
	"CreateTime":          true,
	"ModTime":             true,
	"Owners":              true,
	"SharedScope":         true,
	"Ancestors":           true,
	"PermissionResources": true,
}

// apiObject is the generic REST-backed descriptor. One instance per
// catalog entry; all type-specific behavior lives in Metadata.
type apiObject struct {
	meta Metadata
	api  API
	log  *logger.Logger
}

// NewDescriptor creates a descriptor for one catalog entry.
func NewDescriptor(meta Metadata, api API, log *logger.Logger) Descriptor {
	if log == nil {
		log = logger.NewDefault()
	}
	return &apiObject{
		meta: meta,
		api:  api,
		log:  log.WithType(meta.ID),
	}
}

func (o *apiObject) ID() string             { return o.meta.ID }
func (o *apiObject) DisplayName() string    { return o.meta.DisplayName }
func (o *apiObject) FolderPath() string     { return o.meta.FolderPath }
func (o *apiObject) Dependencies() []string { return o.meta.Dependencies }

// Export writes one YAML file per user-defined remote object under
// outputDir/FolderPath. System-owned objects are skipped. In dry run
// the remote state is still fetched but nothing is written.
func (o *apiObject) Export(ctx context.Context, outputDir string, opts ExportOptions) *Result {
	result := NewResult(o.meta.ID)

	remote, err := o.api.List(ctx, o.meta.RestPath)
	if err != nil {
		result.AddError(err, map[string]interface{}{"type": o.meta.ID, "operation": "export"})
		return result
	}

	folder := filepath.Join(outputDir, o.meta.FolderPath)
	if !opts.DryRun {
		if err := os.MkdirAll(folder, 0755); err != nil {
			result.AddError(fmt.Errorf("failed to create %s: %w", folder, err),
				map[string]interface{}{"type": o.meta.ID})
			return result
		}
	}

	for _, obj := range remote {
		if isSystemOwned(obj) {
			continue
		}

		name, ok := obj["Name"].(string)
		if !ok || name == "" {
			result.AddError(&errs.ValidationError{
				TypeID: o.meta.ID,
				Reason: "remote object has no Name field",
			}, nil)
			continue
		}

		doc := o.filePayload(name, obj)
		data, err := yaml.Marshal(doc)
		if err != nil {
			result.AddError(&errs.ValidationError{
				TypeID: o.meta.ID,
				Object: name,
				Reason: fmt.Sprintf("failed to encode YAML: %v", err),
			}, nil)
			continue
		}

		path := filepath.Join(folder, sanitizeFileName(name)+".yaml")
		if opts.DryRun {
			o.log.Infow("Dry run: would export object", "object", name, "file", path)
			result.SuccessCount++
			continue
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			result.AddError(fmt.Errorf("failed to write %s: %w", path, err),
				map[string]interface{}{"type": o.meta.ID, "object": name})
			continue
		}

		result.SuccessCount++
		result.ExportedFiles = append(result.ExportedFiles, path)
		if opts.Verbose {
			o.log.Infow("Exported object", "object", name, "file", path)
		}
	}

	o.log.Debugw("Export complete", "objects", result.SuccessCount, "errors", result.ErrorCount)
	return result
}

// Import diffs the local tree against remote state and issues only the
// create and update calls the diff requires. Remote objects with no
// local counterpart are reported in PendingDeletes; deletion happens in
// a later phase, in reverse dependency order.
func (o *apiObject) Import(ctx context.Context, inputDir string, opts ImportOptions) *Result {
	result := NewResult(o.meta.ID)

	local := o.loadLocal(inputDir, result)

	remote, err := o.api.List(ctx, o.meta.RestPath)
	if err != nil {
		result.AddError(err, map[string]interface{}{"type": o.meta.ID, "operation": "import"})
		return result
	}

	remoteByName := make(map[string]map[string]interface{}, len(remote))
	for _, obj := range remote {
		if isSystemOwned(obj) {
			continue
		}
		if name, ok := obj["Name"].(string); ok && name != "" {
			remoteByName[name] = obj
		}
	}

	for _, name := range sortedKeys(local) {
		payload := local[name]
		existing, exists := remoteByName[name]

		if !exists {
			if opts.DryRun {
				o.log.Infow("Dry run: would create object", "object", name)
				continue
			}
			if _, err := o.api.Create(ctx, o.meta.RestPath, payload); err != nil {
				result.AddError(err, map[string]interface{}{
					"type": o.meta.ID, "object": name, "operation": "create",
				})
				continue
			}
			result.Created++
			result.SuccessCount++
			continue
		}

		if payloadsEqual(payload, o.remotePayload(existing)) {
			result.Unchanged++
			result.SuccessCount++
			continue
		}

		if opts.DryRun {
			o.log.Infow("Dry run: would update object", "object", name)
			continue
		}

		moid, _ := existing["Moid"].(string)
		if moid == "" {
			result.AddError(&errs.ValidationError{
				TypeID: o.meta.ID,
				Object: name,
				Reason: "remote object has no Moid, cannot update",
			}, nil)
			continue
		}
		if _, err := o.api.Update(ctx, o.meta.RestPath, moid, payload); err != nil {
			result.AddError(err, map[string]interface{}{
				"type": o.meta.ID, "object": name, "operation": "update",
			})
			continue
		}
		result.Updated++
		result.SuccessCount++
	}

	// Remote orphans become delete candidates for the reverse phase.
	for name := range remoteByName {
		if _, exists := local[name]; !exists {
			result.PendingDeletes = append(result.PendingDeletes, name)
		}
	}
	sort.Strings(result.PendingDeletes)

	o.log.Debugw("Import complete",
		"created", result.Created,
		"updated", result.Updated,
		"unchanged", result.Unchanged,
		"pending_deletes", len(result.PendingDeletes),
		"errors", result.ErrorCount,
	)
	return result
}

// Delete removes the named remote objects. Ordering and safe-mode
// suppression are the orchestrator's responsibility.
func (o *apiObject) Delete(ctx context.Context, names []string) *Result {
	result := NewResult(o.meta.ID)
	if len(names) == 0 {
		return result
	}

	remote, err := o.api.List(ctx, o.meta.RestPath)
	if err != nil {
		result.AddError(err, map[string]interface{}{"type": o.meta.ID, "operation": "delete"})
		return result
	}

	moidByName := make(map[string]string, len(remote))
	for _, obj := range remote {
		name, _ := obj["Name"].(string)
		moid, _ := obj["Moid"].(string)
		if name != "" && moid != "" {
			moidByName[name] = moid
		}
	}

	for _, name := range names {
		moid, ok := moidByName[name]
		if !ok {
			// Already gone; nothing to do.
			continue
		}
		if err := o.api.Delete(ctx, o.meta.RestPath, moid); err != nil {
			result.AddError(err, map[string]interface{}{
				"type": o.meta.ID, "object": name, "operation": "delete",
			})
			continue
		}
		result.Deleted++
		result.SuccessCount++
	}

	return result
}

// Document returns the reference documentation for this type.
func (o *apiObject) Document() *Document {
	example := fmt.Sprintf("ObjectType: %s\nName: example-%s\nDescription: Example %s\n",
		o.meta.ID, sanitizeFileName(o.meta.DisplayName), o.meta.DisplayName)

	return &Document{
		DisplayName:  o.meta.DisplayName,
		ObjectType:   o.meta.ID,
		FolderPath:   o.meta.FolderPath,
		Description:  o.meta.Description,
		Dependencies: o.meta.Dependencies,
		Fields: []Field{
			{Name: "ObjectType", Type: "string", Required: true, Description: "Canonical type identifier or a registered alias."},
			{Name: "Name", Type: "string", Required: true, Description: "Unique object name within the type."},
			{Name: "Description", Type: "string", Required: false, Description: "Free-form description."},
		},
		Example: example,
	}
}

// loadLocal reads the local YAML tree for this type into a name-indexed
// map of normalized payloads. Instance-level problems become validation
// records; the rest of the type continues.
func (o *apiObject) loadLocal(inputDir string, result *Result) map[string]map[string]interface{} {
	local := make(map[string]map[string]interface{})

	folder := filepath.Join(inputDir, o.meta.FolderPath)
	entries, err := os.ReadDir(folder)
	if err != nil {
		// A missing folder means no local objects of this type; the
		// type still participates so remote orphans get detected.
		if os.IsNotExist(err) {
			return local
		}
		result.AddError(fmt.Errorf("failed to read %s: %w", folder, err),
			map[string]interface{}{"type": o.meta.ID})
		return local
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(folder, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			result.AddError(fmt.Errorf("failed to read %s: %w", path, err),
				map[string]interface{}{"type": o.meta.ID})
			continue
		}

		var doc map[string]interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			result.AddError(&errs.ValidationError{
				TypeID: o.meta.ID,
				Object: entry.Name(),
				Reason: fmt.Sprintf("invalid YAML: %v", err),
			}, map[string]interface{}{"file": path})
			continue
		}

		name, ok := doc["Name"].(string)
		if !ok || name == "" {
			result.AddError(&errs.ValidationError{
				TypeID: o.meta.ID,
				Object: entry.Name(),
				Reason: "missing required Name field",
			}, map[string]interface{}{"file": path})
			continue
		}

		delete(doc, "ObjectType")
		local[name] = normalizeMap(doc)
	}

	return local
}

// filePayload builds the YAML document written for one remote object:
// the canonical type id, the name, then the user-settable fields.
func (o *apiObject) filePayload(name string, obj map[string]interface{}) map[string]interface{} {
	doc := map[string]interface{}{
		"ObjectType": o.meta.ID,
		"Name":       name,
	}
	for key, value := range obj {
		if serverManagedFields[key] || key == "ObjectType" || key == "Name" {
			continue
		}
		doc[key] = value
	}
	return doc
}

// remotePayload normalizes a remote object for comparison against a
// local payload.
func (o *apiObject) remotePayload(obj map[string]interface{}) map[string]interface{} {
	payload := make(map[string]interface{}, len(obj))
	for key, value := range obj {
		if serverManagedFields[key] || key == "ObjectType" {
			continue
		}
		payload[key] = value
	}
	return normalizeMap(payload)
}

// payloadsEqual compares two normalized payloads.
func payloadsEqual(a, b map[string]interface{}) bool {
	return reflect.DeepEqual(a, b)
}

// normalizeMap rewrites scalars so YAML- and JSON-decoded values of the
// same document compare equal (ints become float64, nested maps are
// keyed by string).
func normalizeMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case float32:
		return float64(val)
	case map[string]interface{}:
		return normalizeMap(val)
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, nested := range val {
			out[fmt.Sprint(k)] = normalizeValue(nested)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, nested := range val {
			out[i] = normalizeValue(nested)
		}
		return out
	default:
		return v
	}
}

// isSystemOwned reports whether a remote object is a shared system
// default that must never be exported or deleted.
func isSystemOwned(obj map[string]interface{}) bool {
	scope, _ := obj["SharedScope"].(string)
	return scope == "shared"
}

var fileNameUnsafe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// sanitizeFileName converts an object name into a safe file name.
func sanitizeFileName(name string) string {
	s := fileNameUnsafe.ReplaceAllString(name, "-")
	return strings.Trim(s, "-")
}

// sortedKeys returns map keys in lexicographic order for deterministic
// processing.
func sortedKeys(m map[string]map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
