package objtype

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dbsmedya/intersync/internal/errs"
)

// fakeAPI is an in-memory object store keyed by Moid.
type fakeAPI struct {
	objects map[string]map[string]interface{}

	listErr error
	creates int
	updates int
	deletes int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{objects: make(map[string]map[string]interface{})}
}

func (f *fakeAPI) seed(obj map[string]interface{}) {
	moid := obj["Name"].(string) + "-moid"
	obj["Moid"] = moid
	f.objects[moid] = obj
}

func (f *fakeAPI) List(ctx context.Context, restPath string) ([]map[string]interface{}, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]map[string]interface{}, 0, len(f.objects))
	for _, obj := range f.objects {
		out = append(out, obj)
	}
	return out, nil
}

func (f *fakeAPI) Create(ctx context.Context, restPath string, obj map[string]interface{}) (map[string]interface{}, error) {
	f.creates++
	copied := make(map[string]interface{}, len(obj))
	for k, v := range obj {
		copied[k] = v
	}
	f.seed(copied)
	return copied, nil
}

func (f *fakeAPI) Update(ctx context.Context, restPath, moid string, obj map[string]interface{}) (map[string]interface{}, error) {
	f.updates++
	existing, ok := f.objects[moid]
	if !ok {
		return nil, &errs.ValidationError{Reason: "no such moid"}
	}
	for k, v := range obj {
		existing[k] = v
	}
	return existing, nil
}

func (f *fakeAPI) Delete(ctx context.Context, restPath, moid string) error {
	f.deletes++
	delete(f.objects, moid)
	return nil
}

func testMeta() Metadata {
	return Metadata{
		ID:           "ntp.Policy",
		DisplayName:  "NTP Policy",
		RestPath:     "ntp/Policies",
		FolderPath:   "policies",
		Dependencies: []string{"organization.Organization"},
	}
}

func writeLocal(t *testing.T, dir, folder, file string, doc map[string]interface{}) {
	t.Helper()
	data, err := yaml.Marshal(doc)
	require.NoError(t, err)
	full := filepath.Join(dir, folder)
	require.NoError(t, os.MkdirAll(full, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(full, file), data, 0644))
}

func TestExport_WritesOneFilePerObject(t *testing.T) {
	api := newFakeAPI()
	api.seed(map[string]interface{}{"Name": "ntp-west", "NtpServers": []interface{}{"10.0.0.1"}})
	api.seed(map[string]interface{}{"Name": "ntp-east", "NtpServers": []interface{}{"10.0.0.2"}})

	desc := NewDescriptor(testMeta(), api, nil)
	dir := t.TempDir()

	res := desc.Export(context.Background(), dir, ExportOptions{})

	assert.Equal(t, 2, res.SuccessCount)
	assert.Zero(t, res.ErrorCount)
	assert.Len(t, res.ExportedFiles, 2)
	assert.FileExists(t, filepath.Join(dir, "policies", "ntp-west.yaml"))
	assert.FileExists(t, filepath.Join(dir, "policies", "ntp-east.yaml"))

	data, err := os.ReadFile(filepath.Join(dir, "policies", "ntp-west.yaml"))
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, "ntp.Policy", doc["ObjectType"])
	assert.Equal(t, "ntp-west", doc["Name"])
	assert.NotContains(t, doc, "Moid", "server-managed fields are stripped")
}

func TestExport_SkipsSystemOwned(t *testing.T) {
	api := newFakeAPI()
	api.seed(map[string]interface{}{"Name": "user-policy"})
	api.seed(map[string]interface{}{"Name": "builtin-policy", "SharedScope": "shared"})

	desc := NewDescriptor(testMeta(), api, nil)
	dir := t.TempDir()

	res := desc.Export(context.Background(), dir, ExportOptions{})

	assert.Equal(t, 1, res.SuccessCount)
	assert.NoFileExists(t, filepath.Join(dir, "policies", "builtin-policy.yaml"))
}

func TestExport_SanitizesFileNames(t *testing.T) {
	api := newFakeAPI()
	api.seed(map[string]interface{}{"Name": "prod/us west #1"})

	desc := NewDescriptor(testMeta(), api, nil)
	dir := t.TempDir()

	res := desc.Export(context.Background(), dir, ExportOptions{})

	require.Len(t, res.ExportedFiles, 1)
	assert.Equal(t, "prod-us-west-1.yaml", filepath.Base(res.ExportedFiles[0]))
}

func TestExport_DryRunWritesNothing(t *testing.T) {
	api := newFakeAPI()
	api.seed(map[string]interface{}{"Name": "ntp-west"})

	desc := NewDescriptor(testMeta(), api, nil)
	dir := t.TempDir()

	res := desc.Export(context.Background(), dir, ExportOptions{DryRun: true})

	assert.Equal(t, 1, res.SuccessCount)
	assert.Empty(t, res.ExportedFiles)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "dry run must not touch the filesystem")
}

func TestExport_ListFailure(t *testing.T) {
	api := newFakeAPI()
	api.listErr = &errs.TransportError{Op: "list ntp/Policies", StatusCode: 500, Err: errors.New("boom")}

	desc := NewDescriptor(testMeta(), api, nil)

	res := desc.Export(context.Background(), t.TempDir(), ExportOptions{})

	assert.Equal(t, 1, res.ErrorCount)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, errs.CodeTransport, res.Errors[0].Code)
}

func TestImport_CreatesUpdatesUnchanged(t *testing.T) {
	api := newFakeAPI()
	api.seed(map[string]interface{}{"Name": "unchanged", "Timezone": "UTC"})
	api.seed(map[string]interface{}{"Name": "drifted", "Timezone": "UTC"})

	dir := t.TempDir()
	writeLocal(t, dir, "policies", "unchanged.yaml", map[string]interface{}{
		"ObjectType": "ntp.Policy", "Name": "unchanged", "Timezone": "UTC",
	})
	writeLocal(t, dir, "policies", "drifted.yaml", map[string]interface{}{
		"ObjectType": "ntp.Policy", "Name": "drifted", "Timezone": "Europe/Istanbul",
	})
	writeLocal(t, dir, "policies", "brand-new.yaml", map[string]interface{}{
		"ObjectType": "ntp.Policy", "Name": "brand-new", "Timezone": "UTC",
	})

	desc := NewDescriptor(testMeta(), api, nil)
	res := desc.Import(context.Background(), dir, ImportOptions{})

	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Unchanged)
	assert.Zero(t, res.ErrorCount)
	assert.Empty(t, res.PendingDeletes)
	assert.Equal(t, 1, api.creates)
	assert.Equal(t, 1, api.updates)
}

func TestImport_SecondRunIsIdempotent(t *testing.T) {
	api := newFakeAPI()
	dir := t.TempDir()
	writeLocal(t, dir, "policies", "one.yaml", map[string]interface{}{
		"ObjectType": "ntp.Policy", "Name": "one", "Timezone": "UTC",
	})

	desc := NewDescriptor(testMeta(), api, nil)

	first := desc.Import(context.Background(), dir, ImportOptions{})
	assert.Equal(t, 1, first.Created)

	second := desc.Import(context.Background(), dir, ImportOptions{})
	assert.Zero(t, second.Created)
	assert.Zero(t, second.Updated)
	assert.Equal(t, 1, second.Unchanged)
	assert.Equal(t, 1, api.creates, "no extra remote mutations on re-import")
	assert.Zero(t, api.updates)
}

func TestImport_ReportsOrphansWithoutDeleting(t *testing.T) {
	api := newFakeAPI()
	api.seed(map[string]interface{}{"Name": "orphan-b"})
	api.seed(map[string]interface{}{"Name": "orphan-a"})

	desc := NewDescriptor(testMeta(), api, nil)
	// Empty local tree: everything remote is an orphan.
	res := desc.Import(context.Background(), t.TempDir(), ImportOptions{})

	assert.Equal(t, []string{"orphan-a", "orphan-b"}, res.PendingDeletes)
	assert.Zero(t, api.deletes, "import phase never deletes")
}

func TestImport_DryRunIssuesNoMutations(t *testing.T) {
	api := newFakeAPI()
	api.seed(map[string]interface{}{"Name": "drifted", "Timezone": "UTC"})

	dir := t.TempDir()
	writeLocal(t, dir, "policies", "drifted.yaml", map[string]interface{}{
		"ObjectType": "ntp.Policy", "Name": "drifted", "Timezone": "Europe/Istanbul",
	})
	writeLocal(t, dir, "policies", "brand-new.yaml", map[string]interface{}{
		"ObjectType": "ntp.Policy", "Name": "brand-new",
	})

	desc := NewDescriptor(testMeta(), api, nil)
	res := desc.Import(context.Background(), dir, ImportOptions{DryRun: true})

	assert.Zero(t, res.Created)
	assert.Zero(t, res.Updated)
	assert.Zero(t, api.creates)
	assert.Zero(t, api.updates)
}

func TestImport_InvalidYAMLSkipsInstance(t *testing.T) {
	api := newFakeAPI()
	dir := t.TempDir()
	folder := filepath.Join(dir, "policies")
	require.NoError(t, os.MkdirAll(folder, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "broken.yaml"),
		[]byte(":\n  - not yaml: ["), 0644))
	writeLocal(t, dir, "policies", "good.yaml", map[string]interface{}{
		"ObjectType": "ntp.Policy", "Name": "good",
	})

	desc := NewDescriptor(testMeta(), api, nil)
	res := desc.Import(context.Background(), dir, ImportOptions{})

	assert.Equal(t, 1, res.Created, "valid siblings still processed")
	assert.Equal(t, 1, res.ErrorCount)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, errs.CodeValidation, res.Errors[0].Code)
}

func TestImport_MissingNameSkipsInstance(t *testing.T) {
	api := newFakeAPI()
	dir := t.TempDir()
	writeLocal(t, dir, "policies", "nameless.yaml", map[string]interface{}{
		"ObjectType": "ntp.Policy", "Timezone": "UTC",
	})

	desc := NewDescriptor(testMeta(), api, nil)
	res := desc.Import(context.Background(), dir, ImportOptions{})

	assert.Equal(t, 1, res.ErrorCount)
	assert.Zero(t, api.creates)
}

func TestDelete_SkipsAlreadyGone(t *testing.T) {
	api := newFakeAPI()
	api.seed(map[string]interface{}{"Name": "doomed"})

	desc := NewDescriptor(testMeta(), api, nil)
	res := desc.Delete(context.Background(), []string{"doomed", "already-gone"})

	assert.Equal(t, 1, res.Deleted)
	assert.Zero(t, res.ErrorCount)
	assert.Equal(t, 1, api.deletes)
}

func TestDelete_NoNamesNoCalls(t *testing.T) {
	api := newFakeAPI()

	desc := NewDescriptor(testMeta(), api, nil)
	res := desc.Delete(context.Background(), nil)

	assert.Zero(t, res.Deleted)
	assert.Zero(t, api.deletes)
}

func TestNormalizeValue_NumericEquivalence(t *testing.T) {
	local := normalizeMap(map[string]interface{}{"Port": 123})
	remote := normalizeMap(map[string]interface{}{"Port": float64(123)})
	assert.True(t, payloadsEqual(local, remote))
}
