package ops

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/hpungsan/passforge/internal/errors"
	"github.com/hpungsan/passforge/internal/generator"
	"github.com/hpungsan/passforge/internal/preset"
)

// writeImportFile writes a header plus one line per record. Strings are
// written verbatim so tests can include malformed lines.
func writeImportFile(t *testing.T, dir string, records ...any) string {
	t.Helper()

	var b strings.Builder
	header, _ := json.Marshal(ExportHeader{PassforgeExport: true, SchemaVersion: ExportSchemaVersion, ExportedAt: 1})
	b.Write(header)
	b.WriteByte('\n')
	for _, r := range records {
		if s, ok := r.(string); ok {
			b.WriteString(s)
		} else {
			line, err := json.Marshal(r)
			if err != nil {
				t.Fatalf("marshal record: %v", err)
			}
			b.Write(line)
		}
		b.WriteByte('\n')
	}

	path := filepath.Join(dir, "import.jsonl")
	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		t.Fatalf("write import file: %v", err)
	}
	return path
}

func record(id, name string, length int) preset.Preset {
	return preset.Preset{
		ID:        id,
		NameRaw:   name,
		Options:   generator.Options{Length: length, Numbers: true},
		CreatedAt: 100,
		UpdatedAt: 200,
	}
}

func fetchOptions(t *testing.T, deps Deps, name string) generator.Options {
	t.Helper()
	p, err := FetchPreset(context.Background(), deps.DB, FetchPresetInput{Name: name})
	if err != nil {
		t.Fatalf("FetchPreset(%q) failed: %v", name, err)
	}
	return p.Options
}

func TestImportPresets_HappyPath(t *testing.T) {
	deps := newTestDeps(t)
	dir := t.TempDir()
	path := writeImportFile(t, dir, record("01IMP001", "  Bank   PIN ", 6), record("01IMP002", "Wifi", 20))

	out, err := ImportPresets(context.Background(), deps.DB, allowDir(dir), ImportPresetsInput{Path: path})
	if err != nil {
		t.Fatalf("ImportPresets failed: %v", err)
	}
	if out.Imported != 2 || out.Skipped != 0 || len(out.Errors) != 0 {
		t.Fatalf("unexpected output: %+v", out)
	}

	// Names are renormalized on import
	p, err := FetchPreset(context.Background(), deps.DB, FetchPresetInput{Name: "bank pin"})
	if err != nil {
		t.Fatalf("FetchPreset failed: %v", err)
	}
	if p.ID != "01IMP001" || p.CreatedAt != 100 || p.UpdatedAt != 200 {
		t.Errorf("unexpected preset: %+v", p)
	}
}

func TestImportPresets_ModeErrorRollsBackOnCollision(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()
	if _, err := SavePreset(ctx, deps.DB, SavePresetInput{Name: "wifi", Options: generator.DefaultOptions()}); err != nil {
		t.Fatalf("SavePreset failed: %v", err)
	}

	dir := t.TempDir()
	path := writeImportFile(t, dir, record("01IMP001", "fresh", 8), record("01IMP002", "WIFI", 20))

	out, err := ImportPresets(ctx, deps.DB, allowDir(dir), ImportPresetsInput{Path: path, Mode: ImportModeError})
	if err != nil {
		t.Fatalf("ImportPresets failed: %v", err)
	}
	if out.Imported != 0 || len(out.Errors) != 1 {
		t.Fatalf("unexpected output: %+v", out)
	}
	if out.Errors[0].Code != string(errors.ErrNameAlreadyExists) || out.Errors[0].Line != 3 {
		t.Errorf("unexpected error: %+v", out.Errors[0])
	}

	// "fresh" was rolled back
	if _, err := FetchPreset(ctx, deps.DB, FetchPresetInput{Name: "fresh"}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected rollback, got %v", err)
	}
}

func TestImportPresets_ModeErrorRejectsBadLines(t *testing.T) {
	deps := newTestDeps(t)
	dir := t.TempDir()
	path := writeImportFile(t, dir,
		record("01IMP001", "good", 8),
		`{not json`,
		record("01IMP002", "too short", 2),
	)

	out, err := ImportPresets(context.Background(), deps.DB, allowDir(dir), ImportPresetsInput{Path: path})
	if err != nil {
		t.Fatalf("ImportPresets failed: %v", err)
	}
	if out.Imported != 0 || len(out.Errors) != 2 {
		t.Fatalf("unexpected output: %+v", out)
	}
	want := []ImportError{
		{Line: 3, Code: "PARSE_ERROR"},
		{Line: 4, Name: "too short", Code: "INVALID_RECORD"},
	}
	if diff := cmp.Diff(want, out.Errors, cmpopts.IgnoreFields(ImportError{}, "Message")); diff != "" {
		t.Errorf("ImportPresets(...).Errors: -want, +got:\n%s", diff)
	}
	if count := countPresets(t, deps); count != 0 {
		t.Errorf("stored %d presets, want 0", count)
	}
}

func TestImportPresets_ModeReplace(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()
	saved, err := SavePreset(ctx, deps.DB, SavePresetInput{Name: "wifi", Options: generator.DefaultOptions()})
	if err != nil {
		t.Fatalf("SavePreset failed: %v", err)
	}

	dir := t.TempDir()
	path := writeImportFile(t, dir, record("01IMP002", "Wifi", 30), `{broken`, record("01IMP003", "new", 9))

	out, err := ImportPresets(ctx, deps.DB, allowDir(dir), ImportPresetsInput{Path: path, Mode: ImportModeReplace})
	if err != nil {
		t.Fatalf("ImportPresets failed: %v", err)
	}
	if out.Imported != 2 || out.Skipped != 1 || len(out.Errors) != 1 {
		t.Fatalf("unexpected output: %+v", out)
	}

	p, err := FetchPreset(ctx, deps.DB, FetchPresetInput{Name: "wifi"})
	if err != nil {
		t.Fatalf("FetchPreset failed: %v", err)
	}
	if p.ID != saved.ID {
		t.Errorf("replace changed ID: %s -> %s", saved.ID, p.ID)
	}
	if p.Options.Length != 30 {
		t.Errorf("Length = %d, want 30", p.Options.Length)
	}
}

func TestImportPresets_ModeSkip(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()
	if _, err := SavePreset(ctx, deps.DB, SavePresetInput{Name: "wifi", Options: generator.DefaultOptions()}); err != nil {
		t.Fatalf("SavePreset failed: %v", err)
	}

	dir := t.TempDir()
	path := writeImportFile(t, dir, record("01IMP002", "wifi", 30), record("01IMP003", "new", 9))

	out, err := ImportPresets(ctx, deps.DB, allowDir(dir), ImportPresetsInput{Path: path, Mode: ImportModeSkip})
	if err != nil {
		t.Fatalf("ImportPresets failed: %v", err)
	}
	if out.Imported != 1 || out.Skipped != 1 {
		t.Fatalf("unexpected output: %+v", out)
	}
	if got := fetchOptions(t, deps, "wifi"); got != generator.DefaultOptions() {
		t.Errorf("existing preset modified: %+v", got)
	}
}

func TestImportPresets_IDCollisionGetsFreshID(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()
	saved, err := SavePreset(ctx, deps.DB, SavePresetInput{Name: "original", Options: generator.DefaultOptions()})
	if err != nil {
		t.Fatalf("SavePreset failed: %v", err)
	}

	dir := t.TempDir()
	path := writeImportFile(t, dir, record(saved.ID, "copy", 12), record("", "no id", 12))

	out, err := ImportPresets(ctx, deps.DB, allowDir(dir), ImportPresetsInput{Path: path})
	if err != nil {
		t.Fatalf("ImportPresets failed: %v", err)
	}
	if out.Imported != 2 {
		t.Fatalf("unexpected output: %+v", out)
	}

	for _, name := range []string{"copy", "no id"} {
		p, err := FetchPreset(ctx, deps.DB, FetchPresetInput{Name: name})
		if err != nil {
			t.Fatalf("FetchPreset(%q) failed: %v", name, err)
		}
		if p.ID == "" || p.ID == saved.ID {
			t.Errorf("%q got ID %q, want a fresh ID", name, p.ID)
		}
	}
}

func TestImportPresets_RoundTrip(t *testing.T) {
	src := newTestDeps(t)
	seedPresets(t, src, "alpha", "beta", "gamma")

	dir := t.TempDir()
	exportPath := filepath.Join(dir, "roundtrip.jsonl")
	if _, err := ExportPresets(context.Background(), src.DB, allowDir(dir), ExportPresetsInput{Path: exportPath}); err != nil {
		t.Fatalf("ExportPresets failed: %v", err)
	}

	dst := newTestDeps(t)
	out, err := ImportPresets(context.Background(), dst.DB, allowDir(dir), ImportPresetsInput{Path: exportPath})
	if err != nil {
		t.Fatalf("ImportPresets failed: %v", err)
	}
	if out.Imported != 3 {
		t.Fatalf("Imported = %d, want 3", out.Imported)
	}

	for _, name := range []string{"alpha", "beta", "gamma"} {
		if fetchOptions(t, src, name) != fetchOptions(t, dst, name) {
			t.Errorf("options for %q differ after round trip", name)
		}
	}
}

func TestImportPresets_InputValidation(t *testing.T) {
	deps := newTestDeps(t)
	dir := t.TempDir()

	_, err := ImportPresets(context.Background(), deps.DB, allowDir(dir), ImportPresetsInput{})
	assertCode(t, err, errors.ErrInvalidRequest)

	_, err = ImportPresets(context.Background(), deps.DB, allowDir(dir), ImportPresetsInput{Path: filepath.Join(dir, "x.jsonl"), Mode: "rename"})
	assertCode(t, err, errors.ErrInvalidRequest)

	_, err = ImportPresets(context.Background(), deps.DB, allowDir(dir), ImportPresetsInput{Path: filepath.Join(dir, "missing.jsonl")})
	assertCode(t, err, errors.ErrFileNotFound)
}

func countPresets(t *testing.T, deps Deps) int {
	t.Helper()
	out, err := ListPresets(context.Background(), deps.DB, ListPresetsInput{})
	if err != nil {
		t.Fatalf("ListPresets failed: %v", err)
	}
	return out.Pagination.Total
}
