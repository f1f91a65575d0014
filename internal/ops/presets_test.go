package ops

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/passforge/internal/errors"
	"github.com/hpungsan/passforge/internal/generator"
)

func TestSavePreset_HappyPath(t *testing.T) {
	database := newTestDB(t)

	out, err := SavePreset(context.Background(), database, SavePresetInput{
		Name:    "Work Laptop",
		Options: generator.DefaultOptions(),
	})
	if err != nil {
		t.Fatalf("SavePreset failed: %v", err)
	}

	if len(out.ID) != 26 {
		t.Errorf("ID length = %d, want 26 (ULID)", len(out.ID))
	}
	if out.Name != "Work Laptop" {
		t.Errorf("Name = %q, want %q", out.Name, "Work Laptop")
	}
	if out.Replaced {
		t.Error("Replaced = true, want false")
	}
}

func TestSavePreset_Validation(t *testing.T) {
	valid := generator.DefaultOptions()

	tests := []struct {
		name  string
		input SavePresetInput
		code  errors.ErrorCode
	}{
		{"empty name", SavePresetInput{Name: "  ", Options: valid}, errors.ErrInvalidRequest},
		{"bad mode", SavePresetInput{Name: "a", Options: valid, Mode: "merge"}, errors.ErrInvalidRequest},
		{"short length", SavePresetInput{Name: "a", Options: generator.Options{Length: 2, Lowercase: true}}, errors.ErrValidation},
		{"no classes", SavePresetInput{Name: "a", Options: generator.Options{Length: 12}}, errors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SavePreset(context.Background(), newTestDB(t), tt.input)
			assertCode(t, err, tt.code)
		})
	}
}

func TestSavePreset_Collision(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)

	first, err := SavePreset(ctx, database, SavePresetInput{Name: "wifi", Options: generator.DefaultOptions()})
	if err != nil {
		t.Fatalf("SavePreset failed: %v", err)
	}

	_, err = SavePreset(ctx, database, SavePresetInput{Name: "WiFi", Options: generator.DefaultOptions()})
	assertCode(t, err, errors.ErrNameAlreadyExists)

	replacement := generator.Options{Length: 32, Lowercase: true, Symbols: true}
	second, err := SavePreset(ctx, database, SavePresetInput{Name: "WiFi", Options: replacement, Mode: SaveModeReplace})
	if err != nil {
		t.Fatalf("SavePreset replace failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("replace ID = %q, want original %q", second.ID, first.ID)
	}
	if !second.Replaced {
		t.Error("Replaced = false, want true")
	}

	got, err := FetchPreset(ctx, database, FetchPresetInput{Name: "wifi"})
	if err != nil {
		t.Fatalf("FetchPreset failed: %v", err)
	}
	if got.Options != replacement {
		t.Errorf("Options = %+v, want %+v", got.Options, replacement)
	}
	if got.NameRaw != "WiFi" {
		t.Errorf("NameRaw = %q, want WiFi", got.NameRaw)
	}
}

func TestSavePreset_ReplaceCreatesWhenMissing(t *testing.T) {
	out, err := SavePreset(context.Background(), newTestDB(t), SavePresetInput{
		Name:    "fresh",
		Options: generator.DefaultOptions(),
		Mode:    SaveModeReplace,
	})
	if err != nil {
		t.Fatalf("SavePreset failed: %v", err)
	}
	if out.Replaced {
		t.Error("Replaced = true for a new preset")
	}
}

func TestFetchPreset_Errors(t *testing.T) {
	database := newTestDB(t)

	_, err := FetchPreset(context.Background(), database, FetchPresetInput{Name: ""})
	assertCode(t, err, errors.ErrInvalidRequest)

	_, err = FetchPreset(context.Background(), database, FetchPresetInput{Name: "ghost"})
	assertCode(t, err, errors.ErrNotFound)
}

func TestListPresets_Pagination(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)

	for i := range 5 {
		_, err := SavePreset(ctx, database, SavePresetInput{Name: fmt.Sprintf("preset-%d", i), Options: generator.DefaultOptions()})
		if err != nil {
			t.Fatalf("SavePreset %d failed: %v", i, err)
		}
	}

	out, err := ListPresets(ctx, database, ListPresetsInput{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("ListPresets failed: %v", err)
	}
	if len(out.Items) != 2 {
		t.Errorf("len(Items) = %d, want 2", len(out.Items))
	}
	if out.Pagination != (Pagination{Limit: 2, Offset: 1, HasMore: true, Total: 5}) {
		t.Errorf("Pagination = %+v", out.Pagination)
	}
	if out.Sort != "updated_at_desc" {
		t.Errorf("Sort = %q", out.Sort)
	}

	out, err = ListPresets(ctx, database, ListPresetsInput{Offset: 4})
	if err != nil {
		t.Fatalf("ListPresets failed: %v", err)
	}
	if out.Pagination.HasMore {
		t.Error("HasMore = true on last page")
	}
}

func TestListPresets_LimitBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     ListPresetsInput
		wantLimit int
		wantOff   int
	}{
		{"default limit", ListPresetsInput{}, DefaultListLimit, 0},
		{"capped limit", ListPresetsInput{Limit: 1000}, MaxListLimit, 0},
		{"negative offset", ListPresetsInput{Offset: -5}, DefaultListLimit, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ListPresets(context.Background(), newTestDB(t), tt.input)
			if err != nil {
				t.Fatalf("ListPresets failed: %v", err)
			}
			if out.Pagination.Limit != tt.wantLimit || out.Pagination.Offset != tt.wantOff {
				t.Errorf("Pagination = %+v", out.Pagination)
			}
			if out.Items == nil {
				t.Error("Items = nil, want empty slice")
			}
		})
	}
}

func TestDeletePreset(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)

	saved, err := SavePreset(ctx, database, SavePresetInput{Name: "old", Options: generator.DefaultOptions()})
	if err != nil {
		t.Fatalf("SavePreset failed: %v", err)
	}

	out, err := DeletePreset(ctx, database, DeletePresetInput{Name: " OLD "})
	if err != nil {
		t.Fatalf("DeletePreset failed: %v", err)
	}
	if !out.Deleted || out.ID != saved.ID {
		t.Errorf("DeletePreset = %+v, want deleted %s", out, saved.ID)
	}

	_, err = DeletePreset(ctx, database, DeletePresetInput{Name: "old"})
	assertCode(t, err, errors.ErrNotFound)

	_, err = DeletePreset(ctx, database, DeletePresetInput{})
	assertCode(t, err, errors.ErrInvalidRequest)
}

func TestUpdatePreset(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)

	base := generator.Options{Length: 16, Lowercase: true, Numbers: true}
	saved, err := SavePreset(ctx, database, SavePresetInput{Name: "Router", Options: base})
	require.NoError(t, err)

	length := 32
	symbols := true
	out, err := UpdatePreset(ctx, database, UpdatePresetInput{
		Name:      "ROUTER",
		Overrides: generator.Overrides{Length: &length, Symbols: &symbols},
	})
	require.NoError(t, err)
	require.Equal(t, saved.ID, out.ID)
	require.Equal(t, "Router", out.Name)

	want := base
	want.Length = 32
	want.Symbols = true
	require.Equal(t, want, out.Options)

	fetched, err := FetchPreset(ctx, database, FetchPresetInput{Name: "router"})
	require.NoError(t, err)
	require.Equal(t, want, fetched.Options)
}

func TestUpdatePreset_Errors(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)

	_, err := SavePreset(ctx, database, SavePresetInput{Name: "router", Options: generator.Options{Length: 16, Lowercase: true}})
	require.NoError(t, err)

	short := 2
	off := false

	tests := []struct {
		name  string
		input UpdatePresetInput
		code  errors.ErrorCode
	}{
		{"empty name", UpdatePresetInput{Name: " ", Overrides: generator.Overrides{Length: &short}}, errors.ErrInvalidRequest},
		{"no overrides", UpdatePresetInput{Name: "router"}, errors.ErrInvalidRequest},
		{"missing preset", UpdatePresetInput{Name: "ghost", Overrides: generator.Overrides{Length: &short}}, errors.ErrNotFound},
		{"invalid length", UpdatePresetInput{Name: "router", Overrides: generator.Overrides{Length: &short}}, errors.ErrValidation},
		{"no classes left", UpdatePresetInput{Name: "router", Overrides: generator.Overrides{Lowercase: &off}}, errors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UpdatePreset(ctx, database, tt.input)
			assertCode(t, err, tt.code)
		})
	}

	fetched, err := FetchPreset(ctx, database, FetchPresetInput{Name: "router"})
	require.NoError(t, err)
	require.Equal(t, 16, fetched.Options.Length, "failed updates leave the preset unchanged")
}

// TestPresetWorkflow exercises the preset lifecycle:
// save → generate from preset → list → delete → generate (not found)
func TestPresetWorkflow(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t)

	opts := generator.Options{Length: 24, Lowercase: true, Uppercase: true, ExcludeSimilar: true, EnsureAllTypes: true}
	_, err := SavePreset(ctx, deps.DB, SavePresetInput{Name: "Banking", Options: opts})
	require.NoError(t, err)

	gen, err := Generate(ctx, deps, GenerateInput{Preset: "banking", Count: intPtr(4)})
	require.NoError(t, err)
	require.Len(t, gen.Passwords, 4)
	require.Equal(t, opts, gen.Options)
	for _, item := range gen.Passwords {
		require.NotContainsf(t, item.Password, "l", "similar chars excluded")
		require.Len(t, item.Password, 24)
	}

	list, err := ListPresets(ctx, deps.DB, ListPresetsInput{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	require.Equal(t, "Banking", list.Items[0].NameRaw)

	_, err = DeletePreset(ctx, deps.DB, DeletePresetInput{Name: "banking"})
	require.NoError(t, err)

	_, err = Generate(ctx, deps, GenerateInput{Preset: "banking"})
	var pErr *errors.PassError
	require.ErrorAs(t, err, &pErr)
	require.Equal(t, errors.ErrNotFound, pErr.Code)
}
