package ops

import (
	"context"
	"database/sql"
	"testing"

	"github.com/hpungsan/passforge/internal/config"
	"github.com/hpungsan/passforge/internal/db"
	"github.com/hpungsan/passforge/internal/errors"
	"github.com/hpungsan/passforge/internal/generator"
	"github.com/hpungsan/passforge/internal/metrics"
	"github.com/hpungsan/passforge/internal/random"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// newTestDeps wires a secure generator, a fresh database and metrics.
func newTestDeps(t *testing.T) Deps {
	t.Helper()
	return Deps{
		DB:        newTestDB(t),
		Config:    config.DefaultConfig(),
		Generator: generator.New(random.New(random.CryptoSource{})),
		Metrics:   metrics.New(),
	}
}

func intPtr(n int) *int { return &n }

func assertCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", code)
	}
	if !errors.Is(err, code) {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestResolveOptions_Precedence(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t)

	saved := generator.Options{Length: 6, Numbers: true}
	if _, err := SavePreset(ctx, deps.DB, SavePresetInput{Name: "pin", Options: saved}); err != nil {
		t.Fatalf("SavePreset failed: %v", err)
	}
	explicit := generator.Options{Length: 30, Symbols: true}

	tests := []struct {
		name     string
		explicit *generator.Options
		preset   string
		want     generator.Options
	}{
		{"explicit wins over preset", &explicit, "pin", explicit},
		{"preset when no explicit", nil, "PIN", saved},
		{"config defaults otherwise", nil, "", generator.DefaultOptions()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveOptions(ctx, deps, tt.explicit, tt.preset, generator.Overrides{})
			if err != nil {
				t.Fatalf("resolveOptions failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("options = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolveOptions_PresetErrors(t *testing.T) {
	ctx := context.Background()

	deps := newTestDeps(t)
	_, err := resolveOptions(ctx, deps, nil, "missing", generator.Overrides{})
	assertCode(t, err, errors.ErrNotFound)

	_, err = resolveOptions(ctx, deps, nil, "   ", generator.Overrides{})
	assertCode(t, err, errors.ErrInvalidRequest)

	deps.DB = nil
	_, err = resolveOptions(ctx, deps, nil, "pin", generator.Overrides{})
	assertCode(t, err, errors.ErrInvalidRequest)
}

func TestResolveOptions_ConfiguredDefaults(t *testing.T) {
	deps := newTestDeps(t)
	custom := generator.Options{Length: 40, Lowercase: true, Symbols: true}
	deps.Config.DefaultOptions = &custom

	got, err := resolveOptions(context.Background(), deps, nil, "", generator.Overrides{})
	if err != nil {
		t.Fatalf("resolveOptions failed: %v", err)
	}
	if got != custom {
		t.Errorf("options = %+v, want %+v", got, custom)
	}
}

func TestResolveOptions_OverridesOnPreset(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t)

	saved := generator.Options{Length: 6, Numbers: true}
	if _, err := SavePreset(ctx, deps.DB, SavePresetInput{Name: "pin", Options: saved}); err != nil {
		t.Fatalf("SavePreset failed: %v", err)
	}

	length := 8
	got, err := resolveOptions(ctx, deps, nil, "pin", generator.Overrides{Length: &length})
	if err != nil {
		t.Fatalf("resolveOptions failed: %v", err)
	}
	want := generator.Options{Length: 8, Numbers: true}
	if got != want {
		t.Errorf("options = %+v, want %+v", got, want)
	}
}

func TestGenerateULID(t *testing.T) {
	a, err := generateULID()
	if err != nil {
		t.Fatalf("generateULID failed: %v", err)
	}
	b, err := generateULID()
	if err != nil {
		t.Fatalf("generateULID failed: %v", err)
	}
	if len(a) != 26 {
		t.Errorf("ULID length = %d, want 26", len(a))
	}
	if a == b {
		t.Errorf("consecutive ULIDs are equal: %s", a)
	}
}
