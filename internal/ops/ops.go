package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/passforge/internal/config"
	"github.com/hpungsan/passforge/internal/db"
	"github.com/hpungsan/passforge/internal/errors"
	"github.com/hpungsan/passforge/internal/generator"
	"github.com/hpungsan/passforge/internal/metrics"
	"github.com/hpungsan/passforge/internal/preset"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// InsecureWarning accompanies every output produced by a non-cryptographic source.
const InsecureWarning = "secure random source unavailable: passwords were generated with a non-cryptographic fallback and must not be used for real accounts"

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// Deps bundles what the password operations need. DB and Metrics may be nil:
// without a DB presets cannot be resolved, without Metrics nothing is recorded.
type Deps struct {
	DB        *sql.DB
	Config    *config.Config
	Generator *generator.Generator
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// resolveOptions picks the base options for a request (explicit options,
// then the named preset, then the configured defaults) and applies overrides.
func resolveOptions(ctx context.Context, deps Deps, explicit *generator.Options, presetName string, ov generator.Overrides) (generator.Options, error) {
	base, err := baseOptions(ctx, deps, explicit, presetName)
	if err != nil {
		return generator.Options{}, err
	}
	return ov.Apply(base), nil
}

func baseOptions(ctx context.Context, deps Deps, explicit *generator.Options, presetName string) (generator.Options, error) {
	if explicit != nil {
		return *explicit, nil
	}
	if presetName != "" {
		if deps.DB == nil {
			return generator.Options{}, errors.NewInvalidRequest("presets are unavailable without a database")
		}
		norm := preset.Normalize(presetName)
		if norm == "" {
			return generator.Options{}, errors.NewInvalidRequest("preset must not be empty")
		}
		p, err := db.GetByName(ctx, deps.DB, norm)
		if err != nil {
			return generator.Options{}, err
		}
		return p.Options, nil
	}
	return deps.Config.GeneratorDefaults(), nil
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
