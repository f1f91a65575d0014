package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/passforge/internal/db"
	"github.com/hpungsan/passforge/internal/errors"
	"github.com/hpungsan/passforge/internal/preset"
)

// FetchPresetInput contains parameters for the FetchPreset operation.
type FetchPresetInput struct {
	Name string
}

// FetchPreset retrieves a preset by name.
func FetchPreset(ctx context.Context, database *sql.DB, input FetchPresetInput) (*preset.Preset, error) {
	norm := preset.Normalize(input.Name)
	if norm == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}
	return db.GetByName(ctx, database, norm)
}
