package ops

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/passforge/internal/db"
	"github.com/hpungsan/passforge/internal/errors"
	"github.com/hpungsan/passforge/internal/generator"
	"github.com/hpungsan/passforge/internal/preset"
)

// UpdatePresetInput contains parameters for the UpdatePreset operation.
type UpdatePresetInput struct {
	Name      string              // required
	Overrides generator.Overrides // nil fields keep the stored value
}

// UpdatePresetOutput contains the result of the UpdatePreset operation.
type UpdatePresetOutput struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Options generator.Options `json:"options"`
}

// UpdatePreset changes selected options of an existing preset.
func UpdatePreset(ctx context.Context, database *sql.DB, input UpdatePresetInput) (*UpdatePresetOutput, error) {
	norm := preset.Normalize(input.Name)
	if norm == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}
	if input.Overrides == (generator.Overrides{}) {
		return nil, errors.NewInvalidRequest("at least one option must be provided")
	}

	p, err := db.GetByName(ctx, database, norm)
	if err != nil {
		return nil, err
	}

	p.Options = input.Overrides.Apply(p.Options)
	if err := validatePreset(p.NameRaw, p.Options); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now().Unix()

	if err := db.UpdateOptions(ctx, database, p); err != nil {
		return nil, err
	}

	return &UpdatePresetOutput{ID: p.ID, Name: p.NameRaw, Options: p.Options}, nil
}
