package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/passforge/internal/db"
	"github.com/hpungsan/passforge/internal/errors"
	"github.com/hpungsan/passforge/internal/preset"
)

// DeletePresetInput contains parameters for the DeletePreset operation.
type DeletePresetInput struct {
	Name string
}

// DeletePresetOutput contains the result of the DeletePreset operation.
type DeletePresetOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// DeletePreset permanently removes a preset.
func DeletePreset(ctx context.Context, database *sql.DB, input DeletePresetInput) (*DeletePresetOutput, error) {
	norm := preset.Normalize(input.Name)
	if norm == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}

	id, err := db.DeleteByName(ctx, database, norm)
	if err != nil {
		return nil, err
	}

	return &DeletePresetOutput{Deleted: true, ID: id}, nil
}
