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

// SaveMode controls collision behavior.
type SaveMode string

const (
	SaveModeError   SaveMode = "error"   // default: fail on name collision
	SaveModeReplace SaveMode = "replace" // overwrite existing
)

// SavePresetInput contains parameters for the SavePreset operation.
type SavePresetInput struct {
	Name    string            // required
	Options generator.Options // validated before saving
	Mode    SaveMode          // default: SaveModeError
}

// SavePresetOutput contains the result of the SavePreset operation.
type SavePresetOutput struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Replaced bool   `json:"replaced"`
}

// SavePreset creates or replaces a named option preset.
func SavePreset(ctx context.Context, database *sql.DB, input SavePresetInput) (*SavePresetOutput, error) {
	if input.Mode == "" {
		input.Mode = SaveModeError
	}
	if input.Mode != SaveModeError && input.Mode != SaveModeReplace {
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace")
	}

	if err := validatePreset(input.Name, input.Options); err != nil {
		return nil, err
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	now := time.Now().Unix()
	p := &preset.Preset{
		ID:        id,
		NameRaw:   input.Name,
		NameNorm:  preset.Normalize(input.Name),
		Options:   input.Options,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if input.Mode == SaveModeReplace {
		// Atomic UPSERT: a concurrent save of the same name updates rather than fails.
		stored, err := db.Upsert(ctx, database, p)
		if err != nil {
			return nil, err
		}
		return &SavePresetOutput{
			ID:       stored.ID,
			Name:     stored.NameRaw,
			Replaced: stored.ID != id,
		}, nil
	}

	if err := db.Insert(ctx, database, p); err != nil {
		if err == db.ErrUniqueConstraint {
			return nil, errors.NewNameAlreadyExists(input.Name)
		}
		return nil, err
	}

	return &SavePresetOutput{ID: id, Name: input.Name}, nil
}

// validatePreset rejects a preset that could not generate, so the failure
// surfaces when it is saved rather than on first use.
func validatePreset(name string, opts generator.Options) error {
	if !preset.ValidName(name) {
		return errors.NewInvalidRequest("name must be 1-64 characters after trimming")
	}
	if err := generator.Validate(opts); err != nil {
		return err
	}
	if opts.Pool().Len() == 0 {
		return errors.NewEmptyPool("no characters available with the selected options")
	}
	return nil
}
