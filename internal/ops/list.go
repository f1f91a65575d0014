package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/passforge/internal/db"
	"github.com/hpungsan/passforge/internal/preset"
)

// ListPresetsInput contains parameters for the ListPresets operation.
type ListPresetsInput struct {
	Limit  int // default: 20, max: 100
	Offset int // default: 0
}

// ListPresetsOutput contains the result of the ListPresets operation.
type ListPresetsOutput struct {
	Items      []preset.Preset `json:"items"`
	Pagination Pagination      `json:"pagination"`
	Sort       string          `json:"sort"`
}

// ListPresets retrieves presets with pagination, most recently updated first.
func ListPresets(ctx context.Context, database *sql.DB, input ListPresetsInput) (*ListPresetsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	offset := max(input.Offset, 0)

	items, total, err := db.List(ctx, database, limit, offset)
	if err != nil {
		return nil, err
	}

	// Ensure we return an empty array rather than nil
	if items == nil {
		items = []preset.Preset{}
	}

	return &ListPresetsOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		Sort: "updated_at_desc",
	}, nil
}
