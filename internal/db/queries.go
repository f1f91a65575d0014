package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/hpungsan/passforge/internal/errors"
	"github.com/hpungsan/passforge/internal/preset"
)

// ErrUniqueConstraint is returned when an insert violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.PassError{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

const presetColumns = `id, name_raw, name_norm, options_json, created_at, updated_at`

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Insert stores a new preset.
func Insert(ctx context.Context, db Querier, p *preset.Preset) error {
	optionsJSON, err := json.Marshal(p.Options)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO presets (` + presetColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = db.ExecContext(ctx, query,
		p.ID, p.NameRaw, p.NameNorm, string(optionsJSON), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}

	return nil
}

// Upsert inserts p or, when a preset with the same normalized name exists,
// replaces its raw name and options in place. The existing row keeps its ID
// and created_at; the returned preset reflects the stored row.
func Upsert(ctx context.Context, db Querier, p *preset.Preset) (*preset.Preset, error) {
	optionsJSON, err := json.Marshal(p.Options)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	query := `
		INSERT INTO presets (` + presetColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name_norm) DO UPDATE SET
			name_raw = excluded.name_raw,
			options_json = excluded.options_json,
			updated_at = excluded.updated_at
		RETURNING ` + presetColumns

	row := db.QueryRowContext(ctx, query,
		p.ID, p.NameRaw, p.NameNorm, string(optionsJSON), p.CreatedAt, p.UpdatedAt,
	)
	stored, err := scanPreset(row)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return stored, nil
}

// UpdateOptions replaces the options of the preset with the given ID.
func UpdateOptions(ctx context.Context, db Querier, p *preset.Preset) error {
	optionsJSON, err := json.Marshal(p.Options)
	if err != nil {
		return errors.NewInternal(err)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE presets SET options_json = ?, updated_at = ? WHERE id = ?`,
		string(optionsJSON), p.UpdatedAt, p.ID,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(p.ID)
	}

	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetByName retrieves a preset by normalized name.
func GetByName(ctx context.Context, db Querier, nameNorm string) (*preset.Preset, error) {
	query := `SELECT ` + presetColumns + ` FROM presets WHERE name_norm = ?`

	p, err := scanPreset(db.QueryRowContext(ctx, query, nameNorm))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(nameNorm)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return p, nil
}

// GetByID retrieves a preset by ID.
func GetByID(ctx context.Context, db Querier, id string) (*preset.Preset, error) {
	query := `SELECT ` + presetColumns + ` FROM presets WHERE id = ?`

	p, err := scanPreset(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return p, nil
}

// List returns presets ordered by most recently updated, plus the total count.
func List(ctx context.Context, db *sql.DB, limit, offset int) ([]preset.Preset, int, error) {
	total, err := Count(ctx, db)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + presetColumns + `
		FROM presets
		ORDER BY updated_at DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var presets []preset.Preset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		presets = append(presets, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	return presets, total, nil
}

// Count returns the number of stored presets.
func Count(ctx context.Context, db *sql.DB) (int, error) {
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM presets`).Scan(&total); err != nil {
		return 0, errors.NewInternal(err)
	}
	return total, nil
}

// DeleteByName permanently removes a preset. Presets hold no secrets, so
// there is no soft-delete tombstone.
func DeleteByName(ctx context.Context, db *sql.DB, nameNorm string) (string, error) {
	var id string
	err := db.QueryRowContext(ctx,
		`DELETE FROM presets WHERE name_norm = ? RETURNING id`, nameNorm,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return "", errors.NewNotFound(nameNorm)
	}
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return id, nil
}

// StreamForExport returns all presets in creation order. The caller must
// close the rows and scan each with ScanPresetRow.
func StreamForExport(ctx context.Context, db *sql.DB) (*sql.Rows, error) {
	query := `SELECT ` + presetColumns + ` FROM presets ORDER BY created_at ASC, id ASC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return rows, nil
}

// ScanPresetRow scans the current row of rows returned by StreamForExport.
func ScanPresetRow(rows *sql.Rows) (*preset.Preset, error) {
	return scanPreset(rows)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPreset(row scanner) (*preset.Preset, error) {
	var (
		p           preset.Preset
		optionsJSON string
	)

	err := row.Scan(&p.ID, &p.NameRaw, &p.NameNorm, &optionsJSON, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(optionsJSON), &p.Options); err != nil {
		return nil, err
	}

	return &p, nil
}
