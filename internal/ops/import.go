package ops

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hpungsan/passforge/internal/config"
	"github.com/hpungsan/passforge/internal/db"
	"github.com/hpungsan/passforge/internal/errors"
	"github.com/hpungsan/passforge/internal/preset"
)

// ImportMode controls collision behavior during import.
type ImportMode string

const (
	ImportModeError   ImportMode = "error"   // fail on any problem, import nothing
	ImportModeReplace ImportMode = "replace" // overwrite presets with the same name
	ImportModeSkip    ImportMode = "skip"    // keep existing presets with the same name
)

// maxImportLine bounds one JSONL line. A preset record is a few hundred bytes.
const maxImportLine = 64 << 10

// ImportPresetsInput contains parameters for the ImportPresets operation.
type ImportPresetsInput struct {
	Path string     // required
	Mode ImportMode // default: error
}

// ImportPresetsOutput contains the result of the ImportPresets operation.
type ImportPresetsOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}

// ImportError describes one line that was not imported.
type ImportError struct {
	Line    int    `json:"line"`
	Name    string `json:"name,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// importRecord is one parsed preset line.
type importRecord struct {
	line   int
	preset preset.Preset
}

// exportLine matches both the header and preset lines of an export file.
type exportLine struct {
	PassforgeExport bool `json:"_passforge_export"`
	preset.Preset
}

// ImportPresets loads presets from a JSONL file written by ExportPresets.
// Names are renormalized and options revalidated. A record whose ID is
// already taken by a different preset receives a fresh ID.
func ImportPresets(ctx context.Context, database *sql.DB, cfg *config.Config, input ImportPresetsInput) (*ImportPresetsOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	if input.Mode == "" {
		input.Mode = ImportModeError
	}
	if input.Mode != ImportModeError && input.Mode != ImportModeReplace && input.Mode != ImportModeSkip {
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace, skip")
	}

	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		if _, ok := err.(*errors.PassError); ok {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	records, parseErrors := parseExportFile(bufio.NewScanner(file))

	if input.Mode == ImportModeError {
		if len(parseErrors) > 0 {
			return &ImportPresetsOutput{Errors: parseErrors}, nil
		}
		return importAtomic(ctx, database, records)
	}

	out := &ImportPresetsOutput{Errors: parseErrors, Skipped: len(parseErrors)}
	for _, rec := range records {
		if ctx.Err() != nil {
			return nil, errors.NewCancelled("import")
		}

		p := rec.preset
		if err := ensureFreeID(ctx, database, &p); err != nil {
			return nil, err
		}

		if input.Mode == ImportModeReplace {
			if _, err := db.Upsert(ctx, database, &p); err != nil {
				return nil, err
			}
			out.Imported++
			continue
		}

		err := db.Insert(ctx, database, &p)
		if err == db.ErrUniqueConstraint {
			out.Skipped++
			continue
		}
		if err != nil {
			return nil, err
		}
		out.Imported++
	}

	return out, nil
}

// importAtomic inserts every record in one transaction and rolls back on the
// first name collision.
func importAtomic(ctx context.Context, database *sql.DB, records []importRecord) (*ImportPresetsOutput, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, rec := range records {
		p := rec.preset
		if err := ensureFreeID(ctx, tx, &p); err != nil {
			return nil, err
		}

		err := db.Insert(ctx, tx, &p)
		if err == db.ErrUniqueConstraint {
			return &ImportPresetsOutput{Errors: []ImportError{{
				Line:    rec.line,
				Name:    p.NameRaw,
				Code:    string(errors.ErrNameAlreadyExists),
				Message: fmt.Sprintf("preset %q already exists", p.NameRaw),
			}}}, nil
		}
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return &ImportPresetsOutput{Imported: len(records)}, nil
}

// ensureFreeID assigns a new ID to p when its ID is missing or already used.
func ensureFreeID(ctx context.Context, q db.Querier, p *preset.Preset) error {
	if p.ID != "" {
		_, err := db.GetByID(ctx, q, p.ID)
		if errors.Is(err, errors.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
	}

	id, err := generateULID()
	if err != nil {
		return errors.NewInternal(err)
	}
	p.ID = id
	return nil
}

// parseExportFile reads preset records, skipping the header line. Lines that
// fail to parse or validate are reported rather than returned.
func parseExportFile(scanner *bufio.Scanner) ([]importRecord, []ImportError) {
	var (
		records     []importRecord
		parseErrors []ImportError
	)

	scanner.Buffer(make([]byte, 0, 4096), maxImportLine)
	now := time.Now().Unix()
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		if len(scanner.Bytes()) == 0 {
			continue
		}

		var line exportLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Code:    "PARSE_ERROR",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}
		if line.PassforgeExport {
			continue
		}

		p := line.Preset
		if err := validatePreset(p.NameRaw, p.Options); err != nil {
			msg := err.Error()
			if pErr, ok := err.(*errors.PassError); ok {
				msg = pErr.Message
			}
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Name:    p.NameRaw,
				Code:    "INVALID_RECORD",
				Message: msg,
			})
			continue
		}

		p.NameNorm = preset.Normalize(p.NameRaw)
		if p.CreatedAt == 0 {
			p.CreatedAt = now
		}
		if p.UpdatedAt == 0 {
			p.UpdatedAt = p.CreatedAt
		}
		records = append(records, importRecord{line: lineNum, preset: p})
	}

	if err := scanner.Err(); err != nil {
		parseErrors = append(parseErrors, ImportError{
			Line:    lineNum + 1,
			Code:    "READ_ERROR",
			Message: fmt.Sprintf("failed to read file: %v", err),
		})
	}

	return records, parseErrors
}
