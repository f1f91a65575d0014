package mcp

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/passforge/internal/generator"
	"github.com/hpungsan/passforge/internal/ops"
	"github.com/hpungsan/passforge/internal/preset"
)

// optionParams declares the generator option arguments shared by the
// password tools. Omitted arguments fall back to the preset or defaults.
func optionParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("length",
			mcp.Description("Password length in characters"),
			mcp.Min(generator.MinLength),
			mcp.Max(generator.MaxLength),
		),
		mcp.WithBoolean("lowercase", mcp.Description("Include a-z")),
		mcp.WithBoolean("uppercase", mcp.Description("Include A-Z")),
		mcp.WithBoolean("numbers", mcp.Description("Include 0-9")),
		mcp.WithBoolean("symbols", mcp.Description("Include !@#$%^&*()_+-=[]{}|;:,.<>?")),
		mcp.WithBoolean("exclude_similar", mcp.Description("Drop look-alike characters il1Lo0O")),
		mcp.WithBoolean("exclude_ambiguous", mcp.Description("Drop brackets, quotes, slashes and punctuation that are easy to mistype")),
		mcp.WithBoolean("ensure_all_types", mcp.Description("Guarantee at least one character from every selected type")),
	}
}

var presetParam = mcp.WithString("preset", mcp.Description("Name of a saved preset to start from; explicit option arguments override it"))

var generateToolDef = mcp.NewTool("password_generate", append([]mcp.ToolOption{
	mcp.WithDescription("Generate one or more random passwords. Passwords are returned to the caller and never stored."),
	mcp.WithNumber("count",
		mcp.Description("Number of passwords to generate"),
		mcp.Min(generator.MinBatch),
		mcp.Max(generator.MaxBatch),
	),
	mcp.WithBoolean("analyze", mcp.Description("Attach strength, entropy and crack-time analysis to each password")),
	presetParam,
	mcp.WithReadOnlyHintAnnotation(true),
}, optionParams()...)...)

var analyzeToolDef = mcp.NewTool("password_analyze", append([]mcp.ToolOption{
	mcp.WithDescription("Score a password and estimate its entropy and brute-force crack time. Option arguments describe the pool the password was drawn from."),
	mcp.WithString("password", mcp.Required(), mcp.Description("Password to analyze")),
	presetParam,
	mcp.WithReadOnlyHintAnnotation(true),
}, optionParams()...)...)

var statusToolDef = mcp.NewTool("password_status",
	mcp.WithDescription("Report whether a cryptographically secure random source is available."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var presetSaveToolDef = mcp.NewTool("preset_save", append([]mcp.ToolOption{
	mcp.WithDescription("Save generator options under a name. Only options are stored, never passwords."),
	mcp.WithString("name", mcp.Required(), mcp.Description(fmt.Sprintf("Preset name (case-insensitive, up to %d characters)", preset.MaxNameChars))),
	mcp.WithString("mode",
		mcp.Description("Collision behavior when the name exists"),
		mcp.Enum(string(ops.SaveModeError), string(ops.SaveModeReplace)),
	),
	mcp.WithIdempotentHintAnnotation(false),
}, optionParams()...)...)

var presetFetchToolDef = mcp.NewTool("preset_fetch",
	mcp.WithDescription("Fetch a saved preset by name."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Preset name")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var presetListToolDef = mcp.NewTool("preset_list",
	mcp.WithDescription("List saved presets, most recently updated first."),
	mcp.WithNumber("limit", mcp.Description("Page size"), mcp.Min(1), mcp.Max(ops.MaxListLimit)),
	mcp.WithNumber("offset", mcp.Description("Items to skip"), mcp.Min(0)),
	mcp.WithReadOnlyHintAnnotation(true),
)

var presetDeleteToolDef = mcp.NewTool("preset_delete",
	mcp.WithDescription("Permanently delete a saved preset."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Preset name")),
	mcp.WithDestructiveHintAnnotation(true),
)

var presetUpdateToolDef = mcp.NewTool("preset_update", append([]mcp.ToolOption{
	mcp.WithDescription("Change selected options of a saved preset. Omitted options keep their stored values."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Preset name")),
	mcp.WithIdempotentHintAnnotation(true),
}, optionParams()...)...)

var presetExportToolDef = mcp.NewTool("preset_export",
	mcp.WithDescription("Export all presets to a JSONL file. Defaults to ~/.passforge/exports/."),
	mcp.WithString("path", mcp.Description("Destination .jsonl file, directly inside an allowed directory")),
	mcp.WithIdempotentHintAnnotation(false),
)

var presetImportToolDef = mcp.NewTool("preset_import",
	mcp.WithDescription("Import presets from a JSONL export file."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Source .jsonl file, directly inside an allowed directory")),
	mcp.WithString("mode",
		mcp.Description("Collision behavior: error imports nothing on any problem, replace overwrites, skip keeps existing"),
		mcp.Enum(string(ops.ImportModeError), string(ops.ImportModeReplace), string(ops.ImportModeSkip)),
	),
	mcp.WithDestructiveHintAnnotation(true),
)
