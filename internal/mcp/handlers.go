package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/passforge/internal/errors"
	"github.com/hpungsan/passforge/internal/generator"
	"github.com/hpungsan/passforge/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	deps ops.Deps
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps ops.Deps) *Handlers {
	return &Handlers{deps: deps}
}

// Request types for each tool

// GenerateRequest represents the arguments for password_generate.
type GenerateRequest struct {
	generator.Overrides
	Preset  string `json:"preset,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Analyze bool   `json:"analyze,omitempty"`
}

// AnalyzeRequest represents the arguments for password_analyze.
type AnalyzeRequest struct {
	generator.Overrides
	Password *string `json:"password"`
	Preset   string  `json:"preset,omitempty"`
}

// PresetSaveRequest represents the arguments for preset_save.
type PresetSaveRequest struct {
	generator.Overrides
	Name string `json:"name"`
	Mode string `json:"mode,omitempty"`
}

// PresetNameRequest represents the arguments for preset_fetch and preset_delete.
type PresetNameRequest struct {
	Name string `json:"name"`
}

// PresetListRequest represents the arguments for preset_list.
type PresetListRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// PresetUpdateRequest represents the arguments for preset_update.
type PresetUpdateRequest struct {
	generator.Overrides
	Name string `json:"name"`
}

// PresetExportRequest represents the arguments for preset_export.
type PresetExportRequest struct {
	Path string `json:"path,omitempty"`
}

// PresetImportRequest represents the arguments for preset_import.
type PresetImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// HandleGenerate handles the password_generate tool call.
func (h *Handlers) HandleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GenerateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Generate(ctx, h.deps, ops.GenerateInput{
		Preset:    input.Preset,
		Overrides: input.Overrides,
		Count:     input.Count,
		Analyze:   input.Analyze,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleAnalyze handles the password_analyze tool call.
func (h *Handlers) HandleAnalyze(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AnalyzeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Password == nil {
		return errorResult(errors.NewInvalidRequest("password is required")), nil
	}

	result, err := ops.Analyze(ctx, h.deps, ops.AnalyzeInput{
		Password:  *input.Password,
		Preset:    input.Preset,
		Overrides: input.Overrides,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleStatus handles the password_status tool call.
func (h *Handlers) HandleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Status(ctx, h.deps)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandlePresetSave handles the preset_save tool call.
// Omitted option arguments take the configured defaults.
func (h *Handlers) HandlePresetSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PresetSaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.SavePreset(ctx, h.deps.DB, ops.SavePresetInput{
		Name:    input.Name,
		Options: input.Overrides.Apply(h.deps.Config.GeneratorDefaults()),
		Mode:    ops.SaveMode(input.Mode),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandlePresetFetch handles the preset_fetch tool call.
func (h *Handlers) HandlePresetFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PresetNameRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.FetchPreset(ctx, h.deps.DB, ops.FetchPresetInput{Name: input.Name})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandlePresetList handles the preset_list tool call.
func (h *Handlers) HandlePresetList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PresetListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListPresets(ctx, h.deps.DB, ops.ListPresetsInput{
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandlePresetDelete handles the preset_delete tool call.
func (h *Handlers) HandlePresetDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PresetNameRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.DeletePreset(ctx, h.deps.DB, ops.DeletePresetInput{Name: input.Name})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are never exposed.
// HandlePresetUpdate handles the preset_update tool call.
func (h *Handlers) HandlePresetUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PresetUpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.UpdatePreset(ctx, h.deps.DB, ops.UpdatePresetInput{
		Name:      input.Name,
		Overrides: input.Overrides,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandlePresetExport handles the preset_export tool call.
func (h *Handlers) HandlePresetExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PresetExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ExportPresets(ctx, h.deps.DB, h.deps.Config, ops.ExportPresetsInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandlePresetImport handles the preset_import tool call.
func (h *Handlers) HandlePresetImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PresetImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ImportPresets(ctx, h.deps.DB, h.deps.Config, ops.ImportPresetsInput{
		Path: input.Path,
		Mode: ops.ImportMode(input.Mode),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var pErr *errors.PassError
	if stderrors.As(err, &pErr) {
		message := pErr.Message
		// Keep wrapper context such as "preset fetch: " ahead of the message.
		if full := err.Error(); full != pErr.Error() && strings.HasSuffix(full, pErr.Error()) {
			message = strings.TrimSuffix(full, pErr.Error()) + message
		}
		errorObj := map[string]any{
			"code":    pErr.Code,
			"message": message,
			"status":  pErr.Status,
		}
		if pErr.Code == errors.ErrInternal {
			errorObj["message"] = "an internal error occurred"
		} else if pErr.Details != nil {
			errorObj["details"] = pErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
