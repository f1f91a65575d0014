package mcp

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/passforge/internal/ops"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"password", "preset"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"password_generate": {
		def:     generateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGenerate },
	},
	"password_analyze": {
		def:     analyzeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAnalyze },
	},
	"password_status": {
		def:     statusToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStatus },
	},
	"preset_save": {
		def:     presetSaveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePresetSave },
	},
	"preset_fetch": {
		def:     presetFetchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePresetFetch },
	},
	"preset_list": {
		def:     presetListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePresetList },
	},
	"preset_delete": {
		def:     presetDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePresetDelete },
	},
	"preset_update": {
		def:     presetUpdateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePresetUpdate },
	},
	"preset_export": {
		def:     presetExportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePresetExport },
	},
	"preset_import": {
		def:     presetImportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePresetImport },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "preset_save" → "preset").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		if typeSet[GetTypeForTool(name)] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates a new MCP server with passforge tools registered.
// Tools listed in DisabledTools or belonging to DisabledTypes are excluded,
// and preset tools are skipped entirely when deps has no database.
func NewServer(deps ops.Deps, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"passforge",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(deps)
	logger := h.logger()

	disabled := make(map[string]bool)
	if deps.Config != nil {
		for _, tool := range ExpandTypesToTools(deps.Config.DisabledTypes) {
			disabled[tool] = true
		}
		for _, name := range deps.Config.DisabledTools {
			disabled[name] = true
		}
		if unknown := ValidateDisabledTools(deps.Config.DisabledTools); len(unknown) > 0 {
			logger.Warn("unknown tools in disabled_tools", "tools", unknown)
		}
		if unknown := ValidateDisabledTypes(deps.Config.DisabledTypes); len(unknown) > 0 {
			logger.Warn("unknown types in disabled_types", "types", unknown)
		}
	}
	if deps.DB == nil {
		for _, tool := range ExpandTypesToTools([]string{"preset"}) {
			disabled[tool] = true
		}
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(deps ops.Deps, version string) error {
	return server.ServeStdio(NewServer(deps, version))
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

func (h *Handlers) logger() *slog.Logger {
	if h.deps.Logger == nil {
		return slog.Default()
	}
	return h.deps.Logger
}
