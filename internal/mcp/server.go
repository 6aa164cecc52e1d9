package mcp

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/moodyapp/moody/internal/config"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"mood", "routine", "reminder"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"mood_log": {
		def:     logToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLog },
	},
	"mood_history": {
		def:     historyToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleHistory },
	},
	"mood_summary": {
		def:     summaryToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSummary },
	},
	"mood_insights": {
		def:     insightsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleInsights },
	},
	"mood_crisis_check": {
		def:     crisisCheckToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCrisisCheck },
	},
	"routine_today": {
		def:     routineTodayToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRoutineToday },
	},
	"routine_toggle": {
		def:     routineToggleToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRoutineToggle },
	},
	"reminder_add": {
		def:     reminderAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleReminderAdd },
	},
	"reminder_list": {
		def:     reminderListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleReminderList },
	},
	"reminder_remove": {
		def:     reminderRemoveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleReminderRemove },
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
// Tool names follow the pattern "type_action" (e.g., "mood_log" → "mood").
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

	// Build set of types for O(1) lookup
	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	// Collect tools belonging to disabled types
	tools := make([]string, 0)
	for name := range toolRegistry {
		typ := GetTypeForTool(name)
		if typeSet[typ] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates a new MCP server with Moody tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are excluded from registration.
func NewServer(db *sql.DB, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"moody",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg)

	// Build set of disabled tools: first expand types, then add individual tools
	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	// Register tools (skip disabled)
	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, version string) error {
	s := NewServer(db, cfg, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
