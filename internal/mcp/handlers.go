package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/moodyapp/moody/internal/config"
	"github.com/moodyapp/moody/internal/errors"
	"github.com/moodyapp/moody/internal/mood"
	"github.com/moodyapp/moody/internal/reminder"
	"github.com/moodyapp/moody/internal/routine"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store     *mood.Store
	routines  *routine.Manager
	reminders *reminder.Store
	cfg       *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{
		store:     mood.Open(db, cfg),
		routines:  routine.NewManager(db),
		reminders: reminder.NewStore(db),
		cfg:       cfg,
	}
}

// Request types for each tool

// LogRequest represents the arguments for mood_log.
type LogRequest struct {
	Level     int      `json:"level"`
	Emotions  []string `json:"emotions,omitempty"`
	Situation string   `json:"situation,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

// HistoryRequest represents the arguments for mood_history.
type HistoryRequest struct {
	Weekly bool `json:"weekly,omitempty"`
	Limit  int  `json:"limit,omitempty"`
}

// RoutineToggleRequest represents the arguments for routine_toggle.
type RoutineToggleRequest struct {
	TaskID string `json:"task_id"`
}

// ReminderAddRequest represents the arguments for reminder_add.
type ReminderAddRequest struct {
	Title   string `json:"title"`
	DueDate string `json:"due_date"`
}

// ReminderRemoveRequest represents the arguments for reminder_remove.
type ReminderRemoveRequest struct {
	ID string `json:"id"`
}

// Handler implementations

// HandleLog handles the mood_log tool call.
func (h *Handlers) HandleLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LogRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	entry, err := h.store.AddEntry(mood.AddInput{
		Level:     mood.Level(input.Level),
		Emotions:  input.Emotions,
		Situation: input.Situation,
		Notes:     input.Notes,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{
		"entry":    entry,
		"mood_dip": h.store.DetectMoodDip(),
	})
}

// HandleHistory handles the mood_history tool call.
func (h *Handlers) HandleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[HistoryRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	entries := h.store.Entries()
	if input.Weekly {
		entries = h.store.WeeklyEntries()
	}
	if input.Limit > 0 && input.Limit < len(entries) {
		entries = entries[:input.Limit]
	}

	return successResult(map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// HandleSummary handles the mood_summary tool call.
func (h *Handlers) HandleSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weekly := h.store.WeeklyEntries()

	summary := map[string]any{
		"total_entries":  h.store.Len(),
		"weekly_entries": len(weekly),
		"mood_dip":       h.store.DetectMoodDip(),
	}
	if avg, ok := h.store.AverageMood(); ok {
		summary["avg_mood"] = avg
	}
	if avg, ok := mood.AverageMood(weekly); ok {
		summary["weekly_avg_mood"] = avg
	}

	return successResult(summary)
}

// HandleInsights handles the mood_insights tool call.
func (h *Handlers) HandleInsights(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(h.store.Insights())
}

// HandleCrisisCheck handles the mood_crisis_check tool call.
func (h *Handlers) HandleCrisisCheck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(map[string]bool{"trigger": h.store.DetectMoodDip()})
}

// HandleRoutineToday handles the routine_today tool call.
func (h *Handlers) HandleRoutineToday(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tasks, err := h.routines.ResolvedToday()
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"tasks": tasks})
}

// HandleRoutineToggle handles the routine_toggle tool call.
func (h *Handlers) HandleRoutineToggle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RoutineToggleRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	states, err := h.routines.Toggle(input.TaskID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"tasks": states})
}

// HandleReminderAdd handles the reminder_add tool call.
func (h *Handlers) HandleReminderAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ReminderAddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	due, err := time.Parse(time.RFC3339, input.DueDate)
	if err != nil {
		due, err = time.Parse("2006-01-02", input.DueDate)
	}
	if err != nil {
		return errorResult(errors.NewInvalidRequest("due_date must be an RFC 3339 timestamp or YYYY-MM-DD")), nil
	}

	created, err := h.reminders.Add(input.Title, due)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(created)
}

// HandleReminderList handles the reminder_list tool call.
func (h *Handlers) HandleReminderList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	now := time.Now()
	reminders := h.reminders.List()

	views := make([]map[string]any, len(reminders))
	for i, rem := range reminders {
		views[i] = map[string]any{
			"id":        rem.ID,
			"title":     rem.Title,
			"dueDate":   rem.DueDate,
			"due_label": reminder.DueLabel(rem.DueDate, now),
			"urgency":   reminder.ClassifyUrgency(rem.DueDate, now),
		}
	}
	return successResult(map[string]any{"reminders": views})
}

// HandleReminderRemove handles the reminder_remove tool call.
func (h *Handlers) HandleReminderRemove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ReminderRemoveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	if err := h.reminders.Remove(input.ID); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"removed": true, "id": input.ID})
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if moodyErr, ok := err.(*errors.MoodyError); ok {
		errorObj := map[string]any{
			"code":    moodyErr.Code,
			"message": moodyErr.Message,
			"status":  moodyErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if moodyErr.Code != errors.ErrInternal && moodyErr.Details != nil {
			errorObj["details"] = moodyErr.Details
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
