package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool definitions. Descriptions are what MCP clients show the model,
// so they state constraints (level range, date formats) explicitly.

var logToolDef = mcp.NewTool("mood_log",
	mcp.WithDescription("Record a mood entry. Level is 1 (very low) to 5 (very good); emotions and situation come from fixed vocabularies; notes are optional markdown."),
	mcp.WithNumber("level",
		mcp.Required(),
		mcp.Description("Mood level from 1 to 5"),
	),
	mcp.WithArray("emotions",
		mcp.Description("Emotion names, e.g. Happy, Anxious, Calm"),
		mcp.Items(map[string]any{"type": "string"}),
	),
	mcp.WithString("situation",
		mcp.Description("Situation category, e.g. Work/School, Family, Social"),
	),
	mcp.WithString("notes",
		mcp.Description("Free-form notes in markdown"),
	),
)

var historyToolDef = mcp.NewTool("mood_history",
	mcp.WithDescription("List mood entries, newest first. Set weekly to restrict to the trailing seven days."),
	mcp.WithBoolean("weekly",
		mcp.Description("Only entries from the last 7 days"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of entries to return (0 = all)"),
	),
)

var summaryToolDef = mcp.NewTool("mood_summary",
	mcp.WithDescription("Aggregate mood statistics: entry counts, overall and weekly averages, and whether a mood dip is currently detected."),
)

var insightsToolDef = mcp.NewTool("mood_insights",
	mcp.WithDescription("Mood patterns over the whole journal: top emotions, situation breakdown, weekday averages. The unlock gate and weekly average use the trailing seven days; locked with a progress count until enough weekly entries exist."),
)

var crisisCheckToolDef = mcp.NewTool("mood_crisis_check",
	mcp.WithDescription("Check whether recent entries indicate a mood dip that warrants surfacing support resources."),
)

var routineTodayToolDef = mcp.NewTool("routine_today",
	mcp.WithDescription("Today's routine checklist: each template task with its completion state. Creates today's checklist from the template on first use."),
)

var routineToggleToolDef = mcp.NewTool("routine_toggle",
	mcp.WithDescription("Toggle completion of a task in today's routine checklist."),
	mcp.WithString("task_id",
		mcp.Required(),
		mcp.Description("ID of the task to toggle"),
	),
)

var reminderAddToolDef = mcp.NewTool("reminder_add",
	mcp.WithDescription("Add a reminder with a due date."),
	mcp.WithString("title",
		mcp.Required(),
		mcp.Description("What the reminder is for"),
	),
	mcp.WithString("due_date",
		mcp.Required(),
		mcp.Description("Due date as RFC 3339 timestamp or YYYY-MM-DD"),
	),
)

var reminderListToolDef = mcp.NewTool("reminder_list",
	mcp.WithDescription("List reminders sorted by due date, each with a due label (Overdue, Today!, Tomorrow, N days) and urgency."),
)

var reminderRemoveToolDef = mcp.NewTool("reminder_remove",
	mcp.WithDescription("Remove a reminder by ID."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("ID of the reminder to remove"),
	),
)
