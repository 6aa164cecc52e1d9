package web

import (
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/moodyapp/moody/internal/chat"
	"github.com/moodyapp/moody/internal/errors"
	"github.com/moodyapp/moody/internal/mood"
	"github.com/moodyapp/moody/internal/reminder"
	"github.com/moodyapp/moody/internal/routine"
)

// Handlers contains HTTP route handlers for the JSON API.
type Handlers struct {
	store     *mood.Store
	routines  *routine.Manager
	reminders *reminder.Store
	assistant *chat.Client
}

// NewHandlers wires the API handlers to their collaborators.
func NewHandlers(store *mood.Store, routines *routine.Manager, reminders *reminder.Store, assistant *chat.Client) *Handlers {
	return &Handlers{
		store:     store,
		routines:  routines,
		reminders: reminders,
		assistant: assistant,
	}
}

// entryView decorates an entry with its display label and notes rendered
// from markdown, so the UI never recomputes either.
type entryView struct {
	mood.Entry
	MoodLabel string        `json:"moodLabel"`
	NotesHTML template.HTML `json:"notesHtml,omitempty"`
}

func toEntryView(e mood.Entry) entryView {
	v := entryView{Entry: e, MoodLabel: e.Level.Label()}
	if e.Notes != "" {
		v.NotesHTML = renderMarkdown(e.Notes)
	}
	return v
}

func toEntryViews(entries []mood.Entry) []entryView {
	views := make([]entryView, len(entries))
	for i, e := range entries {
		views[i] = toEntryView(e)
	}
	return views
}

// HandleListEntries handles GET /api/entries: the full history, newest first.
func (h *Handlers) HandleListEntries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"entries": toEntryViews(h.store.Entries())})
}

// HandleWeeklyEntries handles GET /api/entries/weekly.
func (h *Handlers) HandleWeeklyEntries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"entries": toEntryViews(h.store.WeeklyEntries())})
}

type addEntryRequest struct {
	MoodLevel int      `json:"moodLevel"`
	Emotions  []string `json:"emotions"`
	Situation string   `json:"situation"`
	Notes     string   `json:"notes"`
}

// HandleAddEntry handles POST /api/entries. The mood-dip check runs after
// every addition so the UI can decide whether to surface the support alert.
func (h *Handlers) HandleAddEntry(w http.ResponseWriter, r *http.Request) {
	var req addEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewInvalidRequest("invalid JSON body"))
		return
	}

	entry, err := h.store.AddEntry(mood.AddInput{
		Level:     mood.Level(req.MoodLevel),
		Emotions:  req.Emotions,
		Situation: req.Situation,
		Notes:     req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"entry":    toEntryView(*entry),
		"mood_dip": h.store.DetectMoodDip(),
	})
}

// summaryResponse carries the dashboard numbers. Averages are null when
// there is no data; the UI renders a placeholder, never a zero.
type summaryResponse struct {
	TotalEntries  int      `json:"total_entries"`
	WeeklyEntries int      `json:"weekly_entries"`
	AvgMood       *float64 `json:"avg_mood"`
	WeeklyAvgMood *float64 `json:"weekly_avg_mood"`
	MoodDip       bool     `json:"mood_dip"`
}

// HandleSummary handles GET /api/summary.
func (h *Handlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	weekly := h.store.WeeklyEntries()

	resp := summaryResponse{
		TotalEntries:  h.store.Len(),
		WeeklyEntries: len(weekly),
		MoodDip:       h.store.DetectMoodDip(),
	}
	if avg, ok := h.store.AverageMood(); ok {
		resp.AvgMood = &avg
	}
	if avg, ok := mood.AverageMood(weekly); ok {
		resp.WeeklyAvgMood = &avg
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleInsights handles GET /api/insights: locked progress or the
// computed report, depending on the weekly-window gate.
func (h *Handlers) HandleInsights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Insights())
}

// HandleCrisisCheck handles GET /api/crisis. Dismissal is the UI's
// session state; this endpoint only reports the predicate.
func (h *Handlers) HandleCrisisCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"trigger": h.store.DetectMoodDip()})
}

// HandleGetRoutine handles GET /api/routine: the routine template.
func (h *Handlers) HandleGetRoutine(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.routines.Template())
}

// HandlePutRoutine handles PUT /api/routine: replace the template.
func (h *Handlers) HandlePutRoutine(w http.ResponseWriter, r *http.Request) {
	var tpl routine.Template
	if err := json.NewDecoder(r.Body).Decode(&tpl); err != nil {
		writeError(w, errors.NewInvalidRequest("invalid JSON body"))
		return
	}
	if err := h.routines.SaveTemplate(tpl); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

// HandleTodayRoutine handles GET /api/routine/today. Completion records
// whose template task was deleted are skipped, not errors.
func (h *Handlers) HandleTodayRoutine(w http.ResponseWriter, r *http.Request) {
	resolved, err := h.routines.ResolvedToday()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": resolved})
}

// HandleToggleTask handles POST /api/routine/today/{taskID}/toggle.
func (h *Handlers) HandleToggleTask(w http.ResponseWriter, r *http.Request) {
	states, err := h.routines.Toggle(r.PathValue("taskID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": states})
}

// HandleRemoveTask handles DELETE /api/routine/today/{taskID}.
func (h *Handlers) HandleRemoveTask(w http.ResponseWriter, r *http.Request) {
	states, err := h.routines.RemoveTask(r.PathValue("taskID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": states})
}

// reminderView decorates a reminder with its due label and urgency class.
type reminderView struct {
	reminder.Reminder
	DueLabel string           `json:"dueLabel"`
	Urgency  reminder.Urgency `json:"urgency"`
}

// HandleListReminders handles GET /api/reminders.
func (h *Handlers) HandleListReminders(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	reminders := h.reminders.List()
	views := make([]reminderView, len(reminders))
	for i, rem := range reminders {
		views[i] = reminderView{
			Reminder: rem,
			DueLabel: reminder.DueLabel(rem.DueDate, now),
			Urgency:  reminder.ClassifyUrgency(rem.DueDate, now),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reminders": views})
}

type addReminderRequest struct {
	Title   string `json:"title"`
	DueDate string `json:"dueDate"` // ISO-8601
}

// HandleAddReminder handles POST /api/reminders.
func (h *Handlers) HandleAddReminder(w http.ResponseWriter, r *http.Request) {
	var req addReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewInvalidRequest("invalid JSON body"))
		return
	}

	due, err := time.Parse(time.RFC3339, req.DueDate)
	if err != nil {
		// Accept bare dates too
		due, err = time.Parse("2006-01-02", req.DueDate)
	}
	if err != nil {
		writeError(w, errors.NewInvalidRequest("dueDate must be an ISO-8601 timestamp or YYYY-MM-DD"))
		return
	}

	created, err := h.reminders.Add(req.Title, due)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleRemoveReminder handles DELETE /api/reminders/{id}.
func (h *Handlers) HandleRemoveReminder(w http.ResponseWriter, r *http.Request) {
	if err := h.reminders.Remove(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type chatRequest struct {
	Messages []chat.Message `json:"messages"`
}

// HandleChat handles POST /api/chat: proxies the conversation to the
// external assistant. Upstream failures degrade to the fixed fallback
// reply; the user never sees a hard error for an unreachable assistant.
func (h *Handlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewInvalidRequest("invalid JSON body"))
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, errors.NewInvalidRequest("messages must not be empty"))
		return
	}

	reply, err := h.assistant.Send(r.Context(), req.Messages)
	if err != nil {
		log.Printf("assistant unreachable: %v", err)
		reply = chat.FallbackReply
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": reply})
}
