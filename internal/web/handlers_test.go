package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/moodyapp/moody/internal/chat"
	"github.com/moodyapp/moody/internal/config"
	"github.com/moodyapp/moody/internal/kv"
	"github.com/moodyapp/moody/internal/mood"
	"github.com/moodyapp/moody/internal/reminder"
	"github.com/moodyapp/moody/internal/routine"
)

func setupTest(t *testing.T) *Handlers {
	t.Helper()
	db, err := kv.Init(t.TempDir())
	if err != nil {
		t.Fatalf("kv.Init: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := config.DefaultConfig()

	return NewHandlers(
		mood.Open(db, cfg),
		routine.NewManager(db),
		reminder.NewStore(db),
		chat.NewClient(cfg.ChatEndpoint),
	)
}

// doRequest routes a request through the full server handler, so method
// patterns and path values behave as in production.
func doRequest(t *testing.T, h *Handlers, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	srv := NewServer(h, "127.0.0.1", 0)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleAddEntry_Created(t *testing.T) {
	h := setupTest(t)

	rec := doRequest(t, h, "POST", "/api/entries",
		`{"moodLevel": 4, "emotions": ["Happy"], "situation": "Social", "notes": "met **friends**"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Entry struct {
			ID        string   `json:"id"`
			MoodLevel int      `json:"moodLevel"`
			MoodLabel string   `json:"moodLabel"`
			Emotions  []string `json:"emotions"`
			NotesHTML string   `json:"notesHtml"`
		} `json:"entry"`
		MoodDip bool `json:"mood_dip"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Entry.ID == "" {
		t.Error("entry has no id")
	}
	if resp.Entry.MoodLabel != "Good" {
		t.Errorf("moodLabel = %q, want Good", resp.Entry.MoodLabel)
	}
	if !strings.Contains(resp.Entry.NotesHTML, "<strong>friends</strong>") {
		t.Errorf("notesHtml = %q, want markdown-rendered notes", resp.Entry.NotesHTML)
	}
	if resp.MoodDip {
		t.Error("mood_dip = true after one good entry")
	}
}

func TestHandleAddEntry_InvalidLevel(t *testing.T) {
	h := setupTest(t)

	rec := doRequest(t, h, "POST", "/api/entries", `{"moodLevel": 9}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "INVALID_REQUEST") {
		t.Errorf("body = %s, want INVALID_REQUEST error", rec.Body.String())
	}
}

func TestHandleAddEntry_BadJSON(t *testing.T) {
	h := setupTest(t)

	rec := doRequest(t, h, "POST", "/api/entries", `{nope`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleListEntries_NewestFirst(t *testing.T) {
	h := setupTest(t)

	doRequest(t, h, "POST", "/api/entries", `{"moodLevel": 2, "emotions": ["Sad"], "situation": "Family"}`)
	doRequest(t, h, "POST", "/api/entries", `{"moodLevel": 5, "emotions": ["Excited"], "situation": "Creative"}`)

	rec := doRequest(t, h, "GET", "/api/entries", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Entries []struct {
			MoodLevel int `json:"moodLevel"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(resp.Entries))
	}
	if resp.Entries[0].MoodLevel != 5 {
		t.Errorf("entries[0].moodLevel = %d, want newest (5)", resp.Entries[0].MoodLevel)
	}
}

func TestHandleSummary_NullAveragesWhenEmpty(t *testing.T) {
	h := setupTest(t)

	rec := doRequest(t, h, "GET", "/api/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["avg_mood"] != nil {
		t.Errorf("avg_mood = %v, want null with no data", resp["avg_mood"])
	}
	if resp["total_entries"] != float64(0) {
		t.Errorf("total_entries = %v, want 0", resp["total_entries"])
	}
}

func TestHandleInsights_LockedWithProgress(t *testing.T) {
	h := setupTest(t)

	doRequest(t, h, "POST", "/api/entries", `{"moodLevel": 3, "emotions": ["Calm"], "situation": "Relaxing"}`)

	rec := doRequest(t, h, "GET", "/api/insights", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Locked   bool `json:"locked"`
		Progress *struct {
			Have int `json:"have"`
			Need int `json:"need"`
		} `json:"progress"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Locked {
		t.Error("locked = false with one entry, want true")
	}
	if resp.Progress == nil || resp.Progress.Have != 1 || resp.Progress.Need != 7 {
		t.Errorf("progress = %+v, want 1/7", resp.Progress)
	}
}

func TestHandleInsights_UnlockedAtGate(t *testing.T) {
	h := setupTest(t)

	for i := 0; i < 7; i++ {
		doRequest(t, h, "POST", "/api/entries", `{"moodLevel": 4, "emotions": ["Content"], "situation": "Relaxing"}`)
	}

	rec := doRequest(t, h, "GET", "/api/insights", "")
	var resp struct {
		Locked      bool `json:"locked"`
		TopEmotions []struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		} `json:"top_emotions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Locked {
		t.Fatal("locked = true at 7 entries, want false")
	}
	if len(resp.TopEmotions) == 0 || resp.TopEmotions[0].Name != "Content" {
		t.Errorf("top_emotions = %v, want Content first", resp.TopEmotions)
	}
}

func TestHandleCrisisCheck(t *testing.T) {
	h := setupTest(t)

	for i := 0; i < 3; i++ {
		doRequest(t, h, "POST", "/api/entries", `{"moodLevel": 1, "emotions": ["Sad"], "situation": "Other"}`)
	}

	rec := doRequest(t, h, "GET", "/api/crisis", "")
	var resp map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp["trigger"] {
		t.Error("trigger = false after three very-low entries, want true")
	}
}

func TestRoutine_SetupTodayToggle(t *testing.T) {
	h := setupTest(t)

	rec := doRequest(t, h, "PUT", "/api/routine",
		`{"wakeTime":"07:30","tasks":[{"id":"t1","label":"Stretch","duration":5}],"encouragementStyle":"soft"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, want 200", rec.Code)
	}

	rec = doRequest(t, h, "GET", "/api/routine/today", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET today status = %d, want 200", rec.Code)
	}
	var today struct {
		Tasks []struct {
			Task struct {
				ID    string `json:"id"`
				Label string `json:"label"`
			} `json:"task"`
			Completed bool `json:"completed"`
		} `json:"tasks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &today); err != nil {
		t.Fatalf("decode today: %v", err)
	}
	if len(today.Tasks) != 1 || today.Tasks[0].Task.Label != "Stretch" {
		t.Fatalf("today = %+v", today)
	}

	rec = doRequest(t, h, "POST", "/api/routine/today/t1/toggle", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d, want 200; body = %s", rec.Code, rec.Body.String())
	}
	var toggled struct {
		Tasks []struct {
			Completed bool `json:"completed"`
		} `json:"tasks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &toggled); err != nil {
		t.Fatalf("decode toggle: %v", err)
	}
	if !toggled.Tasks[0].Completed {
		t.Error("task not completed after toggle")
	}
}

func TestRoutine_ToggleUnknownTask(t *testing.T) {
	h := setupTest(t)

	rec := doRequest(t, h, "POST", "/api/routine/today/ghost/toggle", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestReminders_AddListRemove(t *testing.T) {
	h := setupTest(t)

	rec := doRequest(t, h, "POST", "/api/reminders", `{"title":"Hand in essay","dueDate":"2030-01-02"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d, want 201; body = %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}

	rec = doRequest(t, h, "GET", "/api/reminders", "")
	var list struct {
		Reminders []struct {
			Title    string `json:"title"`
			DueLabel string `json:"dueLabel"`
			Urgency  string `json:"urgency"`
		} `json:"reminders"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Reminders) != 1 || list.Reminders[0].Title != "Hand in essay" {
		t.Fatalf("reminders = %+v", list.Reminders)
	}
	if list.Reminders[0].Urgency != "normal" {
		t.Errorf("urgency = %q, want normal for a far-future date", list.Reminders[0].Urgency)
	}

	rec = doRequest(t, h, "DELETE", "/api/reminders/"+created.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}
}

func TestReminders_BadDueDate(t *testing.T) {
	h := setupTest(t)

	rec := doRequest(t, h, "POST", "/api/reminders", `{"title":"x","dueDate":"soonish"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleChat_FallbackOnUnreachableAssistant(t *testing.T) {
	db, err := kv.Init(t.TempDir())
	if err != nil {
		t.Fatalf("kv.Init: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	cfg := config.DefaultConfig()

	// Endpoint nobody listens on
	h := NewHandlers(
		mood.Open(db, cfg),
		routine.NewManager(db),
		reminder.NewStore(db),
		chat.NewClient("http://127.0.0.1:1/chat"),
	)

	rec := doRequest(t, h, "POST", "/api/chat", `{"messages":[{"role":"user","content":"hello"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even when upstream is down", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["response"] != chat.FallbackReply {
		t.Errorf("response = %q, want fallback reply", resp["response"])
	}
}

func TestHandleChat_EmptyMessages(t *testing.T) {
	h := setupTest(t)

	rec := doRequest(t, h, "POST", "/api/chat", `{"messages":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := setupTest(t)

	rec := doRequest(t, h, "GET", "/api/entries", "")
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}
