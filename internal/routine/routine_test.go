package routine

import (
	"database/sql"
	"testing"
	"time"

	"github.com/moodyapp/moody/internal/errors"
	"github.com/moodyapp/moody/internal/kv"
)

func setupManager(t *testing.T) (*Manager, *sql.DB) {
	t.Helper()
	db, err := kv.Init(t.TempDir())
	if err != nil {
		t.Fatalf("kv.Init failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	m := NewManager(db)
	m.now = func() time.Time { return time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC) }
	return m, db
}

func seedTemplate(t *testing.T, m *Manager) Template {
	t.Helper()
	tpl := Template{
		WakeTime: "07:00",
		Tasks: []Task{
			{ID: "t1", Label: "Stretch", DurationMinutes: 5},
			{ID: "t2", Label: "Journal", DurationMinutes: 10},
			{ID: "t3", Label: "Walk", DurationMinutes: 20},
		},
		EncouragementStyle: "soft",
	}
	if err := m.SaveTemplate(tpl); err != nil {
		t.Fatalf("SaveTemplate failed: %v", err)
	}
	return tpl
}

func TestTemplate_DefaultWhenUnset(t *testing.T) {
	m, _ := setupManager(t)

	tpl := m.Template()
	if len(tpl.Tasks) != 0 {
		t.Errorf("Tasks = %v, want empty", tpl.Tasks)
	}
	if tpl.EncouragementStyle != "neutral" {
		t.Errorf("EncouragementStyle = %q, want neutral", tpl.EncouragementStyle)
	}
}

func TestTemplate_RoundTrip(t *testing.T) {
	m, _ := setupManager(t)
	want := seedTemplate(t, m)

	got := m.Template()
	if got.WakeTime != want.WakeTime || got.EncouragementStyle != want.EncouragementStyle {
		t.Errorf("Template = %+v, want %+v", got, want)
	}
	if len(got.Tasks) != 3 || got.Tasks[1].Label != "Journal" || got.Tasks[1].DurationMinutes != 10 {
		t.Errorf("Tasks = %v", got.Tasks)
	}
}

func TestToday_LazyCreation(t *testing.T) {
	m, db := setupManager(t)
	seedTemplate(t, m)

	states, err := m.Today()
	if err != nil {
		t.Fatalf("Today failed: %v", err)
	}
	if len(states) != 3 {
		t.Fatalf("len = %d, want 3", len(states))
	}
	for _, s := range states {
		if s.Completed {
			t.Errorf("task %s starts completed, want fresh", s.TaskID)
		}
	}

	// The fresh day must be persisted, not just returned
	history := kv.Load(db, historyKey, History{})
	if _, ok := history["2025-06-15"]; !ok {
		t.Error("today's routine was not persisted on first access")
	}
}

func TestToday_NewDayResets(t *testing.T) {
	m, _ := setupManager(t)
	seedTemplate(t, m)

	if _, err := m.Toggle("t1"); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}

	// Next morning
	m.now = func() time.Time { return time.Date(2025, 6, 16, 8, 0, 0, 0, time.UTC) }

	states, err := m.Today()
	if err != nil {
		t.Fatalf("Today failed: %v", err)
	}
	for _, s := range states {
		if s.Completed {
			t.Errorf("task %s carried completion into the new day", s.TaskID)
		}
	}
}

func TestToggle(t *testing.T) {
	m, _ := setupManager(t)
	seedTemplate(t, m)

	states, err := m.Toggle("t2")
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if !states[1].Completed {
		t.Error("t2 not completed after toggle")
	}
	if states[0].Completed || states[2].Completed {
		t.Error("toggle touched other tasks")
	}

	states, err = m.Toggle("t2")
	if err != nil {
		t.Fatalf("second Toggle failed: %v", err)
	}
	if states[1].Completed {
		t.Error("t2 still completed after second toggle")
	}
}

func TestToggle_UnknownTask(t *testing.T) {
	m, _ := setupManager(t)
	seedTemplate(t, m)

	_, err := m.Toggle("nope")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestRemoveTask_TodayOnly(t *testing.T) {
	m, _ := setupManager(t)
	seedTemplate(t, m)

	states, err := m.RemoveTask("t1")
	if err != nil {
		t.Fatalf("RemoveTask failed: %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("len = %d after removal, want 2", len(states))
	}

	// Template untouched; the task returns tomorrow
	if len(m.Template().Tasks) != 3 {
		t.Error("RemoveTask modified the template")
	}
	m.now = func() time.Time { return time.Date(2025, 6, 16, 8, 0, 0, 0, time.UTC) }
	next, err := m.Today()
	if err != nil {
		t.Fatalf("Today failed: %v", err)
	}
	if len(next) != 3 {
		t.Errorf("next day len = %d, want 3", len(next))
	}
}

func TestResolvedToday_SkipsDeletedTemplateTasks(t *testing.T) {
	m, _ := setupManager(t)
	tpl := seedTemplate(t, m)

	// Materialize today's state, then delete a task from the template
	if _, err := m.Today(); err != nil {
		t.Fatalf("Today failed: %v", err)
	}
	tpl.Tasks = tpl.Tasks[:2] // drops t3
	if err := m.SaveTemplate(tpl); err != nil {
		t.Fatalf("SaveTemplate failed: %v", err)
	}

	resolved, err := m.ResolvedToday()
	if err != nil {
		t.Fatalf("ResolvedToday failed: %v", err)
	}
	if len(resolved) != 2 {
		t.Fatalf("len = %d, want 2 (orphan record skipped, not an error)", len(resolved))
	}
	for _, r := range resolved {
		if r.Task.ID == "t3" {
			t.Error("deleted template task should be skipped")
		}
	}
}
