package routine

import (
	"database/sql"
	"time"

	"github.com/moodyapp/moody/internal/errors"
	"github.com/moodyapp/moody/internal/kv"
)

// Storage keys.
const (
	templateKey = "coachData"
	historyKey  = "dailyRoutineHistory"
)

// Task is one entry of the routine template. Templates are edited rarely;
// completion state lives in the per-day history, not here.
type Task struct {
	ID              string `json:"id"`
	Label           string `json:"label"`
	DurationMinutes int    `json:"duration"`
}

// Template is the user's routine setup.
type Template struct {
	WakeTime           string `json:"wakeTime"`
	Tasks              []Task `json:"tasks"`
	EncouragementStyle string `json:"encouragementStyle"`
}

// TaskState is the completion record for one template task on one day.
type TaskState struct {
	TaskID    string `json:"taskId"`
	Completed bool   `json:"completed"`
}

// ResolvedTask joins a day's completion record with its template task.
type ResolvedTask struct {
	Task      Task `json:"task"`
	Completed bool `json:"completed"`
}

// History maps an ISO calendar date (YYYY-MM-DD) to that day's task states.
type History map[string][]TaskState

// Manager owns the routine template and the per-day completion history.
// Today's state is created lazily from the template on first access.
type Manager struct {
	db  *sql.DB
	now func() time.Time
}

// NewManager creates a Manager over the given database.
func NewManager(db *sql.DB) *Manager {
	return &Manager{db: db, now: time.Now}
}

// today returns the current ISO calendar date.
func (m *Manager) today() string {
	return m.now().Format("2006-01-02")
}

// Template returns the stored routine template, empty if never set up.
func (m *Manager) Template() Template {
	return kv.Load(m.db, templateKey, Template{EncouragementStyle: "neutral"})
}

// SaveTemplate replaces the routine template.
func (m *Manager) SaveTemplate(tpl Template) error {
	return kv.Save(m.db, templateKey, tpl)
}

// Today returns today's task states, creating them from the template and
// persisting them on first access.
func (m *Manager) Today() ([]TaskState, error) {
	history := kv.Load(m.db, historyKey, History{})
	day := m.today()

	if states, ok := history[day]; ok {
		return states, nil
	}

	tpl := m.Template()
	fresh := make([]TaskState, len(tpl.Tasks))
	for i, task := range tpl.Tasks {
		fresh[i] = TaskState{TaskID: task.ID}
	}

	history[day] = fresh
	if err := kv.Save(m.db, historyKey, history); err != nil {
		return nil, err
	}
	return fresh, nil
}

// ResolvedToday returns today's states joined with their template tasks.
// A state whose template task was deleted is a benign miss and is skipped.
func (m *Manager) ResolvedToday() ([]ResolvedTask, error) {
	states, err := m.Today()
	if err != nil {
		return nil, err
	}

	tasks := make(map[string]Task)
	for _, task := range m.Template().Tasks {
		tasks[task.ID] = task
	}

	resolved := make([]ResolvedTask, 0, len(states))
	for _, state := range states {
		task, ok := tasks[state.TaskID]
		if !ok {
			continue
		}
		resolved = append(resolved, ResolvedTask{Task: task, Completed: state.Completed})
	}
	return resolved, nil
}

// Toggle flips the completion flag of one of today's tasks.
func (m *Manager) Toggle(taskID string) ([]TaskState, error) {
	states, err := m.Today()
	if err != nil {
		return nil, err
	}

	found := false
	updated := make([]TaskState, len(states))
	for i, state := range states {
		if state.TaskID == taskID {
			state.Completed = !state.Completed
			found = true
		}
		updated[i] = state
	}
	if !found {
		return nil, errors.NewNotFound(taskID)
	}

	if err := m.saveToday(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveTask drops a task from today's checklist. The template is left
// alone; the task reappears tomorrow.
func (m *Manager) RemoveTask(taskID string) ([]TaskState, error) {
	states, err := m.Today()
	if err != nil {
		return nil, err
	}

	updated := make([]TaskState, 0, len(states))
	for _, state := range states {
		if state.TaskID != taskID {
			updated = append(updated, state)
		}
	}
	if len(updated) == len(states) {
		return nil, errors.NewNotFound(taskID)
	}

	if err := m.saveToday(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// saveToday rewrites today's slot in the history.
func (m *Manager) saveToday(states []TaskState) error {
	history := kv.Load(m.db, historyKey, History{})
	history[m.today()] = states
	return kv.Save(m.db, historyKey, history)
}
