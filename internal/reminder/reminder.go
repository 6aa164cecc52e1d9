package reminder

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/moodyapp/moody/internal/errors"
	"github.com/moodyapp/moody/internal/kv"
)

// remindersKey is the storage key holding the reminder list.
const remindersKey = "moody_reminders"

// Reminder is a dated to-do, e.g. a school project deadline.
type Reminder struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	DueDate time.Time `json:"dueDate"`
}

// Urgency classifies how close a due date is.
type Urgency string

const (
	UrgencyOverdue Urgency = "overdue" // past, or due within a day
	UrgencySoon    Urgency = "soon"    // due within three days
	UrgencyNormal  Urgency = "normal"
)

// storedReminder is the persisted form; the due date crosses the storage
// boundary as an ISO-8601 string.
type storedReminder struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	DueDate string `json:"dueDate"`
}

func toStored(r Reminder) storedReminder {
	return storedReminder{
		ID:      r.ID,
		Title:   r.Title,
		DueDate: r.DueDate.UTC().Format(time.RFC3339Nano),
	}
}

func fromStored(s storedReminder) (Reminder, error) {
	due, err := time.Parse(time.RFC3339Nano, s.DueDate)
	if err != nil {
		return Reminder{}, err
	}
	return Reminder{ID: s.ID, Title: s.Title, DueDate: due}, nil
}

// Store owns the reminder list, kept sorted by due date ascending.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store over the given database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// List returns all reminders, soonest due first. Records whose due date no
// longer parses are dropped silently.
func (s *Store) List() []Reminder {
	stored := kv.Load(s.db, remindersKey, []storedReminder(nil))
	reminders := make([]Reminder, 0, len(stored))
	for _, sr := range stored {
		r, err := fromStored(sr)
		if err != nil {
			continue
		}
		reminders = append(reminders, r)
	}
	sort.SliceStable(reminders, func(i, j int) bool {
		return reminders[i].DueDate.Before(reminders[j].DueDate)
	})
	return reminders
}

// Add creates a reminder and persists the re-sorted list.
func (s *Store) Add(title string, due time.Time) (*Reminder, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errors.NewInvalidRequest("title is required")
	}
	if due.IsZero() {
		return nil, errors.NewInvalidRequest("due date is required")
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	r := Reminder{ID: id, Title: title, DueDate: due}
	updated := append(s.List(), r)
	sort.SliceStable(updated, func(i, j int) bool {
		return updated[i].DueDate.Before(updated[j].DueDate)
	})

	if err := s.save(updated); err != nil {
		return nil, err
	}
	return &r, nil
}

// Remove deletes a reminder by id.
func (s *Store) Remove(id string) error {
	reminders := s.List()
	updated := make([]Reminder, 0, len(reminders))
	for _, r := range reminders {
		if r.ID != id {
			updated = append(updated, r)
		}
	}
	if len(updated) == len(reminders) {
		return errors.NewNotFound(id)
	}
	return s.save(updated)
}

func (s *Store) save(reminders []Reminder) error {
	stored := make([]storedReminder, len(reminders))
	for i, r := range reminders {
		stored[i] = toStored(r)
	}
	return kv.Save(s.db, remindersKey, stored)
}

// DueLabel renders how far away a due date is, calendar-day based.
func DueLabel(due, now time.Time) string {
	days := daysUntil(due, now)
	switch {
	case days < 0:
		return "Overdue"
	case days == 0:
		return "Today!"
	case days == 1:
		return "Tomorrow"
	}
	return fmt.Sprintf("%d days", days)
}

// ClassifyUrgency buckets a due date for display emphasis.
func ClassifyUrgency(due, now time.Time) Urgency {
	days := daysUntil(due, now)
	switch {
	case days <= 1:
		return UrgencyOverdue
	case days <= 3:
		return UrgencySoon
	}
	return UrgencyNormal
}

// daysUntil counts whole calendar days from now's date to due's date.
func daysUntil(due, now time.Time) int {
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	nowDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(dueDay.Sub(nowDay) / (24 * time.Hour))
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
