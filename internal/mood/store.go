package mood

import (
	"crypto/rand"
	"database/sql"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/moodyapp/moody/internal/config"
	"github.com/moodyapp/moody/internal/errors"
	"github.com/moodyapp/moody/internal/kv"
)

// entriesKey is the storage key holding the full entry sequence.
const entriesKey = "moody_entries"

// weeklyWindow is the rolling lookback for weekly queries and the insight gate.
const weeklyWindow = 7 * 24 * time.Hour

// Store owns the mood entry collection: an ordered sequence, newest first,
// loaded once and held in memory. Every mutation writes the whole sequence
// back through the key-value adapter. Last write wins across processes;
// within a process the store is safe for concurrent use.
type Store struct {
	db  *sql.DB
	cfg *config.Config

	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
}

// Open loads the entry collection from storage and returns a ready Store.
// Missing or undecodable storage degrades to an empty collection.
func Open(db *sql.DB, cfg *config.Config) *Store {
	stored := kv.Load(db, entriesKey, []storedEntry(nil))
	return &Store{
		db:      db,
		cfg:     cfg,
		entries: fromStoredAll(stored),
		now:     time.Now,
	}
}

// AddInput contains parameters for AddEntry.
type AddInput struct {
	Level     Level
	Emotions  []string
	Situation string
	Notes     string
}

// AddEntry creates an entry with a fresh ID and the current time, prepends
// it, and persists the whole sequence. Emotion and situation emptiness is
// the logging surface's contract, not enforced here. On a failed write the
// in-memory sequence is left untouched and the error is returned.
func (s *Store) AddEntry(input AddInput) (*Entry, error) {
	if !input.Level.Valid() {
		return nil, errors.NewInvalidRequest("mood level must be between 1 and 5")
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := Entry{
		ID:        id,
		Level:     input.Level,
		Emotions:  input.Emotions,
		Situation: input.Situation,
		Notes:     input.Notes,
		Timestamp: s.now(),
	}

	updated := make([]Entry, 0, len(s.entries)+1)
	updated = append(updated, entry)
	updated = append(updated, s.entries...)

	if err := kv.Save(s.db, entriesKey, toStoredAll(updated)); err != nil {
		return nil, err
	}

	s.entries = updated
	return &entry, nil
}

// Entries returns a copy of the full sequence, newest first.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// WeeklyEntries returns entries newer than now minus 7 days. The lower
// bound is exclusive: an entry exactly 7 days old is already outside the
// window.
func (s *Store) WeeklyEntries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weekly()
}

// weekly filters the sequence to the rolling window. Callers hold the lock.
func (s *Store) weekly() []Entry {
	cutoff := s.now().Add(-weeklyWindow)
	entries := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Timestamp.After(cutoff) {
			entries = append(entries, e)
		}
	}
	return entries
}

// AverageMood returns the arithmetic mean mood level over the given subset.
// The second return is false for an empty subset; there is no sentinel value
// a real average could collide with.
func AverageMood(entries []Entry) (float64, bool) {
	if len(entries) == 0 {
		return 0, false
	}
	sum := 0
	for _, e := range entries {
		sum += int(e.Level)
	}
	return float64(sum) / float64(len(entries)), true
}

// AverageMood averages the full collection.
func (s *Store) AverageMood() (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return AverageMood(s.entries)
}

// EnoughDataForAnalysis reports whether the weekly window holds enough
// entries to unlock insights.
func (s *Store) EnoughDataForAnalysis() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.weekly()) >= s.cfg.InsightMinWeeklyEntries
}

// AnalysisProgress returns the current weekly entry count and the count
// needed to unlock insights, for the locked-state progress display.
func (s *Store) AnalysisProgress() (have, need int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.weekly()), s.cfg.InsightMinWeeklyEntries
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
