package mood

import (
	"fmt"
	"time"
)

// storedEntry is the persisted form of an Entry. The key-value store holds
// JSON text only, so the timestamp crosses the boundary as an ISO-8601
// string; the conversion lives here, not in the adapter.
type storedEntry struct {
	ID        string   `json:"id"`
	MoodLevel int      `json:"moodLevel"`
	Emotions  []string `json:"emotions"`
	Situation string   `json:"situation"`
	Notes     string   `json:"notes,omitempty"`
	Timestamp string   `json:"timestamp"`
}

// toStored converts an Entry into its persisted form.
func toStored(e Entry) storedEntry {
	return storedEntry{
		ID:        e.ID,
		MoodLevel: int(e.Level),
		Emotions:  e.Emotions,
		Situation: e.Situation,
		Notes:     e.Notes,
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

// fromStored converts a persisted entry back into an Entry.
func fromStored(s storedEntry) (Entry, error) {
	ts, err := time.Parse(time.RFC3339Nano, s.Timestamp)
	if err != nil {
		return Entry{}, fmt.Errorf("parse timestamp %q: %w", s.Timestamp, err)
	}
	return Entry{
		ID:        s.ID,
		Level:     Level(s.MoodLevel),
		Emotions:  s.Emotions,
		Situation: s.Situation,
		Notes:     s.Notes,
		Timestamp: ts,
	}, nil
}

// toStoredAll converts a sequence preserving order.
func toStoredAll(entries []Entry) []storedEntry {
	stored := make([]storedEntry, len(entries))
	for i, e := range entries {
		stored[i] = toStored(e)
	}
	return stored
}

// fromStoredAll converts a persisted sequence, dropping records whose
// timestamp no longer parses. A corrupt record degrades to a missing one
// rather than poisoning the whole collection.
func fromStoredAll(stored []storedEntry) []Entry {
	entries := make([]Entry, 0, len(stored))
	for _, s := range stored {
		e, err := fromStored(s)
		if err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries
}
