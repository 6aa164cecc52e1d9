package mood

import (
	"testing"
	"time"
)

func TestToStored_TimestampISO8601(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	e := Entry{
		ID:        "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Level:     LevelGood,
		Emotions:  []string{"Happy", "Calm"},
		Situation: "Relaxing",
		Notes:     "good afternoon",
		Timestamp: ts,
	}

	stored := toStored(e)

	if stored.Timestamp != "2025-03-14T09:26:53Z" {
		t.Errorf("Timestamp = %q, want RFC 3339 string", stored.Timestamp)
	}
	if stored.MoodLevel != 4 {
		t.Errorf("MoodLevel = %d, want 4", stored.MoodLevel)
	}
}

func TestFromStored_RoundTrip(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 120000000, time.UTC)
	in := Entry{
		ID:        "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Level:     LevelLow,
		Emotions:  []string{"Sad"},
		Situation: "Work/School",
		Timestamp: ts,
	}

	out, err := fromStored(toStored(in))
	if err != nil {
		t.Fatalf("fromStored failed: %v", err)
	}

	if out.ID != in.ID || out.Level != in.Level || out.Situation != in.Situation {
		t.Errorf("round trip mismatch: got %+v, want %+v", out, in)
	}
	if !out.Timestamp.Equal(in.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", out.Timestamp, in.Timestamp)
	}
	if len(out.Emotions) != 1 || out.Emotions[0] != "Sad" {
		t.Errorf("Emotions = %v, want [Sad]", out.Emotions)
	}
}

func TestFromStored_BadTimestamp(t *testing.T) {
	_, err := fromStored(storedEntry{ID: "x", MoodLevel: 3, Timestamp: "yesterday-ish"})
	if err == nil {
		t.Fatal("fromStored should fail on an unparseable timestamp")
	}
}

func TestFromStoredAll_DropsCorruptRecords(t *testing.T) {
	stored := []storedEntry{
		{ID: "a", MoodLevel: 3, Timestamp: "2025-03-14T09:00:00Z"},
		{ID: "b", MoodLevel: 2, Timestamp: "not a timestamp"},
		{ID: "c", MoodLevel: 5, Timestamp: "2025-03-13T09:00:00Z"},
	}

	entries := fromStoredAll(stored)

	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].ID != "a" || entries[1].ID != "c" {
		t.Errorf("kept IDs = %q, %q; want a, c", entries[0].ID, entries[1].ID)
	}
}
