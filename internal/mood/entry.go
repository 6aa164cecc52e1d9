package mood

import "time"

// Level is a self-reported wellbeing rating from 1 (very low) to 5 (very good).
type Level int

const (
	LevelVeryLow  Level = 1
	LevelLow      Level = 2
	LevelNeutral  Level = 3
	LevelGood     Level = 4
	LevelVeryGood Level = 5
)

// Valid reports whether the level is inside the 1..5 scale.
func (l Level) Valid() bool {
	return l >= LevelVeryLow && l <= LevelVeryGood
}

// Label returns the display label for the level, or "" for invalid levels.
func (l Level) Label() string {
	switch l {
	case LevelVeryLow:
		return "Very Low"
	case LevelLow:
		return "Low"
	case LevelNeutral:
		return "Neutral"
	case LevelGood:
		return "Good"
	case LevelVeryGood:
		return "Very Good"
	}
	return ""
}

// Entry is one user-submitted mood record. Entries are never mutated after
// creation; there is no edit or delete path.
type Entry struct {
	ID        string    `json:"id"`
	Level     Level     `json:"moodLevel"`
	Emotions  []string  `json:"emotions"`
	Situation string    `json:"situation"`
	Notes     string    `json:"notes,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Emotions is the fixed emotion vocabulary. Declaration order breaks ties
// when ranking by frequency, so it must stay stable.
var Emotions = []string{
	"Happy",
	"Sad",
	"Angry",
	"Afraid",
	"Disgusted",
	"Surprised",
	"Stressed",
	"Anxious",
	"Tired",
	"Confident",
	"Calm",
	"Overwhelmed",
	"Frustrated",
	"Bored",
	"Excited",
	"Hopeful",
	"Lonely",
	"Content",
	"Irritated",
	"Motivated",
}

// Situations is the fixed vocabulary of context categories.
var Situations = []string{
	"Work/School",
	"Social",
	"Family",
	"Exercise",
	"Relaxing",
	"Eating",
	"Commuting",
	"Creative",
	"Learning",
	"Other",
}
