package mood

import "sort"

// EmotionCount is one row of the emotion frequency ranking.
type EmotionCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SituationCount is one slice of the situation distribution.
type SituationCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// WeekdayAverage is the average mood for one calendar weekday over all
// history. HasData is false when no entry falls on that weekday; the
// AvgMood value is meaningless in that case.
type WeekdayAverage struct {
	Day     string  `json:"day"`
	AvgMood float64 `json:"avg_mood"`
	HasData bool    `json:"has_data"`
}

// topEmotionLimit caps the emotion ranking.
const topEmotionLimit = 5

// weekdayNames is indexed by time.Weekday (Sunday = 0).
var weekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// TopEmotions counts, for each emotion in the fixed vocabulary, the entries
// whose emotion set contains it, and returns the five most frequent. The
// sort is stable over vocabulary order, so ties rank by declaration order
// and repeated runs yield identical output.
func TopEmotions(entries []Entry) []EmotionCount {
	counts := make([]EmotionCount, len(Emotions))
	for i, emotion := range Emotions {
		n := 0
		for _, e := range entries {
			for _, felt := range e.Emotions {
				if felt == emotion {
					n++
					break
				}
			}
		}
		counts[i] = EmotionCount{Name: emotion, Count: n}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	if len(counts) > topEmotionLimit {
		counts = counts[:topEmotionLimit]
	}
	return counts
}

// SituationBreakdown counts entries per vocabulary situation. Situations
// with no entries are dropped, not reported as zero.
func SituationBreakdown(entries []Entry) []SituationCount {
	breakdown := make([]SituationCount, 0, len(Situations))
	for _, situation := range Situations {
		n := 0
		for _, e := range entries {
			if e.Situation == situation {
				n++
			}
		}
		if n > 0 {
			breakdown = append(breakdown, SituationCount{Name: situation, Count: n})
		}
	}
	return breakdown
}

// WeekdayPattern computes the average mood per calendar weekday over the
// whole collection, ordered Sunday through Saturday.
func WeekdayPattern(entries []Entry) []WeekdayAverage {
	pattern := make([]WeekdayAverage, 7)
	for day := 0; day < 7; day++ {
		var dayEntries []Entry
		for _, e := range entries {
			if int(e.Timestamp.Weekday()) == day {
				dayEntries = append(dayEntries, e)
			}
		}
		avg, ok := AverageMood(dayEntries)
		pattern[day] = WeekdayAverage{Day: weekdayNames[day], AvgMood: avg, HasData: ok}
	}
	return pattern
}

// Progress reports how close the weekly window is to unlocking insights.
type Progress struct {
	Have int `json:"have"`
	Need int `json:"need"`
}

// Report is the full insight view. When Locked is true only Progress is
// populated; the computed views are withheld until enough data accumulates.
type Report struct {
	Locked         bool             `json:"locked"`
	Progress       *Progress        `json:"progress,omitempty"`
	TotalEntries   int              `json:"total_entries,omitempty"`
	WeeklyAvgMood  *float64         `json:"weekly_avg_mood,omitempty"`
	TopEmotions    []EmotionCount   `json:"top_emotions,omitempty"`
	Situations     []SituationCount `json:"situations,omitempty"`
	WeekdayPattern []WeekdayAverage `json:"weekday_pattern,omitempty"`
}

// Insights builds the report from the current collection. All views are
// recomputed on every call; nothing is cached or mutated.
func (s *Store) Insights() Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	weekly := s.weekly()
	if len(weekly) < s.cfg.InsightMinWeeklyEntries {
		return Report{
			Locked:   true,
			Progress: &Progress{Have: len(weekly), Need: s.cfg.InsightMinWeeklyEntries},
		}
	}

	report := Report{
		TotalEntries:   len(s.entries),
		TopEmotions:    TopEmotions(s.entries),
		Situations:     SituationBreakdown(s.entries),
		WeekdayPattern: WeekdayPattern(s.entries),
	}
	if avg, ok := AverageMood(weekly); ok {
		report.WeeklyAvgMood = &avg
	}
	return report
}
