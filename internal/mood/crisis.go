package mood

import "github.com/moodyapp/moody/internal/config"

// DetectMoodDip reports whether the most recent entries signal a sustained
// low-mood period. It looks at the newest entries only (config window,
// default 5) and never triggers below the minimum sample size. The check is
// a heuristic, not a clinical determination: either a low recent average or
// enough individual low-mood entries trips it, so it errs toward triggering.
//
// The predicate is stateless; per-session dismissal tracking belongs to the
// surface that shows the alert.
func DetectMoodDip(entries []Entry, cfg *config.Config) bool {
	recent := entries
	if len(recent) > cfg.CrisisRecentWindow {
		recent = recent[:cfg.CrisisRecentWindow]
	}
	if len(recent) < cfg.CrisisMinEntries {
		return false
	}

	avg, _ := AverageMood(recent)

	lowMoodCount := 0
	for _, e := range recent {
		if int(e.Level) <= cfg.CrisisLowMoodLevel {
			lowMoodCount++
		}
	}

	return avg < cfg.CrisisAvgThreshold || lowMoodCount >= cfg.CrisisLowMoodCount
}

// DetectMoodDip evaluates the predicate over the store's collection.
func (s *Store) DetectMoodDip() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return DetectMoodDip(s.entries, s.cfg)
}
