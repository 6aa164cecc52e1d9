package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// ChatEndpoint is the URL of the external assistant backend.
	ChatEndpoint string `json:"chat_endpoint,omitempty"`

	// InsightMinWeeklyEntries is the number of entries required inside the
	// rolling 7-day window before insights unlock.
	InsightMinWeeklyEntries int `json:"insight_min_weekly_entries,omitempty"`

	// CrisisRecentWindow is how many of the newest entries the mood-dip
	// check looks at.
	CrisisRecentWindow int `json:"crisis_recent_window,omitempty"`

	// CrisisMinEntries is the minimum number of entries inside the window
	// before the check can trigger at all.
	CrisisMinEntries int `json:"crisis_min_entries,omitempty"`

	// CrisisAvgThreshold triggers the check when the recent average mood
	// falls below it.
	CrisisAvgThreshold float64 `json:"crisis_avg_threshold,omitempty"`

	// CrisisLowMoodLevel is the mood level at or below which an entry
	// counts as a low-mood entry.
	CrisisLowMoodLevel int `json:"crisis_low_mood_level,omitempty"`

	// CrisisLowMoodCount triggers the check when at least this many
	// low-mood entries appear inside the window.
	CrisisLowMoodCount int `json:"crisis_low_mood_count,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is locked" errors).
	// 0 means use sql.DB default (unlimited). Only set if you experience contention.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of type names to disable entirely.
	// All tools belonging to disabled types are excluded from registration.
	// Known types: "mood", "routine", "reminder". Unknown type names are
	// logged as warnings.
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// DefaultConfig returns the default configuration.
// The crisis thresholds are deliberately generous: the downstream action is
// surfacing supportive resources, so false positives beat missed signals.
func DefaultConfig() *Config {
	return &Config{
		ChatEndpoint:            "http://localhost:8000/chat",
		InsightMinWeeklyEntries: 7,
		CrisisRecentWindow:      5,
		CrisisMinEntries:        3,
		CrisisAvgThreshold:      2.5,
		CrisisLowMoodLevel:      2,
		CrisisLowMoodCount:      3,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.moody.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// File doesn't exist, return zero config
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.ChatEndpoint = overlay.ChatEndpoint
	if result.ChatEndpoint == "" {
		result.ChatEndpoint = base.ChatEndpoint
	}

	result.InsightMinWeeklyEntries = overlay.InsightMinWeeklyEntries
	if result.InsightMinWeeklyEntries == 0 {
		result.InsightMinWeeklyEntries = base.InsightMinWeeklyEntries
	}

	result.CrisisRecentWindow = overlay.CrisisRecentWindow
	if result.CrisisRecentWindow == 0 {
		result.CrisisRecentWindow = base.CrisisRecentWindow
	}

	result.CrisisMinEntries = overlay.CrisisMinEntries
	if result.CrisisMinEntries == 0 {
		result.CrisisMinEntries = base.CrisisMinEntries
	}

	result.CrisisAvgThreshold = overlay.CrisisAvgThreshold
	if result.CrisisAvgThreshold == 0 {
		result.CrisisAvgThreshold = base.CrisisAvgThreshold
	}

	result.CrisisLowMoodLevel = overlay.CrisisLowMoodLevel
	if result.CrisisLowMoodLevel == 0 {
		result.CrisisLowMoodLevel = base.CrisisLowMoodLevel
	}

	result.CrisisLowMoodCount = overlay.CrisisLowMoodCount
	if result.CrisisLowMoodCount == 0 {
		result.CrisisLowMoodCount = base.CrisisLowMoodCount
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	// Arrays: merge and deduplicate
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
