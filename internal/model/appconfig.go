package model

import "time"

// AppConfig holds application-wide preferences and default run settings.
type AppConfig struct {
	// Default search settings
	DefaultPopulationSize  int     `json:"default_population_size"`
	DefaultEfficiencyLimit float64 `json:"default_efficiency_limit"`
	DefaultMaxGenerations  int     `json:"default_max_generations"`
	DefaultTimeLimitSec    int     `json:"default_time_limit_sec"` // 0 = unbounded
	DefaultWorkers         int     `json:"default_workers"`

	// Default export settings
	DefaultCellSize     float64 `json:"default_cell_size"`
	DefaultPixelsCell   int     `json:"default_pixels_cell"`
	DefaultFeedRate     float64 `json:"default_feed_rate"`
	DefaultSafeZ        float64 `json:"default_safe_z"`
	DefaultCutDepth     float64 `json:"default_cut_depth"`
	DefaultPassDepth    float64 `json:"default_pass_depth"`
	DefaultGCodeProfile string  `json:"default_gcode_profile"`

	// Run history
	HistoryBackend string `json:"history_backend"` // "memory" or "sqlite"
	HistoryPath    string `json:"history_path"`    // empty = default location

	RecentProblems []string `json:"recent_problems"`
	Theme          string   `json:"theme"` // "light", "dark", "system"
}

// DefaultAppConfig returns an AppConfig matching DefaultExportSettings and
// the CLI's search defaults.
func DefaultAppConfig() AppConfig {
	defaults := DefaultExportSettings()
	return AppConfig{
		DefaultPopulationSize:  10,
		DefaultEfficiencyLimit: 0.9,
		DefaultMaxGenerations:  500,
		DefaultTimeLimitSec:    0,
		DefaultWorkers:         1,
		DefaultCellSize:        defaults.CellSize,
		DefaultPixelsCell:      defaults.PixelsCell,
		DefaultFeedRate:        defaults.FeedRate,
		DefaultSafeZ:           defaults.SafeZ,
		DefaultCutDepth:        defaults.CutDepth,
		DefaultPassDepth:       defaults.PassDepth,
		DefaultGCodeProfile:    defaults.GCodeProfile,
		HistoryBackend:         "sqlite",
		RecentProblems:         []string{},
		Theme:                  "system",
	}
}

// ApplyToSettings copies the export defaults into s.
func (c AppConfig) ApplyToSettings(s *ExportSettings) {
	s.CellSize = c.DefaultCellSize
	s.PixelsCell = c.DefaultPixelsCell
	s.FeedRate = c.DefaultFeedRate
	s.SafeZ = c.DefaultSafeZ
	s.CutDepth = c.DefaultCutDepth
	s.PassDepth = c.DefaultPassDepth
	s.GCodeProfile = c.DefaultGCodeProfile
}

// TimeLimit returns the default wall-clock cap as a duration.
func (c AppConfig) TimeLimit() time.Duration {
	return time.Duration(c.DefaultTimeLimitSec) * time.Second
}

// AddRecentProblem records path at the front of the recent list, keeping at most max entries.
func (c *AppConfig) AddRecentProblem(path string, max int) {
	list := []string{path}
	for _, p := range c.RecentProblems {
		if p != path {
			list = append(list, p)
		}
	}
	if len(list) > max {
		list = list[:max]
	}
	c.RecentProblems = list
}
