package domain

import "time"

// DefaultSeasonLength is applied when a season is created without an
// explicit end date.
const DefaultSeasonLength = 3 // months

// Season is a multi-month competitive period. At most one season is
// active at any instant; a window where two are active is a transient
// anomaly healed by the next rollover pass.
type Season struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Theme     string    `json:"theme"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Active    bool      `json:"active"`
}

// ExpiredBy reports whether the season's end date has passed on the
// given day.
func (s Season) ExpiredBy(day time.Time) bool {
	return !s.EndDate.After(day)
}

// LevelTitle is one row of the static level catalog: the minimum
// cumulative experience required to hold a level, plus its display
// title and category tag. Loaded by the seed command.
type LevelTitle struct {
	Level         int    `json:"level"`
	Title         string `json:"title"`
	Category      string `json:"category"`
	MinExperience int64  `json:"min_experience"`
}

// SeasonRank is the per-(user, season) progression record. Experience
// is monotonic non-decreasing within a season; Level is always derived
// from the catalog, never mutated independently.
type SeasonRank struct {
	ID         int64         `json:"id"`
	UserID     int64         `json:"user_id"`
	Username   string        `json:"username"`
	SeasonID   int64         `json:"season_id"`
	Experience int64         `json:"experience"`
	Level      int           `json:"level"`
	TotalTime  time.Duration `json:"total_time"`
	Visits     int           `json:"visits"`
}

// LevelInfo is the rendered view of a rank's position on the catalog.
type LevelInfo struct {
	Level        int     `json:"level"`
	Title        string  `json:"title"`
	Category     string  `json:"category"`
	CurrentExp   int64   `json:"current_exp"`
	NextLevelExp int64   `json:"next_level_exp"`
	ExpInLevel   int64   `json:"exp_in_level"`
	ExpToNext    int64   `json:"exp_to_next"`
	Progress     float64 `json:"progress"` // 0–100 toward the next catalog row
}

// Profile is the on-demand view returned for /profile queries.
type Profile struct {
	UserID     int64         `json:"user_id"`
	Username   string        `json:"username"`
	SeasonName string        `json:"season_name"`
	LevelInfo  LevelInfo     `json:"level_info"`
	TotalTime  time.Duration `json:"total_time"`
	Visits     int           `json:"visits"`
}
