package domain

import "time"

// DailyStatistic is the per-(user, date) rollup of closed sessions.
// It is always fully recomputed from that day's sessions, so it stays
// correct after retroactive join/leave edits.
type DailyStatistic struct {
	ID         int64         `json:"id"`
	UserID     int64         `json:"user_id"`
	Username   string        `json:"username"`
	Date       time.Time     `json:"date"` // midnight of the day
	TotalTime  time.Duration `json:"total_time"`
	TotalTrips int           `json:"total_trips"`
}

// DigestEntry is one user's line in the daily digest.
type DigestEntry struct {
	UserID     int64         `json:"user_id"`
	Username   string        `json:"username"`
	TotalTime  time.Duration `json:"total_time"`
	TotalTrips int           `json:"total_trips"`
	Experience int64         `json:"experience"`
}

// DailyDigest is the read-only report over all users for one day.
// A day with no sessions yields Entries == nil; a day with sessions
// but zero experience is a different, equally valid state.
type DailyDigest struct {
	Date            time.Time     `json:"date"`
	Entries         []DigestEntry `json:"entries"`
	TotalTrips      int           `json:"total_trips"`
	TotalTime       time.Duration `json:"total_time"`
	TotalExperience int64         `json:"total_experience"`
}

// HasActivity reports whether anything was recorded for the day.
func (d DailyDigest) HasActivity() bool {
	return len(d.Entries) > 0
}
