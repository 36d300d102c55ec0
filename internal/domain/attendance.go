// Package domain holds the core types of the attendance & progression
// engine: organizations, visit sessions, seasons, ranks, achievements
// and daily statistics. Pure data — no storage or transport imports.
package domain

import (
	"fmt"
	"regexp"
	"time"
)

// ValidOrganizationName limits organization names to Cyrillic/Latin
// letters, digits, spaces and dashes.
var ValidOrganizationName = regexp.MustCompile(`^[А-Яа-яЁёA-Za-z0-9\s\-]+$`)

// Organization is a client site users check into. Created on first
// reference, never deleted by the engine.
type Organization struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Session is one continuous visit: open on join, closed on leave.
type Session struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	OrgID     int64     `json:"org_id"`
	OrgName   string    `json:"org_name"`
	JoinTime  time.Time `json:"join_time"`
	LeaveTime time.Time `json:"leave_time"` // zero while open
	Edited    bool      `json:"edited"`
	EditCount int       `json:"edit_count"`
	// Experience awarded at close. Set exactly once; leave-time edits
	// after close do not re-score.
	Experience int `json:"experience"`
}

// IsOpen reports whether the session has no leave time yet.
func (s Session) IsOpen() bool {
	return s.LeaveTime.IsZero()
}

// Duration returns leave−join, or 0 while the session is open.
// A negative duration (leave edited before join) is returned as-is so
// callers can treat it as malformed.
func (s Session) Duration() time.Duration {
	if s.IsOpen() {
		return 0
	}
	return s.LeaveTime.Sub(s.JoinTime)
}

// SpentTime renders the closed-session duration the way the bot
// reports it: "25 мин." under an hour, "2 ч. 5 мин." otherwise.
func (s Session) SpentTime() string {
	if s.IsOpen() {
		return "Ещё не покинул"
	}
	total := int(s.Duration().Seconds())
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	if hours < 1 {
		return fmt.Sprintf("%d мин.", minutes)
	}
	return fmt.Sprintf("%d ч. %d мин.", hours, minutes)
}
