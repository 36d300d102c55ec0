package domain

import "time"

// Achievement is one grant record in the append-only log. The same
// label may be granted many times; dedup is the engine's business, not
// the storage layer's.
type Achievement struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username"`
	Label      string    `json:"label"`
	AchievedAt time.Time `json:"achieved_at"`
}

// VisitStats is the aggregate snapshot fed to achievement rules when a
// session closes. All counters include the session being closed.
type VisitStats struct {
	FirstTripOfDay   bool          // first closed trip system-wide today
	FirstOrgVisit    bool          // user's first-ever visit to this org
	OrgVisitsToday   int           // user's closed visits to this org today
	OrgVisitorsToday int           // distinct users seen at this org today
	TripsToday       int           // user's closed trips today
	TripsThisWeek    int           // user's closed trips this ISO week
	AvgDuration      time.Duration // user's historical mean session length
	EditCount        int           // manual edits on the closing session
}
