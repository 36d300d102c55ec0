package domain

import "time"

// ─── Repository Contracts ───────────────────────────────────────────────────
// One contract per entity. Infrastructure implements them; the engine
// depends only on these, so every component is testable against an
// alternate store.

// OrganizationRepository manages the find-or-create organization table.
type OrganizationRepository interface {
	FindOrCreateOrg(name string) (*Organization, error)
	FindOrgByName(name string) (*Organization, error)

	// SimilarOrgNames returns up to limit existing names containing the
	// given fragment, for "did you mean" suggestions.
	SimilarOrgNames(fragment string, limit int) ([]string, error)
}

// SessionRepository owns attendance sessions. The open-session lookup
// is the authority for the "no double check-in" invariant; the store
// additionally enforces at most one open row per user.
type SessionRepository interface {
	InsertSession(s *Session) error
	UpdateSession(s *Session) error

	// FindOpenSession returns the user's open session, or nil.
	FindOpenSession(userID int64) (*Session, error)

	// LastClosedOn returns the user's most recently closed session whose
	// join falls on the given day, or nil. Target of leave-time edits.
	LastClosedOn(userID int64, day time.Time) (*Session, error)

	// ClosedForUserOn returns the user's closed sessions joined on day.
	ClosedForUserOn(userID int64, day time.Time) ([]Session, error)

	// CountClosedOn counts closed sessions system-wide joined on day.
	CountClosedOn(day time.Time) (int, error)

	// CountClosedForUserOrg counts the user's closed sessions at an org,
	// all time.
	CountClosedForUserOrg(userID, orgID int64) (int, error)

	// CountClosedForUserOrgOn counts the user's closed sessions at an
	// org joined on day.
	CountClosedForUserOrgOn(userID, orgID int64, day time.Time) (int, error)

	// DistinctVisitorsOn counts distinct users with a closed session at
	// the org joined on day.
	DistinctVisitorsOn(orgID int64, day time.Time) (int, error)

	// CountClosedForUserBetween counts the user's closed sessions with
	// join in [from, to).
	CountClosedForUserBetween(userID int64, from, to time.Time) (int, error)

	// AverageDuration returns the mean duration over the user's closed
	// sessions, 0 when there are none.
	AverageDuration(userID int64) (time.Duration, error)
}

// SeasonRepository owns the season table.
type SeasonRepository interface {
	InsertSeason(s *Season) error
	UpdateSeason(s *Season) error

	// ActiveSeasons returns all active seasons ordered by start date. More
	// than one row signals a recoverable anomaly.
	ActiveSeasons() ([]Season, error)

	// SeasonsStartingBy returns inactive seasons whose window contains day.
	SeasonsStartingBy(day time.Time) ([]Season, error)
}

// RankRepository owns per-(user, season) progression rows.
type RankRepository interface {
	FindRank(userID, seasonID int64) (*SeasonRank, error)
	InsertRank(r *SeasonRank) error
	UpdateRank(r *SeasonRank) error

	// TopRanks returns the season's best ranks ordered by level desc,
	// experience desc, visits desc.
	TopRanks(seasonID int64, limit int) ([]SeasonRank, error)
}

// LevelRepository owns the static level-title catalog.
type LevelRepository interface {
	UpsertLevel(t LevelTitle) error

	// LevelForExperience returns the highest row with MinExperience ≤ exp,
	// or nil when the catalog is empty or exp is below the lowest row.
	LevelForExperience(exp int64) (*LevelTitle, error)

	// NextLevelAfter returns the first row ordered above level, or nil at
	// the top of the catalog.
	NextLevelAfter(level int) (*LevelTitle, error)

	LowestLevel() (*LevelTitle, error)
}

// AchievementRepository appends grant records.
type AchievementRepository interface {
	InsertAchievements(grants []Achievement) error
	AchievementsForUser(userID int64) ([]Achievement, error)
}

// StatisticRepository owns the per-(user, date) rollups.
type StatisticRepository interface {
	UpsertStatistic(st *DailyStatistic) error
	FindStatistic(userID int64, day time.Time) (*DailyStatistic, error)
	StatisticsForDate(day time.Time) ([]DailyStatistic, error)
}

// ─── Collaborator Interfaces ────────────────────────────────────────────────

// TextProvider picks a display variant for an achievement category.
// The category trigger is deterministic; only the flavor text is not,
// so tests inject a fixed provider.
type TextProvider interface {
	Pick(category string, variants []string) string
}

// Notifier delivers outbound announcements (season start/end, daily
// digest) to the shared group chat. Failures are logged, never allowed
// to block the scoring pipeline.
type Notifier interface {
	Announce(text string) error
}
