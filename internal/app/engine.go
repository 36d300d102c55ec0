// Package app wires the attendance pipeline: ledger mutation, then
// achievements, scoring, season rank and daily rollup, in that order.
// Validation errors surface to the caller; everything downstream of a
// successful close is absorbed with logging so the pipeline stays
// available.
package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cat-time-bot/cattime/internal/app/achievement"
	"github.com/cat-time-bot/cattime/internal/app/attendance"
	"github.com/cat-time-bot/cattime/internal/app/scoring"
	"github.com/cat-time-bot/cattime/internal/app/season"
	"github.com/cat-time-bot/cattime/internal/app/stats"
	"github.com/cat-time-bot/cattime/internal/domain"
	"github.com/cat-time-bot/cattime/internal/infra/metrics"
)

// Engine is the public surface of the attendance & progression core.
// The command layer (bot, CLI, HTTP) talks only to this type.
type Engine struct {
	Attendance   *attendance.Ledger
	Achievements *achievement.Engine
	Seasons      *season.Ledger
	Stats        *stats.Aggregator

	orgs     domain.OrganizationRepository
	sessions domain.SessionRepository
	ranks    domain.RankRepository
	log      *zap.Logger
	now      func() time.Time
}

// NewEngine assembles the engine from its components and repositories.
func NewEngine(att *attendance.Ledger, ach *achievement.Engine, seasons *season.Ledger,
	agg *stats.Aggregator, orgs domain.OrganizationRepository,
	sessions domain.SessionRepository, ranks domain.RankRepository,
	log *zap.Logger) *Engine {
	return &Engine{
		Attendance:   att,
		Achievements: ach,
		Seasons:      seasons,
		Stats:        agg,
		orgs:         orgs,
		sessions:     sessions,
		ranks:        ranks,
		log:          log,
		now:          time.Now,
	}
}

// WithClock replaces the wall clock. Test hook.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	e.Attendance.WithClock(now)
	return e
}

// ─── Results ────────────────────────────────────────────────────────────────

// JoinResult reports a successful check-in.
type JoinResult struct {
	OrgName  string    `json:"org_name"`
	JoinTime time.Time `json:"join_time"`
}

// EditResult reports a successful timestamp edit.
type EditResult struct {
	OrgName   string    `json:"org_name"`
	Field     string    `json:"field"` // "join" or "leave"
	NewTime   time.Time `json:"new_time"`
	EditCount int       `json:"edit_count"`
}

// LeaveResult reports a closed session with everything the outbound
// message needs: elapsed time, experience, achievements, level-up.
type LeaveResult struct {
	OrgName      string        `json:"org_name"`
	LeaveTime    time.Time     `json:"leave_time"`
	Elapsed      time.Duration `json:"elapsed"`
	SpentTime    string        `json:"spent_time"`
	Experience   int           `json:"experience"`
	Achievements []string      `json:"achievements"` // display texts, ×N collapsed
	LevelUp      bool          `json:"level_up"`
	NewLevel     int           `json:"new_level"`
	NewTitle     string        `json:"new_title"`
}

// ─── Operations ─────────────────────────────────────────────────────────────

// Join checks the user into the named organization.
func (e *Engine) Join(userID int64, username, orgName string, at time.Time) (*JoinResult, error) {
	sess, err := e.Attendance.Join(userID, username, orgName, at)
	if err != nil {
		return nil, err
	}
	metrics.SessionsOpened.Inc()
	return &JoinResult{OrgName: sess.OrgName, JoinTime: sess.JoinTime}, nil
}

// EditJoinTime moves the open session's join timestamp and recomputes
// the affected day's rollup.
func (e *Engine) EditJoinTime(userID int64, newTime time.Time) (*EditResult, error) {
	sess, err := e.Attendance.EditJoinTime(userID, newTime)
	if err != nil {
		return nil, err
	}
	metrics.SessionEdits.Inc()
	e.recompute(sess)
	return &EditResult{
		OrgName: sess.OrgName, Field: "join",
		NewTime: sess.JoinTime, EditCount: sess.EditCount,
	}, nil
}

// EditLeaveTime moves the leave timestamp of the day's last closed
// session and recomputes the day's rollup. The experience awarded at
// close is deliberately left untouched.
func (e *Engine) EditLeaveTime(userID int64, newTime time.Time) (*EditResult, error) {
	sess, err := e.Attendance.EditLeaveTime(userID, newTime)
	if err != nil {
		return nil, err
	}
	metrics.SessionEdits.Inc()
	e.recompute(sess)
	return &EditResult{
		OrgName: sess.OrgName, Field: "leave",
		NewTime: sess.LeaveTime, EditCount: sess.EditCount,
	}, nil
}

// Leave closes the open session and runs the scoring pipeline:
// achievements → experience → season rank → daily rollup.
func (e *Engine) Leave(userID int64, at time.Time) (*LeaveResult, error) {
	sess, err := e.Attendance.Leave(userID, at)
	if err != nil {
		return nil, err
	}
	metrics.SessionsClosed.Inc()

	ach := e.Achievements.Evaluate(*sess)
	metrics.AchievementsGranted.Add(float64(len(ach.Labels)))

	dayVisits := e.dayVisits(sess)
	exp := scoring.Compute(*sess, ach.Labels, dayVisits)
	sess.Experience = exp
	if err := e.sessions.UpdateSession(sess); err != nil {
		e.log.Error("experience not persisted",
			zap.Int64("session_id", sess.ID), zap.Error(err))
	}
	metrics.ExperienceAwarded.Add(float64(exp))

	result := &LeaveResult{
		OrgName:      sess.OrgName,
		LeaveTime:    sess.LeaveTime,
		Elapsed:      sess.Duration(),
		SpentTime:    sess.SpentTime(),
		Experience:   exp,
		Achievements: achievement.RenderDisplay(ach.Display),
	}

	e.applySeason(sess, exp, result)
	e.recompute(sess)
	return result, nil
}

// applySeason folds the award into the active season's rank. A missing
// season or a rank failure is logged, never surfaced: the session is
// already closed.
func (e *Engine) applySeason(sess *domain.Session, exp int, result *LeaveResult) {
	current, err := e.Seasons.Current()
	if err != nil {
		e.log.Error("season lookup failed", zap.Error(err))
		return
	}
	if current == nil {
		e.log.Warn("no active season — experience not ranked",
			zap.Int64("user_id", sess.UserID))
		return
	}

	_, levelUp, title, err := e.Seasons.ApplyExperience(
		sess.UserID, sess.Username, *current, int64(exp), sess.Duration())
	if err != nil {
		e.log.Error("season rank update failed",
			zap.Int64("user_id", sess.UserID), zap.Error(err))
		return
	}
	if levelUp {
		metrics.LevelUps.Inc()
		result.LevelUp = true
		if title != nil {
			result.NewLevel = title.Level
			result.NewTitle = title.Title
		}
	}
}

// recompute refreshes the daily rollup for the session's join day.
func (e *Engine) recompute(sess *domain.Session) {
	if _, err := e.Stats.Recompute(sess.UserID, sess.Username, sess.JoinTime); err != nil {
		e.log.Error("daily rollup failed",
			zap.Int64("user_id", sess.UserID), zap.Error(err))
	}
}

// dayVisits counts the user's closed trips on the session's join day,
// including the session itself.
func (e *Engine) dayVisits(sess *domain.Session) int {
	todays, err := e.sessions.ClosedForUserOn(sess.UserID, domain.DayStart(sess.JoinTime))
	if err != nil {
		e.log.Warn("day visit count failed",
			zap.Int64("user_id", sess.UserID), zap.Error(err))
		return 1
	}
	if len(todays) == 0 {
		return 1
	}
	return len(todays)
}

// ─── Queries ────────────────────────────────────────────────────────────────

// Profile returns the user's standing in the active season.
func (e *Engine) Profile(userID int64) (*domain.Profile, error) {
	current, err := e.Seasons.Current()
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNoActiveSeason
	}

	rank, err := e.ranks.FindRank(userID, current.ID)
	if err != nil {
		return nil, fmt.Errorf("find rank: %w", err)
	}
	if rank == nil {
		return nil, domain.ErrRankNotFound
	}

	info, err := e.Seasons.LevelInfo(*rank)
	if err != nil {
		return nil, err
	}
	return &domain.Profile{
		UserID:     userID,
		Username:   rank.Username,
		SeasonName: current.Name,
		LevelInfo:  info,
		TotalTime:  rank.TotalTime,
		Visits:     rank.Visits,
	}, nil
}

// Leaderboard returns the active season's top ranks.
func (e *Engine) Leaderboard(limit int) ([]domain.SeasonRank, error) {
	current, err := e.Seasons.Current()
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNoActiveSeason
	}
	return e.ranks.TopRanks(current.ID, limit)
}

// SuggestOrganizations returns "did you mean" candidates for an
// unknown organization name.
func (e *Engine) SuggestOrganizations(name string) ([]string, error) {
	return e.orgs.SimilarOrgNames(name, 2)
}

// KnownOrganization reports whether an organization already exists.
func (e *Engine) KnownOrganization(name string) (bool, error) {
	org, err := e.orgs.FindOrgByName(name)
	if err != nil {
		return false, err
	}
	return org != nil, nil
}

// RunSeasonRollover executes the idempotent daily season pass.
func (e *Engine) RunSeasonRollover() (*season.Report, error) {
	report, err := e.Seasons.Rollover(e.now())
	if err != nil {
		return report, err
	}
	metrics.RolloverRuns.Inc()
	return report, nil
}

// RunDailyDigest builds the read-only digest for a day.
func (e *Engine) RunDailyDigest(day time.Time) (*domain.DailyDigest, error) {
	digest, err := e.Stats.Digest(day)
	if err != nil {
		return nil, err
	}
	metrics.DigestRuns.Inc()
	return digest, nil
}
