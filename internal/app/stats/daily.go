// Package stats maintains the per-(user, date) daily rollups and the
// cross-user digest. Rollups are always recomputed from scratch, never
// incremented, so retroactive edits cannot desync them.
package stats

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cat-time-bot/cattime/internal/domain"
)

// Aggregator recomputes daily statistics and produces digests.
type Aggregator struct {
	sessions domain.SessionRepository
	stats    domain.StatisticRepository
	log      *zap.Logger
}

// NewAggregator wires a statistics aggregator.
func NewAggregator(sessions domain.SessionRepository, stats domain.StatisticRepository,
	log *zap.Logger) *Aggregator {
	return &Aggregator{sessions: sessions, stats: stats, log: log}
}

// Recompute rebuilds the user's rollup for the given day from the full
// set of that day's closed sessions and upserts it. Idempotent:
// re-running with no session change writes the same row. Sessions with
// a negative duration are skipped with a warning, not summed.
func (a *Aggregator) Recompute(userID int64, username string, day time.Time) (*domain.DailyStatistic, error) {
	day = domain.DayStart(day)

	sessions, err := a.sessions.ClosedForUserOn(userID, day)
	if err != nil {
		return nil, fmt.Errorf("list closed sessions: %w", err)
	}

	var total time.Duration
	trips := 0
	for _, s := range sessions {
		d := s.Duration()
		if d < 0 {
			a.log.Warn("malformed session skipped in rollup",
				zap.Int64("session_id", s.ID), zap.Int64("user_id", userID))
			continue
		}
		total += d
		trips++
	}

	st := &domain.DailyStatistic{
		UserID:     userID,
		Username:   username,
		Date:       day,
		TotalTime:  total,
		TotalTrips: trips,
	}
	if err := a.stats.UpsertStatistic(st); err != nil {
		return nil, fmt.Errorf("upsert daily statistic: %w", err)
	}
	return st, nil
}

// Digest assembles the read-only cross-user report for a day. A day
// with no rows is a valid empty digest, distinct from a day with trips
// but zero experience.
func (a *Aggregator) Digest(day time.Time) (*domain.DailyDigest, error) {
	day = domain.DayStart(day)

	rows, err := a.stats.StatisticsForDate(day)
	if err != nil {
		return nil, fmt.Errorf("load daily statistics: %w", err)
	}

	digest := &domain.DailyDigest{Date: day}
	for _, row := range rows {
		exp, err := a.experienceOn(row.UserID, day)
		if err != nil {
			a.log.Warn("digest experience lookup failed",
				zap.Int64("user_id", row.UserID), zap.Error(err))
		}
		digest.Entries = append(digest.Entries, domain.DigestEntry{
			UserID:     row.UserID,
			Username:   row.Username,
			TotalTime:  row.TotalTime,
			TotalTrips: row.TotalTrips,
			Experience: exp,
		})
		digest.TotalTrips += row.TotalTrips
		digest.TotalTime += row.TotalTime
		digest.TotalExperience += exp
	}
	return digest, nil
}

// experienceOn sums the experience awarded across the user's closed
// sessions of the day.
func (a *Aggregator) experienceOn(userID int64, day time.Time) (int64, error) {
	sessions, err := a.sessions.ClosedForUserOn(userID, day)
	if err != nil {
		return 0, err
	}
	var exp int64
	for _, s := range sessions {
		exp += int64(s.Experience)
	}
	return exp, nil
}
