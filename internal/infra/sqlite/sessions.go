package sqlite

import (
	"database/sql"
	"strings"
	"time"

	"github.com/cat-time-bot/cattime/internal/domain"
)

// ─── Session Repository ─────────────────────────────────────────────────────

const sessionColumns = `s.id, s.user_id, s.username, s.org_id, o.name,
	s.join_time, s.leave_time, s.edited, s.edit_count, s.experience`

// InsertSession opens a session row. A concurrent duplicate join trips the
// partial unique index and is reported as ErrAlreadyCheckedIn.
func (d *DB) InsertSession(s *domain.Session) error {
	res, err := d.db.Exec(
		`INSERT INTO sessions (user_id, username, org_id, join_time, leave_time, edited, edit_count, experience)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.UserID, s.Username, s.OrgID, s.JoinTime.Unix(),
		nullableUnix(s.LeaveTime), s.Edited, s.EditCount, s.Experience)
	if err != nil {
		if strings.Contains(err.Error(), "idx_sessions_open") ||
			strings.Contains(err.Error(), "UNIQUE constraint failed: sessions.user_id") {
			return domain.ErrAlreadyCheckedIn
		}
		return err
	}
	s.ID, err = res.LastInsertId()
	return err
}

// UpdateSession rewrites the mutable session fields.
func (d *DB) UpdateSession(s *domain.Session) error {
	_, err := d.db.Exec(
		`UPDATE sessions SET username=?, join_time=?, leave_time=?, edited=?, edit_count=?, experience=?
		 WHERE id=?`,
		s.Username, s.JoinTime.Unix(), nullableUnix(s.LeaveTime),
		s.Edited, s.EditCount, s.Experience, s.ID)
	return err
}

// FindOpenSession returns the user's open session, or nil.
func (d *DB) FindOpenSession(userID int64) (*domain.Session, error) {
	row := d.db.QueryRow(
		`SELECT `+sessionColumns+`
		 FROM sessions s JOIN organizations o ON o.id = s.org_id
		 WHERE s.user_id = ? AND s.leave_time IS NULL`, userID)
	return scanSession(row)
}

// LastClosedOn returns the user's most recently closed session joined
// on the given day, or nil.
func (d *DB) LastClosedOn(userID int64, day time.Time) (*domain.Session, error) {
	from, to := dayRange(day)
	row := d.db.QueryRow(
		`SELECT `+sessionColumns+`
		 FROM sessions s JOIN organizations o ON o.id = s.org_id
		 WHERE s.user_id = ? AND s.leave_time IS NOT NULL
		   AND s.join_time >= ? AND s.join_time < ?
		 ORDER BY s.leave_time DESC LIMIT 1`, userID, from, to)
	return scanSession(row)
}

// ClosedForUserOn returns the user's closed sessions joined on the day.
func (d *DB) ClosedForUserOn(userID int64, day time.Time) ([]domain.Session, error) {
	from, to := dayRange(day)
	rows, err := d.db.Query(
		`SELECT `+sessionColumns+`
		 FROM sessions s JOIN organizations o ON o.id = s.org_id
		 WHERE s.user_id = ? AND s.leave_time IS NOT NULL
		   AND s.join_time >= ? AND s.join_time < ?
		 ORDER BY s.join_time ASC`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// CountClosedOn counts closed sessions system-wide joined on the day.
func (d *DB) CountClosedOn(day time.Time) (int, error) {
	from, to := dayRange(day)
	var n int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM sessions
		 WHERE leave_time IS NOT NULL AND join_time >= ? AND join_time < ?`,
		from, to).Scan(&n)
	return n, err
}

// CountClosedForUserOrg counts the user's closed sessions at an org.
func (d *DB) CountClosedForUserOrg(userID, orgID int64) (int, error) {
	var n int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM sessions
		 WHERE user_id = ? AND org_id = ? AND leave_time IS NOT NULL`,
		userID, orgID).Scan(&n)
	return n, err
}

// CountClosedForUserOrgOn counts the user's closed sessions at an org
// joined on the day.
func (d *DB) CountClosedForUserOrgOn(userID, orgID int64, day time.Time) (int, error) {
	from, to := dayRange(day)
	var n int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM sessions
		 WHERE user_id = ? AND org_id = ? AND leave_time IS NOT NULL
		   AND join_time >= ? AND join_time < ?`,
		userID, orgID, from, to).Scan(&n)
	return n, err
}

// DistinctVisitorsOn counts distinct users with a closed session at
// the org joined on the day.
func (d *DB) DistinctVisitorsOn(orgID int64, day time.Time) (int, error) {
	from, to := dayRange(day)
	var n int
	err := d.db.QueryRow(
		`SELECT COUNT(DISTINCT user_id) FROM sessions
		 WHERE org_id = ? AND leave_time IS NOT NULL
		   AND join_time >= ? AND join_time < ?`,
		orgID, from, to).Scan(&n)
	return n, err
}

// CountClosedForUserBetween counts the user's closed sessions with
// join in [from, to).
func (d *DB) CountClosedForUserBetween(userID int64, from, to time.Time) (int, error) {
	var n int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM sessions
		 WHERE user_id = ? AND leave_time IS NOT NULL
		   AND join_time >= ? AND join_time < ?`,
		userID, from.Unix(), to.Unix()).Scan(&n)
	return n, err
}

// AverageDuration returns the mean duration of the user's closed
// sessions, 0 when there are none.
func (d *DB) AverageDuration(userID int64) (time.Duration, error) {
	var avg sql.NullFloat64
	err := d.db.QueryRow(
		`SELECT AVG(leave_time - join_time) FROM sessions
		 WHERE user_id = ? AND leave_time IS NOT NULL`, userID).Scan(&avg)
	if err != nil {
		return 0, err
	}
	if !avg.Valid {
		return 0, nil
	}
	return time.Duration(avg.Float64 * float64(time.Second)), nil
}

// StaleOpenSessions counts sessions that have been open longer than
// the given age. Health check query.
func (d *DB) StaleOpenSessions(olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan).Unix()
	var n int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM sessions
		 WHERE leave_time IS NULL AND join_time < ?`, cutoff).Scan(&n)
	return n, err
}

func scanSession(s scanner) (*domain.Session, error) {
	var sess domain.Session
	var joinTime int64
	var leaveTime sql.NullInt64

	err := s.Scan(&sess.ID, &sess.UserID, &sess.Username, &sess.OrgID, &sess.OrgName,
		&joinTime, &leaveTime, &sess.Edited, &sess.EditCount, &sess.Experience)
	if err == sql.ErrNoRows {
		return nil, nil // Not found, no error
	}
	if err != nil {
		return nil, err
	}

	sess.JoinTime = time.Unix(joinTime, 0)
	if leaveTime.Valid {
		sess.LeaveTime = time.Unix(leaveTime.Int64, 0)
	}
	return &sess, nil
}
