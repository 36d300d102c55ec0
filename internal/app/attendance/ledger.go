// Package attendance owns the open/closed session state machine:
// join, edit, leave. One open session per user, join ≤ leave whenever
// both are present, no timestamps from the future.
package attendance

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cat-time-bot/cattime/internal/domain"
)

// Ledger mutates attendance sessions. The session repository's
// open-session lookup (backed by a unique index) is the authority for
// the no-double-check-in invariant.
type Ledger struct {
	orgs     domain.OrganizationRepository
	sessions domain.SessionRepository
	now      func() time.Time
	log      *zap.Logger
}

// NewLedger wires an attendance ledger with the real clock.
func NewLedger(orgs domain.OrganizationRepository, sessions domain.SessionRepository,
	log *zap.Logger) *Ledger {
	return &Ledger{orgs: orgs, sessions: sessions, now: time.Now, log: log}
}

// WithClock replaces the wall clock. Test hook.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// Join opens a session at the named organization, creating the
// organization on first reference. At time zero means "now".
func (l *Ledger) Join(userID int64, username, orgName string, at time.Time) (*domain.Session, error) {
	orgName = strings.TrimSpace(orgName)
	if orgName == "" {
		return nil, domain.ErrEmptyOrgName
	}
	if !domain.ValidOrganizationName.MatchString(orgName) {
		return nil, domain.ErrBadOrgName
	}
	if at.IsZero() {
		at = l.now()
	}

	open, err := l.sessions.FindOpenSession(userID)
	if err != nil {
		return nil, fmt.Errorf("find open session: %w", err)
	}
	if open != nil {
		return nil, domain.ErrAlreadyCheckedIn
	}

	org, err := l.orgs.FindOrCreateOrg(orgName)
	if err != nil {
		return nil, fmt.Errorf("find-or-create organization: %w", err)
	}

	sess := &domain.Session{
		UserID:   userID,
		Username: username,
		OrgID:    org.ID,
		OrgName:  org.Name,
		JoinTime: at,
	}
	if err := l.sessions.InsertSession(sess); err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	l.log.Info("session opened",
		zap.Int64("user_id", userID), zap.String("org", org.Name))
	return sess, nil
}

// EditJoinTime moves the open session's join time. Rejects times in
// the future; the closed-leave ordering check cannot apply because an
// open session has no leave time yet.
func (l *Ledger) EditJoinTime(userID int64, newTime time.Time) (*domain.Session, error) {
	if newTime.After(l.now()) {
		return nil, domain.ErrFutureTimestamp
	}

	sess, err := l.sessions.FindOpenSession(userID)
	if err != nil {
		return nil, fmt.Errorf("find open session: %w", err)
	}
	if sess == nil {
		return nil, domain.ErrNoOpenSession
	}
	if !sess.LeaveTime.IsZero() && newTime.After(sess.LeaveTime) {
		return nil, domain.ErrInvalidOrdering
	}

	sess.JoinTime = newTime
	l.markEdited(sess)
	if err := l.sessions.UpdateSession(sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

// EditLeaveTime moves a leave time. The target is the open session if
// one exists (pre-closing adjustment is meaningless, so that is an
// error) or the most recently closed session of the day.
func (l *Ledger) EditLeaveTime(userID int64, newTime time.Time) (*domain.Session, error) {
	if newTime.After(l.now()) {
		return nil, domain.ErrFutureTimestamp
	}

	sess, err := l.sessions.LastClosedOn(userID, domain.DayStart(newTime))
	if err != nil {
		return nil, fmt.Errorf("find closed session: %w", err)
	}
	if sess == nil {
		return nil, domain.ErrNoEditableSession
	}
	if newTime.Before(sess.JoinTime) {
		return nil, domain.ErrInvalidOrdering
	}

	sess.LeaveTime = newTime
	l.markEdited(sess)
	if err := l.sessions.UpdateSession(sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

// Leave closes the open session. Returns the closed session for
// downstream scoring. A re-entrant close (no open session left) fails
// cleanly with ErrNoOpenSession.
func (l *Ledger) Leave(userID int64, at time.Time) (*domain.Session, error) {
	if at.IsZero() {
		at = l.now()
	}

	sess, err := l.sessions.FindOpenSession(userID)
	if err != nil {
		return nil, fmt.Errorf("find open session: %w", err)
	}
	if sess == nil {
		return nil, domain.ErrNoOpenSession
	}

	sess.LeaveTime = at
	if err := l.sessions.UpdateSession(sess); err != nil {
		return nil, fmt.Errorf("close session: %w", err)
	}

	l.log.Info("session closed",
		zap.Int64("user_id", userID), zap.String("org", sess.OrgName),
		zap.Duration("spent", sess.Duration()))
	return sess, nil
}

func (l *Ledger) markEdited(sess *domain.Session) {
	sess.Edited = true
	sess.EditCount++
}
