// Package achievement detects behavioral achievements when a session
// closes. Triggers are deterministic over a VisitStats snapshot; only
// the display text is randomized, behind domain.TextProvider.
package achievement

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cat-time-bot/cattime/internal/domain"
)

// Engine evaluates the rule set against closed sessions and persists
// grant records. Evaluation must never block a session close: every
// failure path degrades to an empty result with a log line.
type Engine struct {
	sessions domain.SessionRepository
	grants   domain.AchievementRepository
	provider domain.TextProvider
	rules    []Rule
	log      *zap.Logger
}

// Result carries both the canonical labels (fed to the experience
// calculator) and the rendered display texts (fed to the outbound
// message, ×N-collapsed).
type Result struct {
	Labels  []string
	Display []string
}

// NewEngine creates an achievement engine over the full rule set.
func NewEngine(sessions domain.SessionRepository, grants domain.AchievementRepository,
	provider domain.TextProvider, log *zap.Logger) *Engine {
	return &Engine{
		sessions: sessions,
		grants:   grants,
		provider: provider,
		rules:    AllRules(),
		log:      log,
	}
}

// Evaluate runs every rule against the freshly closed session. It
// never returns an error: snapshot or persistence failures are logged
// and the close proceeds without achievements.
func (e *Engine) Evaluate(sess domain.Session) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("achievement evaluation panicked",
				zap.Int64("user_id", sess.UserID), zap.Any("panic", r))
			res = Result{}
		}
	}()

	stats, err := e.visitStats(sess)
	if err != nil {
		e.log.Warn("achievement snapshot failed",
			zap.Int64("user_id", sess.UserID), zap.Error(err))
		return Result{}
	}

	var records []domain.Achievement
	for _, rule := range e.rules {
		if !rule.Triggers(sess, stats) {
			continue
		}
		res.Labels = append(res.Labels, rule.Label)
		res.Display = append(res.Display, e.provider.Pick(rule.Category, rule.Variants))
		records = append(records, domain.Achievement{
			UserID:     sess.UserID,
			Username:   sess.Username,
			Label:      rule.Label,
			AchievedAt: sess.LeaveTime,
		})
	}

	if len(records) > 0 {
		if err := e.grants.InsertAchievements(records); err != nil {
			// Scoring still proceeds; only the grant log is lossy here.
			e.log.Warn("achievement grants not persisted",
				zap.Int64("user_id", sess.UserID), zap.Error(err))
		}
	}
	return res
}

// visitStats assembles the aggregate counters a rule set needs. All
// counts include the session being closed, which is already stored.
func (e *Engine) visitStats(sess domain.Session) (domain.VisitStats, error) {
	var stats domain.VisitStats
	day := domain.DayStart(sess.JoinTime)
	week := domain.WeekStart(sess.JoinTime)

	systemToday, err := e.sessions.CountClosedOn(day)
	if err != nil {
		return stats, fmt.Errorf("count system trips: %w", err)
	}
	stats.FirstTripOfDay = systemToday == 1

	orgTotal, err := e.sessions.CountClosedForUserOrg(sess.UserID, sess.OrgID)
	if err != nil {
		return stats, fmt.Errorf("count org visits: %w", err)
	}
	stats.FirstOrgVisit = orgTotal == 1

	stats.OrgVisitsToday, err = e.sessions.CountClosedForUserOrgOn(sess.UserID, sess.OrgID, day)
	if err != nil {
		return stats, fmt.Errorf("count org visits today: %w", err)
	}

	stats.OrgVisitorsToday, err = e.sessions.DistinctVisitorsOn(sess.OrgID, day)
	if err != nil {
		return stats, fmt.Errorf("count org visitors: %w", err)
	}

	todays, err := e.sessions.ClosedForUserOn(sess.UserID, day)
	if err != nil {
		return stats, fmt.Errorf("list today's trips: %w", err)
	}
	stats.TripsToday = len(todays)

	stats.TripsThisWeek, err = e.sessions.CountClosedForUserBetween(
		sess.UserID, week, week.AddDate(0, 0, 7))
	if err != nil {
		return stats, fmt.Errorf("count week trips: %w", err)
	}

	stats.AvgDuration, err = e.sessions.AverageDuration(sess.UserID)
	if err != nil {
		return stats, fmt.Errorf("average duration: %w", err)
	}

	stats.EditCount = sess.EditCount
	return stats, nil
}

// RenderDisplay collapses duplicate display texts into "text ×N" form,
// preserving first-seen order.
func RenderDisplay(display []string) []string {
	if len(display) == 0 {
		return nil
	}
	counts := make(map[string]int, len(display))
	var order []string
	for _, text := range display {
		if counts[text] == 0 {
			order = append(order, text)
		}
		counts[text]++
	}
	rendered := make([]string, 0, len(order))
	for _, text := range order {
		if n := counts[text]; n > 1 {
			rendered = append(rendered, fmt.Sprintf("%s ×%d", text, n))
		} else {
			rendered = append(rendered, text)
		}
	}
	return rendered
}
