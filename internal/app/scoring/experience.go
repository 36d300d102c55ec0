// Package scoring converts a closed session into an experience delta.
// The whole package is pure: no storage, no clock, no side effects, so
// every boundary of the reward curve is directly testable.
package scoring

import (
	"math"

	"github.com/cat-time-bot/cattime/internal/domain"
)

// MaxSessionMinutes is the anomaly cutoff: a session this long or
// longer is treated as a forgotten checkout and awards zero total
// experience. The session itself still closes and still counts in the
// daily statistics.
const MaxSessionMinutes = 721

// Bonuses maps achievement labels to their fixed experience bonus.
// Labels absent from the table contribute zero. Читер carries a
// penalty for gaming the edit feature.
var Bonuses = map[string]int{
	"Первая кровь":           1,
	"Лучший сотрудник":       5,
	"Командный игрок":        5,
	"А можно мне ещё выезд?": 5,
	"Экономлю на пропуске":   5,
	"Читер: Часовщик":        -20,
}

// Compute returns the experience awarded for a closed session given
// the achievement labels it triggered and the user's same-day visit
// count (including this session). Never negative.
func Compute(sess domain.Session, labels []string, dayVisits int) int {
	if sess.LeaveTime.Before(sess.JoinTime) {
		return 0
	}

	minutes := sess.LeaveTime.Sub(sess.JoinTime).Minutes()
	if minutes >= MaxSessionMinutes {
		return 0
	}

	total := baseReward(dayVisits) + timeReward(minutes) + bonusReward(labels)
	exp := int(math.Round(total))
	if exp < 0 {
		return 0
	}
	return exp
}

// baseReward rewards multi-visit days but caps the bonus: 10 for the
// first trip, +5 per extra trip, at most +20.
func baseReward(dayVisits int) float64 {
	extra := dayVisits - 1
	if extra < 0 {
		extra = 0
	}
	return 10 + math.Min(20, float64(extra)*5)
}

// timeReward is the concave piecewise curve over session minutes.
// Early minutes earn more; past two hours growth is sublinear to
// discourage farming long idle sessions.
func timeReward(minutes float64) float64 {
	switch {
	case minutes <= 40:
		return minutes * 0.12
	case minutes <= 80:
		return 4.8 + (minutes-40)*0.28
	case minutes <= 120:
		return 15.2 + (minutes-80)*0.12
	default:
		extra := minutes - 120
		return 20.0 + math.Pow(extra, 0.7)*0.05
	}
}

func bonusReward(labels []string) float64 {
	sum := 0
	for _, label := range labels {
		sum += Bonuses[label]
	}
	return float64(sum)
}
