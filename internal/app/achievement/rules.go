package achievement

import (
	"time"

	"github.com/cat-time-bot/cattime/internal/domain"
)

// Rule is one deterministic achievement trigger. Label is the canonical
// name that gets persisted and scored; Variants are the flavor texts a
// TextProvider chooses between for display.
type Rule struct {
	Category string
	Label    string
	Variants []string
	Triggers func(sess domain.Session, stats domain.VisitStats) bool
}

// Rule categories. Trigger conditions are deterministic per category;
// only the display variant is randomized.
const (
	CategoryFirstBlood     = "first_blood"
	CategoryTeamPlayer     = "team_player"
	CategoryRepeatTrip     = "repeat_trip"
	CategoryPassSaver      = "pass_saver"
	CategoryBestEmployee   = "best_employee"
	CategoryClockCheater   = "clock_cheater"
	CategoryEarlyBird      = "early_bird"
	CategoryNightShift     = "night_shift"
	CategoryWeekendWarrior = "weekend_warrior"
	CategoryPioneer        = "pioneer"
	CategoryMarathon       = "marathon"
)

// Season podium labels, granted by the rollover pass to the top three
// ranks of an ended season. Not part of the per-session rule set.
var SeasonAwards = []string{
	"Чемпион сезона",
	"Серебряный призёр сезона",
	"Бронзовый призёр сезона",
}

// AllRules returns the ordered rule set evaluated on every session
// close. Each rule contributes at most one label per evaluation.
func AllRules() []Rule {
	return []Rule{
		{
			Category: CategoryFirstBlood,
			Label:    "Первая кровь",
			Variants: []string{
				"Первая кровь",
				"Первый выезд дня — за вами!",
			},
			Triggers: func(_ domain.Session, s domain.VisitStats) bool {
				return s.FirstTripOfDay
			},
		},
		{
			Category: CategoryTeamPlayer,
			Label:    "Командный игрок",
			Variants: []string{
				"Командный игрок",
				"Вместе веселее!",
				"Коллега на месте",
			},
			Triggers: func(_ domain.Session, s domain.VisitStats) bool {
				return s.OrgVisitorsToday >= 2
			},
		},
		{
			Category: CategoryRepeatTrip,
			Label:    "А можно мне ещё выезд?",
			Variants: []string{
				"А можно мне ещё выезд?",
				"Выездов много не бывает",
			},
			Triggers: func(_ domain.Session, s domain.VisitStats) bool {
				return s.TripsToday >= 3
			},
		},
		{
			Category: CategoryPassSaver,
			Label:    "Экономлю на пропуске",
			Variants: []string{
				"Экономлю на пропуске",
				"Снова здесь? Пропуск ещё тёплый",
			},
			Triggers: func(_ domain.Session, s domain.VisitStats) bool {
				return s.OrgVisitsToday >= 2
			},
		},
		{
			Category: CategoryBestEmployee,
			Label:    "Лучший сотрудник",
			Variants: []string{
				"Лучший сотрудник",
				"Работник недели",
			},
			Triggers: func(_ domain.Session, s domain.VisitStats) bool {
				return s.TripsThisWeek >= 5
			},
		},
		{
			Category: CategoryClockCheater,
			Label:    "Читер: Часовщик",
			Variants: []string{
				"Читер: Часовщик",
				"Мастер подкрутки времени",
			},
			Triggers: func(sess domain.Session, _ domain.VisitStats) bool {
				return sess.EditCount >= 2
			},
		},
		{
			Category: CategoryEarlyBird,
			Label:    "Ранняя пташка",
			Variants: []string{
				"Ранняя пташка",
				"Кто рано встаёт...",
			},
			Triggers: func(sess domain.Session, _ domain.VisitStats) bool {
				return sess.JoinTime.Hour() < 7
			},
		},
		{
			Category: CategoryNightShift,
			Label:    "Ночная смена",
			Variants: []string{
				"Ночная смена",
				"Ночной дозор",
			},
			Triggers: func(sess domain.Session, _ domain.VisitStats) bool {
				return sess.JoinTime.Hour() >= 22
			},
		},
		{
			Category: CategoryWeekendWarrior,
			Label:    "Работа в выходной",
			Variants: []string{
				"Работа в выходной",
				"Субботний воин",
			},
			Triggers: func(sess domain.Session, _ domain.VisitStats) bool {
				wd := sess.JoinTime.Weekday()
				return wd == time.Saturday || wd == time.Sunday
			},
		},
		{
			Category: CategoryPioneer,
			Label:    "Первопроходец",
			Variants: []string{
				"Первопроходец",
				"Новые горизонты",
			},
			Triggers: func(_ domain.Session, s domain.VisitStats) bool {
				return s.FirstOrgVisit
			},
		},
		{
			Category: CategoryMarathon,
			Label:    "Марафонец",
			Variants: []string{
				"Марафонец",
				"Засиделся",
			},
			Triggers: func(sess domain.Session, s domain.VisitStats) bool {
				d := sess.Duration()
				return s.AvgDuration > 0 && d >= 3*time.Hour && d >= 2*s.AvgDuration
			},
		},
	}
}
