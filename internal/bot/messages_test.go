package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/cat-time-bot/cattime/internal/app/season"
	"github.com/cat-time-bot/cattime/internal/domain"
)

var day = time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)

func TestRenderDigest_QuietDay(t *testing.T) {
	if got := RenderDigest(nil); got != "" {
		t.Errorf("nil digest rendered %q", got)
	}
	if got := RenderDigest(&domain.DailyDigest{Date: day}); got != "" {
		t.Errorf("empty digest rendered %q", got)
	}
}

func TestRenderDigest_ListsEntries(t *testing.T) {
	digest := &domain.DailyDigest{
		Date: day,
		Entries: []domain.DigestEntry{
			{Username: "alice", TotalTrips: 2, TotalTime: 3 * time.Hour, Experience: 55},
			{Username: "bob", TotalTrips: 1, TotalTime: 30 * time.Minute, Experience: 14},
		},
		TotalTrips:      3,
		TotalTime:       3*time.Hour + 30*time.Minute,
		TotalExperience: 69,
	}

	got := RenderDigest(digest)
	for _, want := range []string{
		"Итоги дня 10.03.2026",
		"1. @alice — выездов: 2, время: 3 ч. 0 мин., опыт: 55 XP",
		"2. @bob",
		"Всего выездов: 3",
		"Общий опыт: 69 XP",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("digest missing %q:\n%s", want, got)
		}
	}
}

func TestRenderRollover_EndedWithPodium(t *testing.T) {
	report := &season.Report{
		Day: day,
		Ended: []season.EndedSeason{{
			Season: domain.Season{Name: "Зима"},
			Winners: []domain.SeasonRank{
				{Username: "alice", Level: 3, Experience: 2100},
				{Username: "bob", Level: 2, Experience: 1200},
			},
		}},
	}

	msgs := RenderRollover(report)
	if len(msgs) != 1 {
		t.Fatalf("%d messages, want 1", len(msgs))
	}
	for _, want := range []string{
		"Сезон «Зима» завершён!",
		"🥇 @alice (уровень 3, 2100 XP) — Чемпион сезона",
		"🥈 @bob (уровень 2, 1200 XP) — Серебряный призёр сезона",
	} {
		if !strings.Contains(msgs[0], want) {
			t.Errorf("message missing %q:\n%s", want, msgs[0])
		}
	}
}

func TestRenderRollover_EmptySeasonAndNewOne(t *testing.T) {
	report := &season.Report{
		Day:   day,
		Ended: []season.EndedSeason{{Season: domain.Season{Name: "Зима"}}},
		Created: &domain.Season{
			Name:    "Весеннее обновление 2026",
			EndDate: day.AddDate(0, 3, 0),
		},
	}

	msgs := RenderRollover(report)
	if len(msgs) != 2 {
		t.Fatalf("%d messages, want 2", len(msgs))
	}
	if !strings.Contains(msgs[0], "никто не выезжал") {
		t.Errorf("empty-season message missing: %s", msgs[0])
	}
	if !strings.Contains(msgs[1], "Начался новый сезон «Весеннее обновление 2026»") ||
		!strings.Contains(msgs[1], "10.06.2026") {
		t.Errorf("new-season message missing: %s", msgs[1])
	}
}

func TestRenderRollover_NilReport(t *testing.T) {
	if msgs := RenderRollover(nil); msgs != nil {
		t.Errorf("nil report rendered %v", msgs)
	}
}
