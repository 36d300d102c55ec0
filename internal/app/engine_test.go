package app_test

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cat-time-bot/cattime/internal/app"
	"github.com/cat-time-bot/cattime/internal/app/achievement"
	"github.com/cat-time-bot/cattime/internal/app/attendance"
	"github.com/cat-time-bot/cattime/internal/app/season"
	"github.com/cat-time-bot/cattime/internal/app/stats"
	"github.com/cat-time-bot/cattime/internal/domain"
	"github.com/cat-time-bot/cattime/internal/infra/sqlite"
)

var morning = time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)

// testEngine assembles the full pipeline over one temporary database,
// seeds the level catalog and opens an active season.
func testEngine(t *testing.T) (*app.Engine, *sqlite.DB) {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := zap.NewNop()
	if _, err := season.SeedLevels(db); err != nil {
		t.Fatalf("SeedLevels() error: %v", err)
	}
	if err := db.InsertSeason(&domain.Season{
		Name:      "Весеннее обновление 2026",
		Theme:     "spring",
		StartDate: morning.AddDate(0, -1, 0),
		EndDate:   morning.AddDate(0, 2, 0),
		Active:    true,
	}); err != nil {
		t.Fatalf("InsertSeason() error: %v", err)
	}

	engine := app.NewEngine(
		attendance.NewLedger(db, db, log),
		achievement.NewEngine(db, db, achievement.CanonicalTextProvider{}, log),
		season.NewLedger(db, db, db, db, log),
		stats.NewAggregator(db, db, log),
		db, db, db, log,
	).WithClock(func() time.Time { return morning })
	return engine, db
}

func TestLeave_FullPipeline(t *testing.T) {
	engine, db := testEngine(t)

	joined, err := engine.Join(1, "alice", "Сбер", morning)
	if err != nil {
		t.Fatalf("Join() error: %v", err)
	}
	if joined.OrgName != "Сбер" {
		t.Errorf("org = %q, want Сбер", joined.OrgName)
	}

	left, err := engine.Leave(1, morning.Add(25*time.Minute))
	if err != nil {
		t.Fatalf("Leave() error: %v", err)
	}

	// base 10 + 3 for 25 minutes + 1 for the first-trip achievement.
	if left.Experience != 14 {
		t.Errorf("experience = %d, want 14", left.Experience)
	}
	if left.SpentTime != "25 мин." {
		t.Errorf("spent = %q, want 25 мин.", left.SpentTime)
	}
	wantAch := []string{"Первая кровь", "Первопроходец"}
	if len(left.Achievements) != 2 || left.Achievements[0] != wantAch[0] || left.Achievements[1] != wantAch[1] {
		t.Errorf("achievements = %v, want %v", left.Achievements, wantAch)
	}

	// The award landed on the season rank.
	profile, err := engine.Profile(1)
	if err != nil {
		t.Fatalf("Profile() error: %v", err)
	}
	if profile.LevelInfo.CurrentExp != 14 || profile.Visits != 1 {
		t.Errorf("profile = %+v, want 14 exp over 1 visit", profile)
	}

	// The daily rollup was written.
	st, err := db.FindStatistic(1, morning)
	if err != nil {
		t.Fatalf("FindStatistic() error: %v", err)
	}
	if st == nil || st.TotalTrips != 1 || st.TotalTime != 25*time.Minute {
		t.Errorf("rollup = %+v, want one 25m trip", st)
	}

	// Experience persisted on the session row itself.
	sess, err := db.LastClosedOn(1, morning)
	if err != nil {
		t.Fatalf("LastClosedOn() error: %v", err)
	}
	if sess == nil || sess.Experience != 14 {
		t.Errorf("session = %+v, want 14 exp stored", sess)
	}
}

func TestLeave_NoOpenSession(t *testing.T) {
	engine, _ := testEngine(t)

	_, err := engine.Leave(1, morning)
	if !errors.Is(err, domain.ErrNoOpenSession) {
		t.Errorf("err = %v, want ErrNoOpenSession", err)
	}
}

func TestEditLeaveTime_RecomputesRollup(t *testing.T) {
	engine, db := testEngine(t)

	if _, err := engine.Join(1, "alice", "Сбер", morning); err != nil {
		t.Fatalf("Join() error: %v", err)
	}
	if _, err := engine.Leave(1, morning.Add(time.Hour)); err != nil {
		t.Fatalf("Leave() error: %v", err)
	}

	edited, err := engine.EditLeaveTime(1, morning.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("EditLeaveTime() error: %v", err)
	}
	if edited.Field != "leave" || edited.EditCount != 1 {
		t.Errorf("edit = %+v, want first leave edit", edited)
	}

	st, err := db.FindStatistic(1, morning)
	if err != nil {
		t.Fatalf("FindStatistic() error: %v", err)
	}
	if st == nil || st.TotalTime != 2*time.Hour {
		t.Errorf("rollup = %+v, want 2h after the edit", st)
	}

	// Experience is frozen at close, edits do not re-score.
	sess, err := db.LastClosedOn(1, morning)
	if err != nil {
		t.Fatalf("LastClosedOn() error: %v", err)
	}
	before := 21 // base 10 + 10.4 for the hour + first-trip bonus, rounded
	if sess.Experience != before {
		t.Errorf("experience = %d, want %d untouched by the edit", sess.Experience, before)
	}
}

func TestProfile_NoSeasonAndNoRank(t *testing.T) {
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	log := zap.NewNop()
	engine := app.NewEngine(
		attendance.NewLedger(db, db, log),
		achievement.NewEngine(db, db, achievement.CanonicalTextProvider{}, log),
		season.NewLedger(db, db, db, db, log),
		stats.NewAggregator(db, db, log),
		db, db, db, log,
	)

	if _, err := engine.Profile(1); !errors.Is(err, domain.ErrNoActiveSeason) {
		t.Errorf("err = %v, want ErrNoActiveSeason", err)
	}

	if err := db.InsertSeason(&domain.Season{
		Name: "Весна", StartDate: morning, EndDate: morning.AddDate(0, 3, 0), Active: true,
	}); err != nil {
		t.Fatalf("InsertSeason() error: %v", err)
	}
	if _, err := engine.Profile(1); !errors.Is(err, domain.ErrRankNotFound) {
		t.Errorf("err = %v, want ErrRankNotFound", err)
	}
}

func TestSuggestOrganizations(t *testing.T) {
	engine, db := testEngine(t)
	for _, name := range []string{"Сбер", "Сбербанк"} {
		if _, err := db.FindOrCreateOrg(name); err != nil {
			t.Fatalf("FindOrCreateOrg(%q) error: %v", name, err)
		}
	}

	known, err := engine.KnownOrganization("Сбер")
	if err != nil || !known {
		t.Errorf("KnownOrganization(Сбер) = %v, %v, want true", known, err)
	}
	known, err = engine.KnownOrganization("Тинькофф")
	if err != nil || known {
		t.Errorf("KnownOrganization(Тинькофф) = %v, %v, want false", known, err)
	}

	names, err := engine.SuggestOrganizations("Сбер")
	if err != nil {
		t.Fatalf("SuggestOrganizations() error: %v", err)
	}
	if len(names) != 2 || names[0] != "Сбер" {
		t.Errorf("suggestions = %v, want both banks, shortest first", names)
	}
}
