package season_test

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cat-time-bot/cattime/internal/app/achievement"
	"github.com/cat-time-bot/cattime/internal/app/season"
	"github.com/cat-time-bot/cattime/internal/domain"
	"github.com/cat-time-bot/cattime/internal/infra/sqlite"
)

func testDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testLedger(t *testing.T) (*season.Ledger, *sqlite.DB) {
	t.Helper()
	db := testDB(t)
	return season.NewLedger(db, db, db, db, zap.NewNop()), db
}

func insertSeason(t *testing.T, db *sqlite.DB, s *domain.Season) *domain.Season {
	t.Helper()
	if err := db.InsertSeason(s); err != nil {
		t.Fatalf("InsertSeason() error: %v", err)
	}
	return s
}

var march = time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)

// ─── Current ────────────────────────────────────────────────────────────────

func TestCurrent_NoneActive(t *testing.T) {
	ledger, _ := testLedger(t)

	got, err := ledger.Current()
	if err != nil {
		t.Fatalf("Current() error: %v", err)
	}
	if got != nil {
		t.Errorf("Current() = %+v, want nil", got)
	}
}

func TestCurrent_NewestWinsWhenSeveralActive(t *testing.T) {
	ledger, db := testLedger(t)

	insertSeason(t, db, &domain.Season{
		Name: "Старый", StartDate: march.AddDate(0, -4, 0),
		EndDate: march.AddDate(0, -1, 0), Active: true,
	})
	insertSeason(t, db, &domain.Season{
		Name: "Новый", StartDate: march.AddDate(0, -1, 0),
		EndDate: march.AddDate(0, 2, 0), Active: true,
	})

	got, err := ledger.Current()
	if err != nil {
		t.Fatalf("Current() error: %v", err)
	}
	if got == nil || got.Name != "Новый" {
		t.Errorf("Current() = %+v, want the later season", got)
	}
}

// ─── ApplyExperience ────────────────────────────────────────────────────────

func TestApplyExperience_CreatesRank(t *testing.T) {
	ledger, db := testLedger(t)
	if _, err := season.SeedLevels(db); err != nil {
		t.Fatalf("SeedLevels() error: %v", err)
	}
	s := insertSeason(t, db, &domain.Season{
		Name: "Весна", StartDate: march, EndDate: march.AddDate(0, 3, 0), Active: true,
	})

	rank, leveled, title, err := ledger.ApplyExperience(1, "alice", *s, 40, time.Hour)
	if err != nil {
		t.Fatalf("ApplyExperience() error: %v", err)
	}
	if rank.Experience != 40 || rank.Visits != 1 || rank.TotalTime != time.Hour {
		t.Errorf("rank = %+v, want exp 40, 1 visit, 1h", rank)
	}
	if rank.Level != 1 || leveled {
		t.Errorf("level = %d leveled = %v, want level 1 without a level-up", rank.Level, leveled)
	}
	if title == nil || title.Level != 1 {
		t.Errorf("title = %+v, want catalog level 1", title)
	}
}

func TestApplyExperience_LevelUp(t *testing.T) {
	ledger, db := testLedger(t)
	if _, err := season.SeedLevels(db); err != nil {
		t.Fatalf("SeedLevels() error: %v", err)
	}
	s := insertSeason(t, db, &domain.Season{
		Name: "Весна", StartDate: march, EndDate: march.AddDate(0, 3, 0), Active: true,
	})

	if _, _, _, err := ledger.ApplyExperience(1, "alice", *s, 950, time.Hour); err != nil {
		t.Fatalf("ApplyExperience() error: %v", err)
	}

	// 950 + 100 = 1050 crosses the 1000 threshold into level 2.
	rank, leveled, title, err := ledger.ApplyExperience(1, "alice", *s, 100, time.Hour)
	if err != nil {
		t.Fatalf("ApplyExperience() error: %v", err)
	}
	if !leveled || rank.Level != 2 {
		t.Errorf("leveled = %v level = %d, want level-up to 2", leveled, rank.Level)
	}
	if title == nil || title.Level != 2 {
		t.Errorf("title = %+v, want catalog level 2", title)
	}

	// A multi-threshold jump still counts as one level-up event.
	rank, leveled, _, err = ledger.ApplyExperience(1, "alice", *s, 3000, time.Hour)
	if err != nil {
		t.Fatalf("ApplyExperience() error: %v", err)
	}
	if !leveled || rank.Level != 5 {
		t.Errorf("leveled = %v level = %d, want jump to 5", leveled, rank.Level)
	}

	// Staying inside the same band is not a level-up.
	rank, leveled, _, err = ledger.ApplyExperience(1, "alice", *s, 10, time.Hour)
	if err != nil {
		t.Fatalf("ApplyExperience() error: %v", err)
	}
	if leveled || rank.Level != 5 {
		t.Errorf("leveled = %v level = %d, want no change", leveled, rank.Level)
	}
	if rank.Visits != 4 {
		t.Errorf("visits = %d, want 4", rank.Visits)
	}
}

// ─── LevelInfo ──────────────────────────────────────────────────────────────

func TestLevelInfo_Progress(t *testing.T) {
	ledger, db := testLedger(t)
	if _, err := season.SeedLevels(db); err != nil {
		t.Fatalf("SeedLevels() error: %v", err)
	}

	info, err := ledger.LevelInfo(domain.SeasonRank{Experience: 1500})
	if err != nil {
		t.Fatalf("LevelInfo() error: %v", err)
	}
	if info.Level != 2 {
		t.Errorf("level = %d, want 2", info.Level)
	}
	if info.NextLevelExp != 2000 || info.ExpInLevel != 500 || info.ExpToNext != 1000 {
		t.Errorf("thresholds = %+v, want 500 of 1000 toward 2000", info)
	}
	if info.Progress != 50 {
		t.Errorf("progress = %v, want 50", info.Progress)
	}
}

func TestLevelInfo_TopOfCatalog(t *testing.T) {
	ledger, db := testLedger(t)
	if _, err := season.SeedLevels(db); err != nil {
		t.Fatalf("SeedLevels() error: %v", err)
	}

	info, err := ledger.LevelInfo(domain.SeasonRank{Experience: 500000})
	if err != nil {
		t.Fatalf("LevelInfo() error: %v", err)
	}
	if info.Level != 100 || info.Progress != 100 {
		t.Errorf("info = %+v, want maxed-out level 100", info)
	}
}

func TestLevelInfo_EmptyCatalog(t *testing.T) {
	ledger, _ := testLedger(t)

	info, err := ledger.LevelInfo(domain.SeasonRank{Level: 7, Experience: 123})
	if err != nil {
		t.Fatalf("LevelInfo() error: %v", err)
	}
	if info.Level != 7 || info.Title != "Уровень 7" {
		t.Errorf("info = %+v, want numeric fallback", info)
	}
}

// ─── Rollover ───────────────────────────────────────────────────────────────

func TestRollover_RetiresAndAwardsPodium(t *testing.T) {
	ledger, db := testLedger(t)
	expired := insertSeason(t, db, &domain.Season{
		Name: "Зима", StartDate: march.AddDate(0, -3, 0), EndDate: march, Active: true,
	})

	ranks := []domain.SeasonRank{
		{UserID: 1, Username: "alice", SeasonID: expired.ID, Experience: 900, Level: 1, Visits: 9},
		{UserID: 2, Username: "bob", SeasonID: expired.ID, Experience: 500, Level: 2, Visits: 5},
		{UserID: 3, Username: "carol", SeasonID: expired.ID, Experience: 100, Level: 1, Visits: 2},
	}
	for i := range ranks {
		if err := db.InsertRank(&ranks[i]); err != nil {
			t.Fatalf("InsertRank() error: %v", err)
		}
	}

	report, err := ledger.Rollover(march)
	if err != nil {
		t.Fatalf("Rollover() error: %v", err)
	}

	if len(report.Ended) != 1 {
		t.Fatalf("ended %d seasons, want 1", len(report.Ended))
	}
	winners := report.Ended[0].Winners
	if len(winners) != 3 || winners[0].Username != "bob" {
		t.Errorf("winners = %+v, want bob first on level", winners)
	}

	for i, w := range winners {
		grants, err := db.AchievementsForUser(w.UserID)
		if err != nil {
			t.Fatalf("AchievementsForUser() error: %v", err)
		}
		if len(grants) != 1 || grants[0].Label != achievement.SeasonAwards[i] {
			t.Errorf("user %d grants = %+v, want %q", w.UserID, grants, achievement.SeasonAwards[i])
		}
	}

	// No season was left active, so a themed one got created.
	if report.Created == nil {
		t.Fatal("Rollover() created no replacement season")
	}
	if report.Created.Theme != "spring" {
		t.Errorf("theme = %q, want spring for March", report.Created.Theme)
	}
	if !report.Created.EndDate.Equal(march.AddDate(0, 3, 0)) {
		t.Errorf("end date = %v, want start+3mo", report.Created.EndDate)
	}
}

func TestRollover_ActivatesPending(t *testing.T) {
	ledger, db := testLedger(t)
	insertSeason(t, db, &domain.Season{
		Name: "Запланированный", StartDate: march.AddDate(0, 0, -1),
		EndDate: march.AddDate(0, 3, 0), Active: false,
	})

	report, err := ledger.Rollover(march)
	if err != nil {
		t.Fatalf("Rollover() error: %v", err)
	}
	if len(report.Started) != 1 || report.Started[0].Name != "Запланированный" {
		t.Errorf("started = %+v, want the pending season", report.Started)
	}
	if report.Created != nil {
		t.Errorf("created = %+v, want none once the pending one is active", report.Created)
	}

	current, err := ledger.Current()
	if err != nil {
		t.Fatalf("Current() error: %v", err)
	}
	if current == nil || !current.Active {
		t.Errorf("Current() = %+v, want the activated season", current)
	}
}

func TestRollover_Idempotent(t *testing.T) {
	ledger, db := testLedger(t)
	insertSeason(t, db, &domain.Season{
		Name: "Зима", StartDate: march.AddDate(0, -3, 0), EndDate: march, Active: true,
	})

	if _, err := ledger.Rollover(march); err != nil {
		t.Fatalf("first Rollover() error: %v", err)
	}
	report, err := ledger.Rollover(march)
	if err != nil {
		t.Fatalf("second Rollover() error: %v", err)
	}
	if len(report.Ended) != 0 || len(report.Started) != 0 || report.Created != nil {
		t.Errorf("second pass changed state: %+v", report)
	}

	active, err := db.ActiveSeasons()
	if err != nil {
		t.Fatalf("ActiveSeasons() error: %v", err)
	}
	if len(active) != 1 {
		t.Errorf("%d active seasons after two passes, want 1", len(active))
	}
}
