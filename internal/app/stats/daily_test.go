package stats_test

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cat-time-bot/cattime/internal/app/stats"
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

func storeClosed(t *testing.T, db *sqlite.DB, userID int64, username string,
	join, leave time.Time, experience int) *domain.Session {
	t.Helper()
	org, err := db.FindOrCreateOrg("Сбер")
	if err != nil {
		t.Fatalf("FindOrCreateOrg() error: %v", err)
	}
	s := &domain.Session{
		UserID: userID, Username: username,
		OrgID: org.ID, OrgName: org.Name, JoinTime: join,
	}
	if err := db.InsertSession(s); err != nil {
		t.Fatalf("InsertSession() error: %v", err)
	}
	s.LeaveTime = leave
	s.Experience = experience
	if err := db.UpdateSession(s); err != nil {
		t.Fatalf("UpdateSession() error: %v", err)
	}
	return s
}

var day = time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)

func TestRecompute_SumsClosedSessions(t *testing.T) {
	db := testDB(t)
	agg := stats.NewAggregator(db, db, zap.NewNop())

	storeClosed(t, db, 1, "alice", day.Add(9*time.Hour), day.Add(10*time.Hour), 31)
	storeClosed(t, db, 1, "alice", day.Add(12*time.Hour), day.Add(12*time.Hour+30*time.Minute), 16)

	st, err := agg.Recompute(1, "alice", day.Add(15*time.Hour))
	if err != nil {
		t.Fatalf("Recompute() error: %v", err)
	}
	if st.TotalTrips != 2 {
		t.Errorf("trips = %d, want 2", st.TotalTrips)
	}
	if st.TotalTime != 90*time.Minute {
		t.Errorf("total = %v, want 1h30m", st.TotalTime)
	}
	if !st.Date.Equal(day) {
		t.Errorf("date = %v, want midnight %v", st.Date, day)
	}
}

func TestRecompute_Idempotent(t *testing.T) {
	db := testDB(t)
	agg := stats.NewAggregator(db, db, zap.NewNop())
	storeClosed(t, db, 1, "alice", day.Add(9*time.Hour), day.Add(10*time.Hour), 31)

	first, err := agg.Recompute(1, "alice", day)
	if err != nil {
		t.Fatalf("first Recompute() error: %v", err)
	}
	second, err := agg.Recompute(1, "alice", day)
	if err != nil {
		t.Fatalf("second Recompute() error: %v", err)
	}
	if second.TotalTime != first.TotalTime || second.TotalTrips != first.TotalTrips {
		t.Errorf("second pass drifted: %+v vs %+v", second, first)
	}

	stored, err := db.FindStatistic(1, day)
	if err != nil {
		t.Fatalf("FindStatistic() error: %v", err)
	}
	if stored == nil || stored.TotalTrips != 1 || stored.TotalTime != time.Hour {
		t.Errorf("stored = %+v, want single 1h trip", stored)
	}
}

func TestRecompute_AfterRetroactiveEdit(t *testing.T) {
	db := testDB(t)
	agg := stats.NewAggregator(db, db, zap.NewNop())
	sess := storeClosed(t, db, 1, "alice", day.Add(9*time.Hour), day.Add(10*time.Hour), 31)

	if _, err := agg.Recompute(1, "alice", day); err != nil {
		t.Fatalf("Recompute() error: %v", err)
	}

	// Leave time moved two hours later; the rollup is rebuilt, not
	// incremented.
	sess.LeaveTime = day.Add(12 * time.Hour)
	if err := db.UpdateSession(sess); err != nil {
		t.Fatalf("UpdateSession() error: %v", err)
	}
	st, err := agg.Recompute(1, "alice", day)
	if err != nil {
		t.Fatalf("Recompute() error: %v", err)
	}
	if st.TotalTime != 3*time.Hour {
		t.Errorf("total = %v, want 3h after the edit", st.TotalTime)
	}
}

func TestRecompute_SkipsNegativeDurations(t *testing.T) {
	db := testDB(t)
	agg := stats.NewAggregator(db, db, zap.NewNop())

	storeClosed(t, db, 1, "alice", day.Add(9*time.Hour), day.Add(10*time.Hour), 31)
	// Leave edited to before join: malformed, excluded from the rollup.
	bad := storeClosed(t, db, 1, "alice", day.Add(14*time.Hour), day.Add(15*time.Hour), 0)
	bad.LeaveTime = day.Add(13 * time.Hour)
	if err := db.UpdateSession(bad); err != nil {
		t.Fatalf("UpdateSession() error: %v", err)
	}

	st, err := agg.Recompute(1, "alice", day)
	if err != nil {
		t.Fatalf("Recompute() error: %v", err)
	}
	if st.TotalTrips != 1 || st.TotalTime != time.Hour {
		t.Errorf("rollup = %+v, want the malformed session skipped", st)
	}
}

func TestDigest_EmptyDay(t *testing.T) {
	db := testDB(t)
	agg := stats.NewAggregator(db, db, zap.NewNop())

	digest, err := agg.Digest(day)
	if err != nil {
		t.Fatalf("Digest() error: %v", err)
	}
	if digest.HasActivity() {
		t.Errorf("digest = %+v, want no activity", digest)
	}
}

func TestDigest_AggregatesUsers(t *testing.T) {
	db := testDB(t)
	agg := stats.NewAggregator(db, db, zap.NewNop())

	storeClosed(t, db, 1, "alice", day.Add(9*time.Hour), day.Add(11*time.Hour), 55)
	storeClosed(t, db, 2, "bob", day.Add(10*time.Hour), day.Add(11*time.Hour), 31)
	if _, err := agg.Recompute(1, "alice", day); err != nil {
		t.Fatalf("Recompute() error: %v", err)
	}
	if _, err := agg.Recompute(2, "bob", day); err != nil {
		t.Fatalf("Recompute() error: %v", err)
	}

	digest, err := agg.Digest(day)
	if err != nil {
		t.Fatalf("Digest() error: %v", err)
	}
	if len(digest.Entries) != 2 {
		t.Fatalf("%d entries, want 2", len(digest.Entries))
	}
	// Sorted by time spent, longest first.
	if digest.Entries[0].Username != "alice" || digest.Entries[0].Experience != 55 {
		t.Errorf("entry[0] = %+v, want alice with 55 exp", digest.Entries[0])
	}
	if digest.TotalTrips != 2 || digest.TotalTime != 3*time.Hour || digest.TotalExperience != 86 {
		t.Errorf("totals = %+v, want 2 trips / 3h / 86 exp", digest)
	}
}
