package sqlite

import (
	"database/sql"
	"time"

	"github.com/cat-time-bot/cattime/internal/domain"
)

// UpsertStatistic replaces the rollup for the (user, date) pair.
func (d *DB) UpsertStatistic(st *domain.DailyStatistic) error {
	_, err := d.db.Exec(
		`INSERT INTO daily_stats (user_id, username, date, total_seconds, total_trips)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, date) DO UPDATE SET
			username=excluded.username,
			total_seconds=excluded.total_seconds,
			total_trips=excluded.total_trips`,
		st.UserID, st.Username, dateKey(st.Date),
		int64(st.TotalTime.Seconds()), st.TotalTrips)
	if err != nil {
		return err
	}
	// LastInsertId is not meaningful on the update path, so read the
	// row id back.
	row := d.db.QueryRow(
		`SELECT id FROM daily_stats WHERE user_id = ? AND date = ?`,
		st.UserID, dateKey(st.Date))
	return row.Scan(&st.ID)
}

// FindStatistic returns the rollup for a user and day, or nil.
func (d *DB) FindStatistic(userID int64, day time.Time) (*domain.DailyStatistic, error) {
	row := d.db.QueryRow(
		`SELECT id, user_id, username, date, total_seconds, total_trips
		 FROM daily_stats WHERE user_id = ? AND date = ?`,
		userID, dateKey(day))
	st, err := scanStatistic(row, day.Location())
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return st, err
}

// StatisticsForDate returns every user's rollup for the day, busiest
// first.
func (d *DB) StatisticsForDate(day time.Time) ([]domain.DailyStatistic, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, username, date, total_seconds, total_trips
		 FROM daily_stats WHERE date = ?
		 ORDER BY total_seconds DESC, total_trips DESC`, dateKey(day))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []domain.DailyStatistic
	for rows.Next() {
		st, err := scanStatistic(rows, day.Location())
		if err != nil {
			return nil, err
		}
		stats = append(stats, *st)
	}
	return stats, rows.Err()
}

func scanStatistic(s scanner, loc *time.Location) (*domain.DailyStatistic, error) {
	var st domain.DailyStatistic
	var date string
	var seconds int64
	err := s.Scan(&st.ID, &st.UserID, &st.Username, &date, &seconds, &st.TotalTrips)
	if err != nil {
		return nil, err
	}
	st.Date, err = time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, err
	}
	st.TotalTime = time.Duration(seconds) * time.Second
	return &st, nil
}
