package sqlite

import (
	"database/sql"
	"time"

	"github.com/cat-time-bot/cattime/internal/domain"
)

// ─── Season Repository ──────────────────────────────────────────────────────

// InsertSeason is exposed through the SeasonRepository contract.
func (d *DB) InsertSeason(s *domain.Season) error {
	res, err := d.db.Exec(
		`INSERT INTO seasons (name, theme, start_date, end_date, active)
		 VALUES (?, ?, ?, ?, ?)`,
		s.Name, s.Theme, s.StartDate.Unix(), s.EndDate.Unix(), s.Active)
	if err != nil {
		return err
	}
	s.ID, err = res.LastInsertId()
	return err
}

// UpdateSeason rewrites a season row.
func (d *DB) UpdateSeason(s *domain.Season) error {
	_, err := d.db.Exec(
		`UPDATE seasons SET name=?, theme=?, start_date=?, end_date=?, active=? WHERE id=?`,
		s.Name, s.Theme, s.StartDate.Unix(), s.EndDate.Unix(), s.Active, s.ID)
	return err
}

// ActiveSeasons returns all active seasons ordered by start date ascending.
func (d *DB) ActiveSeasons() ([]domain.Season, error) {
	return d.querySeasons(
		`SELECT id, name, theme, start_date, end_date, active
		 FROM seasons WHERE active = 1 ORDER BY start_date ASC`)
}

// SeasonsStartingBy returns inactive seasons whose window contains the day.
func (d *DB) SeasonsStartingBy(day time.Time) ([]domain.Season, error) {
	return d.querySeasons(
		`SELECT id, name, theme, start_date, end_date, active
		 FROM seasons WHERE active = 0 AND start_date <= ? AND end_date > ?
		 ORDER BY start_date ASC`, day.Unix(), day.Unix())
}

func (d *DB) querySeasons(query string, args ...any) ([]domain.Season, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seasons []domain.Season
	for rows.Next() {
		var s domain.Season
		var start, end int64
		if err := rows.Scan(&s.ID, &s.Name, &s.Theme, &start, &end, &s.Active); err != nil {
			return nil, err
		}
		s.StartDate = time.Unix(start, 0)
		s.EndDate = time.Unix(end, 0)
		seasons = append(seasons, s)
	}
	return seasons, rows.Err()
}

// ─── Rank Repository ────────────────────────────────────────────────────────

// FindRank returns the rank for a (user, season) pair, or nil.
func (d *DB) FindRank(userID, seasonID int64) (*domain.SeasonRank, error) {
	row := d.db.QueryRow(
		`SELECT id, user_id, username, season_id, experience, level, total_seconds, visits
		 FROM season_ranks WHERE user_id = ? AND season_id = ?`, userID, seasonID)
	return scanRank(row)
}

// InsertRank creates a rank row.
func (d *DB) InsertRank(r *domain.SeasonRank) error {
	res, err := d.db.Exec(
		`INSERT INTO season_ranks (user_id, username, season_id, experience, level, total_seconds, visits)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.UserID, r.Username, r.SeasonID, r.Experience, r.Level,
		int64(r.TotalTime.Seconds()), r.Visits)
	if err != nil {
		return err
	}
	r.ID, err = res.LastInsertId()
	return err
}

// UpdateRank rewrites a rank row.
func (d *DB) UpdateRank(r *domain.SeasonRank) error {
	_, err := d.db.Exec(
		`UPDATE season_ranks SET username=?, experience=?, level=?, total_seconds=?, visits=?
		 WHERE id=?`,
		r.Username, r.Experience, r.Level, int64(r.TotalTime.Seconds()), r.Visits, r.ID)
	return err
}

// TopRanks returns the season's best ranks: level desc, experience desc,
// visits desc.
func (d *DB) TopRanks(seasonID int64, limit int) ([]domain.SeasonRank, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, username, season_id, experience, level, total_seconds, visits
		 FROM season_ranks WHERE season_id = ?
		 ORDER BY level DESC, experience DESC, visits DESC
		 LIMIT ?`, seasonID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ranks []domain.SeasonRank
	for rows.Next() {
		r, err := scanRank(rows)
		if err != nil {
			return nil, err
		}
		ranks = append(ranks, *r)
	}
	return ranks, rows.Err()
}

func scanRank(s scanner) (*domain.SeasonRank, error) {
	var r domain.SeasonRank
	var seconds int64
	err := s.Scan(&r.ID, &r.UserID, &r.Username, &r.SeasonID,
		&r.Experience, &r.Level, &seconds, &r.Visits)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.TotalTime = time.Duration(seconds) * time.Second
	return &r, nil
}

// ─── Level Catalog ──────────────────────────────────────────────────────────

// UpsertLevel loads or refreshes one catalog row. Seed operation.
func (d *DB) UpsertLevel(t domain.LevelTitle) error {
	_, err := d.db.Exec(
		`INSERT INTO level_titles (level, title, category, min_experience)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(level) DO UPDATE SET
			title=excluded.title,
			category=excluded.category,
			min_experience=excluded.min_experience`,
		t.Level, t.Title, t.Category, t.MinExperience)
	return err
}

// LevelForExperience returns the highest catalog row covered by exp, or nil.
func (d *DB) LevelForExperience(exp int64) (*domain.LevelTitle, error) {
	row := d.db.QueryRow(
		`SELECT level, title, category, min_experience FROM level_titles
		 WHERE min_experience <= ? ORDER BY level DESC LIMIT 1`, exp)
	return scanLevel(row)
}

// NextLevelAfter returns the first catalog row ordered above level, or nil.
func (d *DB) NextLevelAfter(level int) (*domain.LevelTitle, error) {
	row := d.db.QueryRow(
		`SELECT level, title, category, min_experience FROM level_titles
		 WHERE level > ? ORDER BY level ASC LIMIT 1`, level)
	return scanLevel(row)
}

// LowestLevel returns the catalog's first row, or nil when empty.
func (d *DB) LowestLevel() (*domain.LevelTitle, error) {
	row := d.db.QueryRow(
		`SELECT level, title, category, min_experience FROM level_titles
		 ORDER BY level ASC LIMIT 1`)
	return scanLevel(row)
}

func scanLevel(s scanner) (*domain.LevelTitle, error) {
	var t domain.LevelTitle
	err := s.Scan(&t.Level, &t.Title, &t.Category, &t.MinExperience)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
