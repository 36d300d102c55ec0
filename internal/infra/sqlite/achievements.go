package sqlite

import (
	"time"

	"github.com/cat-time-bot/cattime/internal/domain"
)

// InsertAchievements appends grant records in one transaction.
func (d *DB) InsertAchievements(grants []domain.Achievement) error {
	if len(grants) == 0 {
		return nil
	}
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO achievements (user_id, username, label, achieved_at)
		 VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range grants {
		g := &grants[i]
		res, err := stmt.Exec(g.UserID, g.Username, g.Label, g.AchievedAt.Unix())
		if err != nil {
			return err
		}
		if g.ID, err = res.LastInsertId(); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// AchievementsForUser returns the user's grants, newest first.
func (d *DB) AchievementsForUser(userID int64) ([]domain.Achievement, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, username, label, achieved_at
		 FROM achievements WHERE user_id = ? ORDER BY achieved_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []domain.Achievement
	for rows.Next() {
		var g domain.Achievement
		var at int64
		if err := rows.Scan(&g.ID, &g.UserID, &g.Username, &g.Label, &at); err != nil {
			return nil, err
		}
		g.AchievedAt = time.Unix(at, 0)
		grants = append(grants, g)
	}
	return grants, rows.Err()
}
