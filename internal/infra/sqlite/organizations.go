package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/cat-time-bot/cattime/internal/domain"
)

// ─── Organization Repository ────────────────────────────────────────────────

// FindOrCreateOrg returns the organization with the given name, creating
// it on first reference. The name's UNIQUE constraint makes concurrent
// creates collapse into one row.
func (d *DB) FindOrCreateOrg(name string) (*domain.Organization, error) {
	_, err := d.db.Exec(
		`INSERT INTO organizations (name) VALUES (?)
		 ON CONFLICT(name) DO NOTHING`, name)
	if err != nil {
		return nil, fmt.Errorf("insert organization: %w", err)
	}
	return d.FindOrgByName(name)
}

// FindOrgByName returns an organization by exact name, or nil.
func (d *DB) FindOrgByName(name string) (*domain.Organization, error) {
	var org domain.Organization
	err := d.db.QueryRow(
		`SELECT id, name FROM organizations WHERE name = ?`, name,
	).Scan(&org.ID, &org.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// SimilarOrgNames returns up to limit existing organization names
// containing the fragment, shortest (closest) first.
func (d *DB) SimilarOrgNames(fragment string, limit int) ([]string, error) {
	rows, err := d.db.Query(
		`SELECT name FROM organizations
		 WHERE name LIKE '%' || ? || '%'
		 ORDER BY length(name) ASC
		 LIMIT ?`, fragment, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
