package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/gosimple/slug"

	"github.com/halldor/dagaz/internal/apperr"
	"github.com/halldor/dagaz/internal/models"
)

type statusDef struct {
	name    string
	color   string
	isFinal bool
}

// Status catalogues. is_final marks states that stop the clock: final items
// never sort as overdue.
var bugStatusDefs = []statusDef{
	{"Open", "red", false},
	{"Reopened", "orange", false},
	{"On Dev", "blue", false},
	{"Query Sent", "indigo", false},
	{"Query Answered", "violet", false},
	{"On QA", "yellow", false},
	{"On UAT", "cyan", true},
	{"On Prod", "emerald", true},
	{"Resolved", "teal", true},
	{"Closed", "green", true},
	{"On HOLD", "gray", true},
	{"Resolved Duplicate", "zinc", true},
}

var taskStatusDefs = []statusDef{
	{"Open", "blue", false},
	{"In Progress", "yellow", false},
	{"Reopened", "purple", false},
	{"Closed", "green", true},
	{"Discarded", "slate", true},
}

// Seed inserts the status catalogues for both kinds. Existing entries are
// updated in place (color and finality may change between releases), so
// Seed is safe to run on every startup.
func (db *DB) Seed() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin seed tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	stmt, err := tx.Prepare(`
		INSERT INTO statuses (kind, name, slug, color, is_final)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(kind, slug) DO UPDATE SET
			color    = excluded.color,
			is_final = excluded.is_final
	`)
	if err != nil {
		return fmt.Errorf("store: prepare seed: %w", err)
	}
	defer stmt.Close()

	seed := func(kind models.Kind, defs []statusDef) error {
		for _, d := range defs {
			if _, err := stmt.Exec(string(kind), d.name, slug.Make(d.name), d.color, d.isFinal); err != nil {
				return fmt.Errorf("store: seed status %q: %w", d.name, err)
			}
		}
		return nil
	}
	if err := seed(models.KindBug, bugStatusDefs); err != nil {
		return err
	}
	if err := seed(models.KindTask, taskStatusDefs); err != nil {
		return err
	}
	return tx.Commit()
}

// Statuses returns the catalogue for a kind in seed order.
func (db *DB) Statuses(kind models.Kind) ([]models.Status, error) {
	rows, err := db.conn.Query(`
		SELECT id, kind, name, slug, color, is_final
		FROM statuses WHERE kind = ? ORDER BY id
	`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("store: list statuses: %w", err)
	}
	defer rows.Close()

	var out []models.Status
	for rows.Next() {
		var s models.Status
		if err := rows.Scan(&s.ID, &s.Kind, &s.Name, &s.Slug, &s.Color, &s.IsFinal); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// StatusBySlug returns one status of a kind by its slug.
func (db *DB) StatusBySlug(kind models.Kind, statusSlug string) (*models.Status, error) {
	return db.scanStatus(db.conn.QueryRow(`
		SELECT id, kind, name, slug, color, is_final
		FROM statuses WHERE kind = ? AND slug = ?
	`, string(kind), statusSlug))
}

// StatusByID returns one status by id.
func (db *DB) StatusByID(id int64) (*models.Status, error) {
	return db.scanStatus(db.conn.QueryRow(`
		SELECT id, kind, name, slug, color, is_final
		FROM statuses WHERE id = ?
	`, id))
}

func (db *DB) scanStatus(row *sql.Row) (*models.Status, error) {
	var s models.Status
	err := row.Scan(&s.ID, &s.Kind, &s.Name, &s.Slug, &s.Color, &s.IsFinal)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: scan status: %w", err)
	}
	return &s, nil
}

// StatusCounts returns item counts per status slug for a kind.
func (db *DB) StatusCounts(kind models.Kind) (map[string]int, error) {
	rows, err := db.conn.Query(`
		SELECT s.slug, COUNT(i.id)
		FROM statuses s
		JOIN items i ON i.status_id = s.id
		WHERE s.kind = ?
		GROUP BY s.slug
	`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("store: status counts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var s string
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[s] = n
	}
	return out, rows.Err()
}
