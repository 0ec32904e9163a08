package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/halldor/dagaz/internal/apperr"
	"github.com/halldor/dagaz/internal/models"
)

// CreateItem inserts a new item. The caller is responsible for supplying a
// unique (kind, slug) pair. ID, CreatedAt, and UpdatedAt are filled in.
func (db *DB) CreateItem(item *models.Item) error {
	now := time.Now().UTC()
	res, err := db.conn.Exec(`
		INSERT INTO items (kind, title, slug, description, status_id, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, string(item.Kind), item.Title, item.Slug, item.Description, item.StatusID,
		nullTime(item.DueDate), now, now)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return apperr.ErrAlreadyExists
		}
		return fmt.Errorf("store: create item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: create item id: %w", err)
	}
	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

// GetItem returns one item by kind and slug, with its status, links,
// activities (newest first), and history (newest first).
func (db *DB) GetItem(kind models.Kind, itemSlug string) (*models.Item, error) {
	row := db.conn.QueryRow(`
		SELECT i.id, i.kind, i.title, i.slug, i.description, i.status_id, i.due_date,
		       i.created_at, i.updated_at,
		       s.id, s.kind, s.name, s.slug, s.color, s.is_final
		FROM items i
		JOIN statuses s ON s.id = i.status_id
		WHERE i.kind = ? AND i.slug = ?
	`, string(kind), itemSlug)

	item, err := scanItem(row)
	if err != nil {
		return nil, err
	}
	if err := db.loadRelations(item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem updates the editable fields and bumps updated_at.
func (db *DB) UpdateItem(id int64, title, description string, dueDate *time.Time) error {
	res, err := db.conn.Exec(`
		UPDATE items SET title = ?, description = ?, due_date = ?, updated_at = ?
		WHERE id = ?
	`, title, description, nullTime(dueDate), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("store: update item: %w", err)
	}
	return requireRow(res)
}

// SetStatus moves an item to a new status and bumps updated_at.
func (db *DB) SetStatus(itemID, statusID int64) error {
	res, err := db.conn.Exec(`
		UPDATE items SET status_id = ?, updated_at = ? WHERE id = ?
	`, statusID, time.Now().UTC(), itemID)
	if err != nil {
		return fmt.Errorf("store: set status: %w", err)
	}
	return requireRow(res)
}

// DeleteItem removes an item; links, activities, and history cascade.
func (db *DB) DeleteItem(id int64) error {
	res, err := db.conn.Exec(`DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete item: %w", err)
	}
	return requireRow(res)
}

// SlugExists reports whether a (kind, slug) pair is already taken.
func (db *DB) SlugExists(kind models.Kind, itemSlug string) (bool, error) {
	var n int
	err := db.conn.QueryRow(`
		SELECT COUNT(1) FROM items WHERE kind = ? AND slug = ?
	`, string(kind), itemSlug).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("store: slug exists: %w", err)
	}
	return n > 0, nil
}

// ListItems returns a page of items plus the total matching count.
//
// Search is word-by-word OR across title, description, and activity
// content. Ordering puts overdue active items first, then nearest due
// date, then active before final, oldest created first, most recently
// updated last as tie-breaker.
func (db *DB) ListItems(opts ListOptions) ([]models.Item, int, error) {
	if opts.Limit <= 0 {
		opts.Limit = 10
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	where := []string{"i.kind = ?"}
	args := []any{string(opts.Kind)}

	if q := strings.TrimSpace(opts.Search); q != "" {
		var wordConds []string
		for _, word := range strings.Fields(q) {
			term := "%" + word + "%"
			wordConds = append(wordConds, `(i.title LIKE ? OR i.description LIKE ? OR EXISTS (
				SELECT 1 FROM item_activities a WHERE a.item_id = i.id AND a.content LIKE ?))`)
			args = append(args, term, term, term)
		}
		where = append(where, "("+strings.Join(wordConds, " OR ")+")")
	}

	if len(opts.StatusSlugs) > 0 {
		ph := strings.Repeat("?,", len(opts.StatusSlugs))
		where = append(where, "s.slug IN ("+ph[:len(ph)-1]+")")
		for _, s := range opts.StatusSlugs {
			args = append(args, s)
		}
	}

	whereSQL := strings.Join(where, " AND ")

	var total int
	countArgs := append([]any{}, args...)
	err := db.conn.QueryRow(countSQL+whereSQL, countArgs...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("store: count items: %w", err)
	}

	query := `
		SELECT i.id, i.kind, i.title, i.slug, i.description, i.status_id, i.due_date,
		       i.created_at, i.updated_at,
		       s.id, s.kind, s.name, s.slug, s.color, s.is_final
		FROM items i
		JOIN statuses s ON s.id = i.status_id
		WHERE ` + whereSQL + `
		ORDER BY
			(CASE WHEN s.is_final = 0 AND i.due_date IS NOT NULL AND i.due_date < ? THEN 1 ELSE 0 END) DESC,
			i.due_date ASC,
			(CASE WHEN s.is_final = 0 THEN 1 ELSE 0 END) DESC,
			i.created_at ASC,
			i.updated_at DESC
		LIMIT ? OFFSET ?`
	args = append(args, now, opts.Limit, opts.Offset)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list items: %w", err)
	}
	defer rows.Close()

	var out []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *item)
	}
	return out, total, rows.Err()
}

const countSQL = `
	SELECT COUNT(DISTINCT i.id)
	FROM items i
	JOIN statuses s ON s.id = i.status_id
	WHERE `

// AddLink attaches a named URL to an item and returns the new link id.
func (db *DB) AddLink(itemID int64, name, url string) (int64, error) {
	res, err := db.conn.Exec(`
		INSERT INTO item_links (item_id, name, url) VALUES (?, ?, ?)
	`, itemID, name, url)
	if err != nil {
		return 0, fmt.Errorf("store: add link: %w", err)
	}
	return res.LastInsertId()
}

// DeleteLink removes one link row.
func (db *DB) DeleteLink(id int64) error {
	res, err := db.conn.Exec(`DELETE FROM item_links WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete link: %w", err)
	}
	return requireRow(res)
}

// AddActivity records a comment on an item and returns the new activity id.
func (db *DB) AddActivity(itemID int64, content string) (int64, error) {
	res, err := db.conn.Exec(`
		INSERT INTO item_activities (item_id, content, created_at) VALUES (?, ?, ?)
	`, itemID, content, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("store: add activity: %w", err)
	}
	return res.LastInsertId()
}

// AddHistory records a system-level change entry.
func (db *DB) AddHistory(e models.HistoryEntry) error {
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := db.conn.Exec(`
		INSERT INTO item_history (item_id, change_type, old_value, new_value, remark, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ItemID, e.ChangeType, e.OldValue, e.NewValue, e.Remark, created)
	if err != nil {
		return fmt.Errorf("store: add history: %w", err)
	}
	return nil
}

func (db *DB) loadRelations(item *models.Item) error {
	rows, err := db.conn.Query(`
		SELECT id, item_id, name, url FROM item_links WHERE item_id = ? ORDER BY id
	`, item.ID)
	if err != nil {
		return fmt.Errorf("store: load links: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l models.Link
		if err := rows.Scan(&l.ID, &l.ItemID, &l.Name, &l.URL); err != nil {
			return err
		}
		item.Links = append(item.Links, l)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	actRows, err := db.conn.Query(`
		SELECT id, item_id, content, created_at
		FROM item_activities WHERE item_id = ? ORDER BY created_at DESC, id DESC
	`, item.ID)
	if err != nil {
		return fmt.Errorf("store: load activities: %w", err)
	}
	defer actRows.Close()
	for actRows.Next() {
		var a models.Activity
		if err := actRows.Scan(&a.ID, &a.ItemID, &a.Content, &a.CreatedAt); err != nil {
			return err
		}
		item.Activities = append(item.Activities, a)
	}
	if err := actRows.Err(); err != nil {
		return err
	}

	histRows, err := db.conn.Query(`
		SELECT id, item_id, change_type, old_value, new_value, remark, created_at
		FROM item_history WHERE item_id = ? ORDER BY created_at DESC, id DESC
	`, item.ID)
	if err != nil {
		return fmt.Errorf("store: load history: %w", err)
	}
	defer histRows.Close()
	for histRows.Next() {
		var h models.HistoryEntry
		if err := histRows.Scan(&h.ID, &h.ItemID, &h.ChangeType, &h.OldValue, &h.NewValue, &h.Remark, &h.CreatedAt); err != nil {
			return err
		}
		item.History = append(item.History, h)
	}
	return histRows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var (
		item models.Item
		st   models.Status
		due  sql.NullTime
	)
	err := row.Scan(&item.ID, &item.Kind, &item.Title, &item.Slug, &item.Description,
		&item.StatusID, &due, &item.CreatedAt, &item.UpdatedAt,
		&st.ID, &st.Kind, &st.Name, &st.Slug, &st.Color, &st.IsFinal)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: scan item: %w", err)
	}
	if due.Valid {
		t := due.Time.UTC()
		item.DueDate = &t
	}
	item.Status = &st
	return &item, nil
}

func nullTime(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
