// Package models defines the domain types for Dagaz.
package models

import "time"

// Kind distinguishes the two tracked item families.
type Kind string

// Item kinds.
const (
	KindBug  Kind = "bug"
	KindTask Kind = "task"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindBug || k == KindTask
}

// Status is one entry in a kind's status catalogue.
type Status struct {
	ID      int64  `json:"id"`
	Kind    Kind   `json:"kind"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Color   string `json:"color"`
	IsFinal bool   `json:"is_final"`

	// Count is populated by list queries only.
	Count int `json:"count,omitempty"`
}

// Item is a tracked bug or task.
type Item struct {
	ID          int64      `json:"id"`
	Kind        Kind       `json:"kind"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description,omitempty"`
	StatusID    int64      `json:"status_id"`
	Status      *Status    `json:"status,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Links      []Link         `json:"links,omitempty"`
	Activities []Activity     `json:"activities,omitempty"`
	History    []HistoryEntry `json:"history,omitempty"`
}

// Overdue reports whether the item is past due and not in a final status.
func (i *Item) Overdue(now time.Time) bool {
	if i.DueDate == nil || i.DueDate.IsZero() {
		return false
	}
	if i.Status != nil && i.Status.IsFinal {
		return false
	}
	return i.DueDate.Before(now)
}

// Link is a named external reference attached to an item.
type Link struct {
	ID     int64  `json:"id"`
	ItemID int64  `json:"item_id"`
	Name   string `json:"name"`
	URL    string `json:"url"`
}

// Activity is a user comment on an item, listed newest first.
type Activity struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// History change types.
const (
	ChangeStatus  = "STATUS_CHANGE"
	ChangeDueDate = "DATE_CHANGE"
)

// HistoryEntry records a system-level change to an item.
type HistoryEntry struct {
	ID         int64     `json:"id"`
	ItemID     int64     `json:"item_id"`
	ChangeType string    `json:"change_type"`
	OldValue   string    `json:"old_value,omitempty"`
	NewValue   string    `json:"new_value,omitempty"`
	Remark     string    `json:"remark,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
