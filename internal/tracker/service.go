// Package tracker coordinates store mutations and change notifications for
// tracked items.
package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/halldor/dagaz/internal/apperr"
	"github.com/halldor/dagaz/internal/events"
	"github.com/halldor/dagaz/internal/models"
	"github.com/halldor/dagaz/internal/store"
)

// Service coordinates store and broadcast operations.
type Service struct {
	db     store.ItemStore
	broker *events.Broker
}

// NewService creates a new tracker service. broker may be nil in contexts
// that need no live updates (tests, MCP).
func NewService(db store.ItemStore, broker *events.Broker) *Service {
	return &Service{db: db, broker: broker}
}

// CreateItem creates an item with a unique slug derived from its title.
// An empty statusSlug places the item in the first status of its kind's
// catalogue.
func (s *Service) CreateItem(_ context.Context, kind models.Kind, title, description, statusSlug string, due *time.Time) (*models.Item, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", apperr.ErrInvalid, kind)
	}
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title is required", apperr.ErrInvalid)
	}

	status, err := s.resolveStatus(kind, statusSlug)
	if err != nil {
		return nil, err
	}
	itemSlug, err := s.uniqueSlug(kind, title)
	if err != nil {
		return nil, err
	}

	item := &models.Item{
		Kind:        kind,
		Title:       strings.TrimSpace(title),
		Slug:        itemSlug,
		Description: description,
		StatusID:    status.ID,
		DueDate:     due,
	}
	if err := s.db.CreateItem(item); err != nil {
		return nil, err
	}
	item.Status = status

	s.publish(events.ActionCreated, kind, item.Slug)
	return item, nil
}

// GetItem returns one item with its relations.
func (s *Service) GetItem(_ context.Context, kind models.Kind, itemSlug string) (*models.Item, error) {
	return s.db.GetItem(kind, itemSlug)
}

// List returns a page of items plus the total matching count.
func (s *Service) List(_ context.Context, opts store.ListOptions) ([]models.Item, int, error) {
	return s.db.ListItems(opts)
}

// StatusesWithCounts returns a kind's catalogue with per-status item counts
// filled in, plus the total item count.
func (s *Service) StatusesWithCounts(_ context.Context, kind models.Kind) ([]models.Status, int, error) {
	statuses, err := s.db.Statuses(kind)
	if err != nil {
		return nil, 0, err
	}
	counts, err := s.db.StatusCounts(kind)
	if err != nil {
		return nil, 0, err
	}
	total := 0
	for i := range statuses {
		statuses[i].Count = counts[statuses[i].Slug]
		total += statuses[i].Count
	}
	return statuses, total, nil
}

// ChangeStatus moves an item to a new status and records the transition in
// its history.
func (s *Service) ChangeStatus(_ context.Context, kind models.Kind, itemSlug, statusSlug, remark string) error {
	item, err := s.db.GetItem(kind, itemSlug)
	if err != nil {
		return err
	}
	next, err := s.db.StatusBySlug(kind, statusSlug)
	if err != nil {
		return fmt.Errorf("%w: unknown status %q", apperr.ErrInvalid, statusSlug)
	}
	if next.ID == item.StatusID {
		return nil
	}
	if err := s.db.SetStatus(item.ID, next.ID); err != nil {
		return err
	}
	oldName := ""
	if item.Status != nil {
		oldName = item.Status.Name
	}
	if err := s.db.AddHistory(models.HistoryEntry{
		ItemID:     item.ID,
		ChangeType: models.ChangeStatus,
		OldValue:   oldName,
		NewValue:   next.Name,
		Remark:     remark,
	}); err != nil {
		return err
	}

	s.publish(events.ActionUpdated, kind, itemSlug)
	return nil
}

// UpdateItem updates title, description, and due date. A due-date change is
// recorded in the item's history.
func (s *Service) UpdateItem(_ context.Context, kind models.Kind, itemSlug, title, description string, due *time.Time, remark string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", apperr.ErrInvalid)
	}
	item, err := s.db.GetItem(kind, itemSlug)
	if err != nil {
		return err
	}
	if err := s.db.UpdateItem(item.ID, strings.TrimSpace(title), description, due); err != nil {
		return err
	}
	if !sameDate(item.DueDate, due) {
		if err := s.db.AddHistory(models.HistoryEntry{
			ItemID:     item.ID,
			ChangeType: models.ChangeDueDate,
			OldValue:   formatDue(item.DueDate),
			NewValue:   formatDue(due),
			Remark:     remark,
		}); err != nil {
			return err
		}
	}

	s.publish(events.ActionUpdated, kind, itemSlug)
	return nil
}

// AddComment appends an activity comment to an item.
func (s *Service) AddComment(_ context.Context, kind models.Kind, itemSlug, content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: comment is empty", apperr.ErrInvalid)
	}
	item, err := s.db.GetItem(kind, itemSlug)
	if err != nil {
		return err
	}
	if _, err := s.db.AddActivity(item.ID, content); err != nil {
		return err
	}
	s.publish(events.ActionUpdated, kind, itemSlug)
	return nil
}

// AddLink attaches a named URL to an item.
func (s *Service) AddLink(_ context.Context, kind models.Kind, itemSlug, name, url string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(url) == "" {
		return fmt.Errorf("%w: link name and url are required", apperr.ErrInvalid)
	}
	item, err := s.db.GetItem(kind, itemSlug)
	if err != nil {
		return err
	}
	if _, err := s.db.AddLink(item.ID, strings.TrimSpace(name), strings.TrimSpace(url)); err != nil {
		return err
	}
	s.publish(events.ActionUpdated, kind, itemSlug)
	return nil
}

// RemoveLink deletes one link row from an item.
func (s *Service) RemoveLink(_ context.Context, kind models.Kind, itemSlug string, linkID int64) error {
	if _, err := s.db.GetItem(kind, itemSlug); err != nil {
		return err
	}
	if err := s.db.DeleteLink(linkID); err != nil {
		return err
	}
	s.publish(events.ActionUpdated, kind, itemSlug)
	return nil
}

// DeleteItem removes an item and everything attached to it.
func (s *Service) DeleteItem(_ context.Context, kind models.Kind, itemSlug string) error {
	item, err := s.db.GetItem(kind, itemSlug)
	if err != nil {
		return err
	}
	if err := s.db.DeleteItem(item.ID); err != nil {
		return err
	}
	s.publish(events.ActionDeleted, kind, itemSlug)
	return nil
}

// Statuses returns a kind's status catalogue.
func (s *Service) Statuses(_ context.Context, kind models.Kind) ([]models.Status, error) {
	return s.db.Statuses(kind)
}

func (s *Service) resolveStatus(kind models.Kind, statusSlug string) (*models.Status, error) {
	if statusSlug != "" {
		st, err := s.db.StatusBySlug(kind, statusSlug)
		if err != nil {
			return nil, fmt.Errorf("%w: unknown status %q", apperr.ErrInvalid, statusSlug)
		}
		return st, nil
	}
	statuses, err := s.db.Statuses(kind)
	if err != nil {
		return nil, err
	}
	if len(statuses) == 0 {
		return nil, fmt.Errorf("tracker: no statuses seeded for kind %s", kind)
	}
	return &statuses[0], nil
}

// uniqueSlug slugifies title and probes -1, -2, ... until the slug is free.
func (s *Service) uniqueSlug(kind models.Kind, title string) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = string(kind)
	}
	candidate := base
	for counter := 1; ; counter++ {
		taken, err := s.db.SlugExists(kind, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}

func (s *Service) publish(action string, kind models.Kind, itemSlug string) {
	if s.broker != nil {
		s.broker.PublishItemEvent(action, kind, itemSlug)
	}
}

func sameDate(a, b *time.Time) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Equal(*b)
}

func formatDue(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "None"
	}
	return t.UTC().Format("2006-01-02")
}
