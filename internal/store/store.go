package store

import (
	"time"

	"github.com/halldor/dagaz/internal/models"
)

// ItemStore defines the persistence operations the tracker needs.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type ItemStore interface {
	Seed() error
	Statuses(kind models.Kind) ([]models.Status, error)
	StatusBySlug(kind models.Kind, slug string) (*models.Status, error)
	StatusByID(id int64) (*models.Status, error)
	StatusCounts(kind models.Kind) (map[string]int, error)

	CreateItem(item *models.Item) error
	GetItem(kind models.Kind, slug string) (*models.Item, error)
	UpdateItem(id int64, title, description string, dueDate *time.Time) error
	SetStatus(itemID, statusID int64) error
	DeleteItem(id int64) error
	SlugExists(kind models.Kind, slug string) (bool, error)
	ListItems(opts ListOptions) ([]models.Item, int, error)

	AddLink(itemID int64, name, url string) (int64, error)
	DeleteLink(id int64) error
	AddActivity(itemID int64, content string) (int64, error)
	AddHistory(e models.HistoryEntry) error

	Close() error
}

// ListOptions narrows and pages a ListItems query.
type ListOptions struct {
	Kind        models.Kind
	StatusSlugs []string
	Search      string
	Limit       int
	Offset      int
	Now         time.Time
}

// Verify *DB satisfies ItemStore at compile time.
var _ ItemStore = (*DB)(nil)
