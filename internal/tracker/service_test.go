package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/halldor/dagaz/internal/apperr"
	"github.com/halldor/dagaz/internal/models"
	"github.com/halldor/dagaz/internal/store"
	"github.com/halldor/dagaz/internal/testutil"
)

func testService(t *testing.T) *Service {
	t.Helper()
	return NewService(testutil.TestDB(t), nil)
}

func TestCreateItem_DefaultsAndSlug(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, models.KindBug, "Login Crash!", "boom", "", nil)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.Slug != "login-crash" {
		t.Errorf("slug = %q, want login-crash", item.Slug)
	}
	if item.Status == nil || item.Status.Slug != "open" {
		t.Errorf("status = %+v, want first catalogue entry", item.Status)
	}
}

func TestCreateItem_UniqueSlugProbing(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	for i, want := range []string{"retry", "retry-1", "retry-2"} {
		item, err := svc.CreateItem(ctx, models.KindTask, "Retry", "", "", nil)
		if err != nil {
			t.Fatalf("CreateItem #%d: %v", i, err)
		}
		if item.Slug != want {
			t.Errorf("slug #%d = %q, want %q", i, item.Slug, want)
		}
	}
}

func TestCreateItem_Validation(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateItem(ctx, models.KindBug, "   ", "", "", nil); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("blank title: err = %v, want ErrInvalid", err)
	}
	if _, err := svc.CreateItem(ctx, models.Kind("epic"), "x", "", "", nil); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("bad kind: err = %v, want ErrInvalid", err)
	}
	if _, err := svc.CreateItem(ctx, models.KindBug, "x", "", "no-such-status", nil); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("bad status: err = %v, want ErrInvalid", err)
	}
}

func TestChangeStatus_RecordsHistory(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, models.KindBug, "Crash", "", "open", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.ChangeStatus(ctx, models.KindBug, item.Slug, "on-dev", "picked up"); err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}

	got, err := svc.GetItem(ctx, models.KindBug, item.Slug)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status.Slug != "on-dev" {
		t.Errorf("status = %q", got.Status.Slug)
	}
	if len(got.History) != 1 {
		t.Fatalf("history = %+v, want 1 entry", got.History)
	}
	h := got.History[0]
	if h.ChangeType != models.ChangeStatus || h.OldValue != "Open" || h.NewValue != "On Dev" || h.Remark != "picked up" {
		t.Errorf("history entry = %+v", h)
	}

	// Re-applying the same status is a no-op and adds no history.
	if err := svc.ChangeStatus(ctx, models.KindBug, item.Slug, "on-dev", "again"); err != nil {
		t.Fatal(err)
	}
	got, _ = svc.GetItem(ctx, models.KindBug, item.Slug)
	if len(got.History) != 1 {
		t.Errorf("no-op change added history: %+v", got.History)
	}
}

func TestUpdateItem_DueDateHistory(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, models.KindTask, "Plan", "", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	due := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	if err := svc.UpdateItem(ctx, models.KindTask, item.Slug, "Plan", "", &due, "scheduled"); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	got, _ := svc.GetItem(ctx, models.KindTask, item.Slug)
	if len(got.History) != 1 {
		t.Fatalf("history = %+v", got.History)
	}
	h := got.History[0]
	if h.ChangeType != models.ChangeDueDate || h.OldValue != "None" || h.NewValue != "2026-02-01" {
		t.Errorf("history entry = %+v", h)
	}

	// Title-only edit with unchanged due date adds no history.
	if err := svc.UpdateItem(ctx, models.KindTask, item.Slug, "Plan v2", "", &due, ""); err != nil {
		t.Fatal(err)
	}
	got, _ = svc.GetItem(ctx, models.KindTask, item.Slug)
	if got.Title != "Plan v2" || len(got.History) != 1 {
		t.Errorf("item = %+v", got)
	}
}

func TestCommentsAndLinks(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, models.KindBug, "Leak", "", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.AddComment(ctx, models.KindBug, item.Slug, "heap profile attached"); err != nil {
		t.Fatal(err)
	}
	if err := svc.AddComment(ctx, models.KindBug, item.Slug, "  "); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("blank comment: err = %v", err)
	}
	if err := svc.AddLink(ctx, models.KindBug, item.Slug, "Profile", "https://example.com/pprof"); err != nil {
		t.Fatal(err)
	}
	if err := svc.AddLink(ctx, models.KindBug, item.Slug, "", "https://x"); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("nameless link: err = %v", err)
	}

	got, _ := svc.GetItem(ctx, models.KindBug, item.Slug)
	if len(got.Activities) != 1 || len(got.Links) != 1 {
		t.Errorf("activities = %d, links = %d", len(got.Activities), len(got.Links))
	}

	if err := svc.RemoveLink(ctx, models.KindBug, item.Slug, got.Links[0].ID); err != nil {
		t.Fatal(err)
	}
	got, _ = svc.GetItem(ctx, models.KindBug, item.Slug)
	if len(got.Links) != 0 {
		t.Errorf("links after removal = %+v", got.Links)
	}
}

func TestStatusesWithCounts(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateItem(ctx, models.KindBug, "A", "", "open", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateItem(ctx, models.KindBug, "B", "", "closed", nil); err != nil {
		t.Fatal(err)
	}

	statuses, total, err := svc.StatusesWithCounts(ctx, models.KindBug)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	byslug := map[string]int{}
	for _, s := range statuses {
		byslug[s.Slug] = s.Count
	}
	if byslug["open"] != 1 || byslug["closed"] != 1 {
		t.Errorf("counts = %v", byslug)
	}
}

func TestDeleteItem(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, models.KindTask, "Temp", "", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteItem(ctx, models.KindTask, item.Slug); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetItem(ctx, models.KindTask, item.Slug); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestList_PassesThrough(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateItem(ctx, models.KindBug, "Only", "", "", nil); err != nil {
		t.Fatal(err)
	}
	items, total, err := svc.List(ctx, store.ListOptions{Kind: models.KindBug})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(items) != 1 {
		t.Errorf("total = %d, len = %d", total, len(items))
	}
}
