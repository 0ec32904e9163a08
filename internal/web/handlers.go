package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/halldor/dagaz/internal/apperr"
	"github.com/halldor/dagaz/internal/linkrow"
	"github.com/halldor/dagaz/internal/models"
	"github.com/halldor/dagaz/internal/store"
	"github.com/halldor/dagaz/internal/theme"
	"github.com/halldor/dagaz/internal/tracker"
)

// Handler serves the tracker pages and form endpoints.
type Handler struct {
	svc      *tracker.Service
	tmpl     *Templates
	rows     *linkrow.Builder
	logger   *slog.Logger
	pageSize int
	live     bool
}

// NewHandler wires the page handlers. pageSize bounds list pages; live
// enables the client-side reload stream hint in rendered pages.
func NewHandler(svc *tracker.Service, tmpl *Templates, logger *slog.Logger, pageSize int, live bool) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Handler{
		svc:      svc,
		tmpl:     tmpl,
		rows:     linkrow.NewBuilder(),
		logger:   logger,
		pageSize: pageSize,
		live:     live,
	}
}

// kindMeta is the per-kind template context shared by every page.
type kindMeta struct {
	Kind         models.Kind
	KindPath     string
	KindLabel    string
	KindSingular string
	Live         bool
}

func (h *Handler) meta(kind models.Kind) kindMeta {
	m := kindMeta{Kind: kind, Live: h.live}
	switch kind {
	case models.KindBug:
		m.KindPath, m.KindLabel, m.KindSingular = "bugs", "Bugs", "bug"
	case models.KindTask:
		m.KindPath, m.KindLabel, m.KindSingular = "tasks", "Tasks", "task"
	}
	return m
}

type listPage struct {
	kindMeta
	Statuses  []models.Status
	Selected  map[string]bool
	Query     string
	Items     []models.Item
	Total     int
	HasPrev   bool
	HasNext   bool
	PrevQuery string
	NextQuery string
}

// List renders one kind's item listing with status filters, search, and
// pagination.
func (h *Handler) List(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query := strings.TrimSpace(q.Get("q"))
		slugs := q["status"]
		pageNum, _ := strconv.Atoi(q.Get("page"))
		if pageNum < 1 {
			pageNum = 1
		}

		items, matched, err := h.svc.List(r.Context(), store.ListOptions{
			Kind:        kind,
			StatusSlugs: slugs,
			Search:      query,
			Limit:       h.pageSize,
			Offset:      (pageNum - 1) * h.pageSize,
			Now:         time.Now().UTC(),
		})
		if err != nil {
			h.fail(w, r, err)
			return
		}
		statuses, _, err := h.svc.StatusesWithCounts(r.Context(), kind)
		if err != nil {
			h.fail(w, r, err)
			return
		}

		selected := make(map[string]bool, len(slugs))
		for _, s := range slugs {
			selected[s] = true
		}

		data := listPage{
			kindMeta: h.meta(kind),
			Statuses: statuses,
			Selected: selected,
			Query:    query,
			Items:    items,
			Total:    matched,
			HasPrev:  pageNum > 1,
			HasNext:  pageNum*h.pageSize < matched,
		}
		data.PrevQuery = pageQuery(query, slugs, pageNum-1)
		data.NextQuery = pageQuery(query, slugs, pageNum+1)

		h.render(w, r, "list.html", data)
	}
}

// pageQuery rebuilds the list query string for a neighbouring page.
func pageQuery(query string, slugs []string, pageNum int) string {
	v := url.Values{}
	if query != "" {
		v.Set("q", query)
	}
	for _, s := range slugs {
		v.Add("status", s)
	}
	if pageNum > 1 {
		v.Set("page", strconv.Itoa(pageNum))
	}
	return v.Encode()
}

// Create makes a new item from the quick-add form and redirects to its
// detail page.
func (h *Handler) Create(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		title := r.PostFormValue("title")
		item, err := h.svc.CreateItem(r.Context(), kind, title, "", "", nil)
		if err != nil {
			if errors.Is(err, apperr.ErrInvalid) {
				http.Redirect(w, r, "/"+h.meta(kind).KindPath, http.StatusSeeOther)
				return
			}
			h.fail(w, r, err)
			return
		}
		h.redirectItem(w, r, kind, item.Slug)
	}
}

type detailPage struct {
	kindMeta
	Item     *models.Item
	Statuses []models.Status
}

// Detail renders one item with its links, activity, and history.
func (h *Handler) Detail(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := h.svc.GetItem(r.Context(), kind, chi.URLParam(r, "slug"))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		statuses, err := h.svc.Statuses(r.Context(), kind)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.render(w, r, "detail.html", detailPage{
			kindMeta: h.meta(kind),
			Item:     item,
			Statuses: statuses,
		})
	}
}

// Update saves the detail form's title, description, and due date.
func (h *Handler) Update(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemSlug := chi.URLParam(r, "slug")
		due, err := parseDue(r.PostFormValue("due_date"))
		if err != nil {
			h.fail(w, r, fmt.Errorf("%w: %v", apperr.ErrInvalid, err))
			return
		}
		err = h.svc.UpdateItem(r.Context(), kind, itemSlug,
			r.PostFormValue("title"), r.PostFormValue("description"), due, "")
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.redirectItem(w, r, kind, itemSlug)
	}
}

// ChangeStatus moves an item to the selected status.
func (h *Handler) ChangeStatus(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemSlug := chi.URLParam(r, "slug")
		err := h.svc.ChangeStatus(r.Context(), kind, itemSlug,
			r.PostFormValue("status"), r.PostFormValue("remark"))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.redirectItem(w, r, kind, itemSlug)
	}
}

// AddComment appends an activity comment.
func (h *Handler) AddComment(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemSlug := chi.URLParam(r, "slug")
		if err := h.svc.AddComment(r.Context(), kind, itemSlug, r.PostFormValue("content")); err != nil {
			h.fail(w, r, err)
			return
		}
		h.redirectItem(w, r, kind, itemSlug)
	}
}

// SaveLinks reads the dynamic link rows from the form and attaches every
// complete name/url pair. Rows with both fields blank are ignored.
func (h *Handler) SaveLinks(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemSlug := chi.URLParam(r, "slug")
		if err := r.ParseForm(); err != nil {
			h.fail(w, r, fmt.Errorf("%w: %v", apperr.ErrInvalid, err))
			return
		}
		for _, pair := range linkrow.Pairs(r.PostForm, "links") {
			if err := h.svc.AddLink(r.Context(), kind, itemSlug, pair.Name, pair.URL); err != nil {
				h.fail(w, r, err)
				return
			}
		}
		h.redirectItem(w, r, kind, itemSlug)
	}
}

// DeleteLink removes one link row.
func (h *Handler) DeleteLink(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemSlug := chi.URLParam(r, "slug")
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			h.fail(w, r, fmt.Errorf("%w: bad link id", apperr.ErrInvalid))
			return
		}
		if err := h.svc.RemoveLink(r.Context(), kind, itemSlug, id); err != nil {
			h.fail(w, r, err)
			return
		}
		h.redirectItem(w, r, kind, itemSlug)
	}
}

// Delete removes an item and returns to the listing.
func (h *Handler) Delete(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.svc.DeleteItem(r.Context(), kind, chi.URLParam(r, "slug")); err != nil {
			h.fail(w, r, err)
			return
		}
		http.Redirect(w, r, "/"+h.meta(kind).KindPath, http.StatusSeeOther)
	}
}

// ToggleTheme flips the viewer's theme preference and returns to the
// referring page.
func (h *Handler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	effective := theme.Resolve(theme.FromRequest(r), theme.SystemHint(r))
	theme.SetCookie(w, theme.Toggle(effective))
	back := r.Referer()
	if back == "" {
		back = "/bugs"
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// LinkRowFragment renders one empty link-row for the dynamic form.
func (h *Handler) LinkRowFragment(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		prefix = "links"
	}
	index, _ := strconv.Atoi(r.URL.Query().Get("index"))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.rows.Render(w, prefix, index); err != nil {
		h.logger.Error("link row fragment", "error", err)
	}
}

// parseDue reads the optional date input. Empty means no due date.
func parseDue(v string) (*time.Time, error) {
	if strings.TrimSpace(v) == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}

func (h *Handler) redirectItem(w http.ResponseWriter, r *http.Request, kind models.Kind, itemSlug string) {
	http.Redirect(w, r, "/"+h.meta(kind).KindPath+"/"+itemSlug, http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.Render(w, name, data); err != nil {
		h.logger.Error("render page", "page", name, "path", r.URL.Path, "error", err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, apperr.ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
