package web

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/halldor/dagaz/internal/events"
	"github.com/halldor/dagaz/internal/models"
)

// NewRouter assembles the HTTP surface. Page routes run inside the
// enhancement middleware; the event stream and fragments stay outside it
// because they are not full documents.
func NewRouter(h *Handler, broker *events.Broker, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(Enhancer(logger))

		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "/bugs", http.StatusSeeOther)
		})
		mountKind(r, h, "/bugs", models.KindBug)
		mountKind(r, h, "/tasks", models.KindTask)
	})

	r.Post("/theme", h.ToggleTheme)
	r.Get("/fragments/link-row", h.LinkRowFragment)
	if broker != nil {
		r.Get("/events", broker.ServeHTTP)
	}

	return r
}

func mountKind(r chi.Router, h *Handler, path string, kind models.Kind) {
	r.Route(path, func(r chi.Router) {
		r.Get("/", h.List(kind))
		r.Post("/", h.Create(kind))
		r.Route("/{slug}", func(r chi.Router) {
			r.Get("/", h.Detail(kind))
			r.Post("/", h.Update(kind))
			r.Post("/status", h.ChangeStatus(kind))
			r.Post("/comments", h.AddComment(kind))
			r.Post("/links", h.SaveLinks(kind))
			r.Post("/links/{id}/delete", h.DeleteLink(kind))
			r.Post("/delete", h.Delete(kind))
		})
	})
}
