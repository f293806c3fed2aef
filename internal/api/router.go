package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/newsdesk/internal/newsletter"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *newsletter.Service, file string, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, file)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/document", h.GetDocument)
	r.Get("/document/html", h.GetDocumentHTML)
	r.Post("/document", h.CreateDocument)

	r.Get("/sections", h.ListSections)
	r.Post("/sections/refresh", h.UpdateAll)
	r.Post("/sections/{name}/refresh", h.RefreshSection)

	r.Post("/releases", h.AddRelease)
	r.Get("/news/preview", h.PreviewNews)
	r.Get("/history", h.History)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}
	return r
}
