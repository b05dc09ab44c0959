package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Families.
	r.Get("/families", h.ListFamilies)
	r.Route("/families/{slug}", func(r chi.Router) {
		r.Get("/", h.GetFamily)
		r.Get("/roots", h.Roots)
		r.Get("/tree", h.Tree)
		r.Get("/visible", h.Visible)
		r.Get("/search", h.SearchFamily)
		r.Get("/people/{id}", h.GetPerson)
		r.Get("/people/{id}/lineage", h.Lineage)
	})

	// Cross-source search.
	r.Get("/search", h.Search)

	// Sources.
	r.Get("/sources", h.Sources)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
