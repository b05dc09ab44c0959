package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/shajara/internal/gedcom"
	"github.com/starford/shajara/internal/treeservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc Service
}

// NewHandler creates a new Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// urlParam returns a decoded path parameter. Individual ids such as
// "@I1@" may arrive percent-encoded.
func urlParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// intQuery parses an optional non-negative integer query parameter.
func intQuery(r *http.Request, key string) (int, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ListFamilies handles GET /api/families.
//
//	@Summary		List configured families
//	@Tags			families
//	@Produce		json
//	@Success		200	{object}	FamilyListResponse
//	@Security		BearerAuth
//	@Router			/families [get]
func (h *Handler) ListFamilies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, FamilyListResponse{Families: h.svc.Families(r.Context())})
}

// GetFamily handles GET /api/families/{slug}.
//
//	@Summary		Get a family with its root and stats
//	@Tags			families
//	@Produce		json
//	@Param			slug	path		string	true	"Family slug"
//	@Success		200		{object}	FamilyDetail
//	@Failure		404		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/families/{slug} [get]
func (h *Handler) GetFamily(w http.ResponseWriter, r *http.Request) {
	fd, err := h.svc.Family(r.Context(), urlParam(r, "slug"))
	if err != nil {
		writeError(w, "get family", err)
		return
	}
	writeJSON(w, http.StatusOK, fd)
}

// Roots handles GET /api/families/{slug}/roots.
//
//	@Summary		List root-selector candidates
//	@Tags			families
//	@Produce		json
//	@Param			slug		path		string	true	"Family slug"
//	@Param			strategy	query		string	false	"Candidate set"	Enums(all, descendants)
//	@Success		200			{object}	RootsResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/families/{slug}/roots [get]
func (h *Handler) Roots(w http.ResponseWriter, r *http.Request) {
	strategy, err := gedcom.ParseRootStrategy(r.URL.Query().Get("strategy"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("strategy must be all or descendants"))
		return
	}
	roots, err := h.svc.Roots(r.Context(), urlParam(r, "slug"), strategy)
	if err != nil {
		writeError(w, "roots", err)
		return
	}
	writeJSON(w, http.StatusOK, RootsResponse{Strategy: strategy, Roots: roots})
}

// Tree handles GET /api/families/{slug}/tree.
//
//	@Summary		Lay out the descendant tree of a root
//	@Tags			tree
//	@Produce		json
//	@Param			slug		path		string	true	"Family slug"
//	@Param			root		query		string	false	"Root individual id"
//	@Param			depth		query		int		false	"Generations below the root"
//	@Param			highlight	query		string	false	"Individual whose lineage is highlighted"
//	@Success		200			{object}	treeview.View
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/families/{slug}/tree [get]
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	depth, ok := intQuery(r, "depth")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("depth must be a non-negative integer"))
		return
	}
	q := r.URL.Query()
	view, err := h.svc.Tree(r.Context(), urlParam(r, "slug"), treeservice.TreeRequest{
		RootID:      q.Get("root"),
		Depth:       depth,
		HighlightID: q.Get("highlight"),
	})
	if err != nil {
		writeError(w, "tree", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Visible handles GET /api/families/{slug}/visible.
//
//	@Summary		List the ids shown for a root
//	@Tags			tree
//	@Produce		json
//	@Param			slug	path		string	true	"Family slug"
//	@Param			root	query		string	false	"Root individual id"
//	@Success		200		{object}	VisibleResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/families/{slug}/visible [get]
func (h *Handler) Visible(w http.ResponseWriter, r *http.Request) {
	root := r.URL.Query().Get("root")
	ids, err := h.svc.Visible(r.Context(), urlParam(r, "slug"), root)
	if err != nil {
		writeError(w, "visible", err)
		return
	}
	writeJSON(w, http.StatusOK, VisibleResponse{RootID: root, IDs: ids})
}

// GetPerson handles GET /api/families/{slug}/people/{id}.
//
//	@Summary		Get a person with their relatives
//	@Tags			people
//	@Produce		json
//	@Param			slug	path		string	true	"Family slug"
//	@Param			id		path		string	true	"Individual id"
//	@Success		200		{object}	PersonDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/families/{slug}/people/{id} [get]
func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Person(r.Context(), urlParam(r, "slug"), urlParam(r, "id"))
	if err != nil {
		writeError(w, "get person", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Lineage handles GET /api/families/{slug}/people/{id}/lineage.
//
//	@Summary		List ancestors and descendants of a person
//	@Tags			people
//	@Produce		json
//	@Param			slug	path		string	true	"Family slug"
//	@Param			id		path		string	true	"Individual id"
//	@Success		200		{object}	treeservice.LineageView
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/families/{slug}/people/{id}/lineage [get]
func (h *Handler) Lineage(w http.ResponseWriter, r *http.Request) {
	l, err := h.svc.Lineage(r.Context(), urlParam(r, "slug"), urlParam(r, "id"))
	if err != nil {
		writeError(w, "lineage", err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// SearchFamily handles GET /api/families/{slug}/search.
//
//	@Summary		Search people of a family by name
//	@Tags			people
//	@Produce		json
//	@Param			slug	path		string	true	"Family slug"
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/families/{slug}/search [get]
func (h *Handler) SearchFamily(w http.ResponseWriter, r *http.Request) {
	q, limit, ok := searchParams(w, r)
	if !ok {
		return
	}
	hits, err := h.svc.Search(r.Context(), urlParam(r, "slug"), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: hits})
}

// Search handles GET /api/search.
//
//	@Summary		Search people across every source
//	@Tags			people
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	PeopleResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q, limit, ok := searchParams(w, r)
	if !ok {
		return
	}
	results, err := h.svc.SearchAll(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search all", err)
		return
	}
	writeJSON(w, http.StatusOK, PeopleResponse{Results: results})
}

// Sources handles GET /api/sources.
//
//	@Summary		List loaded GEDCOM sources
//	@Tags			sources
//	@Produce		json
//	@Success		200	{object}	SourcesResponse
//	@Security		BearerAuth
//	@Router			/sources [get]
func (h *Handler) Sources(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SourcesResponse{Sources: h.svc.Sources()})
}

func searchParams(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return "", 0, false
	}
	limit, ok := intQuery(r, "limit")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("limit must be a non-negative integer"))
		return "", 0, false
	}
	return q, limit, true
}
