package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"studio/internal/catalog"
)

type toggleResponse struct {
	catalog.View
	Reaction catalog.Reaction `json:"reaction"`
	Active   bool             `json:"active"`
}

func (a *App) Explore(w http.ResponseWriter, r *http.Request) {
	facet, err := catalog.ParseFacet(r.URL.Query().Get("facet"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	items := a.Catalog.Explore(a.currentUserID(r), catalog.Query{
		Text:  r.URL.Query().Get("q"),
		Facet: facet,
	})
	a.json(w, http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
		"facet": facet.ID(),
	})
}

func (a *App) ExploreFacets(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, list(catalog.Facets()))
}

func (a *App) ExploreTrending(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, list(a.Catalog.Trending(a.currentUserID(r))))
}

func (a *App) ExploreFeatured(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, list(a.Catalog.Featured(a.currentUserID(r))))
}

func (a *App) Feed(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, list(a.Catalog.Feed(a.currentUserID(r))))
}

func (a *App) ItemGet(w http.ResponseWriter, r *http.Request) {
	v, err := a.Catalog.Get(a.currentUserID(r), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, v)
}

func (a *App) ItemLike(w http.ResponseWriter, r *http.Request) {
	a.toggle(w, r, catalog.ReactionLike)
}

func (a *App) ItemSave(w http.ResponseWriter, r *http.Request) {
	a.toggle(w, r, catalog.ReactionSave)
}

func (a *App) toggle(w http.ResponseWriter, r *http.Request, reaction catalog.Reaction) {
	userID := a.requireUser(w, r)
	if userID == "" {
		return
	}
	v, err := a.Catalog.Toggle(userID, reaction, chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	active := v.Liked
	if reaction == catalog.ReactionSave {
		active = v.Saved
	}
	a.json(w, http.StatusOK, toggleResponse{View: v, Reaction: reaction, Active: active})
}
