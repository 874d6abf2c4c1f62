package handlers

import (
	"net/http"

	"studio/internal/middleware"
	"studio/internal/profile"
)

type subscriptionRequest struct {
	Subscribed *bool `json:"subscribed"`
}

func (a *App) Profile(w http.ResponseWriter, r *http.Request) {
	if a.requireUser(w, r) == "" {
		return
	}
	p, err := a.Profiles.Get(middleware.UserFromContext(r.Context()))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, p)
}

// ProfileSubscription sets the subscription flag, or flips it when the body
// omits "subscribed".
func (a *App) ProfileSubscription(w http.ResponseWriter, r *http.Request) {
	userID := a.requireUser(w, r)
	if userID == "" {
		return
	}
	var req subscriptionRequest
	if !a.decode(w, r, &req) {
		return
	}
	want := !a.Profiles.Subscribed(userID)
	if req.Subscribed != nil {
		want = *req.Subscribed
	}
	on, err := a.Profiles.SetSubscribed(userID, want)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"subscribed": on, "plan": profile.ProPlan})
}

func (a *App) ProfilePosts(w http.ResponseWriter, r *http.Request) {
	userID := a.requireUser(w, r)
	if userID == "" {
		return
	}
	tab, err := profile.ParseTab(r.URL.Query().Get("tab"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	entries, err := a.Profiles.Posts(userID, tab)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"tab": tab, "items": listOrEmpty(entries)})
}

func listOrEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
