package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"studio/internal/auth"
	"studio/internal/domain"
	"studio/internal/middleware"
)

type callbackRequest struct {
	URL string `json:"url"`
}

type meResponse struct {
	domain.User
	Handle string `json:"handle"`
}

func (a *App) AuthProviders(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"items":        auth.Providers,
		"redirect_uri": a.Auth.RedirectURI(),
	})
}

func (a *App) AuthSignIn(w http.ResponseWriter, r *http.Request) {
	p, err := auth.ParseProvider(chi.URLParam(r, "provider"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var signIn *auth.SignIn
	switch p {
	case auth.ProviderGoogle:
		signIn, err = a.Auth.SignInWithGoogle(r.Context())
	case auth.ProviderFacebook:
		signIn, err = a.Auth.SignInWithFacebook(r.Context())
	case auth.ProviderTwitter:
		signIn, err = a.Auth.SignInWithTwitter(r.Context())
	}
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, signIn)
}

func (a *App) AuthCallback(w http.ResponseWriter, r *http.Request) {
	var req callbackRequest
	if !a.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		req.URL = r.URL.Query().Get("url")
	}
	session, err := a.Auth.HandleAuthCallback(r.Context(), req.URL)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, session)
}

func (a *App) AuthSignOut(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.BearerToken(r)
	if err := a.Auth.SignOut(r.Context(), token); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.BearerToken(r)
	user, err := a.Auth.GetUser(r.Context(), token)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, meResponse{User: *user, Handle: "@" + user.Handle()})
}
