package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"studio/internal/auth"
	"studio/internal/catalog"
	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/jobs"
	"studio/internal/middleware"
	"studio/internal/profile"
	"studio/internal/providers/prompt"
	"studio/internal/uploads"
)

const maxJSONBody = 1 << 20

// App carries the services shared by every handler.
type App struct {
	Config   *infra.Config
	Logger   zerolog.Logger
	Jobs     *jobs.Service
	Catalog  *catalog.Catalog
	Auth     *auth.Service
	Uploads  *uploads.Store
	Profiles *profile.Service
	Enhancer prompt.Enhancer
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Title   string `json:"title,omitempty"`
	Field   string `json:"field,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]errorBody{"error": {Code: errCode, Message: message}})
}

// fail maps a service error onto an HTTP response.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		title, msg := localizeValidation(middleware.LocaleFromContext(r.Context()), ve)
		a.json(w, http.StatusUnprocessableEntity, map[string]errorBody{"error": {
			Code: ve.Code, Field: ve.Field, Title: title, Message: msg,
		}})
	case errors.Is(err, domain.ErrUnsupportedProvider):
		a.error(w, http.StatusBadRequest, "unsupported_provider", err.Error())
	case errors.Is(err, auth.ErrProviderDisabled):
		a.error(w, http.StatusBadRequest, "provider_disabled", err.Error())
	case errors.Is(err, domain.ErrJobAlreadyRunning):
		a.error(w, http.StatusConflict, "job_running", err.Error())
	case errors.Is(err, domain.ErrJobNotCancellable):
		a.error(w, http.StatusConflict, "job_not_cancellable", err.Error())
	case errors.Is(err, domain.ErrCapacityExceeded):
		a.error(w, http.StatusConflict, "capacity_exceeded", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, domain.ErrProviderFailure):
		a.error(w, http.StatusBadGateway, "upstream_error", err.Error())
	case errors.Is(err, jobs.ErrServiceClosed):
		a.error(w, http.StatusServiceUnavailable, "shutting_down", err.Error())
	default:
		a.Logger.Error().Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// decode reads a JSON body into dst. An empty body leaves dst untouched.
func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	return true
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// requireUser writes 401 and returns "" when the request is anonymous.
func (a *App) requireUser(w http.ResponseWriter, r *http.Request) string {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
	}
	return userID
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}

func list[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items}
}
