package handlers

import (
	"net/http"
	"time"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	store := ""
	if a.Config != nil {
		store = a.Config.JobStore
	}
	a.json(w, http.StatusOK, map[string]any{
		"status": "ok",
		"store":  store,
		"time":   time.Now().UTC(),
	})
}
