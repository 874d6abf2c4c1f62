package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"studio/internal/domain"
	"studio/internal/jobs"
)

const sseKeepAlive = 15 * time.Second

type jobResponse struct {
	ID            string           `json:"id"`
	Kind          domain.JobKind   `json:"kind"`
	Status        domain.JobStatus `json:"status"`
	Progress      int              `json:"progress"`
	EstimatedTime int              `json:"estimated_time"`
	ImageURL      string           `json:"image_url,omitempty"`
	ModelURL      string           `json:"model_url,omitempty"`
	Error         string           `json:"error,omitempty"`
	Attempts      int              `json:"attempts"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	StartedAt     *time.Time       `json:"started_at,omitempty"`
	FinishedAt    *time.Time       `json:"finished_at,omitempty"`
}

func toJobResponse(j domain.Job) jobResponse {
	resp := jobResponse{
		ID:            j.ID,
		Kind:          j.Kind,
		Status:        j.Status,
		Progress:      j.Progress,
		EstimatedTime: j.EstimatedSeconds,
		Error:         j.ErrorMessage,
		Attempts:      j.Attempts,
		CreatedAt:     j.CreatedAt,
		UpdatedAt:     j.UpdatedAt,
		StartedAt:     j.StartedAt,
		FinishedAt:    j.FinishedAt,
	}
	if j.Result != nil {
		switch j.Kind {
		case domain.JobKindGeneration:
			resp.ImageURL = *j.Result
		case domain.JobKindTraining:
			resp.ModelURL = *j.Result
		}
	}
	return resp
}

func generationResponse(j domain.Job) domain.GenerationResponse {
	resp := domain.GenerationResponse{ID: j.ID, Status: j.Status, Error: j.ErrorMessage}
	if j.Status == domain.JobStatusRunning || j.Status == domain.JobStatusCompleted {
		progress := j.Progress
		resp.Progress = &progress
	}
	if j.Result != nil {
		resp.ImageURL = *j.Result
	}
	return resp
}

func trainingResponse(j domain.Job) domain.TrainingResponse {
	resp := domain.TrainingResponse{
		ID:            j.ID,
		Status:        j.Status,
		Progress:      j.Progress,
		EstimatedTime: j.EstimatedSeconds,
		Error:         j.ErrorMessage,
	}
	if j.Result != nil {
		resp.ModelURL = *j.Result
	}
	return resp
}

// ownedJob loads a job and hides jobs of other users as not found.
func (a *App) ownedJob(w http.ResponseWriter, r *http.Request, userID string) (domain.Job, bool) {
	id := chi.URLParam(r, "id")
	job, err := a.Jobs.Get(r.Context(), id)
	if err == nil && job.OwnerID != userID {
		err = fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		a.fail(w, r, err)
		return domain.Job{}, false
	}
	return job, true
}

const maxJobsListLimit = 100

// parseLimit reads the limit query parameter. Empty means the service
// default; larger values are clamped to maxJobsListLimit.
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	return min(n, maxJobsListLimit), nil
}

func (a *App) JobsList(w http.ResponseWriter, r *http.Request) {
	userID := a.requireUser(w, r)
	if userID == "" {
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	screens := []string{jobs.ScreenGenerator, jobs.ScreenEditor, jobs.ScreenTraining}
	if s := r.URL.Query().Get("screen"); s != "" {
		switch s {
		case jobs.ScreenGenerator, jobs.ScreenEditor, jobs.ScreenTraining:
			screens = []string{s}
		default:
			a.error(w, http.StatusBadRequest, "bad_request", "unknown screen")
			return
		}
	}
	var all []domain.Job
	for _, s := range screens {
		items, err := a.Jobs.List(r.Context(), jobs.Scope(userID, s), limit)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		all = append(all, items...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	out := make([]jobResponse, 0, len(all))
	for _, j := range all {
		out = append(out, toJobResponse(j))
	}
	a.json(w, http.StatusOK, list(out))
}

func (a *App) JobGet(w http.ResponseWriter, r *http.Request) {
	userID := a.requireUser(w, r)
	if userID == "" {
		return
	}
	job, ok := a.ownedJob(w, r, userID)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, toJobResponse(job))
}

func (a *App) JobCancel(w http.ResponseWriter, r *http.Request) {
	userID := a.requireUser(w, r)
	if userID == "" {
		return
	}
	job, ok := a.ownedJob(w, r, userID)
	if !ok {
		return
	}
	job, err := a.Jobs.Cancel(r.Context(), job.ID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.Logger.Info().Str("job_id", job.ID).Str("user_id", userID).Msg("job cancelled")
	a.json(w, http.StatusOK, toJobResponse(job))
}

// JobEvents streams job snapshots as server-sent events until the job leaves
// the running state or the client disconnects.
func (a *App) JobEvents(w http.ResponseWriter, r *http.Request) {
	userID := a.requireUser(w, r)
	if userID == "" {
		return
	}
	job, ok := a.ownedJob(w, r, userID)
	if !ok {
		return
	}
	updates, stop, err := a.Jobs.Watch(r.Context(), job.ID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	defer stop()

	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_ = rc.Flush()

	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			_ = rc.Flush()
		case snap, ok := <-updates:
			if !ok {
				_, _ = fmt.Fprint(w, "event: end\ndata: {}\n\n")
				_ = rc.Flush()
				return
			}
			if err := writeEvent(w, "job", toJobResponse(snap)); err != nil {
				return
			}
			_ = rc.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
