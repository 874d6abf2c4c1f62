package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"studio/internal/domain"
	"studio/internal/jobs"
)

const maxUploadBytes = 20 << 20

type uploadRequest struct {
	URI string `json:"uri"`
}

type trainingRequest struct {
	Images    []string    `json:"images,omitempty"`
	Tier      domain.Tier `json:"tier"`
	ModelName string      `json:"model_name"`
}

type uploadsResponse struct {
	Items    []domain.UploadedImage `json:"items"`
	Count    int                    `json:"count"`
	Min      int                    `json:"min"`
	Max      int                    `json:"max"`
	CanTrain bool                   `json:"can_train"`
}

func (a *App) TrainingTiers(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"items":        domain.TierPresets,
		"default":      domain.DefaultTier,
		"default_name": domain.DefaultModelName,
		"min_images":   domain.MinTrainingImages,
		"max_images":   domain.MaxTrainingImages,
	})
}

func (a *App) uploadsView(scope string) uploadsResponse {
	items := a.Uploads.List(scope)
	if items == nil {
		items = []domain.UploadedImage{}
	}
	return uploadsResponse{
		Items:    items,
		Count:    len(items),
		Min:      domain.MinTrainingImages,
		Max:      domain.MaxTrainingImages,
		CanTrain: len(items) >= domain.MinTrainingImages,
	}
}

func (a *App) UploadsList(w http.ResponseWriter, r *http.Request) {
	userID := a.requireUser(w, r)
	if userID == "" {
		return
	}
	a.json(w, http.StatusOK, a.uploadsView(jobs.Scope(userID, jobs.ScreenTraining)))
}

// UploadsAdd accepts either a JSON {"uri"} reference or a multipart "file".
func (a *App) UploadsAdd(w http.ResponseWriter, r *http.Request) {
	userID := a.requireUser(w, r)
	if userID == "" {
		return
	}
	scope := jobs.Scope(userID, jobs.ScreenTraining)

	var (
		img domain.UploadedImage
		err error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		file, header, ferr := r.FormFile("file")
		if ferr != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "file is required")
			return
		}
		defer file.Close()
		data, rerr := io.ReadAll(file)
		if rerr != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "failed to read file")
			return
		}
		img, err = a.Uploads.AddFile(r.Context(), scope, header.Filename, data)
	} else {
		var req uploadRequest
		if !a.decode(w, r, &req) {
			return
		}
		img, err = a.Uploads.Add(scope, req.URI)
	}
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, img)
}

func (a *App) UploadsRemove(w http.ResponseWriter, r *http.Request) {
	userID := a.requireUser(w, r)
	if userID == "" {
		return
	}
	scope := jobs.Scope(userID, jobs.ScreenTraining)
	if err := a.Uploads.Remove(r.Context(), scope, chi.URLParam(r, "id")); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, a.uploadsView(scope))
}

func (a *App) UploadsClear(w http.ResponseWriter, r *http.Request) {
	userID := a.requireUser(w, r)
	if userID == "" {
		return
	}
	scope := jobs.Scope(userID, jobs.ScreenTraining)
	if err := a.Uploads.Clear(r.Context(), scope); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, a.uploadsView(scope))
}

// TrainingStart trains on the images in the request or, when none are sent,
// on the user's uploaded images.
func (a *App) TrainingStart(w http.ResponseWriter, r *http.Request) {
	userID := a.requireUser(w, r)
	if userID == "" {
		return
	}
	var req trainingRequest
	if !a.decode(w, r, &req) {
		return
	}
	scope := jobs.Scope(userID, jobs.ScreenTraining)
	images := req.Images
	if len(images) == 0 {
		images = a.Uploads.URIs(scope)
	}
	job, err := a.Jobs.StartTraining(r.Context(), scope, userID, domain.TrainingRequest{
		Images:    images,
		Tier:      req.Tier,
		ModelName: req.ModelName,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.Logger.Info().Str("job_id", job.ID).Str("user_id", userID).Int("images", len(images)).Msg("training started")
	a.json(w, http.StatusAccepted, trainingResponse(job))
}
