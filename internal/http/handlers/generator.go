package handlers

import (
	"net/http"

	"studio/internal/domain"
	"studio/internal/jobs"
)

type editorRequest struct {
	SourceURL string          `json:"source_url"`
	Tool      domain.EditTool `json:"tool"`
	Outfit    string          `json:"outfit,omitempty"`
	Features  map[string]int  `json:"features,omitempty"`
	Prompt    string          `json:"prompt,omitempty"`
	Model     string          `json:"model,omitempty"`
	Quality   domain.Quality  `json:"quality,omitempty"`
}

func (a *App) GeneratorOptions(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"models":    domain.Models,
		"sizes":     domain.OutputSizes,
		"qualities": domain.QualityPresets,
		"defaults": map[string]any{
			"model":   domain.DefaultModel,
			"quality": domain.DefaultQuality,
			"width":   domain.DefaultWidth,
			"height":  domain.DefaultHeight,
		},
	})
}

func (a *App) GeneratorStart(w http.ResponseWriter, r *http.Request) {
	userID := a.requireUser(w, r)
	if userID == "" {
		return
	}
	var req domain.GenerationRequest
	if !a.decode(w, r, &req) {
		return
	}
	req.Edit = nil
	job, err := a.Jobs.StartGeneration(r.Context(), jobs.Scope(userID, jobs.ScreenGenerator), userID, req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.Logger.Info().Str("job_id", job.ID).Str("user_id", userID).Msg("generation started")
	a.json(w, http.StatusAccepted, generationResponse(job))
}

func (a *App) EditorOptions(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"tools": []domain.EditTool{
			domain.EditToolCrop, domain.EditToolMask, domain.EditToolOutfit,
			domain.EditToolFeatures, domain.EditToolPrompt,
		},
		"outfits":  domain.OutfitPresets,
		"features": domain.FacialFeatures,
	})
}

func (a *App) EditorStart(w http.ResponseWriter, r *http.Request) {
	userID := a.requireUser(w, r)
	if userID == "" {
		return
	}
	var req editorRequest
	if !a.decode(w, r, &req) {
		return
	}
	gen := domain.GenerationRequest{
		Prompt:  req.Prompt,
		Model:   req.Model,
		Quality: req.Quality,
		Edit: &domain.EditSpec{
			SourceURL: req.SourceURL,
			Tool:      req.Tool,
			Outfit:    req.Outfit,
			Features:  req.Features,
		},
	}
	job, err := a.Jobs.StartGeneration(r.Context(), jobs.Scope(userID, jobs.ScreenEditor), userID, gen)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.Logger.Info().Str("job_id", job.ID).Str("user_id", userID).Str("tool", string(req.Tool)).Msg("edit started")
	a.json(w, http.StatusAccepted, generationResponse(job))
}
