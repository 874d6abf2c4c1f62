package handlers

import (
	"net/http"
	"strings"

	"studio/internal/domain"
	"studio/internal/providers/prompt"
)

type promptEnhanceRequest struct {
	Prompt string `json:"prompt"`
}

type promptEnhanceResponse struct {
	Original       string `json:"original"`
	Prompt         string `json:"prompt"`
	Title          string `json:"title"`
	Provider       string `json:"provider"`
	FallbackReason string `json:"fallback_reason,omitempty"`
}

func (a *App) PromptEnhance(w http.ResponseWriter, r *http.Request) {
	var req promptEnhanceRequest
	if !a.decode(w, r, &req) {
		return
	}
	original := strings.TrimSpace(req.Prompt)
	if original == "" {
		a.fail(w, r, domain.Invalid(domain.CodeEmptyPrompt, "prompt", "prompt is required"))
		return
	}
	res, err := a.Enhancer.Enhance(r.Context(), original)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, promptEnhanceResponse{
		Original:       original,
		Prompt:         res.Prompt,
		Title:          prompt.Title(original),
		Provider:       res.Provider,
		FallbackReason: res.FallbackReason,
	})
}
