package image

import (
	"context"
	"strings"
)

// WorkflowMode enumerates supported editing modes for image generation.
type WorkflowMode string

const (
	WorkflowModeGenerate WorkflowMode = "generate"
	WorkflowModeOutfit   WorkflowMode = "outfit"
	WorkflowModeFeatures WorkflowMode = "features"
	WorkflowModeCrop     WorkflowMode = "crop"
	WorkflowModeMask     WorkflowMode = "mask"
	WorkflowModePrompt   WorkflowMode = "prompt"
)

// Workflow conveys how the provider should manipulate the source image.
type Workflow struct {
	Mode      WorkflowMode
	SourceURL string
	Outfit    string
	Features  map[string]int
}

// GenerateRequest describes a normalized request passed to any image provider.
type GenerateRequest struct {
	Prompt         string
	NegativePrompt string
	Model          string
	Quality        string
	Width          int
	Height         int
	Quantity       int
	RequestID      string
	Workflow       Workflow
}

// Asset represents a generated or edited image.
type Asset struct {
	URL    string
	Format string
	Width  int
	Height int
}

// Generator is the contract implemented by all image providers.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) ([]Asset, error)
}

// NormalizeWorkflowMode sanitizes free-form user input into a supported mode.
func NormalizeWorkflowMode(mode string) WorkflowMode {
	switch WorkflowMode(strings.ToLower(strings.TrimSpace(mode))) {
	case WorkflowModeOutfit:
		return WorkflowModeOutfit
	case WorkflowModeFeatures:
		return WorkflowModeFeatures
	case WorkflowModeCrop:
		return WorkflowModeCrop
	case WorkflowModeMask:
		return WorkflowModeMask
	case WorkflowModePrompt:
		return WorkflowModePrompt
	default:
		return WorkflowModeGenerate
	}
}
