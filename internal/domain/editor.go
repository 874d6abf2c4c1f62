package domain

import (
	"fmt"
	"sort"
	"strings"
)

// EditTool enumerates image editor tools.
type EditTool string

const (
	EditToolOutfit   EditTool = "outfit"
	EditToolFeatures EditTool = "features"
	EditToolCrop     EditTool = "crop"
	EditToolMask     EditTool = "mask"
	EditToolPrompt   EditTool = "prompt"
)

var editTools = map[EditTool]struct{}{
	EditToolOutfit:   {},
	EditToolFeatures: {},
	EditToolCrop:     {},
	EditToolMask:     {},
	EditToolPrompt:   {},
}

// OutfitPreset is a predefined outfit applied by the outfit tool.
type OutfitPreset struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// OutfitPresets lists the outfit presets.
var OutfitPresets = []OutfitPreset{
	{ID: "casual", Name: "Casual", Category: "Everyday"},
	{ID: "formal", Name: "Formal", Category: "Business"},
	{ID: "summer", Name: "Summer", Category: "Seasonal"},
	{ID: "athletic", Name: "Athletic", Category: "Sports"},
}

// FacialFeatures lists the adjustable features of the features tool.
var FacialFeatures = []string{"eye_size", "nose_shape", "lip_fullness", "jawline"}

// EditSpec describes an editor operation on an existing image.
type EditSpec struct {
	SourceURL string         `json:"source_url"`
	Tool      EditTool       `json:"tool"`
	Outfit    string         `json:"outfit,omitempty"`
	Features  map[string]int `json:"features,omitempty"`
}

// Validate checks the editor preconditions. prompt is the request prompt,
// required only by the prompt tool.
func (e EditSpec) Validate(prompt string) error {
	if strings.TrimSpace(e.SourceURL) == "" {
		return Invalid(CodeMissingSource, "edit.source_url", "source image is required")
	}
	if _, ok := editTools[e.Tool]; !ok {
		return Invalid(CodeUnknownTool, "edit.tool", string(e.Tool))
	}
	switch e.Tool {
	case EditToolOutfit:
		if _, ok := lookupOutfit(e.Outfit); !ok {
			return Invalid(CodeUnknownOutfit, "edit.outfit", e.Outfit)
		}
	case EditToolFeatures:
		for name, v := range e.Features {
			if !knownFeature(name) || v < 0 || v > 100 {
				return Invalid(CodeInvalidFeature, "edit.features", name)
			}
		}
	case EditToolPrompt:
		if prompt == "" {
			return Invalid(CodeEmptyPrompt, "prompt", "prompt is required")
		}
	}
	return nil
}

// Instruction renders the edit as a provider instruction.
func (e EditSpec) Instruction(prompt string) string {
	switch e.Tool {
	case EditToolOutfit:
		o, _ := lookupOutfit(e.Outfit)
		return strings.TrimSpace(fmt.Sprintf("change the outfit to a %s %s look. %s", strings.ToLower(o.Category), strings.ToLower(o.Name), prompt))
	case EditToolFeatures:
		names := make([]string, 0, len(e.Features))
		for name := range e.Features {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%d", name, e.Features[name]))
		}
		return strings.TrimSpace("adjust facial features " + strings.Join(parts, ", ") + ". " + prompt)
	default:
		return strings.TrimSpace(fmt.Sprintf("%s: %s", e.Tool, prompt))
	}
}

func lookupOutfit(id string) (OutfitPreset, bool) {
	for _, o := range OutfitPresets {
		if o.ID == id {
			return o, true
		}
	}
	return OutfitPreset{}, false
}

func knownFeature(name string) bool {
	for _, f := range FacialFeatures {
		if f == name {
			return true
		}
	}
	return false
}
