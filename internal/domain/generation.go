package domain

import (
	"strings"
	"time"
)

// Quality selects the generation quality preset.
type Quality string

const (
	QualityBasic    Quality = "basic"
	QualityStandard Quality = "standard"
	QualityHigh     Quality = "high"
)

// QualityPreset describes a quality option offered to clients.
type QualityPreset struct {
	ID          Quality       `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Speed       string        `json:"speed"`
	Delay       time.Duration `json:"-"`
}

// QualityPresets lists the supported qualities in display order.
var QualityPresets = []QualityPreset{
	{ID: QualityBasic, Name: "Basic", Description: "Fast generation", Speed: "10-15s", Delay: 2 * time.Second},
	{ID: QualityStandard, Name: "Standard", Description: "Balanced quality", Speed: "20-30s", Delay: 3 * time.Second},
	{ID: QualityHigh, Name: "High", Description: "Maximum quality", Speed: "45-60s", Delay: 4 * time.Second},
}

// LookupQuality returns the preset for q.
func LookupQuality(q Quality) (QualityPreset, bool) {
	for _, p := range QualityPresets {
		if p.ID == q {
			return p, true
		}
	}
	return QualityPreset{}, false
}

// Model describes an image model offered by the generator.
type Model struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Speed       string  `json:"speed"`
	Quality     Quality `json:"quality"`
}

// Models lists the supported image models.
var Models = []Model{
	{ID: "sdxl", Name: "SDXL", Description: "Stable Diffusion XL - High quality, versatile", Speed: "medium", Quality: QualityHigh},
	{ID: "flux", Name: "FLUX", Description: "Latest model - Best quality, photorealistic", Speed: "slow", Quality: QualityHigh},
	{ID: "turbo", Name: "Turbo", Description: "Fast generation - Good for previews", Speed: "fast", Quality: QualityStandard},
}

// LookupModel returns the model with the given id.
func LookupModel(id string) (Model, bool) {
	for _, m := range Models {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// OutputSize is a named output resolution.
type OutputSize struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Category string `json:"category"`
}

// OutputSizes lists the supported output resolutions.
var OutputSizes = []OutputSize{
	{ID: "sq_512", Name: "512×512", Width: 512, Height: 512, Category: "square"},
	{ID: "sq_1024", Name: "1024×1024", Width: 1024, Height: 1024, Category: "square"},
	{ID: "pt_512", Name: "512×768", Width: 512, Height: 768, Category: "portrait"},
	{ID: "pt_1024", Name: "1024×1536", Width: 1024, Height: 1536, Category: "portrait"},
	{ID: "ls_768", Name: "768×512", Width: 768, Height: 512, Category: "landscape"},
	{ID: "ls_1536", Name: "1536×1024", Width: 1536, Height: 1024, Category: "landscape"},
}

const (
	DefaultModel   = "sdxl"
	DefaultQuality = QualityStandard
	DefaultWidth   = 1024
	DefaultHeight  = 1024
)

// GenerationRequest is the contract accepted by the generation backend.
type GenerationRequest struct {
	Prompt         string    `json:"prompt"`
	NegativePrompt string    `json:"negative_prompt,omitempty"`
	Model          string    `json:"model"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	Quality        Quality   `json:"quality"`
	EnhancePrompt  bool      `json:"enhance_prompt,omitempty"`
	Edit           *EditSpec `json:"edit,omitempty"`
}

// Normalize trims input and applies defaults for omitted fields.
func (r *GenerationRequest) Normalize() {
	r.Prompt = strings.TrimSpace(r.Prompt)
	r.NegativePrompt = strings.TrimSpace(r.NegativePrompt)
	r.Model = strings.ToLower(strings.TrimSpace(r.Model))
	if r.Model == "" {
		r.Model = DefaultModel
	}
	r.Quality = Quality(strings.ToLower(strings.TrimSpace(string(r.Quality))))
	if r.Quality == "" {
		r.Quality = DefaultQuality
	}
	if r.Width == 0 && r.Height == 0 {
		r.Width, r.Height = DefaultWidth, DefaultHeight
	}
}

// Validate checks the preconditions for starting a generation job. It expects
// a normalized request.
func (r GenerationRequest) Validate() error {
	if r.Edit != nil {
		if err := r.Edit.Validate(r.Prompt); err != nil {
			return err
		}
	} else if r.Prompt == "" {
		return Invalid(CodeEmptyPrompt, "prompt", "prompt is required")
	}
	if _, ok := LookupModel(r.Model); !ok {
		return Invalid(CodeUnknownModel, "model", r.Model)
	}
	if _, ok := LookupQuality(r.Quality); !ok {
		return Invalid(CodeUnknownQuality, "quality", string(r.Quality))
	}
	if !sizeSupported(r.Width, r.Height) {
		return Invalid(CodeInvalidSize, "width", "unsupported output size")
	}
	return nil
}

func sizeSupported(w, h int) bool {
	for _, s := range OutputSizes {
		if s.Width == w && s.Height == h {
			return true
		}
	}
	return false
}

// GenerationResponse is returned for generation jobs.
type GenerationResponse struct {
	ID       string    `json:"id"`
	Status   JobStatus `json:"status"`
	Progress *int      `json:"progress,omitempty"`
	ImageURL string    `json:"image_url,omitempty"`
	Error    string    `json:"error,omitempty"`
}
