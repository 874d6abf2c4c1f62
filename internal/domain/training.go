package domain

import "strings"

const (
	MinTrainingImages = 10
	MaxTrainingImages = 30
)

// Tier is a named training-intensity preset.
type Tier string

const (
	TierQuick        Tier = "quick"
	TierStandard     Tier = "standard"
	TierProfessional Tier = "professional"
)

// TierPreset describes a training tier offered to clients.
type TierPreset struct {
	ID          Tier     `json:"id"`
	Name        string   `json:"name"`
	Steps       int      `json:"steps"`
	Duration    string   `json:"duration"`
	Price       string   `json:"price"`
	Features    []string `json:"features"`
	Recommended bool     `json:"recommended,omitempty"`
}

// TierPresets lists training tiers in display order.
var TierPresets = []TierPreset{
	{ID: TierQuick, Name: "Quick", Steps: 600, Duration: "15-20 min", Price: "$5", Features: []string{"Basic quality", "Fast processing", "Standard features"}},
	{ID: TierStandard, Name: "Standard", Steps: 1200, Duration: "30-45 min", Price: "$10", Features: []string{"Good quality", "Balanced speed", "Enhanced features"}, Recommended: true},
	{ID: TierProfessional, Name: "Professional", Steps: 2000, Duration: "60-90 min", Price: "$20", Features: []string{"High quality", "Premium features", "Advanced customization"}},
}

// LookupTier returns the preset for t.
func LookupTier(t Tier) (TierPreset, bool) {
	for _, p := range TierPresets {
		if p.ID == t {
			return p, true
		}
	}
	return TierPreset{}, false
}

const (
	DefaultTier      = TierStandard
	DefaultModelName = "custom-character"
)

// TrainingRequest is the contract accepted by the training backend.
type TrainingRequest struct {
	Images    []string `json:"images"`
	Tier      Tier     `json:"tier"`
	ModelName string   `json:"model_name"`
}

// Normalize applies defaults for omitted fields.
func (r *TrainingRequest) Normalize() {
	r.Tier = Tier(strings.ToLower(strings.TrimSpace(string(r.Tier))))
	if r.Tier == "" {
		r.Tier = DefaultTier
	}
	r.ModelName = strings.TrimSpace(r.ModelName)
	if r.ModelName == "" {
		r.ModelName = DefaultModelName
	}
}

// Validate checks the preconditions for starting a training job.
func (r TrainingRequest) Validate() error {
	if len(r.Images) < MinTrainingImages {
		return Invalid(CodeInsufficientImages, "images", "at least 10 images are required")
	}
	if len(r.Images) > MaxTrainingImages {
		return Invalid(CodeTooManyImages, "images", "at most 30 images are allowed")
	}
	for _, uri := range r.Images {
		if strings.TrimSpace(uri) == "" {
			return Invalid(CodeEmptyImageURI, "images", "image uri is empty")
		}
	}
	if _, ok := LookupTier(r.Tier); !ok {
		return Invalid(CodeUnknownTier, "tier", string(r.Tier))
	}
	return nil
}

// TrainingResponse is returned for training jobs.
type TrainingResponse struct {
	ID            string    `json:"id"`
	Status        JobStatus `json:"status"`
	Progress      int       `json:"progress"`
	EstimatedTime int       `json:"estimated_time"`
	ModelURL      string    `json:"model_url,omitempty"`
	Error         string    `json:"error,omitempty"`
}
