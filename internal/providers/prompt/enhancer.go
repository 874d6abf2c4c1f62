package prompt

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// EnhanceSuffix is appended by the static enhancer.
const EnhanceSuffix = "highly detailed, professional photography, 8k resolution, masterpiece"

// Result is an enhanced prompt together with the provider that produced it.
type Result struct {
	Prompt         string `json:"prompt"`
	Provider       string `json:"provider"`
	FallbackReason string `json:"fallback_reason,omitempty"`
}

// Enhancer rewrites a user prompt into a richer generation prompt.
type Enhancer interface {
	Enhance(ctx context.Context, prompt string) (*Result, error)
}

type StaticEnhancer struct{}

func NewStaticEnhancer() *StaticEnhancer {
	return &StaticEnhancer{}
}

// Enhance appends the quality suffix once. Prompts that already end with it
// are returned unchanged.
func (s *StaticEnhancer) Enhance(ctx context.Context, prompt string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text := strings.TrimRight(strings.TrimSpace(prompt), ", ")
	if text == "" {
		return &Result{Prompt: EnhanceSuffix, Provider: staticProviderName}, nil
	}
	fold := cases.Fold()
	if strings.HasSuffix(fold.String(text), fold.String(EnhanceSuffix)) {
		return &Result{Prompt: text, Provider: staticProviderName}, nil
	}
	return &Result{Prompt: text + ", " + EnhanceSuffix, Provider: staticProviderName}, nil
}

// Title renders a prompt as a display title, e.g. for generated asset names.
func Title(prompt string) string {
	words := strings.Fields(prompt)
	if len(words) > 6 {
		words = words[:6]
	}
	return cases.Title(language.English).String(strings.Join(words, " "))
}

var _ Enhancer = (*StaticEnhancer)(nil)
