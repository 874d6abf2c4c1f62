package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"studio/internal/domain"
	"studio/internal/providers/image"
	"studio/internal/providers/prompt"
)

// GenerationExecutor renders generation and editor jobs through an image
// generator after a quality-dependent delay.
type GenerationExecutor struct {
	generator image.Generator
	enhancer  prompt.Enhancer
	delays    map[domain.Quality]time.Duration
	logger    zerolog.Logger
}

type GenerationOptions struct {
	Generator image.Generator
	Enhancer  prompt.Enhancer
	// DelayScale multiplies the quality preset delays. Zero keeps them as is.
	DelayScale float64
	Logger     zerolog.Logger
}

func NewGenerationExecutor(opts GenerationOptions) (*GenerationExecutor, error) {
	if opts.Generator == nil {
		return nil, errors.New("jobs: image generator is required")
	}
	enhancer := opts.Enhancer
	if enhancer == nil {
		enhancer = prompt.NewStaticEnhancer()
	}
	scale := opts.DelayScale
	if scale <= 0 {
		scale = 1
	}
	delays := make(map[domain.Quality]time.Duration, len(domain.QualityPresets))
	for _, q := range domain.QualityPresets {
		delays[q.ID] = time.Duration(float64(q.Delay) * scale)
	}
	return &GenerationExecutor{
		generator: opts.Generator,
		enhancer:  enhancer,
		delays:    delays,
		logger:    opts.Logger,
	}, nil
}

func (g *GenerationExecutor) Execute(ctx context.Context, job domain.Job, report ProgressFunc) (string, error) {
	var req domain.GenerationRequest
	if err := json.Unmarshal(job.Params, &req); err != nil {
		return "", fmt.Errorf("decode generation params: %w", err)
	}
	delayed := DelayedExecutor{
		Delay: func(domain.Job) time.Duration { return g.delays[req.Quality] },
		Produce: func(ctx context.Context, job domain.Job) (string, error) {
			return g.render(ctx, job, req)
		},
	}
	return delayed.Execute(ctx, job, report)
}

func (g *GenerationExecutor) render(ctx context.Context, job domain.Job, req domain.GenerationRequest) (string, error) {
	text := req.Prompt
	workflow := image.Workflow{Mode: image.WorkflowModeGenerate}
	if req.Edit != nil {
		text = req.Edit.Instruction(req.Prompt)
		workflow = image.Workflow{
			Mode:      image.NormalizeWorkflowMode(string(req.Edit.Tool)),
			SourceURL: req.Edit.SourceURL,
			Outfit:    req.Edit.Outfit,
			Features:  req.Edit.Features,
		}
	}
	if req.EnhancePrompt {
		res, err := g.enhancer.Enhance(ctx, text)
		if err != nil {
			return "", fmt.Errorf("enhance prompt: %w", err)
		}
		g.logger.Debug().Str("job_id", job.ID).Str("provider", res.Provider).Msg("jobs: prompt enhanced")
		text = res.Prompt
	}
	assets, err := g.generator.Generate(ctx, image.GenerateRequest{
		Prompt:         text,
		NegativePrompt: req.NegativePrompt,
		Model:          req.Model,
		Quality:        string(req.Quality),
		Width:          req.Width,
		Height:         req.Height,
		Quantity:       1,
		RequestID:      job.ID,
		Workflow:       workflow,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	if len(assets) == 0 || assets[0].URL == "" {
		return "", fmt.Errorf("%w: no asset returned", domain.ErrProviderFailure)
	}
	return assets[0].URL, nil
}

var _ Executor = (*GenerationExecutor)(nil)
