package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"studio/internal/domain"
)

// TrainingExecutor simulates a character training run with periodic progress.
// Interval is the tick of the standard tier; other tiers tick proportionally
// to their step count.
type TrainingExecutor struct {
	stepped      SteppedExecutor
	modelBaseURL string
}

type TrainingOptions struct {
	Step         int
	Interval     time.Duration
	ModelBaseURL string
}

func NewTrainingExecutor(opts TrainingOptions) *TrainingExecutor {
	base := strings.TrimRight(opts.ModelBaseURL, "/")
	if base == "" {
		base = "https://api.example.com/v1/models"
	}
	t := &TrainingExecutor{modelBaseURL: base}
	t.stepped = SteppedExecutor{Step: opts.Step, Interval: opts.Interval, Pace: t.pace, Produce: t.produce}
	return t
}

func (t *TrainingExecutor) Execute(ctx context.Context, job domain.Job, report ProgressFunc) (string, error) {
	return t.stepped.Execute(ctx, job, report)
}

func (t *TrainingExecutor) Estimate(job domain.Job) time.Duration {
	return t.stepped.Estimate(job)
}

func (t *TrainingExecutor) pace(job domain.Job) time.Duration {
	base := t.stepped.interval()
	var req domain.TrainingRequest
	if err := json.Unmarshal(job.Params, &req); err != nil {
		return base
	}
	if req.Tier == "" {
		req.Tier = domain.DefaultTier
	}
	preset, ok := domain.LookupTier(req.Tier)
	standard, _ := domain.LookupTier(domain.TierStandard)
	if !ok || standard.Steps <= 0 {
		return base
	}
	return base * time.Duration(preset.Steps) / time.Duration(standard.Steps)
}

func (t *TrainingExecutor) produce(_ context.Context, job domain.Job) (string, error) {
	var req domain.TrainingRequest
	if err := json.Unmarshal(job.Params, &req); err != nil {
		return "", fmt.Errorf("decode training params: %w", err)
	}
	return fmt.Sprintf("%s/%s/%s", t.modelBaseURL, url.PathEscape(job.ID), url.PathEscape(req.ModelName)), nil
}

var (
	_ Executor  = (*TrainingExecutor)(nil)
	_ Estimator = (*TrainingExecutor)(nil)
)
