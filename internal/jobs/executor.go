package jobs

import (
	"context"
	"errors"
	"math"
	"time"

	"studio/internal/domain"
)

// ProgressFunc reports intermediate progress. It must be called from the
// goroutine running Execute.
type ProgressFunc func(progress int)

// Executor performs the simulated work behind a job and returns the produced
// artifact reference.
type Executor interface {
	Execute(ctx context.Context, job domain.Job, report ProgressFunc) (string, error)
}

// Estimator is implemented by executors that can predict the remaining time.
type Estimator interface {
	Estimate(job domain.Job) time.Duration
}

// ProduceFunc builds the job result once the simulated work is done.
type ProduceFunc func(ctx context.Context, job domain.Job) (string, error)

var errNoProducer = errors.New("jobs: executor has no producer")

// DelayedExecutor jumps from 0 to 100 after a single delay.
type DelayedExecutor struct {
	Delay   func(job domain.Job) time.Duration
	Produce ProduceFunc
}

func (d DelayedExecutor) Execute(ctx context.Context, job domain.Job, _ ProgressFunc) (string, error) {
	if d.Produce == nil {
		return "", errNoProducer
	}
	var delay time.Duration
	if d.Delay != nil {
		delay = d.Delay(job)
	}
	if err := sleep(ctx, delay); err != nil {
		return "", err
	}
	return d.Produce(ctx, job)
}

// SteppedExecutor raises progress by Step every Interval until it reaches
// 100, starting from the progress the job already holds. Pace, when set and
// positive for a job, replaces Interval for that job.
type SteppedExecutor struct {
	Step     int
	Interval time.Duration
	Pace     func(job domain.Job) time.Duration
	Produce  ProduceFunc
}

const (
	DefaultStep         = 2
	DefaultStepInterval = 500 * time.Millisecond
)

func (s SteppedExecutor) step() int {
	if s.Step <= 0 {
		return DefaultStep
	}
	return s.Step
}

func (s SteppedExecutor) interval() time.Duration {
	if s.Interval <= 0 {
		return DefaultStepInterval
	}
	return s.Interval
}

func (s SteppedExecutor) intervalFor(job domain.Job) time.Duration {
	if s.Pace != nil {
		if d := s.Pace(job); d > 0 {
			return d
		}
	}
	return s.interval()
}

func (s SteppedExecutor) Execute(ctx context.Context, job domain.Job, report ProgressFunc) (string, error) {
	if s.Produce == nil {
		return "", errNoProducer
	}
	ticker := time.NewTicker(s.intervalFor(job))
	defer ticker.Stop()

	progress := job.Progress
	for progress < domain.ProgressComplete {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
		progress += s.step()
		if progress < domain.ProgressComplete && report != nil {
			report(progress)
		}
	}
	return s.Produce(ctx, job)
}

// Estimate returns the time left before the job's progress reaches 100.
func (s SteppedExecutor) Estimate(job domain.Job) time.Duration {
	remaining := domain.ProgressComplete - job.Progress
	if remaining <= 0 {
		return 0
	}
	ticks := int(math.Ceil(float64(remaining) / float64(s.step())))
	return time.Duration(ticks) * s.intervalFor(job)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var (
	_ Executor  = DelayedExecutor{}
	_ Executor  = SteppedExecutor{}
	_ Estimator = SteppedExecutor{}
)
