package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studio/internal/domain"
)

// ErrTimeout is returned when a single attempt exceeds RetryPolicy.Timeout.
var ErrTimeout = errors.New("job attempt timed out")

// RetryPolicy bounds how long and how often a job is attempted.
type RetryPolicy struct {
	MaxAttempts int
	Timeout     time.Duration
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Timeout:     10 * time.Minute,
		BaseBackoff: time.Second,
		MaxBackoff:  30 * time.Second,
	}
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts <= 0 {
		return 1
	}
	return p.MaxAttempts
}

// Backoff returns the wait before the attempt following attempt n.
func (p RetryPolicy) Backoff(n int) time.Duration {
	if p.BaseBackoff <= 0 || n <= 0 {
		return 0
	}
	d := p.BaseBackoff
	for i := 1; i < n; i++ {
		d *= 2
		if p.MaxBackoff > 0 && d >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		return p.MaxBackoff
	}
	return d
}

// Do runs fn until it succeeds, the attempts are exhausted or ctx ends.
// Validation errors are not retried.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	var lastErr error
	for attempt := 1; attempt <= p.attempts(); attempt++ {
		lastErr = p.once(ctx, attempt, fn)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(lastErr, domain.ErrValidation) || attempt == p.attempts() {
			break
		}
		if err := sleep(ctx, p.Backoff(attempt)); err != nil {
			return err
		}
	}
	return lastErr
}

func (p RetryPolicy) once(ctx context.Context, attempt int, fn func(ctx context.Context, attempt int) error) error {
	if p.Timeout <= 0 {
		return fn(ctx, attempt)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	err := fn(attemptCtx, attempt)
	if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, p.Timeout)
	}
	return err
}
