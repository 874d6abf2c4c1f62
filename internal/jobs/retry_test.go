package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"studio/internal/domain"
)

func TestRetryPolicyBackoff(t *testing.T) {
	p := RetryPolicy{BaseBackoff: time.Second, MaxBackoff: 5 * time.Second}
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 0, want: 0},
		{attempt: 1, want: time.Second},
		{attempt: 2, want: 2 * time.Second},
		{attempt: 3, want: 4 * time.Second},
		{attempt: 4, want: 5 * time.Second},
		{attempt: 10, want: 5 * time.Second},
	}
	for _, tc := range tests {
		if got := p.Backoff(tc.attempt); got != tc.want {
			t.Fatalf("Backoff(%d) = %s, want %s", tc.attempt, got, tc.want)
		}
	}
}

func TestRetryPolicyDo(t *testing.T) {
	errFlaky := errors.New("flaky")
	tests := []struct {
		name      string
		failUntil int
		err       error
		wantCalls int
		wantErr   error
	}{
		{name: "first try", failUntil: 0, wantCalls: 1},
		{name: "succeeds on third", failUntil: 2, err: errFlaky, wantCalls: 3},
		{name: "exhausted", failUntil: 5, err: errFlaky, wantCalls: 3, wantErr: errFlaky},
		{name: "validation not retried", failUntil: 5, err: domain.Invalid(domain.CodeEmptyPrompt, "prompt", ""), wantCalls: 1, wantErr: domain.ErrValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := RetryPolicy{MaxAttempts: 3, BaseBackoff: time.Millisecond}
			calls := 0
			err := p.Do(context.Background(), func(context.Context, int) error {
				calls++
				if calls <= tc.failUntil {
					return tc.err
				}
				return nil
			})
			if calls != tc.wantCalls {
				t.Fatalf("calls = %d, want %d", calls, tc.wantCalls)
			}
			if tc.wantErr == nil && err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestRetryPolicyStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := RetryPolicy{MaxAttempts: 5, BaseBackoff: time.Hour}
	calls := 0
	err := p.Do(ctx, func(context.Context, int) error {
		calls++
		cancel()
		return errors.New("boom")
	})
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Fatalf("Do = %v after %d calls", err, calls)
	}
}
