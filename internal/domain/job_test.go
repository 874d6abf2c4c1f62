package domain

import (
	"errors"
	"testing"
	"time"
)

func TestJobLifecycle(t *testing.T) {
	now := time.Now()
	job := NewJob("job-1", JobKindTraining, "user:training", "user", nil, now)
	if job.Status != JobStatusPending {
		t.Fatalf("new job status = %q, want pending", job.Status)
	}
	if err := job.Start(now); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if !job.Advance(40, now) {
		t.Fatalf("Advance(40) should change progress")
	}
	if job.Advance(20, now) {
		t.Fatalf("Advance(20) should be ignored after 40")
	}
	if job.Progress != 40 {
		t.Fatalf("progress = %d, want 40", job.Progress)
	}
	job.Advance(250, now)
	if job.Progress != 99 {
		t.Fatalf("progress = %d, want capped at 99 while running", job.Progress)
	}
	if err := job.Complete("https://cdn.example.com/model.safetensors", now); err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if job.Status != JobStatusCompleted || job.Progress != ProgressComplete {
		t.Fatalf("completed job = %s/%d, want completed/100", job.Status, job.Progress)
	}
	if job.Result == nil || job.FinishedAt == nil {
		t.Fatalf("completed job missing result or finish time")
	}
	if job.Advance(10, now) {
		t.Fatalf("Advance on a terminal job should be ignored")
	}
}

func TestJobTransitions(t *testing.T) {
	tests := []struct {
		from JobStatus
		to   JobStatus
		want bool
	}{
		{JobStatusPending, JobStatusRunning, true},
		{JobStatusPending, JobStatusCompleted, false},
		{JobStatusRunning, JobStatusCompleted, true},
		{JobStatusRunning, JobStatusFailed, true},
		{JobStatusRunning, JobStatusPending, true},
		{JobStatusCompleted, JobStatusRunning, false},
		{JobStatusFailed, JobStatusPending, false},
	}
	for _, tc := range tests {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			if got := CanTransition(tc.from, tc.to); got != tc.want {
				t.Fatalf("CanTransition() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestJobCompleteRequiresRunning(t *testing.T) {
	job := NewJob("job-2", JobKindGeneration, "s", "u", nil, time.Now())
	err := job.Complete("x", time.Now())
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Complete() on pending error = %v, want ErrInvalidTransition", err)
	}
	if job.Progress != 0 || job.Result != nil {
		t.Fatalf("rejected transition mutated job: %+v", job)
	}
}

func TestJobResetClearsProgress(t *testing.T) {
	now := time.Now()
	job := NewJob("job-3", JobKindTraining, "s", "u", nil, now)
	_ = job.Start(now)
	job.Advance(30, now)
	if err := job.Reset(now); err != nil {
		t.Fatalf("Reset() error: %v", err)
	}
	if job.Status != JobStatusPending || job.Progress != 0 || job.StartedAt != nil {
		t.Fatalf("reset job = %+v, want pending/0", job)
	}
}

func TestJobCloneIsIndependent(t *testing.T) {
	now := time.Now()
	job := NewJob("job-4", JobKindGeneration, "s", "u", []byte(`{"a":1}`), now)
	_ = job.Start(now)
	_ = job.Complete("first", now)
	clone := job.Clone()
	*clone.Result = "changed"
	clone.Params[0] = '['
	if *job.Result != "first" || job.Params[0] != '{' {
		t.Fatalf("Clone() shares memory with original")
	}
}
