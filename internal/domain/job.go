package domain

import (
	"fmt"
	"time"
)

// JobKind enumerates the simulated long-running operations.
type JobKind string

const (
	JobKindGeneration JobKind = "generation"
	JobKindTraining   JobKind = "training"
)

// JobStatus enumerates job lifecycle states.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether no further transition is possible.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// ProgressComplete is the only progress value a completed job may hold.
const ProgressComplete = 100

var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusPending: {JobStatusRunning},
	JobStatusRunning: {JobStatusCompleted, JobStatusFailed, JobStatusPending},
}

// Job encapsulates the lifecycle of a generation or training run.
type Job struct {
	ID               string
	Kind             JobKind
	Scope            string
	OwnerID          string
	Status           JobStatus
	Progress         int
	Result           *string
	ErrorMessage     string
	Attempts         int
	Params           []byte
	EstimatedSeconds int
	CreatedAt        time.Time
	UpdatedAt        time.Time
	StartedAt        *time.Time
	FinishedAt       *time.Time
}

// NewJob returns a pending job.
func NewJob(id string, kind JobKind, scope, ownerID string, params []byte, now time.Time) *Job {
	return &Job{
		ID:        id,
		Kind:      kind,
		Scope:     scope,
		OwnerID:   ownerID,
		Status:    JobStatusPending,
		Params:    params,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CanTransition reports whether the state machine allows from -> to.
func CanTransition(from, to JobStatus) bool {
	for _, next := range jobTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (j *Job) transition(to JobStatus, now time.Time) error {
	if !CanTransition(j.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, to)
	}
	j.Status = to
	j.UpdatedAt = now
	return nil
}

// Start moves a pending job to running with zero progress.
func (j *Job) Start(now time.Time) error {
	if err := j.transition(JobStatusRunning, now); err != nil {
		return err
	}
	j.Progress = 0
	j.ErrorMessage = ""
	started := now
	j.StartedAt = &started
	return nil
}

// Advance raises progress of a running job. Lower values are ignored and the
// value is capped below ProgressComplete; only Complete may reach 100.
func (j *Job) Advance(progress int, now time.Time) bool {
	if j.Status != JobStatusRunning {
		return false
	}
	if progress > ProgressComplete-1 {
		progress = ProgressComplete - 1
	}
	if progress <= j.Progress {
		return false
	}
	j.Progress = progress
	j.UpdatedAt = now
	return true
}

// Complete marks the job completed with its produced artifact reference.
func (j *Job) Complete(result string, now time.Time) error {
	if err := j.transition(JobStatusCompleted, now); err != nil {
		return err
	}
	j.Progress = ProgressComplete
	j.Result = &result
	j.EstimatedSeconds = 0
	finished := now
	j.FinishedAt = &finished
	return nil
}

// Fail marks the job failed, keeping the progress it reached.
func (j *Job) Fail(message string, now time.Time) error {
	if err := j.transition(JobStatusFailed, now); err != nil {
		return err
	}
	j.ErrorMessage = message
	j.EstimatedSeconds = 0
	finished := now
	j.FinishedAt = &finished
	return nil
}

// Reset returns a cancelled running job to pending.
func (j *Job) Reset(now time.Time) error {
	if err := j.transition(JobStatusPending, now); err != nil {
		return err
	}
	j.Progress = 0
	j.EstimatedSeconds = 0
	j.StartedAt = nil
	return nil
}

// Clone returns a deep copy safe to hand to other goroutines.
func (j Job) Clone() Job {
	out := j
	if j.Result != nil {
		r := *j.Result
		out.Result = &r
	}
	if j.StartedAt != nil {
		t := *j.StartedAt
		out.StartedAt = &t
	}
	if j.FinishedAt != nil {
		t := *j.FinishedAt
		out.FinishedAt = &t
	}
	if j.Params != nil {
		out.Params = append([]byte(nil), j.Params...)
	}
	return out
}
