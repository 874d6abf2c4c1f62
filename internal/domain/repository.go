package domain

import "context"

// JobRepository persists job state. Implementations must store the full job
// on Update; the service is the only writer for running jobs.
type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	Update(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, jobID string) (*Job, error)
	ListByScope(ctx context.Context, scope string, limit int) ([]Job, error)
	// FailRunning marks every running job failed and returns how many changed.
	// It is used at startup, when no goroutine can still own those jobs.
	FailRunning(ctx context.Context, reason string) (int, error)
}
