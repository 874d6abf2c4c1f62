package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/sqlinline"
)

// JobRepositoryPG implements domain.JobRepository on PostgreSQL through the
// marker-checked SQL runner.
type JobRepositoryPG struct {
	db infra.SQLExecutor
}

// NewJobRepository creates a new job repository backed by PostgreSQL.
func NewJobRepository(db infra.SQLExecutor) *JobRepositoryPG {
	return &JobRepositoryPG{db: db}
}

// EnsureSchema creates the jobs table when missing.
func (r *JobRepositoryPG) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, sqlinline.QJobsEnsureSchema)
	return err
}

// Create inserts a new job record.
func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.Job) error {
	_, err := r.db.Exec(ctx, sqlinline.QJobInsert,
		job.ID,
		string(job.Kind),
		job.Scope,
		job.OwnerID,
		string(job.Status),
		job.Progress,
		job.Result,
		job.ErrorMessage,
		job.Attempts,
		nullableBytes(job.Params),
		job.EstimatedSeconds,
		job.CreatedAt,
		job.UpdatedAt,
		job.StartedAt,
		job.FinishedAt,
	)
	return err
}

// Update stores the mutable state of a job.
func (r *JobRepositoryPG) Update(ctx context.Context, job *domain.Job) error {
	tag, err := r.db.Exec(ctx, sqlinline.QJobUpdate,
		job.ID,
		string(job.Status),
		job.Progress,
		job.Result,
		job.ErrorMessage,
		job.Attempts,
		job.EstimatedSeconds,
		job.UpdatedAt,
		job.StartedAt,
		job.FinishedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID fetches a job by its identifier.
func (r *JobRepositoryPG) GetByID(ctx context.Context, jobID string) (*domain.Job, error) {
	job, err := scanJob(r.db.QueryRow(ctx, sqlinline.QJobGetByID, jobID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return job, nil
}

// ListByScope returns the newest jobs of a scope.
func (r *JobRepositoryPG) ListByScope(ctx context.Context, scope string, limit int) ([]domain.Job, error) {
	rows, err := r.db.Query(ctx, sqlinline.QJobListByScope, scope, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]domain.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *job)
	}
	return out, rows.Err()
}

// FailRunning marks jobs orphaned by a previous process as failed.
func (r *JobRepositoryPG) FailRunning(ctx context.Context, reason string) (int, error) {
	tag, err := r.db.Exec(ctx, sqlinline.QJobFailRunning, reason)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var (
		job       domain.Job
		kind      string
		status    string
		result    *string
		started   *time.Time
		finished  *time.Time
		paramsRaw []byte
	)
	if err := row.Scan(
		&job.ID,
		&kind,
		&job.Scope,
		&job.OwnerID,
		&status,
		&job.Progress,
		&result,
		&job.ErrorMessage,
		&job.Attempts,
		&paramsRaw,
		&job.EstimatedSeconds,
		&job.CreatedAt,
		&job.UpdatedAt,
		&started,
		&finished,
	); err != nil {
		return nil, err
	}
	job.Kind = domain.JobKind(kind)
	job.Status = domain.JobStatus(status)
	job.Result = result
	job.Params = paramsRaw
	job.StartedAt = started
	job.FinishedAt = finished
	return &job, nil
}

func nullableBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}

var _ domain.JobRepository = (*JobRepositoryPG)(nil)
