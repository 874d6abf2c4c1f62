package repo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"studio/internal/domain"
)

// JobRepositoryMemory keeps jobs in process memory.
type JobRepositoryMemory struct {
	mu   sync.RWMutex
	jobs map[string]domain.Job
}

func NewJobRepositoryMemory() *JobRepositoryMemory {
	return &JobRepositoryMemory{jobs: make(map[string]domain.Job)}
}

func (r *JobRepositoryMemory) Create(_ context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.ID]; ok {
		return fmt.Errorf("job %s already exists", job.ID)
	}
	r.jobs[job.ID] = job.Clone()
	return nil
}

func (r *JobRepositoryMemory) Update(_ context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.ID]; !ok {
		return domain.ErrNotFound
	}
	r.jobs[job.ID] = job.Clone()
	return nil
}

func (r *JobRepositoryMemory) GetByID(_ context.Context, jobID string) (*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := job.Clone()
	return &out, nil
}

func (r *JobRepositoryMemory) ListByScope(_ context.Context, scope string, limit int) ([]domain.Job, error) {
	r.mu.RLock()
	out := make([]domain.Job, 0)
	for _, job := range r.jobs {
		if job.Scope == scope {
			out = append(out, job.Clone())
		}
	}
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *JobRepositoryMemory) FailRunning(_ context.Context, reason string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, job := range r.jobs {
		if job.Status != domain.JobStatusRunning {
			continue
		}
		if err := job.Fail(reason, time.Now().UTC()); err != nil {
			return n, err
		}
		r.jobs[id] = job
		n++
	}
	return n, nil
}

var _ domain.JobRepository = (*JobRepositoryMemory)(nil)
