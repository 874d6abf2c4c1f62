package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"studio/internal/domain"
)

// ErrServiceClosed is returned by Start after Close.
var ErrServiceClosed = errors.New("jobs: service closed")

// Screens a job scope can belong to.
const (
	ScreenGenerator = "generator"
	ScreenEditor    = "editor"
	ScreenTraining  = "training"
)

// Scope returns the single-running scope of an owner's screen.
func Scope(ownerID, screen string) string {
	return ownerID + ":" + screen
}

const (
	persistTimeout   = 5 * time.Second
	recoveryReason   = "interrupted by restart"
	defaultListLimit = 50
	maxListLimit     = 100
)

type Options struct {
	Repo      domain.JobRepository
	Executors map[domain.JobKind]Executor
	Retry     RetryPolicy
	Logger    zerolog.Logger
	Now       func() time.Time
}

// Service owns every running job. Only the goroutine started for a job
// mutates it until the job is terminal or cancelled.
type Service struct {
	repo      domain.JobRepository
	executors map[domain.JobKind]Executor
	retry     RetryPolicy
	logger    zerolog.Logger
	now       func() time.Time
	broker    *broker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	closed  bool
	handles map[string]*handle
	scopes  map[string]string
	// finishing holds terminal snapshots until they are persisted.
	finishing map[string]domain.Job
}

type handle struct {
	job    *domain.Job
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewService(opts Options) (*Service, error) {
	if opts.Repo == nil {
		return nil, errors.New("jobs: repository is required")
	}
	if len(opts.Executors) == 0 {
		return nil, errors.New("jobs: at least one executor is required")
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		repo:      opts.Repo,
		executors: opts.Executors,
		retry:     opts.Retry,
		logger:    opts.Logger,
		now:       now,
		broker:    newBroker(),
		ctx:       ctx,
		cancel:    cancel,
		handles:   make(map[string]*handle),
		scopes:    make(map[string]string),
		finishing: make(map[string]domain.Job),
	}, nil
}

// Recover fails jobs left running by a previous process.
func (s *Service) Recover(ctx context.Context) error {
	n, err := s.repo.FailRunning(ctx, recoveryReason)
	if err != nil {
		return fmt.Errorf("recover jobs: %w", err)
	}
	if n > 0 {
		s.logger.Warn().Int("count", n).Msg("jobs: marked orphaned jobs failed")
	}
	return nil
}

// StartGeneration validates req and starts a generation job in scope.
func (s *Service) StartGeneration(ctx context.Context, scope, ownerID string, req domain.GenerationRequest) (domain.Job, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return domain.Job{}, err
	}
	params, err := json.Marshal(req)
	if err != nil {
		return domain.Job{}, fmt.Errorf("encode generation params: %w", err)
	}
	return s.start(ctx, domain.JobKindGeneration, scope, ownerID, params)
}

// StartTraining validates req and starts a training job in scope.
func (s *Service) StartTraining(ctx context.Context, scope, ownerID string, req domain.TrainingRequest) (domain.Job, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return domain.Job{}, err
	}
	params, err := json.Marshal(req)
	if err != nil {
		return domain.Job{}, fmt.Errorf("encode training params: %w", err)
	}
	return s.start(ctx, domain.JobKindTraining, scope, ownerID, params)
}

func (s *Service) start(ctx context.Context, kind domain.JobKind, scope, ownerID string, params []byte) (domain.Job, error) {
	if _, ok := s.executors[kind]; !ok {
		return domain.Job{}, fmt.Errorf("jobs: no executor for %s", kind)
	}
	id := newJobID(kind)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.Job{}, ErrServiceClosed
	}
	if running, ok := s.scopes[scope]; ok {
		s.mu.Unlock()
		return domain.Job{}, fmt.Errorf("%w: %s", domain.ErrJobAlreadyRunning, running)
	}
	s.scopes[scope] = id
	s.wg.Add(1)
	s.mu.Unlock()

	abort := func() {
		s.mu.Lock()
		delete(s.scopes, scope)
		s.mu.Unlock()
		s.wg.Done()
	}

	now := s.now()
	job := domain.NewJob(id, kind, scope, ownerID, params, now)
	if err := s.repo.Create(ctx, job); err != nil {
		abort()
		return domain.Job{}, fmt.Errorf("create job: %w", err)
	}
	if err := job.Start(now); err != nil {
		abort()
		return domain.Job{}, err
	}
	if est, ok := s.executors[kind].(Estimator); ok {
		job.EstimatedSeconds = seconds(est.Estimate(*job))
	}
	if err := s.repo.Update(ctx, job); err != nil {
		abort()
		return domain.Job{}, fmt.Errorf("start job: %w", err)
	}

	hctx, cancel := context.WithCancel(s.ctx)
	h := &handle{job: job, ctx: hctx, cancel: cancel, done: make(chan struct{})}
	s.mu.Lock()
	s.handles[id] = h
	snap := job.Clone()
	s.mu.Unlock()

	s.logger.Info().Str("job_id", id).Str("kind", string(kind)).Str("scope", scope).Msg("jobs: started")
	go s.run(h)
	return snap, nil
}

func (s *Service) run(h *handle) {
	defer s.wg.Done()
	defer close(h.done)

	s.mu.Lock()
	id, kind := h.job.ID, h.job.Kind
	s.mu.Unlock()
	exec := s.executors[kind]
	est, _ := exec.(Estimator)

	var result string
	err := s.retry.Do(h.ctx, func(ctx context.Context, attempt int) error {
		snap, ok := s.mutate(h, func(j *domain.Job) bool {
			j.Attempts = attempt
			j.UpdatedAt = s.now()
			return true
		})
		if !ok {
			return ctx.Err()
		}
		if attempt > 1 {
			s.logger.Warn().Str("job_id", id).Int("attempt", attempt).Msg("jobs: retrying")
		}
		out, err := exec.Execute(ctx, snap, func(progress int) {
			s.mutate(h, func(j *domain.Job) bool {
				if !j.Advance(progress, s.now()) {
					return false
				}
				if est != nil {
					j.EstimatedSeconds = seconds(est.Estimate(*j))
				}
				return true
			})
		})
		if err != nil {
			return err
		}
		result = out
		return nil
	})

	s.mu.Lock()
	if h.ctx.Err() != nil {
		// Cancel or Close resets the job once this goroutine is gone.
		s.mu.Unlock()
		s.logger.Info().Str("job_id", id).Msg("jobs: cancelled")
		return
	}
	now := s.now()
	if err != nil {
		_ = h.job.Fail(err.Error(), now)
	} else {
		_ = h.job.Complete(result, now)
	}
	snap := h.job.Clone()
	s.releaseLocked(h)
	s.finishing[id] = snap
	s.mu.Unlock()

	if err != nil {
		s.logger.Error().Err(err).Str("job_id", id).Int("attempts", snap.Attempts).Msg("jobs: failed")
	} else {
		s.logger.Info().Str("job_id", id).Msg("jobs: completed")
	}
	s.persist(snap)
	s.mu.Lock()
	delete(s.finishing, id)
	s.mu.Unlock()
	s.broker.publish(snap, true)
}

// snapshotLocked returns the in-memory state of a job that is running or
// whose terminal state is not persisted yet.
func (s *Service) snapshotLocked(id string) (domain.Job, bool) {
	if h, ok := s.handles[id]; ok {
		return h.job.Clone(), true
	}
	if snap, ok := s.finishing[id]; ok {
		return snap.Clone(), true
	}
	return domain.Job{}, false
}

// mutate applies fn to the running job and publishes the result when fn
// reports a change. It is a no-op once the job has been cancelled.
func (s *Service) mutate(h *handle, fn func(j *domain.Job) bool) (domain.Job, bool) {
	s.mu.Lock()
	if h.ctx.Err() != nil {
		s.mu.Unlock()
		return domain.Job{}, false
	}
	changed := fn(h.job)
	snap := h.job.Clone()
	s.mu.Unlock()
	if changed {
		s.persist(snap)
		s.broker.publish(snap, false)
	}
	return snap, true
}

func (s *Service) releaseLocked(h *handle) {
	delete(s.handles, h.job.ID)
	if s.scopes[h.job.Scope] == h.job.ID {
		delete(s.scopes, h.job.Scope)
	}
	h.cancel()
}

func (s *Service) persist(job domain.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.repo.Update(ctx, &job); err != nil {
		s.logger.Error().Err(err).Str("job_id", job.ID).Msg("jobs: persist failed")
	}
}

// Cancel stops a running job, waits for its goroutine to exit and resets it
// to pending with zero progress. Pending jobs are returned unchanged.
func (s *Service) Cancel(ctx context.Context, id string) (domain.Job, error) {
	s.mu.Lock()
	h, ok := s.handles[id]
	if !ok {
		snap, finishing := s.finishing[id]
		s.mu.Unlock()
		if finishing {
			return domain.Job{}, fmt.Errorf("%w: job is %s", domain.ErrJobNotCancellable, snap.Status)
		}
		job, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return domain.Job{}, err
		}
		if job.Status.Terminal() {
			return domain.Job{}, fmt.Errorf("%w: job is %s", domain.ErrJobNotCancellable, job.Status)
		}
		return *job, nil
	}
	h.cancel()
	s.mu.Unlock()
	<-h.done

	s.mu.Lock()
	if h.job.Status.Terminal() {
		s.mu.Unlock()
		return domain.Job{}, fmt.Errorf("%w: job is %s", domain.ErrJobNotCancellable, h.job.Status)
	}
	snap, err := s.resetLocked(h)
	s.mu.Unlock()
	if err != nil {
		return domain.Job{}, err
	}
	s.persist(snap)
	s.broker.publish(snap, true)
	return snap, nil
}

func (s *Service) resetLocked(h *handle) (domain.Job, error) {
	if s.handles[h.job.ID] != h {
		return h.job.Clone(), nil
	}
	err := h.job.Reset(s.now())
	s.releaseLocked(h)
	return h.job.Clone(), err
}

// Close cancels all in-flight jobs, waits for their goroutines and resets
// them to pending. Start fails afterwards.
func (s *Service) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()

	s.mu.Lock()
	snaps := make([]domain.Job, 0, len(s.handles))
	for _, h := range s.handles {
		if snap, err := s.resetLocked(h); err == nil {
			snaps = append(snaps, snap)
		}
	}
	s.mu.Unlock()
	for _, snap := range snaps {
		s.persist(snap)
		s.broker.publish(snap, true)
	}
	s.logger.Info().Int("cancelled", len(snaps)).Msg("jobs: service closed")
}

// Get returns the latest snapshot of a job.
func (s *Service) Get(ctx context.Context, id string) (domain.Job, error) {
	s.mu.Lock()
	if snap, ok := s.snapshotLocked(id); ok {
		s.mu.Unlock()
		return snap, nil
	}
	s.mu.Unlock()
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Job{}, err
	}
	return *job, nil
}

// List returns the most recent jobs of a scope, newest first.
func (s *Service) List(ctx context.Context, scope string, limit int) ([]domain.Job, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)
	items, err := s.repo.ListByScope(ctx, scope, limit)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range items {
		if snap, ok := s.snapshotLocked(items[i].ID); ok {
			items[i] = snap
		}
	}
	return items, nil
}

// Running returns the id of the job running in scope, if any.
func (s *Service) Running(scope string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.scopes[scope]
	return id, ok
}

// Watch streams snapshots of a job. The current snapshot is delivered first.
// The channel closes after the job leaves the running state or stop is
// called.
func (s *Service) Watch(ctx context.Context, id string) (<-chan domain.Job, func(), error) {
	s.mu.Lock()
	if h, ok := s.handles[id]; ok {
		sub := s.broker.subscribe(id, h.job.Clone())
		s.mu.Unlock()
		var once sync.Once
		stop := func() { once.Do(func() { s.broker.unsubscribe(id, sub) }) }
		return sub.ch, stop, nil
	}
	snap, finishing := s.finishing[id]
	s.mu.Unlock()

	if !finishing {
		job, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		snap = *job
	}
	ch := make(chan domain.Job, 1)
	ch <- snap
	close(ch)
	return ch, func() {}, nil
}

func newJobID(kind domain.JobKind) string {
	prefix := "job_"
	switch kind {
	case domain.JobKindGeneration:
		prefix = "gen_"
	case domain.JobKindTraining:
		prefix = "train_"
	}
	return prefix + uuid.NewString()
}

func seconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
