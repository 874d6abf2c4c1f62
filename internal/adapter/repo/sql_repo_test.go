package repo

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"studio/internal/domain"
)

func openSQLite(t *testing.T) *JobRepositorySQL {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := NewJobRepositorySQL(db, DialectSQLite)
	if err := repo.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repo
}

func TestJobRepositorySQLiteLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := openSQLite(t)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	job := domain.NewJob("gen_1", domain.JobKindGeneration, "u1:generator", "u1", []byte(`{"prompt":"fox"}`), now)

	if err := repo.Create(ctx, job); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_ = job.Start(now)
	_ = job.Complete("https://example.com/a.jpg", now.Add(3*time.Second))
	if err := repo.Update(ctx, job); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.GetByID(ctx, "gen_1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != domain.JobStatusCompleted || got.Progress != 100 {
		t.Fatalf("unexpected job %+v", got)
	}
	if got.Result == nil || *got.Result != "https://example.com/a.jpg" {
		t.Fatalf("unexpected result %v", got.Result)
	}
	if string(got.Params) != `{"prompt":"fox"}` {
		t.Fatalf("unexpected params %s", got.Params)
	}
	if got.FinishedAt == nil || !got.FinishedAt.Equal(now.Add(3*time.Second)) {
		t.Fatalf("unexpected finished_at %v", got.FinishedAt)
	}
}

func TestJobRepositorySQLiteListAndRecover(t *testing.T) {
	ctx := context.Background()
	repo := openSQLite(t)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"train_a", "train_b"} {
		job := domain.NewJob(id, domain.JobKindTraining, "u1:training", "u1", nil, base.Add(time.Duration(i)*time.Minute))
		_ = job.Start(job.CreatedAt)
		if err := repo.Create(ctx, job); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}

	jobs, err := repo.ListByScope(ctx, "u1:training", 10)
	if err != nil {
		t.Fatalf("ListByScope: %v", err)
	}
	if len(jobs) != 2 || jobs[0].ID != "train_b" {
		t.Fatalf("unexpected jobs %+v", jobs)
	}

	n, err := repo.FailRunning(ctx, "interrupted by restart")
	if err != nil || n != 2 {
		t.Fatalf("FailRunning = %d, %v", n, err)
	}
	got, _ := repo.GetByID(ctx, "train_a")
	if got.Status != domain.JobStatusFailed || got.ErrorMessage != "interrupted by restart" {
		t.Fatalf("unexpected job %+v", got)
	}
}

func TestJobRepositorySQLiteNotFound(t *testing.T) {
	repo := openSQLite(t)
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByID error = %v", err)
	}
	job := domain.NewJob("gen_x", domain.JobKindGeneration, "s", "u", nil, time.Now())
	if err := repo.Update(context.Background(), job); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Update error = %v", err)
	}
}

func TestRebindPostgres(t *testing.T) {
	repo := NewJobRepositorySQL(nil, DialectPostgres)
	if got := repo.rebind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Fatalf("rebind = %q", got)
	}
	lite := NewJobRepositorySQL(nil, DialectSQLite)
	if got := lite.rebind("a = ?"); got != "a = ?" {
		t.Fatalf("rebind sqlite = %q", got)
	}
}
