package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"studio/internal/domain"
)

// Dialect selects placeholder and DDL flavour for JobRepositorySQL.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// JobRepositorySQL implements domain.JobRepository over database/sql. It
// serves SQLite (modernc.org/sqlite) and PostgreSQL (lib/pq) connections.
type JobRepositorySQL struct {
	db      *sql.DB
	dialect Dialect
}

func NewJobRepositorySQL(db *sql.DB, dialect Dialect) *JobRepositorySQL {
	return &JobRepositorySQL{db: db, dialect: dialect}
}

const jobColumns = `id, kind, scope, owner_id, status, progress, result, error_message, attempts, params, estimated_seconds, created_at, updated_at, started_at, finished_at`

func (r *JobRepositorySQL) schema() string {
	ts := "DATETIME"
	if r.dialect == DialectPostgres {
		ts = "TIMESTAMPTZ"
	}
	return fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		scope TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		status TEXT NOT NULL,
		progress INTEGER NOT NULL DEFAULT 0,
		result TEXT,
		error_message TEXT NOT NULL DEFAULT '',
		attempts INTEGER NOT NULL DEFAULT 0,
		params TEXT,
		estimated_seconds INTEGER NOT NULL DEFAULT 0,
		created_at %[1]s NOT NULL,
		updated_at %[1]s NOT NULL,
		started_at %[1]s,
		finished_at %[1]s
	);
	CREATE INDEX IF NOT EXISTS jobs_scope_created_idx ON jobs (scope, created_at);
	`, ts)
}

// Migrate creates the jobs table when missing.
func (r *JobRepositorySQL) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, r.schema()); err != nil {
		return fmt.Errorf("migrate jobs: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (r *JobRepositorySQL) rebind(query string) string {
	if r.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (r *JobRepositorySQL) Create(ctx context.Context, job *domain.Job) error {
	query := r.rebind(`INSERT INTO jobs (` + jobColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		job.ID,
		string(job.Kind),
		job.Scope,
		job.OwnerID,
		string(job.Status),
		job.Progress,
		nullString(job.Result),
		job.ErrorMessage,
		job.Attempts,
		string(job.Params),
		job.EstimatedSeconds,
		job.CreatedAt.UTC(),
		job.UpdatedAt.UTC(),
		nullTime(job.StartedAt),
		nullTime(job.FinishedAt),
	)
	return err
}

func (r *JobRepositorySQL) Update(ctx context.Context, job *domain.Job) error {
	query := r.rebind(`UPDATE jobs SET status = ?, progress = ?, result = ?, error_message = ?, attempts = ?, estimated_seconds = ?, updated_at = ?, started_at = ?, finished_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query,
		string(job.Status),
		job.Progress,
		nullString(job.Result),
		job.ErrorMessage,
		job.Attempts,
		job.EstimatedSeconds,
		job.UpdatedAt.UTC(),
		nullTime(job.StartedAt),
		nullTime(job.FinishedAt),
		job.ID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *JobRepositorySQL) GetByID(ctx context.Context, jobID string) (*domain.Job, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(`SELECT `+jobColumns+` FROM jobs WHERE id = ?`), jobID)
	job, err := scanSQLJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return job, err
}

func (r *JobRepositorySQL) ListByScope(ctx context.Context, scope string, limit int) ([]domain.Job, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(`SELECT `+jobColumns+` FROM jobs WHERE scope = ? ORDER BY created_at DESC, id DESC LIMIT ?`), scope, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]domain.Job, 0)
	for rows.Next() {
		job, err := scanSQLJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *job)
	}
	return out, rows.Err()
}

func (r *JobRepositorySQL) FailRunning(ctx context.Context, reason string) (int, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		r.rebind(`UPDATE jobs SET status = ?, error_message = ?, estimated_seconds = 0, updated_at = ?, finished_at = ? WHERE status = ?`),
		string(domain.JobStatusFailed), reason, now, now, string(domain.JobStatusRunning))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func scanSQLJob(row rowScanner) (*domain.Job, error) {
	var (
		job      domain.Job
		kind     string
		status   string
		result   sql.NullString
		params   sql.NullString
		started  sql.NullTime
		finished sql.NullTime
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
		&params,
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
	if result.Valid {
		v := result.String
		job.Result = &v
	}
	if params.Valid && params.String != "" {
		job.Params = []byte(params.String)
	}
	if started.Valid {
		t := started.Time
		job.StartedAt = &t
	}
	if finished.Valid {
		t := finished.Time
		job.FinishedAt = &t
	}
	return &job, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

var _ domain.JobRepository = (*JobRepositorySQL)(nil)
