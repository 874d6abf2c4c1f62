package infra

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

type recordingExecutor struct {
	queries []string
}

func (r *recordingExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	r.queries = append(r.queries, query)
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (r *recordingExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	r.queries = append(r.queries, query)
	return errorRow{err: pgx.ErrNoRows}
}

func (r *recordingExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	r.queries = append(r.queries, query)
	return nil, errors.New("not supported")
}

func TestExtractMarker(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantMarker string
		wantBody   string
		wantErr    error
	}{
		{
			name:       "valid",
			query:      "\n--sql 0b6f3f1e-8a51-4f0e-9a59-3f5ad0a6a001\nselect 1\n",
			wantMarker: "0b6f3f1e-8a51-4f0e-9a59-3f5ad0a6a001",
			wantBody:   "select 1",
		},
		{name: "missing marker", query: "select 1", wantErr: errMissingMarker},
		{name: "marker only", query: "--sql 0b6f3f1e-8a51-4f0e-9a59-3f5ad0a6a001", wantErr: errEmptyQuery},
		{name: "empty", query: "   ", wantErr: errEmptyQuery},
		{name: "uppercase uuid", query: "--sql 0B6F3F1E-8A51-4F0E-9A59-3F5AD0A6A001\nselect 1", wantErr: errMissingMarker},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			marker, body, err := extractMarker(tc.query)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("error = %v, want %v", err, tc.wantErr)
			}
			if marker != tc.wantMarker || body != tc.wantBody {
				t.Fatalf("got (%q, %q)", marker, body)
			}
		})
	}
}

func TestSQLRunnerStripsMarker(t *testing.T) {
	exec := &recordingExecutor{}
	runner := NewSQLRunner(exec, zerolog.New(io.Discard))
	ctx := context.Background()

	if _, err := runner.Exec(ctx, "--sql 0b6f3f1e-8a51-4f0e-9a59-3f5ad0a6a001\nupdate jobs set progress = 1"); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if _, err := runner.Exec(ctx, "update jobs set progress = 1"); !errors.Is(err, errMissingMarker) {
		t.Fatalf("unmarked Exec error = %v", err)
	}
	var id string
	if err := runner.QueryRow(ctx, "select id from jobs").Scan(&id); !errors.Is(err, errMissingMarker) {
		t.Fatalf("unmarked QueryRow error = %v", err)
	}
	if len(exec.queries) != 1 || exec.queries[0] != "update jobs set progress = 1" {
		t.Fatalf("queries reaching the database = %#v", exec.queries)
	}
}
