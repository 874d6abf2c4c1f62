package watch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientGetAndCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":"unauthorized","message":"missing token"}}`))
			return
		}
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/jobs/train_1":
			_, _ = w.Write([]byte(`{"id":"train_1","kind":"training","status":"running","progress":40,"estimated_time":30}`))
		case r.Method == http.MethodPost && r.URL.Path == "/v1/jobs/train_1/cancel":
			_, _ = w.Write([]byte(`{"id":"train_1","kind":"training","status":"pending","progress":0}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":"not_found","message":"job not found"}}`))
		}
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL+"/", "tok", srv.Client())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	job, err := c.Get(context.Background(), "train_1")
	if err != nil || job.Progress != 40 || job.Status != "running" {
		t.Fatalf("Get = %+v, %v", job, err)
	}
	job, err = c.Cancel(context.Background(), "train_1")
	if err != nil || job.Status != "pending" || job.Progress != 0 {
		t.Fatalf("Cancel = %+v, %v", job, err)
	}

	_, err = c.Get(context.Background(), "nope")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound || apiErr.Code != "not_found" {
		t.Fatalf("missing job err = %v", err)
	}

	anon, _ := NewClient(srv.URL, "", srv.Client())
	if _, err := anon.Get(context.Background(), "train_1"); !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("anonymous err = %v", err)
	}
}

func TestNewClientRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8080", "://x"} {
		if _, err := NewClient(raw, "", nil); err == nil {
			t.Fatalf("NewClient(%q) should fail", raw)
		}
	}
}
