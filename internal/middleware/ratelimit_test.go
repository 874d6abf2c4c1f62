package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClientIPForRateLimit(t *testing.T) {
	tests := []struct {
		forwarded, remote, want string
	}{
		{"203.0.113.1", "198.51.100.10:1234", "203.0.113.1"},
		{" , 203.0.113.1 , 198.51.100.2 ", "198.51.100.10:1234", "203.0.113.1"},
		{"not-an-ip", "198.51.100.10:1234", "198.51.100.10"},
		{"", "[2001:db8::2]:443", "2001:db8::2"},
		{"2001:db8::1", "[2001:db8::2]:443", "2001:db8::1"},
		{"", "203.0.113.9", "203.0.113.9"},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tc.remote
		if tc.forwarded != "" {
			req.Header.Set("X-Forwarded-For", tc.forwarded)
		}
		if got := clientIPForRateLimit(req); got != tc.want {
			t.Errorf("clientIPForRateLimit(%q, %q) = %q, want %q", tc.forwarded, tc.remote, got, tc.want)
		}
	}
}

func accepted(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusAccepted) }

func TestRateLimitPerIP(t *testing.T) {
	h := RateLimit(1, time.Minute)(http.HandlerFunc(accepted))
	send := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/explore", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}
	if rec := send("203.0.113.1:1"); rec.Code != http.StatusAccepted {
		t.Fatalf("first status = %d", rec.Code)
	}
	rec := send("203.0.113.1:2")
	if rec.Code != http.StatusTooManyRequests || !strings.Contains(rec.Body.String(), "rate_limited") {
		t.Fatalf("second status = %d body=%s", rec.Code, rec.Body.String())
	}
	if rec := send("203.0.113.2:1"); rec.Code != http.StatusAccepted {
		t.Fatalf("other ip status = %d", rec.Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	h := RateLimit(0, time.Minute)(http.HandlerFunc(accepted))
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusAccepted {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
}

func TestRateLimitByUser(t *testing.T) {
	h := RateLimitByUser(2, time.Minute)(http.HandlerFunc(accepted))
	send := func(user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/generator/jobs", nil)
		req.RemoteAddr = "203.0.113.1:1234"
		req = req.WithContext(ContextWithUserID(req.Context(), user))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}
	for i := 0; i < 2; i++ {
		if rec := send("u1"); rec.Code != http.StatusAccepted {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	rec := send("u1")
	if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") == "" {
		t.Fatalf("third request status = %d retry-after=%q", rec.Code, rec.Header().Get("Retry-After"))
	}
	if rec := send("u2"); rec.Code != http.StatusAccepted {
		t.Fatalf("other user status = %d", rec.Code)
	}
}
