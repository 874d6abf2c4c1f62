package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

type bucket struct {
	count int
	until time.Time
}

// KeyFunc selects the bucket a request is counted against.
type KeyFunc func(r *http.Request) string

// RateLimit allows limit requests per window for each client IP.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	return RateLimitBy(limit, per, clientIPForRateLimit)
}

// RateLimitByUser counts authenticated requests per user and falls back to
// the client IP.
func RateLimitByUser(limit int, per time.Duration) func(http.Handler) http.Handler {
	return RateLimitBy(limit, per, func(r *http.Request) string {
		if id := UserIDFromContext(r.Context()); id != "" {
			return "user:" + id
		}
		return clientIPForRateLimit(r)
	})
}

// RateLimitBy is a fixed-window limiter keyed by key.
func RateLimitBy(limit int, per time.Duration, key KeyFunc) func(http.Handler) http.Handler {
	var mu sync.Mutex
	buckets := make(map[string]*bucket)
	lastSweep := time.Now()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			k := key(r)
			now := time.Now()
			mu.Lock()
			if now.Sub(lastSweep) > per {
				for id, b := range buckets {
					if now.After(b.until) {
						delete(buckets, id)
					}
				}
				lastSweep = now
			}
			b, ok := buckets[k]
			if !ok || now.After(b.until) {
				b = &bucket{until: now.Add(per)}
				buckets[k] = b
			}
			if b.count >= limit {
				retry := int(b.until.Sub(now).Seconds()) + 1
				mu.Unlock()
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
				return
			}
			b.count++
			mu.Unlock()
			next.ServeHTTP(w, r)
		})
	}
}

func clientIPForRateLimit(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if net.ParseIP(host) != nil {
			return host
		}
	} else if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}

	return r.RemoteAddr
}
