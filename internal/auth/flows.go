package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// flow is a sign-in attempt awaiting its callback.
type flow struct {
	provider  Provider
	verifier  string
	expiresAt time.Time
}

// FlowStore keeps PKCE verifiers between the authorize redirect and the
// callback. Entries are single use.
type FlowStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	flows map[string]flow
}

func NewFlowStore(ttl time.Duration) *FlowStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &FlowStore{ttl: ttl, now: time.Now, flows: make(map[string]flow)}
}

func (s *FlowStore) put(p Provider, verifier string) string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, f := range s.flows {
		if now.After(f.expiresAt) {
			delete(s.flows, k)
		}
	}
	s.flows[id] = flow{provider: p, verifier: verifier, expiresAt: now.Add(s.ttl)}
	return id
}

func (s *FlowStore) take(id string) (flow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.flows[id]
	if !ok {
		return flow{}, false
	}
	delete(s.flows, id)
	if s.now().After(f.expiresAt) {
		return flow{}, false
	}
	return f, true
}

// Len reports the number of pending flows.
func (s *FlowStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.flows)
}
