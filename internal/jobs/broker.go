package jobs

import (
	"sync"

	"studio/internal/domain"
)

const watchBuffer = 8

type subscriber struct {
	ch     chan domain.Job
	closed bool
}

// broker fans job snapshots out to watchers. Slow watchers lose intermediate
// snapshots but always receive the final one before their channel closes.
type broker struct {
	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

func newBroker() *broker {
	return &broker{subs: make(map[string]map[*subscriber]struct{})}
}

// subscribe registers a watcher and queues initial as its first snapshot.
func (b *broker) subscribe(jobID string, initial domain.Job) *subscriber {
	sub := &subscriber{ch: make(chan domain.Job, watchBuffer)}
	sub.ch <- initial
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.subs[jobID]
	if !ok {
		set = make(map[*subscriber]struct{})
		b.subs[jobID] = set
	}
	set[sub] = struct{}{}
	return sub
}

func (b *broker) unsubscribe(jobID string, sub *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if set, ok := b.subs[jobID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(b.subs, jobID)
		}
	}
	if !sub.closed {
		sub.closed = true
		close(sub.ch)
	}
}

// publish delivers snap to every watcher of the job. When final is set the
// watchers are closed and removed.
func (b *broker) publish(snap domain.Job, final bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set := b.subs[snap.ID]
	for sub := range set {
		deliver(sub.ch, snap)
		if final {
			sub.closed = true
			close(sub.ch)
		}
	}
	if final {
		delete(b.subs, snap.ID)
	}
}

func deliver(ch chan domain.Job, snap domain.Job) {
	for {
		select {
		case ch <- snap:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
