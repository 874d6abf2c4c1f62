package catalog

import (
	"sort"
	"sync"
)

// Reaction names a per-user membership set.
type Reaction string

const (
	ReactionLike Reaction = "like"
	ReactionSave Reaction = "save"
)

// Reactions holds per-user liked and saved sets. Set membership is the only
// source of truth for whether a user liked or saved an item.
type Reactions struct {
	mu   sync.RWMutex
	sets map[string]map[Reaction]map[string]struct{}
}

func NewReactions() *Reactions {
	return &Reactions{sets: make(map[string]map[Reaction]map[string]struct{})}
}

// Toggle flips membership of itemID in the user's set and returns the new
// membership.
func (r *Reactions) Toggle(userID string, reaction Reaction, itemID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	byReaction, ok := r.sets[userID]
	if !ok {
		byReaction = make(map[Reaction]map[string]struct{})
		r.sets[userID] = byReaction
	}
	set, ok := byReaction[reaction]
	if !ok {
		set = make(map[string]struct{})
		byReaction[reaction] = set
	}
	if _, ok := set[itemID]; ok {
		delete(set, itemID)
		return false
	}
	set[itemID] = struct{}{}
	return true
}

// Has reports whether itemID is in the user's set.
func (r *Reactions) Has(userID string, reaction Reaction, itemID string) bool {
	if userID == "" {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sets[userID][reaction][itemID]
	return ok
}

// Members returns the sorted item ids in the user's set.
func (r *Reactions) Members(userID string, reaction Reaction) []string {
	r.mu.RLock()
	set := r.sets[userID][reaction]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}
