package catalog

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"studio/internal/domain"
)

// View is an item as seen by one user.
type View struct {
	Item
	Liked          bool   `json:"liked"`
	Saved          bool   `json:"saved"`
	EffectiveLikes int    `json:"effective_likes"`
	LikesLabel     string `json:"likes_label"`
}

// Catalog serves the explore grid and the video feed from seed content plus
// imported items. Items are immutable once added.
type Catalog struct {
	reactions *Reactions

	mu      sync.RWMutex
	explore []Item
	videos  []Item
	byID    map[string]Item
	posts   []Post
	profile ProfileSeed
}

func New(seed *Seed, reactions *Reactions) (*Catalog, error) {
	if seed == nil {
		return nil, errors.New("catalog: seed is required")
	}
	if reactions == nil {
		reactions = NewReactions()
	}
	c := &Catalog{
		reactions: reactions,
		byID:      make(map[string]Item),
		posts:     append([]Post(nil), seed.Posts...),
		profile:   seed.Profile,
	}
	for _, it := range seed.Explore {
		if err := c.seedItem(&c.explore, it); err != nil {
			return nil, err
		}
	}
	for _, it := range seed.Videos {
		it.Kind = KindVideo
		if err := c.seedItem(&c.videos, it); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// seedItem adds a seed item. Unlike imports, a seed must not repeat an id.
func (c *Catalog) seedItem(dst *[]Item, it Item) error {
	added, err := c.insertLocked(dst, it)
	if err != nil {
		return err
	}
	if !added {
		return fmt.Errorf("duplicate item id %q", strings.TrimSpace(it.ID))
	}
	return nil
}

// insertLocked normalizes it and appends it to dst unless its id is taken.
func (c *Catalog) insertLocked(dst *[]Item, it Item) (bool, error) {
	if err := it.normalize(); err != nil {
		return false, err
	}
	if _, ok := c.byID[it.ID]; ok {
		return false, nil
	}
	*dst = append(*dst, it)
	c.byID[it.ID] = it
	return true, nil
}

// Reactions exposes the per-user membership sets.
func (c *Catalog) Reactions() *Reactions { return c.reactions }

// AddExplore appends items to the explore grid, skipping ids already present.
// It returns how many were added.
func (c *Catalog) AddExplore(items ...Item) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	added := 0
	for _, it := range items {
		ok, err := c.insertLocked(&c.explore, it)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	return added, nil
}

// Explore filters the explore grid for userID.
func (c *Catalog) Explore(userID string, q Query) []View {
	c.mu.RLock()
	items := Filter(c.explore, q)
	c.mu.RUnlock()
	return c.views(userID, items)
}

// Feed lists the short-video feed for userID.
func (c *Catalog) Feed(userID string) []View {
	c.mu.RLock()
	items := append([]Item(nil), c.videos...)
	c.mu.RUnlock()
	return c.views(userID, items)
}

// Trending lists explore items flagged trending.
func (c *Catalog) Trending(userID string) []View {
	return c.selectExplore(userID, func(it Item) bool { return it.Trending })
}

// Featured lists explore items flagged featured.
func (c *Catalog) Featured(userID string) []View {
	return c.selectExplore(userID, func(it Item) bool { return it.Featured })
}

func (c *Catalog) selectExplore(userID string, keep func(Item) bool) []View {
	c.mu.RLock()
	var items []Item
	for _, it := range c.explore {
		if keep(it) {
			items = append(items, it)
		}
	}
	c.mu.RUnlock()
	return c.views(userID, items)
}

// Get returns one item by id.
func (c *Catalog) Get(userID, id string) (View, error) {
	c.mu.RLock()
	it, ok := c.byID[id]
	c.mu.RUnlock()
	if !ok {
		return View{}, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	return c.view(userID, it), nil
}

// Toggle flips a reaction on an existing item and returns the updated view.
func (c *Catalog) Toggle(userID string, reaction Reaction, id string) (View, error) {
	if userID == "" {
		return View{}, domain.ErrUnauthorized
	}
	c.mu.RLock()
	it, ok := c.byID[id]
	c.mu.RUnlock()
	if !ok {
		return View{}, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	c.reactions.Toggle(userID, reaction, id)
	return c.view(userID, it), nil
}

// Liked lists every item in the user's liked set, in catalog order.
func (c *Catalog) Liked(userID string) []View {
	c.mu.RLock()
	var items []Item
	for _, group := range [][]Item{c.explore, c.videos} {
		for _, it := range group {
			if c.reactions.Has(userID, ReactionLike, it.ID) {
				items = append(items, it)
			}
		}
	}
	c.mu.RUnlock()
	return c.views(userID, items)
}

// Posts returns the showcase posts grid.
func (c *Catalog) Posts() []Post {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Post(nil), c.posts...)
}

// Profile returns the showcase profile seed.
func (c *Catalog) Profile() ProfileSeed {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile
}

func (c *Catalog) views(userID string, items []Item) []View {
	out := make([]View, 0, len(items))
	for _, it := range items {
		out = append(out, c.view(userID, it))
	}
	return out
}

func (c *Catalog) view(userID string, it Item) View {
	v := View{
		Item:  it,
		Liked: c.reactions.Has(userID, ReactionLike, it.ID),
		Saved: c.reactions.Has(userID, ReactionSave, it.ID),
	}
	v.EffectiveLikes = it.Likes
	if v.Liked {
		v.EffectiveLikes++
	}
	v.LikesLabel = FormatCount(v.EffectiveLikes)
	return v
}
