package profile

import (
	"fmt"
	"strings"
	"sync"

	"studio/internal/catalog"
	"studio/internal/domain"
)

// Tab selects the grid shown under a profile.
type Tab string

const (
	TabPosts Tab = "posts"
	TabLiked Tab = "liked"
)

// ParseTab resolves a tab id. Empty means posts.
func ParseTab(raw string) (Tab, error) {
	switch Tab(strings.ToLower(strings.TrimSpace(raw))) {
	case "", TabPosts:
		return TabPosts, nil
	case TabLiked:
		return TabLiked, nil
	}
	return "", domain.Invalid(CodeUnknownTab, "tab", raw)
}

// CodeUnknownTab is reported for an unrecognised posts tab.
const CodeUnknownTab = "unknown_tab"

// Plan describes the subscription offered on the profile screen.
type Plan struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	Features    []string `json:"features"`
}

// ProPlan is the only subscription plan.
var ProPlan = Plan{
	Name:        "AI Pro Subscription",
	Description: "Unlock unlimited generations, exclusive models, and priority processing",
	Price:       "$9.99/month",
	Features: []string{
		"Unlimited video generations",
		"Access to latest AI models",
		"Priority queue processing",
		"Advanced editing tools",
	},
}

type Stats struct {
	Followers string `json:"followers"`
	Following string `json:"following"`
	Posts     string `json:"posts"`
	Likes     string `json:"likes"`
}

// Profile is the profile screen for one user.
type Profile struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Handle      string `json:"handle"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatar_url"`
	Subscribed  bool   `json:"subscribed"`
	Stats       Stats  `json:"stats"`
	Plan        Plan   `json:"plan"`
}

// Entry is one cell of the posts grid.
type Entry struct {
	ID           string       `json:"id"`
	Kind         catalog.Kind `json:"type"`
	ThumbnailURL string       `json:"thumbnail_url"`
	Likes        int          `json:"likes"`
	Views        int          `json:"views"`
	LikesLabel   string       `json:"likes_label"`
}

// Service serves profiles backed by the catalog. Subscription flags live in
// memory.
type Service struct {
	catalog *catalog.Catalog

	mu         sync.RWMutex
	subscribed map[string]bool
}

func NewService(c *catalog.Catalog) *Service {
	return &Service{catalog: c, subscribed: make(map[string]bool)}
}

// Get builds the profile for user.
func (s *Service) Get(user domain.User) (Profile, error) {
	if user.ID == "" {
		return Profile{}, domain.ErrUnauthorized
	}
	seed := s.catalog.Profile()
	p := Profile{
		UserID:      user.ID,
		DisplayName: seed.DisplayName,
		Handle:      "@" + user.Handle(),
		Bio:         seed.Bio,
		AvatarURL:   seed.AvatarURL,
		Subscribed:  s.Subscribed(user.ID),
		Plan:        ProPlan,
	}
	if user.Name != "" {
		p.DisplayName = user.Name
	}
	if user.AvatarURL != "" {
		p.AvatarURL = user.AvatarURL
	}
	likes := seed.Likes + len(s.catalog.Liked(user.ID))
	p.Stats = Stats{
		Followers: catalog.FormatCount(seed.Followers),
		Following: catalog.FormatCount(seed.Following),
		Posts:     catalog.FormatCount(seed.Posts),
		Likes:     catalog.FormatCount(likes),
	}
	return p, nil
}

// Subscribed reports the subscription flag of userID.
func (s *Service) Subscribed(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subscribed[userID]
}

// SetSubscribed stores the subscription flag and returns it.
func (s *Service) SetSubscribed(userID string, on bool) (bool, error) {
	if userID == "" {
		return false, domain.ErrUnauthorized
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		s.subscribed[userID] = true
	} else {
		delete(s.subscribed, userID)
	}
	return on, nil
}

// Posts returns the grid for tab. The liked tab lists catalog items in the
// user's liked set.
func (s *Service) Posts(userID string, tab Tab) ([]Entry, error) {
	switch tab {
	case TabPosts:
		posts := s.catalog.Posts()
		out := make([]Entry, 0, len(posts))
		for _, p := range posts {
			out = append(out, Entry{
				ID:           p.ID,
				Kind:         p.Kind,
				ThumbnailURL: p.ThumbnailURL,
				Likes:        p.Likes,
				Views:        p.Views,
				LikesLabel:   catalog.FormatCount(p.Likes),
			})
		}
		return out, nil
	case TabLiked:
		if userID == "" {
			return nil, domain.ErrUnauthorized
		}
		liked := s.catalog.Liked(userID)
		out := make([]Entry, 0, len(liked))
		for _, v := range liked {
			out = append(out, Entry{
				ID:           v.ID,
				Kind:         v.Kind,
				ThumbnailURL: v.MediaURL,
				Likes:        v.EffectiveLikes,
				Views:        v.Views,
				LikesLabel:   v.LikesLabel,
			})
		}
		return out, nil
	}
	return nil, fmt.Errorf("tab %q: %w", tab, domain.ErrValidation)
}
