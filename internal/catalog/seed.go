package catalog

import (
	_ "embed"
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

//go:embed seed.toml
var defaultSeed []byte

// Post is an entry of the profile posts grid.
type Post struct {
	ID           string `toml:"id" json:"id"`
	Kind         Kind   `toml:"kind" json:"type"`
	ThumbnailURL string `toml:"thumbnail_url" json:"thumbnail_url"`
	Likes        int    `toml:"likes" json:"likes"`
	Views        int    `toml:"views" json:"views"`
}

// ProfileSeed holds the showcase profile data.
type ProfileSeed struct {
	DisplayName string `toml:"display_name"`
	Bio         string `toml:"bio"`
	AvatarURL   string `toml:"avatar_url"`
	Followers   int    `toml:"followers"`
	Following   int    `toml:"following"`
	Posts       int    `toml:"posts"`
	Likes       int    `toml:"likes"`
}

// Seed is the content bundled with the service.
type Seed struct {
	Explore []Item      `toml:"explore"`
	Videos  []Item      `toml:"videos"`
	Posts   []Post      `toml:"posts"`
	Profile ProfileSeed `toml:"profile"`
}

// LoadSeed decodes and validates a TOML seed document.
func LoadSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := toml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	seen := make(map[string]struct{})
	for _, group := range [][]Item{seed.Explore, seed.Videos} {
		for i := range group {
			if err := group[i].normalize(); err != nil {
				return nil, err
			}
			if _, dup := seen[group[i].ID]; dup {
				return nil, fmt.Errorf("duplicate item id %q", group[i].ID)
			}
			seen[group[i].ID] = struct{}{}
		}
	}
	for i := range seed.Videos {
		seed.Videos[i].Kind = KindVideo
	}
	return &seed, nil
}

// DefaultSeed returns the embedded seed content.
func DefaultSeed() (*Seed, error) {
	return LoadSeed(defaultSeed)
}
