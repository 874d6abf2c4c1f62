package catalog

import (
	"fmt"
	"strings"
)

// Kind distinguishes still images from videos.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Item is an immutable piece of seed content.
type Item struct {
	ID          string   `toml:"id" json:"id"`
	Kind        Kind     `toml:"kind" json:"kind"`
	Title       string   `toml:"title" json:"title"`
	Description string   `toml:"description" json:"description,omitempty"`
	MediaURL    string   `toml:"media_url" json:"media_url"`
	Author      string   `toml:"author" json:"author"`
	Likes       int      `toml:"likes" json:"likes"`
	Comments    int      `toml:"comments" json:"comments"`
	Shares      int      `toml:"shares" json:"shares"`
	Views       int      `toml:"views" json:"views"`
	Category    Category `toml:"category" json:"category,omitempty"`
	Style       Style    `toml:"style" json:"style,omitempty"`
	Tags        []string `toml:"tags" json:"tags,omitempty"`
	Trending    bool     `toml:"trending" json:"trending,omitempty"`
	Featured    bool     `toml:"featured" json:"featured,omitempty"`
}

// normalize lower-cases the facet labels and checks them against the closed
// category and style tables.
func (it *Item) normalize() error {
	it.ID = strings.TrimSpace(it.ID)
	if it.ID == "" {
		return fmt.Errorf("item %q: id is required", it.Title)
	}
	if it.Kind == "" {
		it.Kind = KindImage
	}
	if it.Kind != KindImage && it.Kind != KindVideo {
		return fmt.Errorf("item %s: unknown kind %q", it.ID, it.Kind)
	}
	if it.Category != "" {
		c, ok := ParseCategory(string(it.Category))
		if !ok {
			return fmt.Errorf("item %s: unknown category %q", it.ID, it.Category)
		}
		it.Category = c
	}
	if it.Style != "" {
		s, ok := ParseStyle(string(it.Style))
		if !ok {
			return fmt.Errorf("item %s: unknown style %q", it.ID, it.Style)
		}
		it.Style = s
	}
	return nil
}

// FormatCount renders an engagement counter compactly, e.g. 12500 as 12.5K.
func FormatCount(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}
