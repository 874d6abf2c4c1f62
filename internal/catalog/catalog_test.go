package catalog

import (
	"errors"
	"strings"
	"testing"

	"studio/internal/domain"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	seed, err := DefaultSeed()
	if err != nil {
		t.Fatalf("DefaultSeed: %v", err)
	}
	c, err := New(seed, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestReactionsToggleTwiceRestoresMembership(t *testing.T) {
	r := NewReactions()
	r.Toggle("u1", ReactionLike, "img_2")
	before := strings.Join(r.Members("u1", ReactionLike), ",")

	if !r.Toggle("u1", ReactionLike, "img_1") {
		t.Fatal("first toggle should add membership")
	}
	if r.Toggle("u1", ReactionLike, "img_1") {
		t.Fatal("second toggle should remove membership")
	}
	if after := strings.Join(r.Members("u1", ReactionLike), ","); after != before {
		t.Fatalf("membership = %q, want %q", after, before)
	}
	if r.Has("u1", ReactionSave, "img_2") {
		t.Fatal("like must not leak into saved set")
	}
	if r.Has("u2", ReactionLike, "img_2") {
		t.Fatal("sets must be per user")
	}
}

func TestCatalogToggleAndViews(t *testing.T) {
	c := newTestCatalog(t)

	v, err := c.Toggle("u1", ReactionLike, "vid_1")
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !v.Liked || v.EffectiveLikes != 12501 || v.LikesLabel != "12.5K" {
		t.Fatalf("view = %+v", v)
	}
	v, _ = c.Toggle("u1", ReactionSave, "img_3")
	if !v.Saved || v.Liked {
		t.Fatalf("view = %+v", v)
	}

	liked := c.Liked("u1")
	if len(liked) != 1 || liked[0].ID != "vid_1" {
		t.Fatalf("Liked() = %+v", liked)
	}
	other, _ := c.Get("u2", "vid_1")
	if other.Liked || other.EffectiveLikes != 12500 {
		t.Fatalf("other user view = %+v", other)
	}

	if _, err := c.Toggle("u1", ReactionLike, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Toggle unknown error = %v", err)
	}
	if _, err := c.Toggle("", ReactionLike, "img_1"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("Toggle anonymous error = %v", err)
	}
}

func TestCatalogListings(t *testing.T) {
	c := newTestCatalog(t)
	if got := c.Trending(""); len(got) != 2 || got[0].ID != "img_1" || got[1].ID != "img_5" {
		t.Fatalf("Trending() = %+v", got)
	}
	if got := c.Featured(""); len(got) != 1 || got[0].ID != "img_2" {
		t.Fatalf("Featured() = %+v", got)
	}
	feed := c.Feed("")
	if len(feed) != 3 || feed[0].Kind != KindVideo {
		t.Fatalf("Feed() = %+v", feed)
	}
	if got := c.Explore("", Query{Facet: StyleFacet(StyleFantasy)}); len(got) != 1 || got[0].ID != "img_2" {
		t.Fatalf("Explore() = %+v", got)
	}
}

func TestCatalogAddExploreSkipsDuplicates(t *testing.T) {
	c := newTestCatalog(t)
	n, err := c.AddExplore(Item{ID: "img_1", Title: "dup"}, Item{ID: "rss_1", Title: "New", Category: "Landscape"})
	if err != nil {
		t.Fatalf("AddExplore: %v", err)
	}
	if n != 1 {
		t.Fatalf("added = %d, want 1", n)
	}
	if _, err := c.AddExplore(Item{ID: "rss_2", Category: "Landscapes"}); err == nil {
		t.Fatal("expected unknown category to be rejected")
	}
}

func TestNewValidatesHandBuiltSeed(t *testing.T) {
	tests := []struct {
		name    string
		seed    Seed
		wantErr string
	}{
		{
			name:    "video reuses explore id",
			seed:    Seed{Explore: []Item{{ID: "x", Title: "Still"}}, Videos: []Item{{ID: "x", Title: "Clip"}}},
			wantErr: `duplicate item id "x"`,
		},
		{
			name:    "duplicate explore id",
			seed:    Seed{Explore: []Item{{ID: "a"}, {ID: " a "}}},
			wantErr: `duplicate item id "a"`,
		},
		{
			name:    "video without id",
			seed:    Seed{Videos: []Item{{Title: "Clip"}}},
			wantErr: "id is required",
		},
		{
			name:    "video with unknown category",
			seed:    Seed{Videos: []Item{{ID: "v", Category: "Landscapes"}}},
			wantErr: "unknown category",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			seed := tc.seed
			_, err := New(&seed, nil)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("New error = %v, want %q", err, tc.wantErr)
			}
		})
	}

	c, err := New(&Seed{
		Explore: []Item{{ID: "img", Title: "Still"}},
		Videos:  []Item{{ID: " vid ", Title: "Clip", Category: "Landscape"}},
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v, err := c.Get("", "vid")
	if err != nil {
		t.Fatalf("Get(vid): %v", err)
	}
	if v.Kind != KindVideo || v.Category != "landscape" {
		t.Fatalf("video = %+v", v.Item)
	}
	if img, err := c.Get("", "img"); err != nil || img.Kind != KindImage {
		t.Fatalf("Get(img) = %+v, %v", img.Item, err)
	}
}

func TestFormatCount(t *testing.T) {
	tests := map[int]string{
		0:       "0",
		999:     "999",
		1000:    "1.0K",
		12500:   "12.5K",
		15700:   "15.7K",
		2100000: "2.1M",
	}
	for in, want := range tests {
		if got := FormatCount(in); got != want {
			t.Fatalf("FormatCount(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadSeedRejectsUnknownStyle(t *testing.T) {
	doc := []byte(`
[[explore]]
id = "x"
title = "Bad"
style = "Cyber"
`)
	if _, err := LoadSeed(doc); err == nil {
		t.Fatal("expected error for unknown style")
	}
	dup := []byte(`
[[explore]]
id = "x"
[[videos]]
id = "x"
`)
	if _, err := LoadSeed(dup); err == nil {
		t.Fatal("expected error for duplicate ids")
	}
}
