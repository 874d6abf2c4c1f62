package catalog

import (
	"errors"
	"strings"
	"testing"

	"studio/internal/domain"
)

func seedItems(t *testing.T) []Item {
	t.Helper()
	seed, err := DefaultSeed()
	if err != nil {
		t.Fatalf("DefaultSeed: %v", err)
	}
	return seed.Explore
}

func ids(items []Item) string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return strings.Join(out, ",")
}

func TestFilter(t *testing.T) {
	items := seedItems(t)
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{name: "query matches title only", query: Query{Text: "cyberpunk", Facet: All}, want: "img_1"},
		{name: "case insensitive", query: Query{Text: "CyBeRpUnK"}, want: "img_1"},
		{name: "matches author", query: Query{Text: "retro"}, want: "img_4"},
		{name: "empty query keeps source order", query: Query{}, want: "img_1,img_2,img_3,img_4,img_5,img_6"},
		{name: "category facet", query: Query{Facet: CategoryFacet(CategoryPortrait)}, want: "img_1,img_6"},
		{name: "style facet", query: Query{Facet: StyleFacet(StyleAnime)}, want: "img_5"},
		{name: "query and facet", query: Query{Text: "portrait", Facet: StyleFacet(StyleRealistic)}, want: "img_6"},
		{name: "no match", query: Query{Text: "portrait", Facet: CategoryFacet(CategoryLandscape)}, want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ids(Filter(items, tc.query)); got != tc.want {
				t.Fatalf("Filter() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFilterUnicodeFolding(t *testing.T) {
	items := []Item{{ID: "a", Title: "STRASSE at night", Author: "x"}, {ID: "b", Title: "Ünïcode Dream", Author: "y"}}
	if got := ids(Filter(items, Query{Text: "ünïcode"})); got != "b" {
		t.Fatalf("Filter() = %q, want b", got)
	}
}

func TestParseFacet(t *testing.T) {
	tests := []struct {
		in   string
		want Facet
	}{
		{in: "", want: All},
		{in: "all", want: All},
		{in: "Portrait", want: CategoryFacet(CategoryPortrait)},
		{in: " photography ", want: CategoryFacet(CategoryPhotography)},
		{in: "cyberpunk", want: StyleFacet(StyleCyberpunk)},
		{in: "VINTAGE", want: StyleFacet(StyleVintage)},
	}
	for _, tc := range tests {
		got, err := ParseFacet(tc.in)
		if err != nil {
			t.Fatalf("ParseFacet(%q) error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseFacet(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}

	for _, typo := range []string{"portrat", "cyber-punk", "landscapes"} {
		_, err := ParseFacet(typo)
		var verr *domain.ValidationError
		if !errors.As(err, &verr) || verr.Code != domain.CodeUnknownFacet {
			t.Fatalf("ParseFacet(%q) error = %v, want unknown_facet", typo, err)
		}
	}
}

func TestFacetsListing(t *testing.T) {
	facets := Facets()
	if len(facets) != 12 {
		t.Fatalf("len(Facets()) = %d, want 12", len(facets))
	}
	if facets[0].ID != "all" || facets[1].ID != "portrait" || facets[len(facets)-1].ID != "realistic" {
		t.Fatalf("unexpected order %+v", facets)
	}
	for _, f := range facets {
		if _, err := ParseFacet(f.ID); err != nil {
			t.Fatalf("listed facet %q does not parse: %v", f.ID, err)
		}
	}
}
