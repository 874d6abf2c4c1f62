package catalog

import (
	"fmt"
	"strings"

	"studio/internal/domain"
)

// Category is the subject classification of a content item.
type Category string

const (
	CategoryPortrait    Category = "portrait"
	CategoryLandscape   Category = "landscape"
	CategoryAbstract    Category = "abstract"
	CategoryPhotography Category = "photography"
	CategoryCharacter   Category = "character"
)

// Style is the rendering style of a content item.
type Style string

const (
	StyleCyberpunk Style = "cyberpunk"
	StyleFantasy   Style = "fantasy"
	StyleModern    Style = "modern"
	StyleVintage   Style = "vintage"
	StyleAnime     Style = "anime"
	StyleRealistic Style = "realistic"
)

var categoryNames = map[Category]string{
	CategoryPortrait:    "Portrait",
	CategoryLandscape:   "Landscape",
	CategoryAbstract:    "Abstract",
	CategoryPhotography: "Photography",
	CategoryCharacter:   "Character",
}

var styleNames = map[Style]string{
	StyleCyberpunk: "Cyberpunk",
	StyleFantasy:   "Fantasy",
	StyleModern:    "Modern",
	StyleVintage:   "Vintage",
	StyleAnime:     "Anime",
	StyleRealistic: "Realistic",
}

// ParseCategory maps a label such as "Portrait" to its Category.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	_, ok := categoryNames[c]
	return c, ok
}

// ParseStyle maps a label such as "Cyberpunk" to its Style.
func ParseStyle(s string) (Style, bool) {
	st := Style(strings.ToLower(strings.TrimSpace(s)))
	_, ok := styleNames[st]
	return st, ok
}

// FacetKind tags which dimension a Facet selects on.
type FacetKind string

const (
	FacetAll      FacetKind = "all"
	FacetCategory FacetKind = "category"
	FacetStyle    FacetKind = "style"
)

// Facet is a single-select filter: everything, one category or one style.
type Facet struct {
	Kind     FacetKind `json:"type"`
	Category Category  `json:"-"`
	Style    Style     `json:"-"`
}

// All matches every item.
var All = Facet{Kind: FacetAll}

func CategoryFacet(c Category) Facet { return Facet{Kind: FacetCategory, Category: c} }

func StyleFacet(s Style) Facet { return Facet{Kind: FacetStyle, Style: s} }

// ID is the wire identifier of the facet.
func (f Facet) ID() string {
	switch f.Kind {
	case FacetCategory:
		return string(f.Category)
	case FacetStyle:
		return string(f.Style)
	default:
		return string(FacetAll)
	}
}

func (f Facet) Name() string {
	switch f.Kind {
	case FacetCategory:
		return categoryNames[f.Category]
	case FacetStyle:
		return styleNames[f.Style]
	default:
		return "All"
	}
}

// Matches reports whether item belongs to the facet.
func (f Facet) Matches(item Item) bool {
	switch f.Kind {
	case FacetCategory:
		return item.Category == f.Category
	case FacetStyle:
		return item.Style == f.Style
	default:
		return true
	}
}

// ParseFacet resolves a facet id. Empty input selects All; unknown ids are
// rejected instead of silently matching nothing.
func ParseFacet(id string) (Facet, error) {
	key := strings.ToLower(strings.TrimSpace(id))
	if key == "" || key == string(FacetAll) {
		return All, nil
	}
	if c, ok := ParseCategory(key); ok {
		return CategoryFacet(c), nil
	}
	if s, ok := ParseStyle(key); ok {
		return StyleFacet(s), nil
	}
	return Facet{}, domain.Invalid(domain.CodeUnknownFacet, "facet", fmt.Sprintf("unknown facet %q", id))
}

// FacetOption is the client-facing description of a facet.
type FacetOption struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Type FacetKind `json:"type"`
}

var categoryOrder = []Category{CategoryPortrait, CategoryLandscape, CategoryAbstract, CategoryPhotography, CategoryCharacter}

var styleOrder = []Style{StyleCyberpunk, StyleFantasy, StyleModern, StyleVintage, StyleAnime, StyleRealistic}

// Facets lists every facet in display order, All first.
func Facets() []FacetOption {
	out := []FacetOption{{ID: All.ID(), Name: All.Name(), Type: FacetCategory}}
	for _, c := range categoryOrder {
		f := CategoryFacet(c)
		out = append(out, FacetOption{ID: f.ID(), Name: f.Name(), Type: FacetCategory})
	}
	for _, s := range styleOrder {
		f := StyleFacet(s)
		out = append(out, FacetOption{ID: f.ID(), Name: f.Name(), Type: FacetStyle})
	}
	return out
}
