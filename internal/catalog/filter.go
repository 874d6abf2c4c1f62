package catalog

import (
	"strings"

	"golang.org/x/text/cases"
)

// Query selects items by free text and facet.
type Query struct {
	Text  string
	Facet Facet
}

// Filter keeps the items whose title or author contains the query text,
// ignoring case, and that belong to the facet. Source order is preserved.
func Filter(items []Item, q Query) []Item {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(q.Text))
	facet := q.Facet
	if facet.Kind == "" {
		facet = All
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if !facet.Matches(it) {
			continue
		}
		if needle != "" &&
			!strings.Contains(fold.String(it.Title), needle) &&
			!strings.Contains(fold.String(it.Author), needle) {
			continue
		}
		out = append(out, it)
	}
	return out
}
