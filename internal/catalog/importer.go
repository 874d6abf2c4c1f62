package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
)

// Importer turns RSS/Atom entries with images into explore items.
type Importer struct {
	parser   *gofeed.Parser
	category Category
	style    Style
}

type ImporterOptions struct {
	HTTPClient *http.Client
	// Category and Style are applied to entries whose own categories do not
	// name a known facet.
	Category Category
	Style    Style
}

func NewImporter(opts ImporterOptions) *Importer {
	parser := gofeed.NewParser()
	if opts.HTTPClient != nil {
		parser.Client = opts.HTTPClient
	}
	category := opts.Category
	if category == "" {
		category = CategoryPhotography
	}
	return &Importer{parser: parser, category: category, style: opts.Style}
}

// ImportURL fetches and converts a remote feed.
func (im *Importer) ImportURL(ctx context.Context, feedURL string) ([]Item, error) {
	feed, err := im.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}
	return im.convert(feed), nil
}

// Import converts a feed document.
func (im *Importer) Import(r io.Reader) ([]Item, error) {
	feed, err := im.parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return im.convert(feed), nil
}

func (im *Importer) convert(feed *gofeed.Feed) []Item {
	out := make([]Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		media := entryImage(entry)
		if media == "" {
			continue
		}
		guid := entry.GUID
		if guid == "" {
			guid = entry.Link
		}
		if guid == "" {
			guid = media
		}
		it := Item{
			ID:          "rss_" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(guid)).String(),
			Kind:        KindImage,
			Title:       strings.TrimSpace(entry.Title),
			Description: strings.TrimSpace(entry.Description),
			MediaURL:    media,
			Author:      entryAuthor(feed, entry),
			Category:    im.category,
			Style:       im.style,
			Tags:        entry.Categories,
		}
		for _, label := range entry.Categories {
			if c, ok := ParseCategory(label); ok {
				it.Category = c
			}
			if s, ok := ParseStyle(label); ok {
				it.Style = s
			}
		}
		out = append(out, it)
	}
	return out
}

func entryImage(entry *gofeed.Item) string {
	if entry.Image != nil && entry.Image.URL != "" {
		return entry.Image.URL
	}
	for _, enc := range entry.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}

func entryAuthor(feed *gofeed.Feed, entry *gofeed.Item) string {
	for _, p := range entry.Authors {
		if p != nil && p.Name != "" {
			return p.Name
		}
	}
	return strings.TrimSpace(feed.Title)
}
