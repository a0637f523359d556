package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"

	"github.com/peterc/planetruby/app/store"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses a raw RSS or Atom document into store items. Items with no
// title, no link, or no resolvable publish date are dropped, as are items
// published before cutoff. The second return value is the feed's best-effort
// canonical site URL, empty when none of the candidates qualify.
func (p *Parser) Run(data []byte, sourceName, feedURL string, cutoff time.Time) ([]store.Item, string, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse feed: %w", err)
	}

	siteURL := deriveSiteURL(parsed, feedURL)

	items := make([]store.Item, 0, len(parsed.Items))
	for _, raw := range parsed.Items {
		item, ok := p.normalizeItem(raw, sourceName, siteURL, feedURL, cutoff)
		if !ok {
			continue
		}
		items = append(items, item)
	}

	return items, siteURL, nil
}

func (p *Parser) normalizeItem(raw *gofeed.Item, sourceName, siteURL, feedURL string, cutoff time.Time) (store.Item, bool) {
	title := Normalize(raw.Title, 0)
	if title == "" {
		return store.Item{}, false
	}

	link := resolveLink(raw.Link, feedURL)
	if link == "" {
		return store.Item{}, false
	}

	published, ok := resolvePublished(raw)
	if !ok || published.Before(cutoff) {
		return store.Item{}, false
	}

	return store.Item{
		URL:       store.NormalizeURL(link),
		Title:     title,
		Excerpt:   Normalize(cmp.Or(raw.Description, raw.Content), MaxExcerptLength),
		Published: published,
		Source:    sourceName,
		SourceURL: siteURL,
		FeedURL:   feedURL,
	}, true
}

// resolvePublished tries the parsed RSS/Atom dates first, then falls back to
// reparsing the raw strings (covers dc:date and the looser timestamp formats
// gofeed gives up on).
func resolvePublished(raw *gofeed.Item) (time.Time, bool) {
	if raw.PublishedParsed != nil {
		return raw.PublishedParsed.UTC(), true
	}
	if raw.UpdatedParsed != nil {
		return raw.UpdatedParsed.UTC(), true
	}

	candidates := []string{raw.Published, raw.Updated}
	if raw.DublinCoreExt != nil {
		candidates = append(candidates, raw.DublinCoreExt.Date...)
	}
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if t, err := dateparse.ParseAny(candidate); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}

func resolveLink(link, feedURL string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}

	parsed, err := url.Parse(link)
	if err != nil {
		return ""
	}
	if parsed.IsAbs() {
		return link
	}

	base, err := url.Parse(feedURL)
	if err != nil {
		return ""
	}

	return base.ResolveReference(parsed).String()
}

// deriveSiteURL picks a canonical site URL for the feed: the explicit
// alternate link when present, otherwise the first feed-level link that does
// not look like a feed endpoint itself.
func deriveSiteURL(parsed *gofeed.Feed, feedURL string) string {
	candidates := make([]string, 0, len(parsed.Links)+1)
	if parsed.Link != "" {
		candidates = append(candidates, parsed.Link)
	}
	for _, link := range parsed.Links {
		if link != parsed.FeedLink {
			candidates = append(candidates, link)
		}
	}

	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" || candidate == "/" {
			continue
		}
		resolved := resolveLink(candidate, feedURL)
		if resolved == "" || looksLikeFeedEndpoint(resolved) {
			continue
		}
		return resolved
	}

	return ""
}

var feedExtensions = []string{".xml", ".rss", ".atom", ".json", ".rdf"}

func looksLikeFeedEndpoint(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return true
	}

	host := parsed.Hostname()
	if host == "localhost" || host == "127.0.0.1" || host == "::1" {
		return true
	}

	path := strings.ToLower(parsed.Path)
	for _, ext := range feedExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	for _, segment := range strings.Split(strings.Trim(path, "/"), "/") {
		switch segment {
		case "feed", "feeds", "rss", "atom":
			return true
		}
	}

	return false
}
