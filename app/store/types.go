package store

import (
	"strings"
	"time"
)

// Item is the unit of aggregation. URL is the identity key: two items whose
// URLs differ only by a trailing slash are the same item.
type Item struct {
	URL        string     `json:"url"`
	Title      string     `json:"title"`
	Excerpt    string     `json:"excerpt,omitempty"`
	Published  time.Time  `json:"published"`
	Source     string     `json:"source"`
	SourceURL  string     `json:"source_url,omitempty"`
	FeedURL    string     `json:"feed_url"`
	Enrichment Enrichment `json:"enrichment"`
}

// Enrichment holds fields written by the downstream relevance/cleanup stage.
// Ingestion never sets these; it only carries them across merges. Processed
// marks an item whose title and excerpt were rewritten downstream and must
// not be clobbered by a re-crawl.
type Enrichment struct {
	Processed bool    `json:"processed,omitempty"`
	Score     float64 `json:"score,omitempty"`
	Relevant  bool    `json:"relevant,omitempty"`
}

// Validators are the HTTP cache tokens recorded per feed URL.
type Validators struct {
	ETag         string `json:"etag,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
}

// NormalizeURL strips trailing slashes so URL equality matches item identity.
func NormalizeURL(u string) string {
	trimmed := strings.TrimRight(u, "/")
	if trimmed == "" {
		return u
	}
	return trimmed
}
