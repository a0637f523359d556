package store

import (
	"slices"
	"strings"
	"time"
)

// Merge combines freshly crawled items with the previously persisted set.
//
// Existing entries older than cutoff are pruned first, so retention holds
// even after a long gap between runs. Fresh items then either update the
// entry with the same normalized URL or get inserted. Entries the crawl did
// not see this run (feed down, 304) are kept as-is; the store only shrinks
// through retention.
//
// An update overwrites the crawl-sourced fields, except that title and
// excerpt are left alone when the existing entry was already processed
// downstream, so enrichment work is never silently discarded.
func Merge(existing, fresh []Item, cutoff time.Time) []Item {
	merged := make([]Item, 0, len(existing)+len(fresh))
	index := make(map[string]int, len(existing))

	for _, item := range existing {
		if item.Published.Before(cutoff) {
			continue
		}
		index[NormalizeURL(item.URL)] = len(merged)
		merged = append(merged, item)
	}

	for _, item := range fresh {
		if item.Published.Before(cutoff) {
			continue
		}

		key := NormalizeURL(item.URL)
		item.URL = key

		pos, ok := index[key]
		if !ok {
			index[key] = len(merged)
			merged = append(merged, item)
			continue
		}

		current := merged[pos]
		if !current.Enrichment.Processed {
			current.Title = item.Title
			current.Excerpt = item.Excerpt
		}
		current.URL = key
		current.Published = item.Published
		current.Source = item.Source
		current.SourceURL = item.SourceURL
		current.FeedURL = item.FeedURL
		merged[pos] = current
	}

	// Newest first; ties break on URL so repeated runs over unchanged input
	// serialize identically.
	slices.SortFunc(merged, func(a, b Item) int {
		if c := b.Published.Compare(a.Published); c != 0 {
			return c
		}
		return strings.Compare(a.URL, b.URL)
	})

	return merged
}
