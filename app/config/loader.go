package config

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// Feed is a single syndication source from the feed list.
type Feed struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type feedList struct {
	Feeds []Feed `yaml:"feeds"`
}

// Load reads the feed list. The file is required: a missing or invalid list
// is the one condition that aborts a run before any network work.
func Load(path string) ([]Feed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed list: %w", err)
	}

	var list feedList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse feed list %s: %w", path, err)
	}

	if err := validate(list.Feeds); err != nil {
		return nil, fmt.Errorf("invalid feed list %s: %w", path, err)
	}

	return list.Feeds, nil
}

func validate(feeds []Feed) error {
	if len(feeds) == 0 {
		return fmt.Errorf("no feeds defined")
	}

	seen := make(map[string]string, len(feeds))
	for i, feed := range feeds {
		if feed.Name == "" {
			return fmt.Errorf("feed #%d: name is required", i+1)
		}
		if feed.URL == "" {
			return fmt.Errorf("feed %q: url is required", feed.Name)
		}

		parsed, err := url.Parse(feed.URL)
		if err != nil {
			return fmt.Errorf("feed %q: invalid url: %w", feed.Name, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("feed %q: url must be http or https, got %q", feed.Name, parsed.Scheme)
		}

		if other, ok := seen[feed.URL]; ok {
			return fmt.Errorf("feed %q: url already used by feed %q", feed.Name, other)
		}
		seen[feed.URL] = feed.Name
	}

	return nil
}
