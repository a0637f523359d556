package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFeedList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feeds.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFeedList(t *testing.T) {
	path := writeFeedList(t, `feeds:
  - name: Ruby Weekly
    url: https://rubyweekly.com/rss
  - name: Ruby on Rails Blog
    url: https://rubyonrails.org/blog/feed.xml
`)

	feeds, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(feeds) != 2 {
		t.Fatalf("Expected 2 feeds, got: %d", len(feeds))
	}
	if feeds[0].Name != "Ruby Weekly" {
		t.Errorf("Expected name 'Ruby Weekly', got: %s", feeds[0].Name)
	}
	if feeds[0].URL != "https://rubyweekly.com/rss" {
		t.Errorf("Expected URL 'https://rubyweekly.com/rss', got: %s", feeds[0].URL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("Expected an error for a missing feed list")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeFeedList(t, "feeds: [unclosed")
	if _, err := Load(path); err == nil {
		t.Error("Expected an error for invalid YAML")
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty list", "feeds: []"},
		{"missing name", "feeds:\n  - url: https://example.com/feed\n"},
		{"missing url", "feeds:\n  - name: Example\n"},
		{"bad scheme", "feeds:\n  - name: Example\n    url: ftp://example.com/feed\n"},
		{"duplicate url", "feeds:\n  - name: One\n    url: https://example.com/feed\n  - name: Two\n    url: https://example.com/feed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFeedList(t, tt.content)
			if _, err := Load(path); err == nil {
				t.Error("Expected a validation error")
			}
		})
	}
}
