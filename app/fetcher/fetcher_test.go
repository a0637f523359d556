package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient() *Client {
	return NewClient("test-agent/1.0", 5*time.Second)
}

func TestFetchReturnsBodyAndValidators(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "test-agent/1.0" {
			t.Errorf("Expected identifying user agent, got: %s", got)
		}
		w.Header().Set("ETag", `"v1"`)
		w.Header().Set("Last-Modified", "Mon, 03 Jul 2023 10:00:00 GMT")
		fmt.Fprint(w, "<rss/>")
	}))
	defer server.Close()

	result, err := newTestClient().Fetch(context.Background(), server.URL, Conditional{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.NotModified {
		t.Error("Expected a full response, got not-modified")
	}
	if string(result.Body) != "<rss/>" {
		t.Errorf("Expected body '<rss/>', got: %s", result.Body)
	}
	if result.ETag != `"v1"` {
		t.Errorf("Expected ETag '\"v1\"', got: %s", result.ETag)
	}
	if result.LastModified != "Mon, 03 Jul 2023 10:00:00 GMT" {
		t.Errorf("Expected Last-Modified header, got: %s", result.LastModified)
	}
}

func TestFetchSendsConditionalHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") != `"v1"` {
			t.Errorf("Expected If-None-Match, got: %s", r.Header.Get("If-None-Match"))
		}
		if r.Header.Get("If-Modified-Since") != "Mon, 03 Jul 2023 10:00:00 GMT" {
			t.Errorf("Expected If-Modified-Since, got: %s", r.Header.Get("If-Modified-Since"))
		}
		w.WriteHeader(http.StatusNotModified)
	}))
	defer server.Close()

	result, err := newTestClient().Fetch(context.Background(), server.URL, Conditional{
		ETag:         `"v1"`,
		LastModified: "Mon, 03 Jul 2023 10:00:00 GMT",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !result.NotModified {
		t.Error("Expected not-modified result for a 304")
	}
	if result.Body != nil {
		t.Errorf("Expected no body on 304, got: %s", result.Body)
	}
}

func TestFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	_, err := newTestClient().Fetch(context.Background(), server.URL, Conditional{})
	if err == nil {
		t.Fatal("Expected an error for a 410 response")
	}

	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected *fetcher.Error, got: %T", err)
	}
	if fetchErr.Status != http.StatusGone {
		t.Errorf("Expected status 410, got: %d", fetchErr.Status)
	}
}

func TestFetchNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := newTestClient().Fetch(context.Background(), server.URL, Conditional{})
	if err == nil {
		t.Fatal("Expected an error for a refused connection")
	}

	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected *fetcher.Error, got: %T", err)
	}
	if fetchErr.Status != 0 {
		t.Errorf("Expected status 0 for a network error, got: %d", fetchErr.Status)
	}
}

func redirectChainServer(t *testing.T, hops int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var step int
		fmt.Sscanf(r.URL.Path, "/step/%d", &step)
		if step < hops {
			// Relative Location: the client must resolve it against
			// the current URL.
			http.Redirect(w, r, fmt.Sprintf("/step/%d", step+1), http.StatusFound)
			return
		}
		fmt.Fprint(w, "arrived")
	}))
}

func TestFetchFollowsRedirects(t *testing.T) {
	server := redirectChainServer(t, 5)
	defer server.Close()

	result, err := newTestClient().Fetch(context.Background(), server.URL+"/step/0", Conditional{})
	if err != nil {
		t.Fatalf("Expected 5 redirects to be followed, got: %v", err)
	}
	if string(result.Body) != "arrived" {
		t.Errorf("Expected final body, got: %s", result.Body)
	}
}

func TestFetchTooManyRedirects(t *testing.T) {
	server := redirectChainServer(t, 6)
	defer server.Close()

	_, err := newTestClient().Fetch(context.Background(), server.URL+"/step/0", Conditional{})
	if err == nil {
		t.Fatal("Expected an error after exceeding the redirect bound")
	}
	if !strings.Contains(err.Error(), "too many redirects") {
		t.Errorf("Expected redirect-limit error, got: %v", err)
	}
}
