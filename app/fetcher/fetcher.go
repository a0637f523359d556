package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const (
	// maxRedirects bounds how far a feed URL is chased before giving up.
	maxRedirects = 5
	// maxBodySize caps a single feed document read.
	maxBodySize = 10 << 20
)

// Error is a failed fetch. Status is the HTTP status code when the server
// answered, 0 for network-level failures.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch failed: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("fetch failed: %s", e.Message)
}

// Conditional carries the validators from a previous fetch of the same URL.
// Zero values mean an unconditional request.
type Conditional struct {
	ETag         string
	LastModified string
}

// Result is a successful fetch. When NotModified is set the server answered
// 304 and Body is nil; otherwise Body holds the document and ETag and
// LastModified hold whatever validators the response carried.
type Result struct {
	Body         []byte
	ETag         string
	LastModified string
	NotModified  bool
}

type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient builds a fetch client with a pooled transport shared across all
// requests and the given per-request timeout.
func NewClient(userAgent string, timeout time.Duration) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return errors.New("too many redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
	}
}

// Fetch issues a conditional GET. A 304 short-circuits to a NotModified
// result before any body is read; every non-2xx/304 status is an *Error.
func (c *Client) Fetch(ctx context.Context, url string, cond Conditional) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to create request: %s", err)}
	}

	req.Header.Set("User-Agent", c.userAgent)
	if cond.ETag != "" {
		req.Header.Set("If-None-Match", cond.ETag)
	}
	if cond.LastModified != "" {
		req.Header.Set("If-Modified-Since", cond.LastModified)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return &Result{NotModified: true}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Status: resp.StatusCode, Message: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to read response body: %s", err)}
	}

	return &Result{
		Body:         body,
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
	}, nil
}
