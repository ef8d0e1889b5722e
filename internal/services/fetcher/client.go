// Package fetcher wraps all outbound HTTP traffic: page fetches, redirect
// resolution and media byte streams. Failures are translated into a small
// typed taxonomy; nothing is retried here.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"

	"github.com/grabtok/grabtok/internal/config"
)

// FailureKind distinguishes how an upstream fetch failed.
type FailureKind string

const (
	FailureTimeout    FailureKind = "timeout"
	FailureHTTPStatus FailureKind = "http_status"
	FailureNetwork    FailureKind = "network"
)

// FetchError is the typed failure returned for any unsuccessful fetch.
type FetchError struct {
	Kind   FailureKind
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FailureTimeout:
		return "upstream fetch timed out"
	case FailureHTTPStatus:
		return fmt.Sprintf("upstream returned status %d", e.Status)
	default:
		return fmt.Sprintf("upstream fetch failed: %v", e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// userAgents is rotated per request. Best-effort header noise, nothing
// depends on it for correctness.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
}

var acceptLanguages = []string{"en-US,en;q=0.9", "en-GB,en;q=0.8", "en-US,en;q=0.5"}

type Client struct {
	pageClient     *http.Client
	streamClient   *http.Client
	redirectClient *http.Client
}

// New builds a client with the configured timeouts and redirect caps.
func New(cfg *config.FetchConfig) *Client {
	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 5
	}
	return &Client{
		pageClient: &http.Client{
			Timeout:       cfg.Timeout,
			CheckRedirect: redirectCap(maxRedirects),
		},
		streamClient: &http.Client{
			Timeout:       cfg.StreamTimeout,
			CheckRedirect: redirectCap(maxRedirects),
		},
		// Redirect resolution follows longer chains than a regular fetch.
		redirectClient: &http.Client{
			Timeout:       cfg.Timeout,
			CheckRedirect: redirectCap(10),
		},
	}
}

func redirectCap(max int) func(req *http.Request, via []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return fmt.Errorf("stopped after %d redirects", max)
		}
		return nil
	}
}

// Get fetches the URL and returns the full body. Any non-2xx status, timeout
// or transport error comes back as a *FetchError.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, c.pageClient, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(err)
	}
	return body, nil
}

// Stream fetches the URL with the longer streaming timeout and returns the
// response; the caller owns the body and must close it.
func (c *Client) Stream(ctx context.Context, url string) (*http.Response, error) {
	return c.do(ctx, c.streamClient, url)
}

// ResolveFinalURL follows redirects (up to 10) and reports the terminal
// address actually serving the resource. Any 2xx or 3xx terminal status is
// accepted; other statuses and transport failures return an error so the
// caller can fall back to the original URL.
func (c *Client) ResolveFinalURL(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", classify(err)
	}
	setBrowserHeaders(req)

	resp, err := c.redirectClient.Do(req)
	if err != nil {
		return "", classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &FetchError{Kind: FailureHTTPStatus, Status: resp.StatusCode}
	}
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String(), nil
	}
	return url, nil
}

func (c *Client) do(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, classify(err)
	}
	setBrowserHeaders(req)

	resp, err := client.Do(req)
	if err != nil {
		return nil, classify(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &FetchError{Kind: FailureHTTPStatus, Status: resp.StatusCode}
	}

	return resp, nil
}

func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", acceptLanguages[rand.Intn(len(acceptLanguages))])
}

func classify(err error) *FetchError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &FetchError{Kind: FailureTimeout, Err: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &FetchError{Kind: FailureTimeout, Err: err}
	default:
		return &FetchError{Kind: FailureNetwork, Err: err}
	}
}
