package http

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"chainguard.dev/apko/pkg/apk/auth"
	"golang.org/x/time/rate"
)

type RLHTTPClient struct {
	Client      *http.Client
	Ratelimiter *rate.Limiter
}

// Do dispatches the HTTP request to the network
func (c *RLHTTPClient) Do(req *http.Request) (*http.Response, error) {
	err := c.Ratelimiter.Wait(req.Context()) // This is a blocking call. Honors the rate limit
	if err != nil {
		return nil, err
	}
	return c.Client.Do(req)
}

// NewClient return rate_limited_http client with a ratelimiter
func NewClient(rl *rate.Limiter) *RLHTTPClient {
	return &RLHTTPClient{
		Client:      http.DefaultClient,
		Ratelimiter: rl,
	}
}

// Unlimited is a client that never waits.
func Unlimited() *RLHTTPClient {
	return NewClient(rate.NewLimiter(rate.Inf, 0))
}

// Fetch GETs uri, adding credentials for apk repositories when configured,
// and returns the response body. The caller closes it.
func (c *RLHTTPClient) Fetch(ctx context.Context, uri string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", uri, err)
	}
	if err := auth.DefaultAuthenticators.AddAuth(ctx, req); err != nil {
		return nil, fmt.Errorf("adding authentication to request: %w", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", uri, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%d when getting %s", resp.StatusCode, uri)
	}

	return resp.Body, nil
}
