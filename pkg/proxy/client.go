// Package proxy exposes the authenticated GitHub repository browsing API.
package proxy

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v60/github"
)

const (
	// userAgent identifies the gateway to GitHub on proxied calls.
	userAgent = "Document-Generator-App"

	// Default HTTP timeout for upstream calls.
	defaultTimeout = 30 * time.Second
)

// ClientFactory builds go-github clients bound to a session's access token.
type ClientFactory struct {
	baseURL string
}

// NewClientFactory creates a factory. apiBaseURL overrides the GitHub API
// base URL; the empty string means api.github.com.
func NewClientFactory(apiBaseURL string) *ClientFactory {
	return &ClientFactory{baseURL: apiBaseURL}
}

// New returns a GitHub client authenticated with the given token.
func (f *ClientFactory) New(token string) (*gh.Client, error) {
	httpClient := &http.Client{
		Transport: &tokenTransport{token: token},
		Timeout:   defaultTimeout,
	}

	client := gh.NewClient(httpClient)
	client.UserAgent = userAgent

	if f.baseURL != "" {
		base, err := url.Parse(f.baseURL)
		if err != nil {
			return nil, fmt.Errorf("parsing API base URL: %w", err)
		}

		// go-github requires a trailing slash on the base URL.
		if !strings.HasSuffix(base.Path, "/") {
			base.Path += "/"
		}

		client.BaseURL = base
	}

	return client, nil
}

// tokenTransport adds Bearer token auth to HTTP requests.
type tokenTransport struct {
	token string
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+t.token)

	return http.DefaultTransport.RoundTrip(req)
}
