// Package github provides the GitHub OAuth client used by the gateway.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/PrathameshJoshi123/doc-generator/pkg/config"
)

// Error sentinels for GitHub OAuth operations.
var (
	// ErrExchangeFailed indicates the authorization code could not be
	// exchanged for an access token (invalid, expired or reused code,
	// bad client credentials, or transport failure).
	ErrExchangeFailed = errors.New("GitHub token exchange failed")

	// ErrUpstreamRejected indicates GitHub's REST API rejected a call.
	ErrUpstreamRejected = errors.New("GitHub API error")
)

const (
	// GitHub OAuth endpoints.
	defaultAuthorizeURL = "https://github.com/login/oauth/authorize"
	defaultTokenURL     = "https://github.com/login/oauth/access_token"
	defaultAPIURL       = "https://api.github.com"

	// OAuthScope is the scope requested during authorization. Repository
	// browsing needs full repo access to cover private repositories.
	OAuthScope = "repo"

	// userAgent identifies the gateway to GitHub. The REST API rejects
	// requests without a User-Agent header, so every call sets it.
	userAgent = "Document-Generator-App"

	// Default HTTP timeout for upstream calls.
	defaultTimeout = 30 * time.Second
)

// Client performs GitHub OAuth code exchange and profile fetches.
type Client struct {
	log          logrus.FieldLogger
	clientID     string
	clientSecret string
	httpClient   *http.Client

	// Endpoint overrides for tests; defaults point at github.com.
	authorizeURL string
	tokenURL     string
	apiURL       string
}

// NewClient creates a new GitHub OAuth client.
func NewClient(log logrus.FieldLogger, cfg config.GitHubConfig) *Client {
	return &Client{
		log:          log.WithField("component", "github_client"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		authorizeURL: defaultAuthorizeURL,
		tokenURL:     defaultTokenURL,
		apiURL:       defaultAPIURL,
	}
}

// AuthorizationURL generates the GitHub OAuth authorization URL.
func (c *Client) AuthorizationURL(redirectURI string) string {
	params := url.Values{
		"client_id":    {c.clientID},
		"redirect_uri": {redirectURI},
		"scope":        {OAuthScope},
	}

	authURL := fmt.Sprintf("%s?%s", c.authorizeURL, params.Encode())

	c.log.WithField("redirect_uri", redirectURI).Debug("Generated GitHub authorization URL")

	return authURL
}

// ExchangeCode exchanges an authorization code for an access token. GitHub
// reports OAuth failures as a 200 with an error body, so both the error field
// and a missing access_token map to ErrExchangeFailed.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	data := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"code":          {code},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", ErrExchangeFailed, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: exchanging code: %v", ErrExchangeFailed, err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrExchangeFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"response":    string(body),
		}).Error("GitHub token exchange failed")

		return "", fmt.Errorf("%w: status %d", ErrExchangeFailed, resp.StatusCode)
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("%w: parsing response: %v", ErrExchangeFailed, err)
	}

	if tokenResp.Error != "" {
		c.log.WithFields(logrus.Fields{
			"error":       tokenResp.Error,
			"description": tokenResp.ErrorDescription,
		}).Error("GitHub OAuth error")

		return "", fmt.Errorf("%w: %s: %s", ErrExchangeFailed, tokenResp.Error, tokenResp.ErrorDescription)
	}

	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("%w: no access_token in response", ErrExchangeFailed)
	}

	return tokenResp.AccessToken, nil
}

// FetchProfile fetches the authenticated user's profile. The raw response
// body is preserved alongside the parsed id and login so the session can
// cache the full snapshot for the frontend.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/user", c.apiURL), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", ErrUpstreamRejected, err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching user: %v", ErrUpstreamRejected, err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUpstreamRejected, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"response":    string(body),
		}).Error("GitHub user API failed")

		return nil, fmt.Errorf("%w: status %d", ErrUpstreamRejected, resp.StatusCode)
	}

	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("%w: parsing response: %v", ErrUpstreamRejected, err)
	}

	profile.Raw = json.RawMessage(body)

	c.log.WithFields(logrus.Fields{
		"github_id": profile.ID,
		"login":     profile.Login,
	}).Info("Fetched GitHub user profile")

	return &profile, nil
}
