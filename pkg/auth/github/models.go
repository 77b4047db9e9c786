// Package github provides the GitHub OAuth client used by the gateway.
package github

import "encoding/json"

// Profile is the authenticated user's GitHub profile. Only the fields the
// gateway keys on are parsed; Raw carries the untouched upstream body.
type Profile struct {
	// ID is the GitHub numeric account id.
	ID int64 `json:"id"`

	// Login is the GitHub username.
	Login string `json:"login"`

	// Raw is the full profile response as returned by GitHub.
	Raw json.RawMessage `json:"-"`
}

// TokenResponse represents GitHub's OAuth token response.
type TokenResponse struct {
	// AccessToken is the GitHub access token.
	AccessToken string `json:"access_token"`

	// TokenType is the type of token (usually "bearer").
	TokenType string `json:"token_type"`

	// Scope contains the granted scopes.
	Scope string `json:"scope"`

	// Error is set if the request failed.
	Error string `json:"error,omitempty"`

	// ErrorDescription provides details about the error.
	ErrorDescription string `json:"error_description,omitempty"`
}
