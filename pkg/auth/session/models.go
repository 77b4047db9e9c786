// Package session provides session storage for authenticated GitHub users.
package session

import (
	"encoding/json"
	"time"
)

// Session binds a GitHub account to its access token and cached profile.
// Sessions are value snapshots: once written they are never field-mutated,
// only overwritten by a fresh login or removed by logout.
type Session struct {
	// UserID is the GitHub numeric account id (the store key).
	UserID int64 `json:"user_id"`

	// Username is the GitHub login.
	Username string `json:"username"`

	// AccessToken is the GitHub access token. Never serialized.
	AccessToken string `json:"-"`

	// Profile is the raw GitHub profile captured at authentication time.
	Profile json.RawMessage `json:"profile,omitempty"`

	// CreatedAt is when the session was created.
	CreatedAt time.Time `json:"created_at"`
}
