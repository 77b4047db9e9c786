// Package session provides session storage for authenticated GitHub users.
package session

import "context"

// Store defines the interface for session storage. Implementations map a
// GitHub numeric account id to at most one session; saving for an existing
// id overwrites the prior session wholesale.
type Store interface {
	// Get retrieves the session for a GitHub user id.
	Get(ctx context.Context, userID int64) (*Session, error)

	// Save creates or unconditionally overwrites the session for its user id.
	Save(ctx context.Context, sess *Session) error

	// Delete removes the session for a GitHub user id. Deleting an absent
	// session is not an error.
	Delete(ctx context.Context, userID int64) error
}
