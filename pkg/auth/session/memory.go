// Package session provides session storage for authenticated GitHub users.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/PrathameshJoshi123/doc-generator/pkg/observability"
)

// ErrSessionNotFound indicates no session exists for the given user id.
var ErrSessionNotFound = errors.New("session not found")

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// MemoryStore implements Store with in-memory storage. Sessions live only as
// long as the process: a restart logs every user out, and sibling instances
// of the gateway do not see each other's sessions.
type MemoryStore struct {
	log logrus.FieldLogger

	mu       sync.RWMutex
	sessions map[int64]*Session // userID -> Session
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore(log logrus.FieldLogger) *MemoryStore {
	log = log.WithField("component", "memory_store")
	log.Warn("Sessions are held in process memory: they do not survive restarts and are not shared across instances")

	return &MemoryStore{
		log:      log,
		sessions: make(map[int64]*Session, 100),
	}
}

// Get retrieves the session for a GitHub user id.
func (m *MemoryStore) Get(_ context.Context, userID int64) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[userID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	return sess, nil
}

// Save creates or overwrites the session for its user id.
func (m *MemoryStore) Save(_ context.Context, sess *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[sess.UserID]; !exists {
		observability.ActiveSessions.Inc()
	}

	m.sessions[sess.UserID] = sess

	m.log.WithFields(logrus.Fields{
		"user_id":  sess.UserID,
		"username": sess.Username,
	}).Debug("Session saved")

	return nil
}

// Delete removes the session for a GitHub user id.
func (m *MemoryStore) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[userID]; exists {
		observability.ActiveSessions.Dec()
		delete(m.sessions, userID)

		m.log.WithField("user_id", userID).Debug("Session deleted")
	}

	return nil
}
