package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/identity"
	"github.com/seafresh/backend/internal/domain/shared"
)

type memorySession struct {
	session   identity.Session
	expiresAt time.Time
}

// InMemorySessionStore keeps sessions in process memory.
// Sessions are lost on restart and are not shared between instances.
type InMemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*memorySession
	ttl      time.Duration
	now      func() time.Time
}

// NewInMemorySessionStore creates an in-memory session store
func NewInMemorySessionStore(ttl time.Duration) *InMemorySessionStore {
	return &InMemorySessionStore{
		sessions: make(map[string]*memorySession),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create stores a new session for the user
func (s *InMemorySessionStore) Create(ctx context.Context, u *identity.User) (*identity.Session, error) {
	id, err := NewSessionID()
	if err != nil {
		return nil, err
	}
	now := s.now()
	session := identity.NewSession(id, u, now)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &memorySession{session: *session, expiresAt: now.Add(s.ttl)}
	return session, nil
}

// Get loads a session and extends its TTL
func (s *InMemorySessionStore) Get(ctx context.Context, id string) (*identity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.sessions[id]
	if !ok {
		return nil, shared.ErrUnauthorized
	}
	if !now.Before(entry.expiresAt) {
		delete(s.sessions, id)
		return nil, shared.ErrUnauthorized
	}
	entry.expiresAt = now.Add(s.ttl)
	session := entry.session
	return &session, nil
}

// Refresh rewrites the profile snapshot of every session of the user
func (s *InMemorySessionStore) Refresh(ctx context.Context, u *identity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, entry := range s.sessions {
		if entry.session.UserID == u.ID {
			entry.session = *identity.NewSession(id, u, entry.session.CreatedAt)
		}
	}
	return nil
}

// Delete removes one session
func (s *InMemorySessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// DeleteAllForUser revokes every session of the user
func (s *InMemorySessionStore) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, entry := range s.sessions {
		if entry.session.UserID == userID {
			delete(s.sessions, id)
		}
	}
	return nil
}

var _ identity.SessionStore = (*InMemorySessionStore)(nil)
