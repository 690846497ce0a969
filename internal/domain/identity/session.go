package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is the server-side record behind a session cookie
type Session struct {
	ID        string    `json:"-"`
	UserID    uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSession builds a session snapshot of the user
func NewSession(id string, u *User, now time.Time) *Session {
	return &Session{
		ID:        id,
		UserID:    u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: now,
	}
}

// IsAdmin returns true for administrator sessions
func (s *Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// SessionStore keeps sessions keyed by an opaque ID
type SessionStore interface {
	// Create stores a new session and returns it with its generated ID
	Create(ctx context.Context, u *User) (*Session, error)
	// Get loads a session and extends its TTL; shared.ErrUnauthorized when missing
	Get(ctx context.Context, id string) (*Session, error)
	// Refresh rewrites the profile snapshot of every session of the user
	Refresh(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}
