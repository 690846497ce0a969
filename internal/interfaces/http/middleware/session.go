package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seafresh/backend/internal/domain/identity"
	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/seafresh/backend/internal/infrastructure/logger"
	"github.com/seafresh/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// SessionKey is the gin context key holding the *identity.Session
const SessionKey = "session"

// SessionLoader loads a session by the ID stored in the cookie
type SessionLoader interface {
	Get(ctx context.Context, id string) (*identity.Session, error)
}

// SessionCookie describes the session cookie
type SessionCookie struct {
	Name     string
	TTL      time.Duration
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// ParseSameSite maps the configured value to http.SameSite; anything unknown is Lax
func ParseSameSite(value string) http.SameSite {
	switch strings.ToLower(value) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// Set writes the session cookie
func (sc SessionCookie) Set(c *gin.Context, sessionID string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sc.Name,
		Value:    sessionID,
		Path:     "/",
		Domain:   sc.Domain,
		MaxAge:   int(sc.TTL.Seconds()),
		Secure:   sc.Secure,
		HttpOnly: true,
		SameSite: sc.SameSite,
	})
}

// Clear expires the session cookie
func (sc SessionCookie) Clear(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sc.Name,
		Value:    "",
		Path:     "/",
		Domain:   sc.Domain,
		MaxAge:   -1,
		Secure:   sc.Secure,
		HttpOnly: true,
		SameSite: sc.SameSite,
	})
}

// SessionAuthenticator resolves the session cookie into a session
type SessionAuthenticator struct {
	store  SessionLoader
	cookie SessionCookie
	logger *zap.Logger
}

// NewSessionAuthenticator creates a new SessionAuthenticator
func NewSessionAuthenticator(store SessionLoader, cookie SessionCookie, logger *zap.Logger) *SessionAuthenticator {
	return &SessionAuthenticator{store: store, cookie: cookie, logger: logger}
}

// Cookie returns the session cookie settings
func (a *SessionAuthenticator) Cookie() SessionCookie {
	return a.cookie
}

// load returns the session for the request, or nil when there is none.
// A cookie that no longer maps to a session is cleared.
func (a *SessionAuthenticator) load(c *gin.Context) (*identity.Session, error) {
	id, err := c.Cookie(a.cookie.Name)
	if err != nil || id == "" {
		return nil, nil
	}
	session, err := a.store.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrUnauthorized) {
			a.cookie.Clear(c)
			return nil, nil
		}
		return nil, err
	}
	session.ID = id

	c.Set(SessionKey, session)
	c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), session.UserID.String()))
	return session, nil
}

// SessionAuth requires a valid session; requests without one get a 401
func (a *SessionAuthenticator) SessionAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := a.load(c)
		if err != nil {
			a.logger.Error("Failed to load session", zap.String("request_id", c.GetString(RequestIDKey)), zap.Error(err))
			abortWithError(c, dto.ErrCodeInternal, "Could not verify your session")
			return
		}
		if session == nil {
			abortWithError(c, dto.ErrCodeUnauthorized, "Please sign in to continue")
			return
		}
		c.Next()
	}
}

// OptionalSession loads the session when there is one and never rejects
func (a *SessionAuthenticator) OptionalSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := a.load(c); err != nil {
			a.logger.Warn("Ignoring session that failed to load", zap.Error(err))
		}
		c.Next()
	}
}

// RequireAdmin rejects non-admin sessions with a 403. It must run after SessionAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := CurrentSession(c)
		if session == nil {
			abortWithError(c, dto.ErrCodeUnauthorized, "Please sign in to continue")
			return
		}
		if !session.IsAdmin() {
			abortWithError(c, dto.ErrCodeForbidden, "Administrator access required")
			return
		}
		c.Next()
	}
}

// CurrentSession returns the session loaded by the session middleware, or nil
func CurrentSession(c *gin.Context) *identity.Session {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil
	}
	session, _ := v.(*identity.Session)
	return session
}
