package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/identity"
	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/seafresh/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSessionLoader struct {
	mock.Mock
}

func (m *mockSessionLoader) Get(ctx context.Context, id string) (*identity.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Session), args.Error(1)
}

var testCookie = SessionCookie{Name: "sid", TTL: 7 * 24 * time.Hour, SameSite: http.SameSiteLaxMode}

func sessionRouter(a *SessionAuthenticator, mw ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/me", append(mw, func(c *gin.Context) {
		s := CurrentSession(c)
		if s == nil {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": s.UserID.String(), "role": s.Role})
	})...)
	return router
}

func get(router *gin.Engine, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: cookie})
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestSessionAuth(t *testing.T) {
	userID := uuid.New()
	customer := &identity.Session{UserID: userID, Name: "Asha", Email: "asha@example.com", Role: identity.RoleUser}

	t.Run("valid cookie", func(t *testing.T) {
		store := new(mockSessionLoader)
		store.On("Get", mock.Anything, "abc").Return(customer, nil)
		a := NewSessionAuthenticator(store, testCookie, zap.NewNop())

		w := get(sessionRouter(a, a.SessionAuth()), "abc")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
	})

	t.Run("missing cookie", func(t *testing.T) {
		a := NewSessionAuthenticator(new(mockSessionLoader), testCookie, zap.NewNop())

		w := get(sessionRouter(a, a.SessionAuth()), "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeUnauthorized, errorCode(t, w))
	})

	t.Run("expired session clears cookie", func(t *testing.T) {
		store := new(mockSessionLoader)
		store.On("Get", mock.Anything, "gone").Return(nil, shared.ErrUnauthorized)
		a := NewSessionAuthenticator(store, testCookie, zap.NewNop())

		w := get(sessionRouter(a, a.SessionAuth()), "gone")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Header().Get("Set-Cookie"), "sid=;")
		assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
	})

	t.Run("store failure", func(t *testing.T) {
		store := new(mockSessionLoader)
		store.On("Get", mock.Anything, "abc").Return(nil, errors.New("redis down"))
		a := NewSessionAuthenticator(store, testCookie, zap.NewNop())

		w := get(sessionRouter(a, a.SessionAuth()), "abc")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestOptionalSession(t *testing.T) {
	store := new(mockSessionLoader)
	store.On("Get", mock.Anything, "broken").Return(nil, errors.New("redis down"))
	a := NewSessionAuthenticator(store, testCookie, zap.NewNop())
	router := sessionRouter(a, a.OptionalSession())

	for _, cookie := range []string{"", "broken"} {
		w := get(router, cookie)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "anonymous")
	}
}

func TestRequireAdmin(t *testing.T) {
	store := new(mockSessionLoader)
	store.On("Get", mock.Anything, "user").Return(&identity.Session{UserID: uuid.New(), Role: identity.RoleUser}, nil)
	store.On("Get", mock.Anything, "admin").Return(&identity.Session{UserID: uuid.New(), Role: identity.RoleAdmin}, nil)
	a := NewSessionAuthenticator(store, testCookie, zap.NewNop())
	router := sessionRouter(a, a.SessionAuth(), RequireAdmin())

	w := get(router, "user")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrCodeForbidden, errorCode(t, w))

	assert.Equal(t, http.StatusOK, get(router, "admin").Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, "").Code)
}

func TestSessionCookie(t *testing.T) {
	router := gin.New()
	cookie := SessionCookie{Name: "sid", TTL: time.Hour, Secure: true, SameSite: ParseSameSite("strict")}
	router.GET("/login", func(c *gin.Context) { cookie.Set(c, "token") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))

	header := w.Header().Get("Set-Cookie")
	assert.Contains(t, header, "sid=token")
	assert.Contains(t, header, "Max-Age=3600")
	assert.Contains(t, header, "HttpOnly")
	assert.Contains(t, header, "Secure")
	assert.Contains(t, header, "SameSite=Strict")

	assert.Equal(t, http.SameSiteLaxMode, ParseSameSite("bogus"))
	assert.Equal(t, http.SameSiteNoneMode, ParseSameSite("None"))
}
