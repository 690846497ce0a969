package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seafresh/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time { return f.t }

func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*RateLimiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(limit, window)
	rl.now = clock.Now
	t.Cleanup(rl.Close)
	return rl, clock
}

func TestRateLimiter(t *testing.T) {
	t.Run("allows a burst up to the limit", func(t *testing.T) {
		rl, _ := newTestLimiter(t, 5, time.Minute)
		for i := 0; i < 5; i++ {
			ok, _ := rl.Allow("10.0.0.1")
			assert.True(t, ok, "request %d should be allowed", i+1)
		}
		ok, retry := rl.Allow("10.0.0.1")
		assert.False(t, ok)
		assert.InDelta(t, float64(12*time.Second), float64(retry), float64(time.Second))
	})

	t.Run("separate buckets per client", func(t *testing.T) {
		rl, _ := newTestLimiter(t, 2, time.Minute)
		for i := 0; i < 2; i++ {
			ok, _ := rl.Allow("a")
			require.True(t, ok)
		}
		ok, _ := rl.Allow("a")
		assert.False(t, ok)
		ok, _ = rl.Allow("b")
		assert.True(t, ok)
	})

	t.Run("refills over the window", func(t *testing.T) {
		rl, clock := newTestLimiter(t, 2, time.Minute)
		rl.Allow("c")
		rl.Allow("c")
		ok, _ := rl.Allow("c")
		require.False(t, ok)

		clock.Advance(30 * time.Second)
		ok, _ = rl.Allow("c")
		assert.True(t, ok)
	})

	t.Run("rejected requests do not consume tokens", func(t *testing.T) {
		rl, clock := newTestLimiter(t, 1, time.Minute)
		rl.Allow("d")
		for i := 0; i < 5; i++ {
			rl.Allow("d")
		}
		clock.Advance(time.Minute)
		ok, _ := rl.Allow("d")
		assert.True(t, ok)
	})

	t.Run("remaining", func(t *testing.T) {
		rl, _ := newTestLimiter(t, 3, time.Minute)
		assert.Equal(t, 3, rl.Remaining("e"))
		rl.Allow("e")
		assert.Equal(t, 2, rl.Remaining("e"))
	})

	t.Run("close is idempotent", func(t *testing.T) {
		rl := NewRateLimiter(1, time.Second)
		rl.Close()
		rl.Close()
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 2, time.Minute)
	router := gin.New()
	router.Use(RequestID(), RateLimit(rl, "auth"))
	router.POST("/login", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	first := send()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "auth;2;w=60", first.Header().Get("X-RateLimit-Policy"))

	assert.Equal(t, http.StatusOK, send().Code)

	blocked := send()
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "30", blocked.Header().Get("Retry-After"))
	var resp dto.Response
	require.NoError(t, json.Unmarshal(blocked.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeRateLimited, resp.Error.Code)
}
