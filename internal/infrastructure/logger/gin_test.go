package logger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestRouter(l *zap.Logger, register func(r *gin.Engine)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(RequestIDKey, "test-req-123")
		c.Next()
	})
	r.Use(Recovery(l), GinMiddleware(l))
	register(r)
	return r
}

func requestLog(t *testing.T, recorded *observer.ObservedLogs) observer.LoggedEntry {
	t.Helper()
	entries := recorded.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	return entries[0]
}

func TestGinMiddleware(t *testing.T) {
	t.Run("logs success at info with request fields", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		r := newTestRouter(zap.New(core), func(r *gin.Engine) {
			r.GET("/api/v1/products/:id", func(c *gin.Context) {
				FromContext(c.Request.Context()).Info("handler")
				c.JSON(http.StatusOK, gin.H{"ok": true})
			})
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products/42?x=1", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		entry := requestLog(t, recorded)
		assert.Equal(t, zapcore.InfoLevel, entry.Level)
		fields := entry.ContextMap()
		assert.Equal(t, "test-req-123", fields["request_id"])
		assert.Equal(t, "/api/v1/products/:id", fields["route"])
		assert.Equal(t, "x=1", fields["query"])

		handlerLogs := recorded.FilterMessage("handler").All()
		require.Len(t, handlerLogs, 1)
		assert.Equal(t, "test-req-123", handlerLogs[0].ContextMap()["request_id"])
	})

	t.Run("logs client errors at warn", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		r := newTestRouter(zap.New(core), func(r *gin.Engine) {
			r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
		})

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bad", nil))
		assert.Equal(t, zapcore.WarnLevel, requestLog(t, recorded).Level)
	})

	t.Run("logs server errors at error", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		r := newTestRouter(zap.New(core), func(r *gin.Engine) {
			r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })
		})

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
		assert.Equal(t, zapcore.ErrorLevel, requestLog(t, recorded).Level)
	})

	t.Run("skips healthy probe requests", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		r := newTestRouter(zap.New(core), func(r *gin.Engine) {
			r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
		})

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Empty(t, recorded.FilterMessage("HTTP Request").All())
	})
}

func TestRecovery(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	r := newTestRouter(zap.New(core), func(r *gin.Engine) {
		r.GET("/panic", func(c *gin.Context) { panic("kaboom") })
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code      string `json:"code"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "ERR_INTERNAL", body.Error.Code)
	assert.Equal(t, "test-req-123", body.Error.RequestID)
	assert.Len(t, recorded.FilterMessage("Panic recovered").All(), 1)
}
