package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func sqlFn() (string, int64) { return "SELECT * FROM products", 3 }

func TestGormLogger(t *testing.T) {
	t.Run("maps level names", func(t *testing.T) {
		assert.Equal(t, gormlogger.Silent, gormLevel("silent"))
		assert.Equal(t, gormlogger.Error, gormLevel("error"))
		assert.Equal(t, gormlogger.Info, gormLevel("debug"))
		assert.Equal(t, gormlogger.Warn, gormLevel(""))
	})

	t.Run("LogMode leaves original unchanged", func(t *testing.T) {
		l := NewGormLogger(zap.NewNop(), "info", 0)
		clone, ok := l.LogMode(gormlogger.Silent).(*GormLogger)
		require.True(t, ok)
		assert.Equal(t, gormlogger.Info, l.level)
		assert.Equal(t, gormlogger.Silent, clone.level)
	})

	t.Run("logs errors except record not found", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), "warn", 0)

		l.Trace(context.Background(), time.Now(), sqlFn, errors.New("syntax error"))
		l.Trace(context.Background(), time.Now(), sqlFn, gormlogger.ErrRecordNotFound)

		entries := recorded.All()
		require.Len(t, entries, 1)
		assert.Equal(t, "SQL error", entries[0].Message)
	})

	t.Run("warns on slow queries with request ID", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), "warn", time.Millisecond)
		ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-9")

		l.Trace(ctx, time.Now().Add(-time.Second), sqlFn, nil)

		entries := recorded.FilterMessage("Slow SQL").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "req-9", entries[0].ContextMap()["request_id"])
	})

	t.Run("debug logs every query at info level", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), "info", 0)

		l.Trace(context.Background(), time.Now(), sqlFn, nil)
		assert.Len(t, recorded.FilterMessage("SQL").All(), 1)
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), "silent", 0)

		l.Trace(context.Background(), time.Now(), sqlFn, errors.New("x"))
		l.Info(context.Background(), "hi")
		assert.Empty(t, recorded.All())
	})
}
