package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/seafresh/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestIdempotentHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("handles each event once", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		inner := newTestHandler("OrderPaid")
		h := NewIdempotentHandler(inner, store, time.Hour, zap.NewNop())

		event := newTestEvent("OrderPaid")
		require.NoError(t, h.Handle(ctx, event))
		require.NoError(t, h.Handle(ctx, event))
		require.NoError(t, h.Handle(ctx, newTestEvent("OrderPaid")))

		assert.Len(t, inner.getHandled(), 2)
		assert.Equal(t, IdempotencyStats{Processed: 2, Duplicate: 1}, h.Stats())
		assert.Equal(t, []string{"OrderPaid"}, h.EventTypes())
	})

	t.Run("failure releases key for retry", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		inner := newTestHandler("OrderPaid")
		inner.err = errors.New("db down")
		h := NewIdempotentHandler(inner, store, time.Hour, zap.NewNop())

		event := newTestEvent("OrderPaid")
		require.Error(t, h.Handle(ctx, event))

		inner.err = nil
		require.NoError(t, h.Handle(ctx, event))
		assert.Len(t, inner.getHandled(), 2)
		assert.Equal(t, int64(1), h.Stats().Failed)
	})
}
