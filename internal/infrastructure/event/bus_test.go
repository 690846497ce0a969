package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New()),
		Data:            "test data",
	}
}

type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panics     bool
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.panics {
		panic("boom")
	}
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

type recordingObserver struct {
	mu     sync.Mutex
	errors int
	calls  int
}

func (o *recordingObserver) ObserveDispatch(eventType string, d time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	if err != nil {
		o.errors++
	}
}

func TestInMemoryEventBus_SyncBeforeStart(t *testing.T) {
	bus := NewInMemoryEventBus(DefaultBusConfig(), zap.NewNop())
	handler := newTestHandler("OrderPlaced")
	bus.Subscribe(handler)

	event := newTestEvent("OrderPlaced")
	require.NoError(t, bus.Publish(context.Background(), event, newTestEvent("OrderPaid")))

	handled := handler.getHandled()
	require.Len(t, handled, 1)
	assert.Equal(t, event, handled[0])
}

func TestInMemoryEventBus_HandlerErrorsAreIsolated(t *testing.T) {
	bus := NewInMemoryEventBus(DefaultBusConfig(), zap.NewNop())
	observer := &recordingObserver{}
	bus.SetObserver(observer)

	failing := newTestHandler("OrderPlaced")
	failing.err = errors.New("smtp down")
	panicking := newTestHandler("OrderPlaced")
	panicking.panics = true
	healthy := newTestHandler("OrderPlaced")

	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderPlaced")))
	assert.Len(t, healthy.getHandled(), 1)
	assert.Equal(t, 3, observer.calls)
	assert.Equal(t, 2, observer.errors)
}

func TestInMemoryEventBus_Async(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	bus := NewInMemoryEventBus(BusConfig{Workers: 2, QueueSize: 16}, zap.NewNop())
	handler := newTestHandler()
	bus.Subscribe(handler, "OrderShipped")

	ctx := context.Background()
	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Start(ctx))

	for i := 0; i < 10; i++ {
		require.NoError(t, bus.Publish(ctx, newTestEvent("OrderShipped")))
	}

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(stopCtx))
	assert.Len(t, handler.getHandled(), 10)

	// after stop delivery falls back to synchronous
	require.NoError(t, bus.Publish(ctx, newTestEvent("OrderShipped")))
	assert.Len(t, handler.getHandled(), 11)
}

func TestInMemoryEventBus_QueueFull(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	release := make(chan struct{})
	blocking := &blockingHandler{release: release, started: make(chan struct{}, 1)}

	bus := NewInMemoryEventBus(BusConfig{Workers: 1, QueueSize: 1}, zap.NewNop())
	bus.Subscribe(blocking, "OrderPlaced")
	ctx := context.Background()
	require.NoError(t, bus.Start(ctx))

	require.NoError(t, bus.Publish(ctx, newTestEvent("OrderPlaced")))
	<-blocking.started
	require.NoError(t, bus.Publish(ctx, newTestEvent("OrderPlaced")))
	assert.ErrorIs(t, bus.Publish(ctx, newTestEvent("OrderPlaced")), ErrQueueFull)

	close(release)
	require.NoError(t, bus.Stop(ctx))
}

type blockingHandler struct {
	release chan struct{}
	started chan struct{}
}

func (h *blockingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	select {
	case h.started <- struct{}{}:
	default:
	}
	<-h.release
	return nil
}

func (h *blockingHandler) EventTypes() []string { return nil }

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(DefaultBusConfig(), zap.NewNop())
	handler := newTestHandler("CouponCreated")
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("CouponCreated")))
	assert.Empty(t, handler.getHandled())
}
