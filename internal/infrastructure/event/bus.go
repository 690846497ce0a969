package event

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/seafresh/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrQueueFull is returned when the bus cannot accept more events
var ErrQueueFull = errors.New("event bus queue is full")

// BusConfig configures the asynchronous dispatch of the bus
type BusConfig struct {
	Workers        int
	QueueSize      int
	HandlerTimeout time.Duration
}

// DefaultBusConfig returns the default bus configuration
func DefaultBusConfig() BusConfig {
	return BusConfig{
		Workers:        4,
		QueueSize:      1024,
		HandlerTimeout: 30 * time.Second,
	}
}

// DispatchObserver is told about every handler invocation
type DispatchObserver interface {
	ObserveDispatch(eventType string, duration time.Duration, err error)
}

type envelope struct {
	event shared.DomainEvent
}

// InMemoryEventBus delivers domain events to in-process handlers.
// Before Start, and after Stop, events are dispatched synchronously on the
// publishing goroutine. While running, a pool of workers drains a bounded
// queue so request handlers never wait on email or push delivery.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	config   BusConfig
	logger   *zap.Logger
	observer DispatchObserver

	mu      sync.RWMutex
	queue   chan envelope
	running atomic.Bool
	wg      sync.WaitGroup
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(config BusConfig, logger *zap.Logger) *InMemoryEventBus {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultBusConfig().QueueSize
	}
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		config:   config,
		logger:   logger,
	}
}

// SetObserver sets the observer notified of handler outcomes
func (b *InMemoryEventBus) SetObserver(observer DispatchObserver) {
	b.observer = observer
}

// Publish delivers events to every subscribed handler
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.running.Load() {
		for _, event := range events {
			b.dispatch(ctx, event)
		}
		return nil
	}

	var dropped int
	for _, event := range events {
		select {
		case b.queue <- envelope{event: event}:
		default:
			dropped++
			b.logger.Error("event dropped, queue full",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()))
		}
	}
	if dropped > 0 {
		return ErrQueueFull
	}
	return nil
}

// Subscribe registers a handler for specific event types
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("handler unsubscribed")
}

// Start launches the dispatch workers
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running.Load() {
		return nil
	}
	b.queue = make(chan envelope, b.config.QueueSize)
	for i := 0; i < b.config.Workers; i++ {
		b.wg.Add(1)
		go b.worker(b.queue)
	}
	b.running.Store(true)
	b.logger.Info("event bus started",
		zap.Int("workers", b.config.Workers),
		zap.Int("handlers", b.registry.Len()))
	return nil
}

// Stop stops accepting events and waits for queued ones to be handled
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.running.Load() {
		b.mu.Unlock()
		return nil
	}
	b.running.Store(false)
	close(b.queue)
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		b.logger.Warn("event bus stop timed out, pending events abandoned")
		return ctx.Err()
	}
}

func (b *InMemoryEventBus) worker(queue <-chan envelope) {
	defer b.wg.Done()
	for env := range queue {
		ctx := context.Background()
		var cancel context.CancelFunc = func() {}
		if b.config.HandlerTimeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, b.config.HandlerTimeout)
		}
		b.dispatch(ctx, env.event)
		cancel()
	}
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, event shared.DomainEvent) {
	for _, handler := range b.registry.Handlers(event.EventType()) {
		start := time.Now()
		err := b.dispatchToHandler(ctx, handler, event)
		if b.observer != nil {
			b.observer.ObserveDispatch(event.EventType(), time.Since(start), err)
		}
		if err != nil {
			b.logger.Error("handler failed to process event",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Error(err))
		}
	}
}

func (b *InMemoryEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r))
			err = errHandlerPanic
		}
	}()
	return handler.Handle(ctx, event)
}

var errHandlerPanic = errors.New("event handler panicked")

var _ shared.EventBus = (*InMemoryEventBus)(nil)
