package telemetry

import (
	"context"
	"fmt"

	"github.com/seafresh/backend/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer used for spans started by the backend itself
const TracerName = "seafresh-backend"

// StartSpan starts a span. Attributes are given as alternating keys and values:
//
//	ctx, span := telemetry.StartSpan(ctx, "order.sweep", "batch", 100)
//	defer span.End()
func StartSpan(ctx context.Context, name string, keyValues ...any) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, name,
		trace.WithAttributes(toAttributes(keyValues)...))
}

// RecordError records err on the span and marks it failed
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// TraceEventHandler wraps h so every delivery runs in its own span
func TraceEventHandler(h shared.EventHandler) shared.EventHandler {
	return &tracedHandler{next: h}
}

type tracedHandler struct {
	next shared.EventHandler
}

func (t *tracedHandler) EventTypes() []string { return t.next.EventTypes() }

func (t *tracedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	ctx, span := StartSpan(ctx, "event."+event.EventType(),
		"event.id", event.EventID().String(),
		"event.aggregate_id", event.AggregateID().String(),
		"event.handler", fmt.Sprintf("%T", t.next),
	)
	defer span.End()

	err := t.next.Handle(ctx, event)
	RecordError(span, err)
	return err
}

// TraceTask wraps a background task in a span named job.<name>
func TraceTask(name string, task func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		ctx, span := StartSpan(ctx, "job."+name)
		defer span.End()
		err := task(ctx)
		RecordError(span, err)
		return err
	}
}

func toAttributes(keyValues []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		key, ok := keyValues[i].(string)
		if !ok {
			continue
		}
		attrs = append(attrs, toAttribute(key, keyValues[i+1]))
	}
	return attrs
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
