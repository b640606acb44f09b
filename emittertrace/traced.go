package emittertrace

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/emitter"
)

// Span naming and attribute keys for emission spans.
const (
	SpanPrefixEmit = "emit."

	AttrCategory  = "emitter.category"
	AttrListeners = "emitter.listener_count"
)

// Emitter wraps an emitter.Emitter and records a span for every emission.
// Subscription methods pass through unchanged, so a traced emitter is a
// drop-in replacement for the wrapped one.
type Emitter[C comparable, E any] struct {
	*emitter.Emitter[C, E]
	tracer trace.Tracer
}

// Wrap instruments inner with tracer. A nil tracer yields a pass-through
// wrapper with no tracing overhead.
func Wrap[C comparable, E any](inner *emitter.Emitter[C, E], tracer trace.Tracer) *Emitter[C, E] {
	return &Emitter[C, E]{Emitter: inner, tracer: tracer}
}

// Emit records a span around the synchronous dispatch of event.
func (e *Emitter[C, E]) Emit(category C, event E) {
	e.EmitContext(context.Background(), category, event)
}

// EmitContext is Emit with an explicit context, so emission spans nest
// under a caller's span when one is active in ctx.
//
// A listener panic is recorded on the span and then re-raised, preserving
// the fail-fast dispatch contract.
func (e *Emitter[C, E]) EmitContext(ctx context.Context, category C, event E) {
	if e.tracer == nil {
		e.Emitter.Emit(category, event)
		return
	}

	_, span := e.tracer.Start(ctx, SpanPrefixEmit+fmt.Sprint(category),
		trace.WithSpanKind(trace.SpanKindProducer),
	)
	span.SetAttributes(
		attribute.String(AttrCategory, fmt.Sprint(category)),
		attribute.Int(AttrListeners, e.ListenerCountFor(category)),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("listener panic: %v", r)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			panic(r)
		}
		span.SetStatus(codes.Ok, "")
	}()

	e.Emitter.Emit(category, event)
}
