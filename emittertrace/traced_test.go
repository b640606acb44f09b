package emittertrace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/emitter"
)

func setupTestTracer(t *testing.T) (trace.Tracer, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)
	return provider.Tracer("test-tracer"), exporter
}

// getAttributeValue extracts an attribute value from a span.
func getAttributeValue(span tracetest.SpanStub, key string) (attribute.Value, bool) {
	for _, attr := range span.Attributes {
		if string(attr.Key) == key {
			return attr.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestWrap_NilTracerPassesThrough(t *testing.T) {
	em := emitter.New[string, int]()
	traced := Wrap(em, nil)

	got := 0
	_, err := traced.AddListener("x", func(_ string, v int) { got = v })
	require.NoError(t, err)

	traced.Emit("x", 7)
	require.Equal(t, 7, got)
}

func TestEmit_RecordsSpan(t *testing.T) {
	tracer, exporter := setupTestTracer(t)

	em := emitter.New[string, string]()
	traced := Wrap(em, tracer)

	calls := 0
	_, err := traced.AddListener("status", func(string, string) { calls++ })
	require.NoError(t, err)
	_, err = traced.AddListener("status", func(string, string) { calls++ })
	require.NoError(t, err)

	traced.Emit("status", "payload")
	require.Equal(t, 2, calls, "dispatch still reaches all listeners")

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	span := spans[0]
	require.Equal(t, "emit.status", span.Name)
	require.Equal(t, trace.SpanKindProducer, span.SpanKind)
	require.Equal(t, codes.Ok, span.Status.Code)

	category, ok := getAttributeValue(span, AttrCategory)
	require.True(t, ok)
	require.Equal(t, "status", category.AsString())

	listeners, ok := getAttributeValue(span, AttrListeners)
	require.True(t, ok)
	require.Equal(t, int64(2), listeners.AsInt64())
}

func TestEmit_ListenerPanicRecordedAndReRaised(t *testing.T) {
	tracer, exporter := setupTestTracer(t)

	em := emitter.New[string, int]()
	traced := Wrap(em, tracer)

	_, err := traced.AddListener("x", func(string, int) { panic("boom") })
	require.NoError(t, err)

	require.PanicsWithValue(t, "boom", func() {
		traced.Emit("x", 1)
	})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.Equal(t, codes.Error, spans[0].Status.Code)
	require.Contains(t, spans[0].Status.Description, "boom")
}

func TestEmitContext_ParentsSpan(t *testing.T) {
	tracer, exporter := setupTestTracer(t)

	em := emitter.New[string, int]()
	traced := Wrap(em, tracer)

	_, err := traced.AddListener("x", func(string, int) {})
	require.NoError(t, err)

	ctx, parent := tracer.Start(context.Background(), "parent-op")
	traced.EmitContext(ctx, "x", 1)
	parent.End()

	var emitSpan tracetest.SpanStub
	found := false
	for _, span := range exporter.GetSpans() {
		if span.Name == "emit.x" {
			emitSpan = span
			found = true
		}
	}
	require.True(t, found, "emit span should be exported")
	require.Equal(t, parent.SpanContext().SpanID(), emitSpan.Parent.SpanID())
}
