package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/dejobratic/orderflow/internal/telemetry"

// StartSpan starts a span from the global tracer provider.
func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, spanName, opts...)
}

// StartProducerSpan starts a producer span for a message published on topic.
func StartProducerSpan(ctx context.Context, spanName, topic string) (context.Context, trace.Span) {
	return startMessagingSpan(ctx, spanName, topic, "publish", trace.SpanKindProducer)
}

// StartConsumerSpan starts a consumer span for a message handled from topic.
func StartConsumerSpan(ctx context.Context, spanName, topic string) (context.Context, trace.Span) {
	return startMessagingSpan(ctx, spanName, topic, "process", trace.SpanKindConsumer)
}

func startMessagingSpan(ctx context.Context, spanName, topic, operation string, kind trace.SpanKind) (context.Context, trace.Span) {
	return StartSpan(ctx, spanName,
		trace.WithSpanKind(kind),
		trace.WithAttributes(
			attribute.String("messaging.destination.name", topic),
			attribute.String("messaging.operation.type", operation),
		),
	)
}

func AddSpanAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	if span == nil {
		return
	}
	span.SetAttributes(attrs...)
}

func AddSpanEvent(span trace.Span, eventName string, attrs ...attribute.KeyValue) {
	if span == nil {
		return
	}
	span.AddEvent(eventName, trace.WithAttributes(attrs...))
}

// RecordSpanError marks span as failed. A nil err is ignored.
func RecordSpanError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func SetSpanSuccess(span trace.Span) {
	if span == nil {
		return
	}
	span.SetStatus(codes.Ok, "")
}

// TraceID returns the hex trace ID carried by ctx, or "" outside a span.
func TraceID(ctx context.Context) string {
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.HasTraceID() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// SpanID returns the hex span ID carried by ctx, or "" outside a span.
func SpanID(ctx context.Context) string {
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.HasSpanID() {
		return spanCtx.SpanID().String()
	}
	return ""
}
