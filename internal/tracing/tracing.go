package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/bitcoin-sv/chainstore"

// StartTracing starts a span when tracing is enabled. The returned span is nil otherwise.
func StartTracing(ctx context.Context, spanName string, tracingEnabled bool, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	if !tracingEnabled {
		return ctx, nil
	}

	tracer := otel.Tracer(tracerName)
	if tracer == nil {
		return ctx, nil
	}

	if len(attributes) > 0 {
		return tracer.Start(ctx, spanName, trace.WithAttributes(attributes...))
	}

	return tracer.Start(ctx, spanName)
}

func EndTracing(span trace.Span, err error) {
	if span == nil {
		return
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Attributes converts configured key/value pairs into span attributes.
func Attributes(kv map[string]string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(kv))
	for key, value := range kv {
		attrs = append(attrs, attribute.String(key, value))
	}

	return attrs
}
