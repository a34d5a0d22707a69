package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/logger"
)

const instrumentationName = "github.com/kbukum/graphkit"

// TracerConfig configures span export.
type TracerConfig struct {
	ExportConfig
	// SampleRate is the fraction of traces kept, from 0 to 1.
	SampleRate float64
}

// DefaultTracerConfig exports every trace to a local collector.
func DefaultTracerConfig(serviceName string) TracerConfig {
	return TracerConfig{ExportConfig: defaultExport(serviceName), SampleRate: 1.0}
}

// InitTracer installs a global tracer provider exporting over OTLP/HTTP. The
// caller shuts it down to flush pending spans.
func InitTracer(ctx context.Context, cfg *TracerConfig) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("trace exporter: %w", err))
	}
	res, err := cfg.resource()
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("trace resource: %w", err))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(samplerFor(cfg.SampleRate))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	logger.WithComponent("observability").Debug("tracer installed", logger.Fields(
		"endpoint", cfg.Endpoint,
		"sample_rate", cfg.SampleRate,
	))
	return tp, nil
}

func samplerFor(rate float64) sdktrace.Sampler {
	if rate >= 1 {
		return sdktrace.AlwaysSample()
	}
	if rate <= 0 {
		return sdktrace.NeverSample()
	}
	return sdktrace.TraceIDRatioBased(rate)
}

// StartSpan starts a span on the graphkit tracer of the global provider.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name, opts...)
}

// SetSpanAttribute sets key on the span in ctx. Values of unsupported types
// are dropped.
func SetSpanAttribute(ctx context.Context, key string, value any) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if kv, ok := attributeOf(key, value); ok {
		span.SetAttributes(kv)
	}
}

func attributeOf(key string, value any) (attribute.KeyValue, bool) {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v), true
	case bool:
		return attribute.Bool(key, v), true
	case int:
		return attribute.Int(key, v), true
	case int64:
		return attribute.Int64(key, v), true
	case float64:
		return attribute.Float64(key, v), true
	case []string:
		return attribute.StringSlice(key, v), true
	case fmt.Stringer:
		return attribute.String(key, v.String()), true
	}
	return attribute.KeyValue{}, false
}

// SetSpanError records err on the span in ctx and marks the span failed.
func SetSpanError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() || err == nil {
		return
	}
	span.RecordError(err)
	if code := errors.CodeOf(err); code != "" {
		span.SetAttributes(attribute.String(AttrErrorCode, string(code)))
	}
}
