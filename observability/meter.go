package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/logger"
)

// MeterConfig configures metric export.
type MeterConfig struct {
	ExportConfig
	// Interval between exports. Zero keeps the SDK default.
	Interval time.Duration
}

// DefaultMeterConfig exports to a local collector every 15 seconds.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{ExportConfig: defaultExport(serviceName), Interval: 15 * time.Second}
}

// InitMeter installs a global meter provider exporting over OTLP/HTTP. The
// caller shuts it down to flush the last interval.
func InitMeter(ctx context.Context, cfg *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("metric exporter: %w", err))
	}
	res, err := cfg.resource()
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("metric resource: %w", err))
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.WithComponent("observability").Debug("meter installed", logger.Fields(
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded while traversals run and graphs load.
type Metrics struct {
	pullTotal     metric.Int64Counter
	pullDuration  metric.Float64Histogram
	mutationTotal metric.Int64Counter
	commitTotal   metric.Int64Counter
	errorTotal    metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	pullTotal, err := meter.Int64Counter("traversal.pull.total",
		metric.WithDescription("Total number of step pulls"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating traversal.pull.total counter: %w", err)
	}

	pullDuration, err := meter.Float64Histogram("traversal.pull.duration",
		metric.WithDescription("Duration of step pulls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating traversal.pull.duration histogram: %w", err)
	}

	mutationTotal, err := meter.Int64Counter("mutation.total",
		metric.WithDescription("Total number of elements written to the graph"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating mutation.total counter: %w", err)
	}

	commitTotal, err := meter.Int64Counter("commit.total",
		metric.WithDescription("Total number of graph commits"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating commit.total counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("error.total",
		metric.WithDescription("Total errors by code and component"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating error.total counter: %w", err)
	}

	return &Metrics{
		pullTotal:     pullTotal,
		pullDuration:  pullDuration,
		mutationTotal: mutationTotal,
		commitTotal:   commitTotal,
		errorTotal:    errorTotal,
	}, nil
}

// RecordPull records one pull of a step. status is "ok", "exhausted" or
// "error".
func (m *Metrics) RecordPull(ctx context.Context, stepKind, status string, duration time.Duration) {
	m.pullTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("step", stepKind),
		attribute.String("status", status),
	))
	m.pullDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("step", stepKind),
	))
}

// RecordMutation records one element written to the graph.
func (m *Metrics) RecordMutation(ctx context.Context, kind, label string) {
	m.mutationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("label", label),
	))
}

// RecordCommit records a commit and its outcome.
func (m *Metrics) RecordCommit(ctx context.Context, status string) {
	m.commitTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordError records an error by code and component.
func (m *Metrics) RecordError(ctx context.Context, code, component string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("component", component),
	))
}
