// Package instrument decorates traversal steps with tracing, metrics and
// logging, and provides mutation listeners that feed the same backends.
//
// Decorators wrap a step before it is added to a traversal:
//
//	s := instrument.WithTracing(step.NewAddVertex("person"), "graphkit")
//	s = instrument.WithMetrics(s, metrics)
//	err := t.AddStep(s)
//
// Exhaustion is recorded as a status, never as an error.
package instrument

import (
	"context"
	"time"

	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/logger"
	"github.com/kbukum/graphkit/observability"
	"github.com/kbukum/graphkit/traversal"
)

const (
	statusOK        = "ok"
	statusExhausted = "exhausted"
	statusError     = "error"
)

func statusOf(ok bool, err error) string {
	switch {
	case err != nil:
		return statusError
	case !ok:
		return statusExhausted
	default:
		return statusOK
	}
}

// WithTracing wraps a step with OpenTelemetry span creation.
// Each pull creates a span named "{prefix}.{kind}".
func WithTracing(s traversal.Step, prefix string) traversal.Step {
	return &tracingStep{Step: s, prefix: prefix}
}

type tracingStep struct {
	traversal.Step
	prefix string
}

func (d *tracingStep) Unwrap() traversal.Step { return d.Step }

func (d *tracingStep) Next(ctx context.Context) (traversal.Traverser, bool, error) {
	ctx, span := observability.StartSpan(ctx, d.prefix+"."+d.Kind())
	defer span.End()

	observability.SetSpanAttribute(ctx, observability.AttrStepID, d.ID())
	observability.SetSpanAttribute(ctx, observability.AttrStepKind, d.Kind())

	t, ok, err := d.Step.Next(ctx)
	switch {
	case err != nil:
		observability.SetSpanError(ctx, err)
	case !ok:
		observability.SetSpanAttribute(ctx, observability.AttrExhausted, true)
	default:
		observability.SetSpanAttribute(ctx, observability.AttrBulk, t.Bulk())
	}
	return t, ok, err
}

// WithMetrics wraps a step with metric recording.
// Records pull count, duration, and errors.
func WithMetrics(s traversal.Step, metrics *observability.Metrics) traversal.Step {
	return &metricsStep{Step: s, metrics: metrics}
}

type metricsStep struct {
	traversal.Step
	metrics *observability.Metrics
}

func (d *metricsStep) Unwrap() traversal.Step { return d.Step }

func (d *metricsStep) Next(ctx context.Context) (traversal.Traverser, bool, error) {
	start := time.Now()
	t, ok, err := d.Step.Next(ctx)
	duration := time.Since(start)

	if err != nil {
		code := string(errors.CodeOf(err))
		if code == "" {
			code = "UNKNOWN"
		}
		d.metrics.RecordError(ctx, code, d.Kind())
	}
	d.metrics.RecordPull(ctx, d.Kind(), statusOf(ok, err), duration)

	return t, ok, err
}

// WithLogging wraps a step with pull logging.
// Failures are logged at error level, everything else at debug.
func WithLogging(s traversal.Step, log *logger.Logger) traversal.Step {
	return &loggingStep{Step: s, log: log}
}

type loggingStep struct {
	traversal.Step
	log *logger.Logger
}

func (d *loggingStep) Unwrap() traversal.Step { return d.Step }

func (d *loggingStep) Next(ctx context.Context) (traversal.Traverser, bool, error) {
	start := time.Now()
	t, ok, err := d.Step.Next(ctx)
	duration := time.Since(start)

	fields := map[string]interface{}{
		logger.FieldStep:     d.ID(),
		logger.FieldStepKind: d.Kind(),
		logger.FieldDuration: duration.Milliseconds(),
	}

	switch {
	case err != nil:
		fields[logger.FieldError] = err.Error()
		d.log.Error("step failed", fields)
	case !ok:
		d.log.Debug("step exhausted", fields)
	default:
		fields[logger.FieldBulk] = t.Bulk()
		d.log.Debug("step pulled", fields)
	}

	return t, ok, err
}
