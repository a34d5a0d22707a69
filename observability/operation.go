package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/graphkit/errors"
)

// Operation is one top-level unit of work, such as a command-line load,
// traced as a single root span.
type Operation struct {
	Service string
	Name    string
	Started time.Time

	span    trace.Span
	metrics *Metrics
}

type operationKey struct{}

// StartOperation opens a span named "<service>.<name>". metrics may be nil.
func StartOperation(ctx context.Context, service, name string, metrics *Metrics) (context.Context, *Operation) {
	op := &Operation{Service: service, Name: name, Started: time.Now(), metrics: metrics}
	ctx, op.span = StartSpan(ctx, service+"."+name, trace.WithAttributes(
		attribute.String(AttrService, service),
		attribute.String(AttrOperation, name),
	))
	return context.WithValue(ctx, operationKey{}, op), op
}

// OperationFrom returns the operation started on ctx, or nil.
func OperationFrom(ctx context.Context) *Operation {
	op, _ := ctx.Value(operationKey{}).(*Operation)
	return op
}

// Elapsed is the time since the operation started.
func (op *Operation) Elapsed() time.Duration { return time.Since(op.Started) }

// End closes the span. A non-nil err sets the status to its error code
// ("error" for plain errors) and is counted in the error metric.
func (op *Operation) End(ctx context.Context, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		if code := errors.CodeOf(err); code != "" {
			status = string(code)
		}
		op.span.RecordError(err)
		if op.metrics != nil {
			op.metrics.RecordError(ctx, status, op.Name)
		}
	}
	op.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrElapsedMs, op.Elapsed().Milliseconds()),
	)
	op.span.End()
}
