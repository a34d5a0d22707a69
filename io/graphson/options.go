package graphson

import (
	"github.com/kbukum/graphkit/logger"
	"github.com/kbukum/graphkit/observability"
	"github.com/kbukum/graphkit/resilience"
	"github.com/kbukum/graphkit/traversal/event"
)

// DefaultBatchSize is the number of writes between commits.
const DefaultBatchSize = 10000

type options struct {
	batchSize       int
	log             *logger.Logger
	metrics         *observability.Metrics
	vertexListeners []event.Callback[event.VertexAdded]
	edgeListeners   []event.Callback[event.EdgeAdded]
	continueOnError bool
	requireTx       bool
	commitRetry     resilience.RetryConfig
}

func defaultOptions() options {
	return options{
		batchSize:   DefaultBatchSize,
		log:         logger.NewNop(),
		commitRetry: resilience.NoRetry(),
	}
}

// Option configures a Reader.
type Option func(*options)

// WithBatchSize sets the number of writes between commits. Values below 1
// are ignored.
func WithBatchSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithLogger sets the loader logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l.WithComponent("graphson")
		}
	}
}

// WithMetrics records mutations and commits.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithVertexListener registers a callback fired for every vertex written.
func WithVertexListener(fn event.Callback[event.VertexAdded]) Option {
	return func(o *options) { o.vertexListeners = append(o.vertexListeners, fn) }
}

// WithEdgeListener registers a callback fired for every edge written.
func WithEdgeListener(fn event.Callback[event.EdgeAdded]) Option {
	return func(o *options) { o.edgeListeners = append(o.edgeListeners, fn) }
}

// WithContinueOnError keeps loading after a record fails. The failures are
// combined into the error returned by ReadGraph.
func WithContinueOnError(enabled bool) Option {
	return func(o *options) { o.continueOnError = enabled }
}

// WithCommitRetry retries failed batch commits. Commits are attempted once
// by default.
func WithCommitRetry(cfg resilience.RetryConfig) Option {
	return func(o *options) { o.commitRetry = cfg }
}

// WithRequireTransactions makes ReadGraph fail with UNSUPPORTED_OPERATION
// when the graph cannot commit in batches.
func WithRequireTransactions() Option {
	return func(o *options) { o.requireTx = true }
}
