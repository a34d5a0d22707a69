// Package graphson bulk loads graphs from the GraphSON JSON format.
//
// A document is a single object with optional "properties", "vertices" and
// "edges" members:
//
//	{
//	  "properties": {"name": "modern"},
//	  "vertices": [{"id": 1, "label": "person", "properties": {"name": {"value": "marko"}}}],
//	  "edges": [{"id": 7, "outV": 1, "inV": 2, "label": "knows", "properties": {}}]
//	}
//
// The document is streamed, so vertices and edges are never held in memory
// all at once. Every element is written through the mutating steps of the
// traversal core, which means registered listeners observe the load exactly
// like any other mutation.
package graphson

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/multierr"

	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/logger"
	"github.com/kbukum/graphkit/observability"
	"github.com/kbukum/graphkit/resilience"
	"github.com/kbukum/graphkit/structure"
	"github.com/kbukum/graphkit/traversal"
	"github.com/kbukum/graphkit/traversal/step"
)

// Stats summarizes a load. Vertices and Edges count every element written,
// including those whose listener failed afterwards.
type Stats struct {
	Vertices        int
	Edges           int
	GraphProperties int
	Commits         int
	Failed          int
	Duration        time.Duration
}

func (s Stats) String() string {
	return fmt.Sprintf("vertices=%d edges=%d properties=%d commits=%d failed=%d duration=%s",
		s.Vertices, s.Edges, s.GraphProperties, s.Commits, s.Failed, s.Duration)
}

// Reader loads GraphSON documents into a graph.
type Reader struct {
	graph   structure.Graph
	opts    options
	ids     map[any]structure.Vertex
	pending int
	stats   Stats
}

// NewReader creates a reader writing to g.
func NewReader(g structure.Graph, opts ...Option) *Reader {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Reader{graph: g, opts: o}
}

// ReadGraph loads a GraphSON document into g. See Reader.ReadGraph.
func ReadGraph(ctx context.Context, g structure.Graph, in io.Reader, opts ...Option) (Stats, error) {
	return NewReader(g, opts...).ReadGraph(ctx, in)
}

// ReadGraph streams a document from in. Malformed JSON always stops the
// load. A failing record stops it too unless WithContinueOnError is set.
// When the graph supports transactions, writes are committed every batch
// and once at the end. Without them batching is skipped unless
// WithRequireTransactions is set.
func (r *Reader) ReadGraph(ctx context.Context, in io.Reader) (Stats, error) {
	if r.graph == nil {
		return Stats{}, errors.InvalidArgument("graph", "must not be nil")
	}
	if _, ok := r.graph.Tx(); !ok && r.opts.requireTx {
		return Stats{}, errors.Unsupported("transactions")
	}
	r.ids = make(map[any]structure.Vertex)
	r.pending = 0
	r.stats = Stats{}
	start := time.Now()

	ctx, span := observability.StartSpan(ctx, observability.SpanGraphSONLoad)
	defer span.End()

	err := r.read(ctx, in)
	if err == nil || r.opts.continueOnError && !isFatal(err) {
		err = multierr.Append(err, r.commit(ctx))
	}
	r.stats.Duration = time.Since(start)

	observability.SetSpanAttribute(ctx, "graphson.vertices", r.stats.Vertices)
	observability.SetSpanAttribute(ctx, "graphson.edges", r.stats.Edges)
	if err != nil {
		observability.SetSpanError(ctx, err)
		r.opts.log.Error("graphson load failed", logger.Fields(
			logger.FieldError, err.Error(),
			logger.FieldDuration, r.stats.Duration.Milliseconds(),
		))
		return r.stats, err
	}
	r.opts.log.Info("graphson load completed", logger.Fields(
		"vertices", r.stats.Vertices,
		"edges", r.stats.Edges,
		"commits", r.stats.Commits,
		logger.FieldDuration, r.stats.Duration.Milliseconds(),
	))
	return r.stats, nil
}

// fatalError marks errors that stop a load even with WithContinueOnError.
type fatalError struct{ error }

func (e fatalError) Unwrap() error { return e.error }

func fatal(err error) error {
	if err == nil {
		return nil
	}
	return fatalError{err}
}

func isFatal(err error) bool {
	for _, e := range multierr.Errors(err) {
		if _, ok := e.(fatalError); ok {
			return true
		}
	}
	return false
}

func (r *Reader) read(ctx context.Context, in io.Reader) error {
	dec := newDecoder(in)
	if err := expectDelim(dec, '{', "a JSON object"); err != nil {
		return fatal(err)
	}

	var errs error
	for dec.More() {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, fatal(err))
		}
		tok, err := dec.Token()
		if err != nil {
			return multierr.Append(errs, fatal(invalid("object key", err)))
		}
		key, _ := tok.(string)

		switch key {
		case fieldProperties:
			err = r.readProperties(dec)
		case fieldVertices:
			err = r.readArray(ctx, dec, r.readVertex)
		case fieldEdges:
			err = r.readArray(ctx, dec, r.readEdge)
		default:
			r.opts.log.Warn("skipping unknown field", logger.Fields("field", key))
			var skip json.RawMessage
			if derr := dec.Decode(&skip); derr != nil {
				err = fatal(invalid(key, derr))
			}
		}
		errs = multierr.Append(errs, err)
		if err != nil && (!r.opts.continueOnError || isFatal(err)) {
			return errs
		}
	}
	if err := expectDelim(dec, '}', "the end of the object"); err != nil {
		return multierr.Append(errs, fatal(err))
	}
	return errs
}

func (r *Reader) readProperties(dec *json.Decoder) error {
	var props map[string]any
	if err := dec.Decode(&props); err != nil {
		return fatal(invalid(fieldProperties, err))
	}
	mem, ok := r.graph.Memory()
	if !ok {
		r.opts.log.Debug("graph memory unsupported, skipping graph properties", logger.Fields(logger.FieldCount, len(props)))
		return nil
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := mem.Set(k, normalizeNumbers(props[k])); err != nil {
			return err
		}
		r.stats.GraphProperties++
	}
	return nil
}

// readArray decodes the elements of a JSON array one by one with fn.
func (r *Reader) readArray(ctx context.Context, dec *json.Decoder, fn func(context.Context, *json.Decoder) error) error {
	if err := expectDelim(dec, '[', "an array"); err != nil {
		return fatal(err)
	}
	var errs error
	for dec.More() {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, fatal(err))
		}
		err := fn(ctx, dec)
		if err == nil {
			continue
		}
		r.stats.Failed++
		errs = multierr.Append(errs, err)
		if !r.opts.continueOnError || isFatal(err) {
			return errs
		}
		r.opts.log.Warn("skipping failed record", logger.Fields(logger.FieldError, err.Error()))
	}
	if err := expectDelim(dec, ']', "the end of the array"); err != nil {
		return multierr.Append(errs, fatal(err))
	}
	return errs
}

func (r *Reader) readVertex(ctx context.Context, dec *json.Decoder) error {
	var d VertexDescriptor
	if err := dec.Decode(&d); err != nil {
		return fatal(invalid("vertex", err))
	}
	// Edges load from the edges array only.
	d.OutE, d.InE = nil, nil
	if err := d.normalize(); err != nil {
		return err
	}
	v, err := r.writeVertex(ctx, &d)
	if v == nil {
		return err
	}
	// A listener failure leaves the vertex in the graph, so edges may still
	// reference it and the next commit must include it.
	key := d.ID
	if key == nil {
		key = v.ID()
	}
	r.ids[key] = v
	r.stats.Vertices++
	if r.opts.metrics != nil {
		r.opts.metrics.RecordMutation(ctx, "vertex", v.Label())
	}
	return multierr.Append(err, r.written(ctx))
}

func (r *Reader) writeVertex(ctx context.Context, d *VertexDescriptor) (structure.Vertex, error) {
	s := step.NewAddVertexStart("")
	if err := s.AddPropertyMutations(d.KeyValues()...); err != nil {
		return nil, err
	}
	for _, fn := range r.opts.vertexListeners {
		s.MutatingCallbackRegistry().Add(fn)
	}
	g := &vertexRecorder{Graph: r.graph}
	err := r.pullOne(ctx, g, s)
	return g.last, err
}

func (r *Reader) readEdge(ctx context.Context, dec *json.Decoder) error {
	var d EdgeDescriptor
	if err := dec.Decode(&d); err != nil {
		return fatal(invalid("edge", err))
	}
	if err := d.normalize(); err != nil {
		return err
	}
	out, ok := r.ids[d.OutV]
	if !ok {
		return errors.NotFound("vertex", d.OutV).WithDetail("edge", d.ID)
	}
	in, ok := r.ids[d.InV]
	if !ok {
		return errors.NotFound("vertex", d.InV).WithDetail("edge", d.ID)
	}

	s := step.NewAddEdge(d.Label)
	if err := s.To(in); err != nil {
		return err
	}
	if err := s.AddPropertyMutations(d.KeyValues()...); err != nil {
		return err
	}
	for _, fn := range r.opts.edgeListeners {
		s.MutatingCallbackRegistry().Add(fn)
	}
	tail := &edgeRecorder{Vertex: out}
	err := r.pullOne(ctx, r.graph, step.NewInject(tail), s)
	if tail.last == nil {
		return err
	}
	r.stats.Edges++
	if r.opts.metrics != nil {
		r.opts.metrics.RecordMutation(ctx, "edge", tail.last.Label())
	}
	return multierr.Append(err, r.written(ctx))
}

// vertexRecorder remembers the last vertex written through it.
type vertexRecorder struct {
	structure.Graph
	last structure.Vertex
}

func (g *vertexRecorder) AddVertex(keyValues ...any) (structure.Vertex, error) {
	v, err := g.Graph.AddVertex(keyValues...)
	if err == nil {
		g.last = v
	}
	return v, err
}

// edgeRecorder remembers the last edge written from its vertex.
type edgeRecorder struct {
	structure.Vertex
	last structure.Edge
}

func (v *edgeRecorder) AddEdge(label string, in structure.Vertex, keyValues ...any) (structure.Edge, error) {
	e, err := v.Vertex.AddEdge(label, in, keyValues...)
	if err == nil {
		v.last = e
	}
	return e, err
}

// pullOne runs a single-use traversal over steps for its first value.
func (r *Reader) pullOne(ctx context.Context, g structure.Graph, steps ...traversal.Step) error {
	t := traversal.New(traversal.WithGraph(g), traversal.WithLogger(r.opts.log))
	for _, s := range steps {
		if err := t.AddStep(s); err != nil {
			return err
		}
	}
	defer t.Close()
	_, err := traversal.NextValue(ctx, t)
	return err
}

// written counts a write and commits when a batch is full.
func (r *Reader) written(ctx context.Context) error {
	r.pending++
	if r.pending < r.opts.batchSize {
		return nil
	}
	return r.commit(ctx)
}

func (r *Reader) commit(ctx context.Context) error {
	tx, ok := r.graph.Tx()
	if !ok || r.pending == 0 {
		return nil
	}
	spanCtx, span := observability.StartSpan(ctx, observability.SpanCommit)
	defer span.End()

	n := r.pending
	retry := r.opts.commitRetry
	retry.OnRetry = func(attempt int, err error, backoff time.Duration) {
		r.opts.log.Warn("commit failed, retrying", logger.Fields(
			"attempt", attempt,
			"backoff", backoff.String(),
			logger.FieldError, err.Error(),
		))
	}
	err := resilience.Retry(ctx, retry, func(int) error {
		if err := tx.Commit(); err != nil {
			return errors.CommitFailed(err)
		}
		return nil
	})
	if err != nil {
		observability.SetSpanError(spanCtx, err)
		if r.opts.metrics != nil {
			r.opts.metrics.RecordCommit(ctx, "error")
		}
		return fatal(err)
	}
	r.pending = 0
	r.stats.Commits++
	if r.opts.metrics != nil {
		r.opts.metrics.RecordCommit(ctx, "ok")
	}
	r.opts.log.Debug("batch committed", logger.Fields(logger.FieldCount, n))
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim, expected string) error {
	tok, err := dec.Token()
	if err != nil {
		return invalid(expected, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return errors.InvalidFormat("graphson", expected).WithDetail("token", fmt.Sprint(tok))
	}
	return nil
}

func invalid(what string, cause error) error {
	return errors.InvalidFormat("graphson "+what, "valid JSON").WithCause(cause)
}
