// Package graphtraversal assembles traversals with a fluent API:
//
//	g := graphtraversal.NewSource(graph)
//	v, err := g.AddV("person").Property("name", "marko").Next(ctx)
//
// Construction errors are kept and returned by the first terminal call.
package graphtraversal

import (
	"context"
	"fmt"

	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/structure"
	"github.com/kbukum/graphkit/traversal"
	"github.com/kbukum/graphkit/traversal/event"
	"github.com/kbukum/graphkit/traversal/step"
)

// Source spawns traversals bound to a graph.
type Source struct {
	graph    structure.Graph
	opts     []traversal.Option
	decorate func(traversal.Step) traversal.Step
}

// NewSource creates a source for graph. opts are applied to every spawned
// traversal.
func NewSource(graph structure.Graph, opts ...traversal.Option) *Source {
	return &Source{graph: graph, opts: opts}
}

// WithDecorator wraps every step appended to traversals spawned from s
// with fn, e.g. instrument.WithTracing.
func (s *Source) WithDecorator(fn func(traversal.Step) traversal.Step) *Source {
	return &Source{graph: s.graph, opts: s.opts, decorate: fn}
}

func (s *Source) spawn() *GraphTraversal {
	opts := append([]traversal.Option{traversal.WithGraph(s.graph)}, s.opts...)
	gt := &GraphTraversal{t: traversal.New(opts...), decorate: s.decorate}
	if s.graph == nil {
		gt.err = errors.InvalidArgument("graph", "must not be nil")
	}
	return gt
}

// AddV starts a traversal that creates one vertex.
func (s *Source) AddV(label string) *GraphTraversal {
	return s.spawn().AddStep(step.NewAddVertexStart(label))
}

// Inject starts a traversal emitting values.
func (s *Source) Inject(values ...any) *GraphTraversal {
	return s.spawn().AddStep(step.NewInject(values...))
}

// Anon returns an anonymous traversal for use as a bound property value or
// edge endpoint. It inherits its graph from the step it is bound to.
func Anon() *GraphTraversal {
	return &GraphTraversal{t: traversal.New()}
}

// GraphTraversal wraps a traversal under construction.
type GraphTraversal struct {
	t        *traversal.Traversal
	err      error
	decorate func(traversal.Step) traversal.Step

	// pending repeats the value of a bulked traverser across Next calls.
	pending   traversal.Traverser
	remaining int64
}

func (g *GraphTraversal) Traversal() *traversal.Traversal { return g.t }

// Err returns the first construction error.
func (g *GraphTraversal) Err() error { return g.err }

// AddStep appends s, applying the source decorator if any.
func (g *GraphTraversal) AddStep(s traversal.Step) *GraphTraversal {
	if g.err != nil {
		return g
	}
	if g.decorate != nil && s != nil {
		s = g.decorate(s)
	}
	g.err = g.t.AddStep(s)
	return g
}

func (g *GraphTraversal) fail(err error) *GraphTraversal {
	if g.err == nil {
		g.err = err
	}
	return g
}

func (g *GraphTraversal) AddV(label string) *GraphTraversal {
	return g.AddStep(step.NewAddVertex(label))
}

// AddE appends an edge step; follow it with To or From.
func (g *GraphTraversal) AddE(label string) *GraphTraversal {
	return g.AddStep(step.NewAddEdge(label))
}

// To sets the head of the preceding AddE. other is a vertex or a
// *GraphTraversal yielding one.
func (g *GraphTraversal) To(other any) *GraphTraversal {
	return g.endpoint(other, (*step.AddEdgeStep).To)
}

// From sets the tail of the preceding AddE.
func (g *GraphTraversal) From(other any) *GraphTraversal {
	return g.endpoint(other, (*step.AddEdgeStep).From)
}

func (g *GraphTraversal) endpoint(other any, set func(*step.AddEdgeStep, any) error) *GraphTraversal {
	if g.err != nil {
		return g
	}
	addE, ok := g.end().(*step.AddEdgeStep)
	if !ok {
		return g.fail(errors.InvalidArgument("to/from", "must follow AddE"))
	}
	v, err := unwrapValue(other)
	if err != nil {
		return g.fail(err)
	}
	return g.fail(set(addE, v))
}

// Property adds a property to the element written by the preceding
// mutating step. A *GraphTraversal value is evaluated per traverser.
func (g *GraphTraversal) Property(key, value any) *GraphTraversal {
	if g.err != nil {
		return g
	}
	m, ok := g.end().(traversal.PropertyMutator)
	if !ok {
		return g.fail(errors.InvalidArgument("property", "must follow a mutating step"))
	}
	v, err := unwrapValue(value)
	if err != nil {
		return g.fail(err)
	}
	return g.fail(m.AddPropertyMutations(key, v))
}

func (g *GraphTraversal) Map(name string, fn step.MapFunc) *GraphTraversal {
	return g.AddStep(step.NewLambdaMap(name, fn))
}

func (g *GraphTraversal) Constant(value any) *GraphTraversal {
	return g.AddStep(step.NewConstant(value))
}

func (g *GraphTraversal) Values(keys ...string) *GraphTraversal {
	return g.AddStep(step.NewValues(keys...))
}

func (g *GraphTraversal) Path() *GraphTraversal     { return g.AddStep(step.NewPath()) }
func (g *GraphTraversal) Identity() *GraphTraversal { return g.AddStep(step.NewIdentity()) }

// As labels the preceding step.
func (g *GraphTraversal) As(label string) *GraphTraversal {
	if g.err != nil {
		return g
	}
	end := g.t.EndStep()
	if end == nil {
		return g.fail(errors.InvalidArgument("as", "must follow a step"))
	}
	end.AddLabel(label)
	return g
}

// OnVertexAdded registers cb on the preceding vertex-creating step.
func (g *GraphTraversal) OnVertexAdded(cb event.Callback[event.VertexAdded]) *GraphTraversal {
	if g.err != nil {
		return g
	}
	m, ok := g.end().(traversal.Mutating[event.VertexAdded])
	if !ok {
		return g.fail(errors.InvalidArgument("listener", "must follow AddV"))
	}
	m.MutatingCallbackRegistry().Add(cb)
	return g
}

// OnEdgeAdded registers cb on the preceding AddE.
func (g *GraphTraversal) OnEdgeAdded(cb event.Callback[event.EdgeAdded]) *GraphTraversal {
	if g.err != nil {
		return g
	}
	m, ok := g.end().(traversal.Mutating[event.EdgeAdded])
	if !ok {
		return g.fail(errors.InvalidArgument("listener", "must follow AddE"))
	}
	m.MutatingCallbackRegistry().Add(cb)
	return g
}

func (g *GraphTraversal) end() traversal.Step {
	if end := g.t.EndStep(); end != nil {
		return traversal.Unwrap(end)
	}
	return nil
}

// --- terminals ---

// Next returns the next value, repeating bulked values. It returns
// traversal.ErrExhausted when there is none.
func (g *GraphTraversal) Next(ctx context.Context) (any, error) {
	if g.err != nil {
		return nil, g.err
	}
	if g.remaining == 0 {
		tr, ok, err := g.t.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, traversal.ErrExhausted
		}
		g.pending, g.remaining = tr, tr.Bulk()
	}
	g.remaining--
	return g.pending.Get(), nil
}

// ToList drains the traversal, expanding bulks.
func (g *GraphTraversal) ToList(ctx context.Context) ([]any, error) {
	trs, err := g.Traversers(ctx)
	if err != nil {
		return nil, err
	}
	var out []any
	for _, tr := range trs {
		for i := int64(0); i < tr.Bulk(); i++ {
			out = append(out, tr.Get())
		}
	}
	return out, nil
}

// Traversers drains the traversal without expanding bulks.
func (g *GraphTraversal) Traversers(ctx context.Context) ([]traversal.Traverser, error) {
	if g.err != nil {
		return nil, g.err
	}
	return traversal.Collect(ctx, g.t)
}

// Iterate drains the traversal for its side effects.
func (g *GraphTraversal) Iterate(ctx context.Context) error {
	if g.err != nil {
		return g.err
	}
	for {
		_, ok, err := g.t.Next(ctx)
		if err != nil || !ok {
			return err
		}
	}
}

func (g *GraphTraversal) Close() error { return g.t.Close() }

func (g *GraphTraversal) String() string { return g.t.String() }

func unwrapValue(v any) (any, error) {
	gt, ok := v.(*GraphTraversal)
	if !ok {
		return v, nil
	}
	if gt == nil {
		return nil, errors.InvalidArgument("traversal", "must not be nil")
	}
	if gt.err != nil {
		return nil, fmt.Errorf("child traversal: %w", gt.err)
	}
	return gt.t, nil
}
