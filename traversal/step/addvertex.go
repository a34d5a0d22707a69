package step

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/structure"
	"github.com/kbukum/graphkit/traversal"
	"github.com/kbukum/graphkit/traversal/event"
)

// AddVertexStartStep creates one vertex from a literal key/value list on its
// first pull and is exhausted afterwards.
type AddVertexStartStep struct {
	traversal.Base
	keyValues []any
	state     sourceState
	callbacks *event.Registry[event.VertexAdded]
}

var _ traversal.Mutating[event.VertexAdded] = (*AddVertexStartStep)(nil)

// NewAddVertexStart creates the step. An empty label leaves the choice to
// the graph.
func NewAddVertexStart(label string) *AddVertexStartStep {
	s := &AddVertexStartStep{
		Base:      traversal.NewBase("AddVertexStartStep"),
		callbacks: event.NewRegistry[event.VertexAdded]("AddVertexStartStep"),
	}
	if label != "" {
		s.keyValues = []any{structure.T.Label, label}
	}
	return s
}

// KeyValues returns a copy of the literal key/value list.
func (s *AddVertexStartStep) KeyValues() []any { return append([]any(nil), s.keyValues...) }

// AddPropertyMutations appends literal key/value pairs.
func (s *AddVertexStartStep) AddPropertyMutations(keyValues ...any) error {
	if err := checkPairs(s, keyValues); err != nil {
		return err
	}
	for i := 1; i < len(keyValues); i += 2 {
		if _, ok := keyValues[i].(*traversal.Traversal); ok {
			return errors.InvalidArgument("keyValues", "a start step accepts constant property values only")
		}
	}
	s.keyValues = append(s.keyValues, keyValues...)
	return nil
}

func (s *AddVertexStartStep) MutatingCallbackRegistry() *event.Registry[event.VertexAdded] {
	return s.callbacks
}

// Next writes the vertex on the first pull after construction or Reset.
func (s *AddVertexStartStep) Next(ctx context.Context) (traversal.Traverser, bool, error) {
	if s.state == fired {
		return nil, false, nil
	}
	g, err := graphOf(s)
	if err != nil {
		return nil, false, err
	}
	s.state = fired

	v, err := g.AddVertex(s.keyValues...)
	if err != nil {
		return nil, false, errors.GraphWrite("addVertex", err)
	}
	logMutation(s, "vertex added", v, 1)
	if err := notifyVertex(ctx, s.callbacks, v); err != nil {
		return nil, false, err
	}
	return s.Generate(v, s, 1), true, nil
}

// Reset re-arms the step for exactly one more write.
func (s *AddVertexStartStep) Reset() { s.state = notFired }

func (s *AddVertexStartStep) Hash() uint64 { return s.Base.Hash() ^ hashKeyValues(s.keyValues) }

func (s *AddVertexStartStep) Equal(o traversal.Step) bool { return traversal.StepsEqual(s, o) }

func (s *AddVertexStartStep) String() string {
	return fmt.Sprintf("AddVertexStartStep(%v)", s.keyValues)
}

// AddVertexStep creates one vertex per upstream traverser. Property values
// may be child traversals evaluated against that traverser.
type AddVertexStep struct {
	traversal.Base
	params    *traversal.Parameters
	callbacks *event.Registry[event.VertexAdded]
}

var (
	_ traversal.Mutating[event.VertexAdded] = (*AddVertexStep)(nil)
	_ traversal.Parent                      = (*AddVertexStep)(nil)
)

// NewAddVertex creates the step with the given vertex label.
func NewAddVertex(label string) *AddVertexStep {
	if label == "" {
		label = structure.DefaultVertexLabel
	}
	s := &AddVertexStep{
		Base:      traversal.NewBase("AddVertexStep"),
		params:    traversal.NewParameters(),
		callbacks: event.NewRegistry[event.VertexAdded]("AddVertexStep"),
	}
	s.params.Set(structure.T.Label, label)
	return s
}

func (s *AddVertexStep) Parameters() *traversal.Parameters { return s.params }

// KeyValues evaluates the parameters without input, as used before any
// traverser flows.
func (s *AddVertexStep) KeyValues(ctx context.Context) ([]any, error) {
	return s.params.KeyValues(ctx, traversal.EmptyTraverser())
}

// AddPropertyMutations appends key/value pairs. A *traversal.Traversal value
// is bound and evaluated per traverser.
func (s *AddVertexStep) AddPropertyMutations(keyValues ...any) error {
	if err := checkPairs(s, keyValues); err != nil {
		return err
	}
	for i := 0; i < len(keyValues); i += 2 {
		s.params.Set(keyValues[i], keyValues[i+1])
	}
	return s.params.IntegrateTraversals(s)
}

func (s *AddVertexStep) MutatingCallbackRegistry() *event.Registry[event.VertexAdded] {
	return s.callbacks
}

func (s *AddVertexStep) LocalChildren() []*traversal.Traversal { return s.params.Traversals() }

// Next writes one vertex for the next upstream traverser and forwards it
// with the input bulk.
func (s *AddVertexStep) Next(ctx context.Context) (traversal.Traverser, bool, error) {
	in, ok, err := s.PullUpstream(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	g, err := graphOf(s)
	if err != nil {
		return nil, false, err
	}
	kvs, err := s.params.KeyValues(ctx, in)
	if err != nil {
		return nil, false, err
	}
	v, err := g.AddVertex(kvs...)
	if err != nil {
		return nil, false, errors.GraphWrite("addVertex", err)
	}
	logMutation(s, "vertex added", v, in.Bulk())
	if err := notifyVertex(ctx, s.callbacks, v); err != nil {
		return nil, false, err
	}
	return in.Split(v, s), true, nil
}

func (s *AddVertexStep) Requirements() traversal.RequirementSet {
	return traversal.SelfAndChildRequirements(traversal.RequirementSet{}, s)
}

func (s *AddVertexStep) Hash() uint64 { return s.Base.Hash() ^ s.params.Hash() }

func (s *AddVertexStep) Equal(o traversal.Step) bool { return traversal.StepsEqual(s, o) }

func (s *AddVertexStep) Close() error {
	var err error
	for _, child := range s.LocalChildren() {
		err = multierr.Append(err, child.Close())
	}
	return err
}

func (s *AddVertexStep) String() string { return "AddVertexStep(" + s.params.String() + ")" }
