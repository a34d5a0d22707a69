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

// AddEdgeStep creates one edge per upstream traverser between the incoming
// vertex and another vertex. With Out the incoming vertex is the tail of the
// edge, with In it is the head.
type AddEdgeStep struct {
	traversal.Base
	label     string
	direction structure.Direction
	other     traversal.Provider
	hasOther  bool
	params    *traversal.Parameters
	callbacks *event.Registry[event.EdgeAdded]
}

var (
	_ traversal.Mutating[event.EdgeAdded] = (*AddEdgeStep)(nil)
	_ traversal.Parent                    = (*AddEdgeStep)(nil)
)

// NewAddEdge creates the step. The other end is set with To or From.
func NewAddEdge(label string) *AddEdgeStep {
	if label == "" {
		label = structure.DefaultEdgeLabel
	}
	return &AddEdgeStep{
		Base:      traversal.NewBase("AddEdgeStep"),
		label:     label,
		params:    traversal.NewParameters(),
		callbacks: event.NewRegistry[event.EdgeAdded]("AddEdgeStep"),
	}
}

// To makes the incoming vertex the tail and other the head. other is a
// structure.Vertex or a *traversal.Traversal yielding one.
func (s *AddEdgeStep) To(other any) error { return s.setOther(structure.Out, other) }

// From makes other the tail and the incoming vertex the head.
func (s *AddEdgeStep) From(other any) error { return s.setOther(structure.In, other) }

func (s *AddEdgeStep) setOther(dir structure.Direction, other any) error {
	var prov traversal.Provider
	switch o := other.(type) {
	case *traversal.Traversal:
		if t := s.Traversal(); t != nil && t.IsLocked() {
			return errors.Locked("add child traversal to " + s.Kind())
		}
		o.SetParent(s)
		prov = traversal.Bound(o)
	case structure.Vertex:
		prov = traversal.Constant(o)
	case nil:
		return errors.InvalidArgument("other", "must not be nil")
	default:
		return errors.InvalidArgument("other", fmt.Sprintf("expected a vertex or a traversal, got %T", other))
	}
	s.direction, s.other, s.hasOther = dir, prov, true
	return nil
}

func (s *AddEdgeStep) Label() string                  { return s.label }
func (s *AddEdgeStep) Direction() structure.Direction { return s.direction }

func (s *AddEdgeStep) Parameters() *traversal.Parameters { return s.params }

func (s *AddEdgeStep) AddPropertyMutations(keyValues ...any) error {
	if err := checkPairs(s, keyValues); err != nil {
		return err
	}
	for i := 0; i < len(keyValues); i += 2 {
		s.params.Set(keyValues[i], keyValues[i+1])
	}
	return s.params.IntegrateTraversals(s)
}

func (s *AddEdgeStep) MutatingCallbackRegistry() *event.Registry[event.EdgeAdded] {
	return s.callbacks
}

func (s *AddEdgeStep) LocalChildren() []*traversal.Traversal {
	children := s.params.Traversals()
	if s.other.IsBound() {
		children = append(children, s.other.Traversal())
	}
	return children
}

// Next writes one edge for the next upstream traverser and forwards it with
// the input bulk.
func (s *AddEdgeStep) Next(ctx context.Context) (traversal.Traverser, bool, error) {
	in, ok, err := s.PullUpstream(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	if !s.hasOther {
		return nil, false, errors.InvalidArgument("other", "no other vertex was given with To or From")
	}
	current, ok := in.Get().(structure.Vertex)
	if !ok {
		return nil, false, errors.InvalidArgument("traverser", fmt.Sprintf("expected a vertex, got %T", in.Get()))
	}
	resolved, err := s.other.Resolve(ctx, in)
	if err != nil {
		return nil, false, err
	}
	other, ok := resolved.(structure.Vertex)
	if !ok {
		return nil, false, errors.InvalidArgument("other", fmt.Sprintf("expected a vertex, got %T", resolved))
	}
	kvs, err := s.params.KeyValues(ctx, in)
	if err != nil {
		return nil, false, err
	}

	out, head := current, other
	if s.direction == structure.In {
		out, head = other, current
	}
	e, err := out.AddEdge(s.label, head, kvs...)
	if err != nil {
		return nil, false, errors.GraphWrite("addEdge", err)
	}
	logMutation(s, "edge added", e, in.Bulk())
	if err := notifyEdge(ctx, s.callbacks, e); err != nil {
		return nil, false, err
	}
	return in.Split(e, s), true, nil
}

func (s *AddEdgeStep) Requirements() traversal.RequirementSet {
	return traversal.SelfAndChildRequirements(traversal.RequirementSet{}, s)
}

func (s *AddEdgeStep) Hash() uint64 {
	h := s.Base.Hash() ^ traversal.HashValue(s.label) ^ traversal.HashValue("direction:"+s.direction.String()) ^ s.params.Hash()
	if s.hasOther {
		h ^= traversal.HashValue(s.other)
	}
	return h
}

func (s *AddEdgeStep) Equal(o traversal.Step) bool { return traversal.StepsEqual(s, o) }

func (s *AddEdgeStep) Close() error {
	var err error
	for _, child := range s.LocalChildren() {
		err = multierr.Append(err, child.Close())
	}
	return err
}

func (s *AddEdgeStep) String() string {
	return fmt.Sprintf("AddEdgeStep(%s,%s,%v)", s.label, s.direction, s.params)
}
