package step

import (
	"context"
	"fmt"
	"math/bits"

	"github.com/kbukum/graphkit/traversal"
)

// InjectStep emits literal values, merged into bulked traversers, before
// passing through its upstream.
type InjectStep struct {
	traversal.Base
	values  []any
	pending *traversal.TraverserSet
	state   sourceState
}

func NewInject(values ...any) *InjectStep {
	return &InjectStep{
		Base:    traversal.NewBase("InjectStep"),
		values:  values,
		pending: traversal.NewTraverserSet(),
	}
}

func (s *InjectStep) Values() []any { return append([]any(nil), s.values...) }

func (s *InjectStep) Next(ctx context.Context) (traversal.Traverser, bool, error) {
	if s.state == notFired {
		s.state = fired
		for _, v := range s.values {
			s.pending.Add(s.Generate(v, s, 1))
		}
	}
	tr, ok, err := s.pending.Next(ctx)
	if err != nil {
		return nil, false, err
	}
	if ok {
		return tr, true, nil
	}
	return s.PullUpstream(ctx)
}

func (s *InjectStep) Reset() {
	s.state = notFired
	s.pending.Clear()
}

func (s *InjectStep) Hash() uint64 {
	h := s.Base.Hash()
	for _, v := range s.values {
		h = bits.RotateLeft64(h, 3) ^ traversal.HashValue(v)
	}
	return h
}

func (s *InjectStep) Equal(o traversal.Step) bool { return traversal.StepsEqual(s, o) }

func (s *InjectStep) String() string { return fmt.Sprintf("InjectStep(%v)", s.values) }

// StartStep passes the traversal's start traversers through, regenerating
// them when the traversal tracks paths and the start does not.
type StartStep struct {
	traversal.Base
}

func NewStart() *StartStep { return &StartStep{Base: traversal.NewBase("StartStep")} }

func (s *StartStep) Next(ctx context.Context) (traversal.Traverser, bool, error) {
	in, ok, err := s.PullUpstream(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	if in.Path() == nil && s.Traversal() != nil && s.Traversal().Generator().Requirements().NeedsTracking() {
		return s.Generate(in.Get(), s, in.Bulk()), true, nil
	}
	return in, true, nil
}

func (s *StartStep) Equal(o traversal.Step) bool { return traversal.StepsEqual(s, o) }
