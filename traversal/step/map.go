package step

import (
	"context"
	"fmt"

	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/structure"
	"github.com/kbukum/graphkit/traversal"
)

// MapFunc computes the output value for one traverser.
type MapFunc func(ctx context.Context, t traversal.Traverser) (any, error)

// LambdaMapStep applies a function to every traverser. Functions cannot be
// compared, so structural identity comes from the step's name.
type LambdaMapStep struct {
	traversal.Base
	name string
	fn   MapFunc
}

func NewLambdaMap(name string, fn MapFunc) *LambdaMapStep {
	return &LambdaMapStep{Base: traversal.NewBase("LambdaMapStep"), name: name, fn: fn}
}

func (s *LambdaMapStep) Next(ctx context.Context) (traversal.Traverser, bool, error) {
	in, ok, err := s.PullUpstream(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	if s.fn == nil {
		return nil, false, errors.InvalidArgument("fn", "map function must not be nil")
	}
	v, err := s.fn(ctx, in)
	if err != nil {
		return nil, false, err
	}
	return in.Split(v, s), true, nil
}

func (s *LambdaMapStep) Hash() uint64                { return s.Base.Hash() ^ traversal.HashValue(s.name) }
func (s *LambdaMapStep) Equal(o traversal.Step) bool { return traversal.StepsEqual(s, o) }
func (s *LambdaMapStep) String() string              { return "LambdaMapStep(" + s.name + ")" }

// ConstantStep maps every traverser to the same value.
type ConstantStep struct {
	traversal.Base
	value any
}

func NewConstant(value any) *ConstantStep {
	return &ConstantStep{Base: traversal.NewBase("ConstantStep"), value: value}
}

func (s *ConstantStep) Next(ctx context.Context) (traversal.Traverser, bool, error) {
	in, ok, err := s.PullUpstream(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	return in.Split(s.value, s), true, nil
}

func (s *ConstantStep) Hash() uint64                { return s.Base.Hash() ^ traversal.HashValue(s.value) }
func (s *ConstantStep) Equal(o traversal.Step) bool { return traversal.StepsEqual(s, o) }
func (s *ConstantStep) String() string              { return fmt.Sprintf("ConstantStep(%v)", s.value) }

// ValuesStep emits the property values of each incoming element, one
// traverser per value. With no keys every property is emitted in key order.
type ValuesStep struct {
	traversal.Base
	keys    []string
	current traversal.Traverser
	pending []any
}

func NewValues(keys ...string) *ValuesStep {
	return &ValuesStep{Base: traversal.NewBase("ValuesStep"), keys: keys}
}

func (s *ValuesStep) Next(ctx context.Context) (traversal.Traverser, bool, error) {
	for len(s.pending) == 0 {
		in, ok, err := s.PullUpstream(ctx)
		if err != nil || !ok {
			return nil, false, err
		}
		el, ok := in.Get().(structure.Element)
		if !ok {
			return nil, false, errors.InvalidArgument("traverser", fmt.Sprintf("expected an element, got %T", in.Get()))
		}
		s.current, s.pending = in, s.valuesOf(el)
	}
	v := s.pending[0]
	s.pending = s.pending[1:]
	return s.current.Split(v, s), true, nil
}

func (s *ValuesStep) valuesOf(el structure.Element) []any {
	keys := s.keys
	if len(keys) == 0 {
		keys = el.Keys()
	}
	var out []any
	for _, k := range keys {
		if p, ok := el.Property(k); ok {
			out = append(out, p.Value())
		}
	}
	return out
}

func (s *ValuesStep) Reset() {
	s.current, s.pending = nil, nil
}

func (s *ValuesStep) Hash() uint64 {
	h := s.Base.Hash()
	for _, k := range s.keys {
		h ^= traversal.HashValue(k)
	}
	return h
}

func (s *ValuesStep) Equal(o traversal.Step) bool { return traversal.StepsEqual(s, o) }
func (s *ValuesStep) String() string              { return fmt.Sprintf("ValuesStep(%v)", s.keys) }

// PathStep maps every traverser to the path it travelled.
type PathStep struct {
	traversal.Base
}

func NewPath() *PathStep { return &PathStep{Base: traversal.NewBase("PathStep")} }

func (s *PathStep) Next(ctx context.Context) (traversal.Traverser, bool, error) {
	in, ok, err := s.PullUpstream(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	return in.Split(in.Path(), s), true, nil
}

func (s *PathStep) Requirements() traversal.RequirementSet {
	return traversal.NewRequirementSet(traversal.RequirePath)
}

func (s *PathStep) Equal(o traversal.Step) bool { return traversal.StepsEqual(s, o) }

// IdentityStep forwards every traverser unchanged.
type IdentityStep struct {
	traversal.Base
}

func NewIdentity() *IdentityStep { return &IdentityStep{Base: traversal.NewBase("IdentityStep")} }

func (s *IdentityStep) Next(ctx context.Context) (traversal.Traverser, bool, error) {
	return s.PullUpstream(ctx)
}

func (s *IdentityStep) Equal(o traversal.Step) bool { return traversal.StepsEqual(s, o) }
