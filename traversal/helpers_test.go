package traversal_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kbukum/graphkit/traversal"
	"github.com/kbukum/graphkit/traversal/step"
)

// doubling returns a child traversal mapping an int to twice its value.
func doubling() *traversal.Traversal {
	child := traversal.New()
	_ = child.AddStep(step.NewLambdaMap("double", func(_ context.Context, t traversal.Traverser) (any, error) {
		n, ok := t.Get().(int)
		if !ok {
			return nil, errors.New("not an int")
		}
		return n * 2, nil
	}))
	return child
}

// dropAll drains its upstream and never emits.
type dropAll struct {
	traversal.Base
}

func newDropAll() *dropAll { return &dropAll{Base: traversal.NewBase("dropAll")} }

func (s *dropAll) Next(ctx context.Context) (traversal.Traverser, bool, error) {
	for {
		_, ok, err := s.PullUpstream(ctx)
		if err != nil || !ok {
			return nil, false, err
		}
	}
}

func (s *dropAll) Equal(o traversal.Step) bool { return traversal.StepsEqual(s, o) }

// closer fails Close with err.
type closer struct {
	traversal.Base
	err error
}

func (s *closer) Next(ctx context.Context) (traversal.Traverser, bool, error) {
	return s.PullUpstream(ctx)
}

func (s *closer) Equal(o traversal.Step) bool { return traversal.StepsEqual(s, o) }
func (s *closer) Close() error                { return s.err }

func mustAdd(tb testing.TB, tr *traversal.Traversal, steps ...traversal.Step) *traversal.Traversal {
	tb.Helper()
	for _, s := range steps {
		if err := tr.AddStep(s); err != nil {
			tb.Fatalf("add step: %v", err)
		}
	}
	return tr
}
