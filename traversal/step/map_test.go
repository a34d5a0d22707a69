package step_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/structure"
	"github.com/kbukum/graphkit/structure/memgraph"
	"github.com/kbukum/graphkit/traversal"
	"github.com/kbukum/graphkit/traversal/step"
)

func values(t *testing.T, tr *traversal.Traversal) []any {
	t.Helper()
	out, err := traversal.Collect(context.Background(), tr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vals := make([]any, len(out))
	for i, o := range out {
		vals[i] = o.Get()
	}
	return vals
}

func TestInject_MergesEqualValues(t *testing.T) {
	tr := newTraversal(t, nil, step.NewInject("a", "b", "a"))
	out, err := traversal.Collect(context.Background(), tr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[0].Get() != "a" || out[0].Bulk() != 2 {
		t.Errorf("expected a with bulk 2 then b, got %v", out)
	}
}

func TestInject_PassesUpstreamAfterValues(t *testing.T) {
	tr := newTraversal(t, nil, step.NewInject(1))
	tr.AddStart(tr.Generator().Generate(2, nil, 1))

	if diff := cmp.Diff([]any{1, 2}, values(t, tr)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestInject_StopsWhenCancelled(t *testing.T) {
	inject := step.NewInject(1, 2)
	newTraversal(t, nil, inject)

	ctx, cancel := context.WithCancel(context.Background())
	if _, ok, err := inject.Next(ctx); err != nil || !ok {
		t.Fatalf("expected the first value, got ok=%v err=%v", ok, err)
	}
	cancel()
	if _, ok, err := inject.Next(ctx); ok || !stderrors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got ok=%v err=%v", ok, err)
	}
}

func TestConstantAndLambda(t *testing.T) {
	tr := newTraversal(t, nil,
		step.NewInject(1, 2),
		step.NewLambdaMap("inc", func(_ context.Context, tr traversal.Traverser) (any, error) {
			return tr.Get().(int) + 1, nil
		}),
	)
	if diff := cmp.Diff([]any{2, 3}, values(t, tr)); diff != "" {
		t.Errorf("lambda output mismatch (-want +got):\n%s", diff)
	}

	tr = newTraversal(t, nil, step.NewInject(1, 2), step.NewConstant("x"))
	if diff := cmp.Diff([]any{"x", "x"}, values(t, tr)); diff != "" {
		t.Errorf("constant output mismatch (-want +got):\n%s", diff)
	}

	_, _, err := newTraversal(t, nil, step.NewInject(1), step.NewLambdaMap("nil", nil)).Next(context.Background())
	if !errors.HasCode(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("expected INVALID_ARGUMENT for a nil function, got %v", err)
	}
}

func TestValues(t *testing.T) {
	g := memgraph.New()
	s := step.NewAddVertexStart("person")
	_ = s.AddPropertyMutations("name", "marko", "age", 29)

	tr := newTraversal(t, g, s, step.NewValues())
	if diff := cmp.Diff([]any{29, "marko"}, values(t, tr)); diff != "" {
		t.Errorf("all values mismatch (-want +got):\n%s", diff)
	}

	s2 := step.NewAddVertexStart("person")
	_ = s2.AddPropertyMutations("name", "josh", "age", 32)
	tr = newTraversal(t, g, s2, step.NewValues("name", "missing"))
	if diff := cmp.Diff([]any{"josh"}, values(t, tr)); diff != "" {
		t.Errorf("selected values mismatch (-want +got):\n%s", diff)
	}

	_, _, err := newTraversal(t, nil, step.NewInject(1), step.NewValues()).Next(context.Background())
	if !errors.HasCode(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("expected INVALID_ARGUMENT for a non-element, got %v", err)
	}
}

func TestPath_TracksLabeledSteps(t *testing.T) {
	g := memgraph.New()
	start := step.NewAddVertexStart("person")
	start.AddLabel("a")
	name := step.NewValues("name")
	name.AddLabel("b")
	_ = start.AddPropertyMutations("name", "marko")

	tr := newTraversal(t, g, start, name, step.NewPath())
	if !tr.Requirements().Contains(traversal.RequirePath) {
		t.Fatal("expected the path step to declare its requirement")
	}

	out := values(t, tr)
	if len(out) != 1 {
		t.Fatalf("expected one path, got %v", out)
	}
	p := out[0].(*traversal.Path)
	if p.Len() != 2 {
		t.Fatalf("expected a two-element path, got %v", p)
	}
	if v, _ := p.Get("b"); v != "marko" {
		t.Errorf("expected label b to hold marko, got %v", v)
	}
	if v, _ := p.Get("a"); v.(structure.Vertex).Label() != "person" {
		t.Errorf("expected label a to hold the vertex, got %v", v)
	}
}

func TestStartStep_RegeneratesUntrackedStarts(t *testing.T) {
	tr := newTraversal(t, nil, step.NewStart(), step.NewPath())
	tr.AddStart(traversal.NewGenerator(traversal.RequirementSet{}).Generate("x", nil, 2))

	out, ok, err := tr.Next(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected a path, got ok=%v err=%v", ok, err)
	}
	if out.Bulk() != 2 {
		t.Errorf("expected bulk 2, got %d", out.Bulk())
	}
	if p := out.Get().(*traversal.Path); p.Len() != 1 {
		t.Errorf("expected the regenerated start in the path, got %v", p)
	}
}

func TestIdentity(t *testing.T) {
	tr := newTraversal(t, nil, step.NewInject("a"), step.NewIdentity())
	if diff := cmp.Diff([]any{"a"}, values(t, tr)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}
