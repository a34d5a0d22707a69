package graphtraversal_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/graphtraversal"
	"github.com/kbukum/graphkit/structure"
	"github.com/kbukum/graphkit/structure/memgraph"
	"github.com/kbukum/graphkit/traversal"
	"github.com/kbukum/graphkit/traversal/event"
)

func double(_ context.Context, t traversal.Traverser) (any, error) {
	return t.Get().(int) * 2, nil
}

func TestAddV_PersonMarko(t *testing.T) {
	g := graphtraversal.NewSource(memgraph.New())
	ctx := context.Background()

	gt := g.AddV("person").Property("name", "marko")
	v, err := gt.Next(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vertex := v.(structure.Vertex)
	if p, _ := vertex.Property("name"); vertex.Label() != "person" || p.Value() != "marko" {
		t.Errorf("unexpected vertex %v", vertex)
	}
	if _, err := gt.Next(ctx); !stderrors.Is(err, traversal.ErrExhausted) {
		t.Errorf("expected ErrExhausted, got %v", err)
	}
}

func TestInject_AddV_BoundProperty(t *testing.T) {
	graph := memgraph.New()
	g := graphtraversal.NewSource(graph)

	names, err := g.Inject(1, 2, 3).
		AddV("number").Property("value", graphtraversal.Anon().Map("double", double)).
		Values("value").
		ToList(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]any{2, 4, 6}, names); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	if len(graph.Vertices()) != 3 {
		t.Errorf("expected 3 vertices, got %d", len(graph.Vertices()))
	}
}

func TestToList_ExpandsBulk(t *testing.T) {
	g := graphtraversal.NewSource(memgraph.New())

	out, err := g.Inject("a", "a", "b").ToList(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]any{"a", "a", "b"}, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}

	trs, _ := g.Inject("a", "a", "b").Traversers(context.Background())
	if len(trs) != 2 || trs[0].Bulk() != 2 {
		t.Errorf("expected bulked traversers, got %v", trs)
	}
}

func TestNext_RepeatsBulkedValues(t *testing.T) {
	gt := graphtraversal.NewSource(memgraph.New()).Inject("x", "x")
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if v, err := gt.Next(ctx); err != nil || v != "x" {
			t.Fatalf("pull %d: expected x, got %v (%v)", i, v, err)
		}
	}
	if _, err := gt.Next(ctx); !stderrors.Is(err, traversal.ErrExhausted) {
		t.Errorf("expected ErrExhausted, got %v", err)
	}
}

func TestAddE_ToAndFrom(t *testing.T) {
	graph := memgraph.New()
	g := graphtraversal.NewSource(graph)
	ctx := context.Background()

	lop, err := g.AddV("software").Property("name", "lop").Next(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var added []string
	err = g.AddV("person").
		AddE("created").To(lop).Property("weight", 0.4).
		OnEdgeAdded(func(_ context.Context, e event.EdgeAdded) error {
			added = append(added, e.Edge.OutLabel()+"->"+e.Edge.InLabel())
			return nil
		}).
		Iterate(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = g.Inject(lop).
		AddE("createdBy").From(graphtraversal.Anon().AddV("person")).
		Iterate(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff([]string{"person->software"}, added); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	edges := graph.Edges()
	if len(edges) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(edges))
	}
	if edges[1].OutVertex().Label() != "person" || edges[1].InVertex().ID() != lop.(structure.Vertex).ID() {
		t.Errorf("unexpected second edge %v", edges[1])
	}
}

func TestOnVertexAdded(t *testing.T) {
	g := graphtraversal.NewSource(memgraph.New())
	var labels []string
	err := g.Inject(1, 2).
		AddV("n").
		OnVertexAdded(func(_ context.Context, e event.VertexAdded) error {
			labels = append(labels, e.Vertex.Label())
			return nil
		}).
		Iterate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(labels) != 2 {
		t.Errorf("expected 2 events, got %v", labels)
	}
}

func TestPathAndAs(t *testing.T) {
	g := graphtraversal.NewSource(memgraph.New())
	out, err := g.AddV("person").As("p").Property("name", "marko").
		Values("name").As("n").
		Path().
		ToList(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := out[0].(*traversal.Path)
	if v, _ := p.Get("n"); v != "marko" {
		t.Errorf("expected n=marko, got %v", v)
	}
	if _, ok := p.Get("p"); !ok {
		t.Error("expected label p in the path")
	}
}

func TestConstantAndIdentity(t *testing.T) {
	out, err := graphtraversal.NewSource(memgraph.New()).
		Inject(1, 2).Identity().Constant("c").
		ToList(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]any{"c", "c"}, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestConstructionErrorsAreDeferred(t *testing.T) {
	g := graphtraversal.NewSource(memgraph.New())
	ctx := context.Background()

	tests := []struct {
		name string
		gt   *graphtraversal.GraphTraversal
		code errors.ErrorCode
	}{
		{"property without mutating step", g.Inject(1).Property("k", "v"), errors.ErrCodeInvalidArgument},
		{"non-string key", g.AddV("p").Property("k", "v").Property(42, "x"), errors.ErrCodeInvalidArgument},
		{"unhashable id", g.AddV("p").Property(structure.T.ID, []int{1}), errors.ErrCodeInvalidArgument},
		{"to without addE", g.Inject(1).To("x"), errors.ErrCodeInvalidArgument},
		{"as on empty traversal", graphtraversal.Anon().As("x"), errors.ErrCodeInvalidArgument},
		{"vertex listener on edge step", g.Inject(1).AddE("e").OnVertexAdded(func(context.Context, event.VertexAdded) error { return nil }), errors.ErrCodeInvalidArgument},
		{"edge listener on vertex step", g.AddV("p").OnEdgeAdded(func(context.Context, event.EdgeAdded) error { return nil }), errors.ErrCodeInvalidArgument},
		{"nil graph", graphtraversal.NewSource(nil).AddV("p"), errors.ErrCodeInvalidArgument},
		{"broken child", g.AddV("p").Property("k", graphtraversal.Anon().As("x")), errors.ErrCodeInvalidArgument},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.gt.Err() == nil {
				t.Fatal("expected a construction error")
			}
			if _, err := tc.gt.Next(ctx); !errors.HasCode(err, tc.code) {
				t.Errorf("Next: expected %s, got %v", tc.code, err)
			}
			if _, err := tc.gt.ToList(ctx); !errors.HasCode(err, tc.code) {
				t.Errorf("ToList: expected %s, got %v", tc.code, err)
			}
			if err := tc.gt.Iterate(ctx); !errors.HasCode(err, tc.code) {
				t.Errorf("Iterate: expected %s, got %v", tc.code, err)
			}
		})
	}
}

// countingStep counts pulls of the step it wraps.
type countingStep struct {
	traversal.Step
	pulls *int
}

func (c countingStep) Unwrap() traversal.Step { return c.Step }

func (c countingStep) Next(ctx context.Context) (traversal.Traverser, bool, error) {
	*c.pulls++
	return c.Step.Next(ctx)
}

func TestSource_WithDecorator(t *testing.T) {
	graph := memgraph.New()
	pulls := 0
	g := graphtraversal.NewSource(graph).WithDecorator(func(s traversal.Step) traversal.Step {
		return countingStep{Step: s, pulls: &pulls}
	})

	var added []string
	out, err := g.AddV("person").Property("name", "marko").
		OnVertexAdded(func(_ context.Context, e event.VertexAdded) error {
			added = append(added, e.Vertex.Label())
			return nil
		}).
		Values("name").
		ToList(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]any{"marko"}, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"person"}, added); diff != "" {
		t.Errorf("listener mismatch (-want +got):\n%s", diff)
	}
	// values pulled twice by the traversal; addV pulled twice by values.
	if pulls != 4 {
		t.Errorf("expected 4 decorated pulls, got %d", pulls)
	}
}
