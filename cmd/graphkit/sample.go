package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/graphtraversal"
	"github.com/kbukum/graphkit/instrument"
	"github.com/kbukum/graphkit/logger"
	"github.com/kbukum/graphkit/structure"
	"github.com/kbukum/graphkit/structure/memgraph"
	"github.com/kbukum/graphkit/traversal"
	"github.com/kbukum/graphkit/traversal/event"
)

func newSampleCmd(root *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Generate the six-vertex \"modern\" sample graph as GraphSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx := cmd.Context()
			rt, err := root.setup(ctx, cmd)
			if err != nil {
				return err
			}
			defer rt.close(ctx)

			g := memgraph.New(memgraph.WithMemory())
			if err = buildModern(ctx, rt, g); err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				var f *os.File
				if f, err = os.Create(out); err != nil {
					return err
				}
				defer func() { err = multierr.Append(err, f.Close()) }()
				w = f
			}
			return writeMemgraph(w, g)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")
	return cmd
}

type sampleVertex struct {
	id    int
	label string
	props []any
}

type sampleEdge struct {
	id      int
	out, in int
	label   string
	weight  float64
}

var (
	modernVertices = []sampleVertex{
		{1, "person", []any{"name", "marko", "age", 29}},
		{2, "person", []any{"name", "vadas", "age", 27}},
		{3, "software", []any{"name", "lop", "lang", "java"}},
		{4, "person", []any{"name", "josh", "age", 32}},
		{5, "software", []any{"name", "ripple", "lang", "java"}},
		{6, "person", []any{"name", "peter", "age", 35}},
	}
	modernEdges = []sampleEdge{
		{7, 1, 2, "knows", 0.5},
		{8, 1, 4, "knows", 1.0},
		{9, 1, 3, "created", 0.4},
		{10, 4, 5, "created", 1.0},
		{11, 4, 3, "created", 0.4},
		{12, 6, 3, "created", 0.2},
	}
)

// buildModern writes the sample graph into g through instrumented
// traversals. g must support graph memory.
func buildModern(ctx context.Context, rt *app, g *memgraph.Graph) error {
	mem, ok := g.Memory()
	if !ok {
		return errors.Unsupported("graph memory")
	}
	if err := mem.Set("name", "modern"); err != nil {
		return err
	}

	src := graphtraversal.NewSource(g, traversal.WithLogger(rt.log)).
		WithDecorator(func(s traversal.Step) traversal.Step {
			s = instrument.WithTracing(s, serviceName)
			s = instrument.WithMetrics(s, rt.metrics)
			return instrument.WithLogging(s, rt.log)
		})
	countVertices := instrument.CountMutations[event.VertexAdded](rt.metrics)
	countEdges := instrument.CountMutations[event.EdgeAdded](rt.metrics)

	vertices := make(map[int]structure.Vertex, len(modernVertices))
	for _, sv := range modernVertices {
		gt := src.AddV(sv.label).Property(structure.T.ID, sv.id).OnVertexAdded(countVertices)
		for i := 0; i+1 < len(sv.props); i += 2 {
			gt = gt.Property(sv.props[i], sv.props[i+1])
		}
		v, err := gt.Next(ctx)
		if err != nil {
			return err
		}
		vertices[sv.id] = v.(structure.Vertex)
	}

	for _, se := range modernEdges {
		err := src.Inject(vertices[se.out]).
			AddE(se.label).To(vertices[se.in]).
			Property(structure.T.ID, se.id).
			Property("weight", se.weight).
			OnEdgeAdded(countEdges).
			Iterate(ctx)
		if err != nil {
			return err
		}
	}

	rt.log.Debug("sample graph built", logger.Fields(
		"vertices", len(g.Vertices()),
		"edges", len(g.Edges()),
	))
	return nil
}
