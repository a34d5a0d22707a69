package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/kbukum/graphkit/instrument"
	"github.com/kbukum/graphkit/io/graphson"
	"github.com/kbukum/graphkit/logger"
	"github.com/kbukum/graphkit/observability"
	"github.com/kbukum/graphkit/resilience"
	"github.com/kbukum/graphkit/structure"
	"github.com/kbukum/graphkit/structure/memgraph"
)

type loadOptions struct {
	batchSize       int
	continueOnError bool
	transactions    bool
	logElements     bool
	export          string
}

func newLoadCmd(root *rootOptions) *cobra.Command {
	opts := &loadOptions{}
	cmd := &cobra.Command{
		Use:   "load <file|->",
		Short: "Load a GraphSON document into an in-memory graph and report counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, root, opts, args[0])
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&opts.batchSize, "batch-size", 0, "writes per commit, requires --tx (overrides loader.batch_size)")
	flags.BoolVar(&opts.continueOnError, "continue-on-error", false, "skip failing records and report them at the end")
	flags.BoolVar(&opts.transactions, "tx", true, "commit in batches")
	flags.BoolVar(&opts.logElements, "log-elements", false, "log every vertex and edge written")
	flags.StringVar(&opts.export, "export", "", "write the loaded graph back as GraphSON to this file")
	return cmd
}

func runLoad(cmd *cobra.Command, root *rootOptions, opts *loadOptions, path string) (err error) {
	ctx := cmd.Context()
	rt, err := root.setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.close(ctx)

	in, closeIn, err := openInput(cmd, path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closeIn()) }()

	cfg := rt.cfg.Loader
	if opts.batchSize > 0 {
		cfg.BatchSize = opts.batchSize
	}
	if opts.continueOnError {
		cfg.ContinueOnError = true
	}

	graphOpts := []memgraph.Option{memgraph.WithMemory()}
	if opts.transactions {
		graphOpts = append(graphOpts, memgraph.WithTransactions())
	}
	g := memgraph.New(graphOpts...)

	loadOpts := []graphson.Option{
		graphson.WithBatchSize(cfg.BatchSize),
		graphson.WithContinueOnError(cfg.ContinueOnError),
		graphson.WithCommitRetry(commitRetry(cfg.CommitRetries)),
		graphson.WithLogger(rt.log),
		graphson.WithMetrics(rt.metrics),
	}
	if cmd.Flags().Changed("batch-size") {
		loadOpts = append(loadOpts, graphson.WithRequireTransactions())
	}
	if opts.logElements {
		loadOpts = append(loadOpts,
			graphson.WithVertexListener(instrument.LogVertexAdded(rt.log)),
			graphson.WithEdgeListener(instrument.LogEdgeAdded(rt.log)),
		)
	}

	ctx, op := observability.StartOperation(ctx, serviceName, "load", rt.metrics)
	stats, loadErr := graphson.ReadGraph(ctx, g, in, loadOpts...)
	op.End(ctx, loadErr)

	fmt.Fprintf(cmd.OutOrStdout(), "loaded %d vertices and %d edges (%d graph properties, %d commits, %d failed) in %s\n",
		stats.Vertices, stats.Edges, stats.GraphProperties, stats.Commits, stats.Failed, stats.Duration)
	if loadErr != nil {
		return loadErr
	}

	if opts.export != "" {
		if err := exportGraph(g, opts.export); err != nil {
			return err
		}
		rt.log.Info("graph exported", logger.Fields("path", opts.export))
	}
	return nil
}

func commitRetry(retries int) resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.MaxAttempts = retries + 1
	return cfg
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func() error, error) {
	if path == "-" {
		return cmd.InOrStdin(), func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportGraph(g *memgraph.Graph, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	return writeMemgraph(f, g)
}

func writeMemgraph(w io.Writer, g *memgraph.Graph) error {
	vs := g.Vertices()
	vertices := make([]structure.Vertex, len(vs))
	for i, v := range vs {
		vertices[i] = v
	}
	es := g.Edges()
	edges := make([]structure.Edge, len(es))
	for i, e := range es {
		edges[i] = e
	}
	return graphson.WriteGraph(w, g, vertices, edges)
}
