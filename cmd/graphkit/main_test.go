package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/io/graphson"
	"github.com/kbukum/graphkit/logger"
	"github.com/kbukum/graphkit/structure/memgraph"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "", "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "graphkit ") {
		t.Errorf("expected a version line, got %q", out)
	}

	out, _, err = run(t, "", "version", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"go_version"`) {
		t.Errorf("expected JSON output, got %q", out)
	}
}

func TestSampleThenLoad(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "modern.json")
	export := filepath.Join(dir, "export.json")

	if _, _, err := run(t, "", "sample", "--out", doc); err != nil {
		t.Fatalf("sample: %v", err)
	}

	out, _, err := run(t, "", "load", doc, "--batch-size", "4", "--export", export)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !strings.Contains(out, "loaded 6 vertices and 6 edges (1 graph properties, 3 commits, 0 failed)") {
		t.Errorf("unexpected summary: %q", out)
	}

	f, err := os.Open(export)
	if err != nil {
		t.Fatalf("expected an export file: %v", err)
	}
	defer f.Close()
	g := memgraph.New(memgraph.WithMemory())
	stats, err := graphson.ReadGraph(t.Context(), g, f)
	if err != nil {
		t.Fatalf("re-reading the export: %v", err)
	}
	if stats.Vertices != 6 || stats.Edges != 6 {
		t.Errorf("expected the export to round trip, got %s", stats)
	}
	marko, ok := g.Vertex(int64(1))
	if !ok || marko.Value("name") != "marko" {
		t.Errorf("expected vertex 1 to be marko, got %v", marko)
	}
}

func TestLoad_Stdin(t *testing.T) {
	doc := `{"vertices":[{"id":"a","label":"person"},{"id":"b"}],"edges":[{"outV":"a","inV":"b","label":"knows"}]}`
	out, _, err := run(t, doc, "load", "-", "--tx=false")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "loaded 2 vertices and 1 edges (0 graph properties, 0 commits, 0 failed)") {
		t.Errorf("unexpected summary: %q", out)
	}
}

func TestLoad_ContinueOnError(t *testing.T) {
	doc := `{"vertices":[{"id":"a"}],"edges":[{"outV":"a","inV":"missing"}]}`

	_, _, err := run(t, doc, "load", "-")
	if !errors.HasCode(err, errors.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}

	out, _, err := run(t, doc, "load", "-", "--continue-on-error")
	if !errors.HasCode(err, errors.ErrCodeNotFound) {
		t.Fatalf("expected the skipped record to be reported, got %v", err)
	}
	if !strings.Contains(out, "1 failed") {
		t.Errorf("expected one failed record, got %q", out)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, _, err := run(t, "", "load"); err == nil {
		t.Error("expected an error without a file argument")
	}
	if _, _, err := run(t, "", "load", filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
	_, _, err := run(t, "", "load", "-", "--log-level", "loud")
	if !errors.HasCode(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("expected INVALID_ARGUMENT for a bad log level, got %v", err)
	}
	_, _, err = run(t, `{"vertices":[{"id":"a"}]}`, "load", "-", "--tx=false", "--batch-size", "2")
	if !errors.HasCode(err, errors.ErrCodeUnsupported) {
		t.Errorf("expected UNSUPPORTED_OPERATION for batching without transactions, got %v", err)
	}
}

func TestLoad_LogElements(t *testing.T) {
	doc := `{"vertices":[{"id":"a","label":"person"}]}`
	_, logs, err := run(t, doc, "load", "-", "--log-elements")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(logs, "vertex added") {
		t.Errorf("expected vertex log lines, got %q", logs)
	}
}

func TestBuildModern_RequiresMemory(t *testing.T) {
	g := memgraph.New()
	err := buildModern(context.Background(), &app{log: logger.NewNop()}, g)
	if !errors.HasCode(err, errors.ErrCodeUnsupported) {
		t.Fatalf("expected UNSUPPORTED_OPERATION, got %v", err)
	}
	if len(g.Writes()) != 0 {
		t.Errorf("expected no writes, got %d", len(g.Writes()))
	}
}
