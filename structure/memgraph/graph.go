// Package memgraph is an in-memory implementation of the structure.Graph
// contract. It backs the tests of the traversal core, the bulk loader and
// the command line tool, and records every write so callers can assert on
// exactly what reached the graph.
package memgraph

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/structure"
)

// Write records a single mutation applied to the graph.
type Write struct {
	Op        string // "addVertex" | "addEdge"
	ID        any
	Label     string
	KeyValues []any
}

// Option configures a Graph.
type Option func(*Graph)

// WithMemory enables the graph memory capability.
func WithMemory() Option {
	return func(g *Graph) { g.memory = &memory{values: make(map[string]any)} }
}

// WithTransactions enables the transaction capability.
func WithTransactions() Option {
	return func(g *Graph) {
		if g.tx == nil {
			g.tx = &transaction{graph: g}
		}
	}
}

// WithCommitHook installs a hook invoked on every commit with the number of
// pending writes. A non-nil error fails the commit. It implies
// WithTransactions.
func WithCommitHook(fn func(pending int) error) Option {
	return func(g *Graph) {
		if g.tx == nil {
			g.tx = &transaction{graph: g}
		}
		g.tx.hook = fn
	}
}

// WithIDGenerator overrides the id assigned to elements created without T.ID.
func WithIDGenerator(fn func() any) Option {
	return func(g *Graph) { g.nextID = fn }
}

// WithWriteHook installs a hook invoked before every write. A non-nil error
// rejects the write.
func WithWriteHook(fn func(op string, keyValues []any) error) Option {
	return func(g *Graph) { g.hook = fn }
}

// Graph is a thread-safe in-memory graph.
type Graph struct {
	mu       sync.RWMutex
	vertices map[any]*Vertex
	vOrder   []*Vertex
	edges    map[any]*Edge
	eOrder   []*Edge
	writes   []Write

	memory *memory
	tx     *transaction
	nextID func() any
	hook   func(op string, keyValues []any) error
}

var _ structure.Graph = (*Graph)(nil)

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		vertices: make(map[any]*Vertex),
		edges:    make(map[any]*Edge),
		nextID:   func() any { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddVertex implements structure.Graph.
func (g *Graph) AddVertex(keyValues ...any) (structure.Vertex, error) {
	if err := structure.ValidateKeyValues(keyValues...); err != nil {
		return nil, err
	}
	if g.hook != nil {
		if err := g.hook("addVertex", keyValues); err != nil {
			return nil, err
		}
	}

	label, ok := structure.LabelValue(keyValues...)
	if !ok || label == "" {
		label = structure.DefaultVertexLabel
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	id, ok := structure.IDValue(keyValues...)
	if !ok || id == nil {
		id = g.nextID()
	}
	if _, exists := g.vertices[id]; exists {
		return nil, errors.Conflict("vertex", id)
	}

	v := &Vertex{element: newElement(id, label, keyValues), graph: g}
	g.vertices[id] = v
	g.vOrder = append(g.vOrder, v)
	g.record("addVertex", id, label, keyValues)
	return v, nil
}

func (g *Graph) addEdge(label string, out *Vertex, in structure.Vertex, keyValues []any) (*Edge, error) {
	if err := structure.ValidateKeyValues(keyValues...); err != nil {
		return nil, err
	}
	if in == nil {
		return nil, errors.InvalidArgument("in", "the in vertex must not be nil")
	}
	if g.hook != nil {
		if err := g.hook("addEdge", keyValues); err != nil {
			return nil, err
		}
	}
	if label == "" {
		label = structure.DefaultEdgeLabel
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	inV, ok := g.vertices[in.ID()]
	if !ok {
		return nil, errors.NotFound("vertex", in.ID())
	}
	id, ok := structure.IDValue(keyValues...)
	if !ok || id == nil {
		id = g.nextID()
	}
	if _, exists := g.edges[id]; exists {
		return nil, errors.Conflict("edge", id)
	}

	e := &Edge{element: newElement(id, label, keyValues), out: out, in: inV}
	g.edges[id] = e
	g.eOrder = append(g.eOrder, e)
	g.record("addEdge", id, label, keyValues)
	return e, nil
}

// record must be called with g.mu held.
func (g *Graph) record(op string, id any, label string, keyValues []any) {
	kvs := append([]any(nil), keyValues...)
	g.writes = append(g.writes, Write{Op: op, ID: id, Label: label, KeyValues: kvs})
	if g.tx != nil {
		g.tx.pending = append(g.tx.pending, pendingWrite{op: op, id: id})
	}
}

// Memory implements structure.Graph.
func (g *Graph) Memory() (structure.Memory, bool) {
	if g.memory == nil {
		return nil, false
	}
	return g.memory, true
}

// Tx implements structure.Graph.
func (g *Graph) Tx() (structure.Transaction, bool) {
	if g.tx == nil {
		return nil, false
	}
	return g.tx, true
}

// Vertex looks up a vertex by id.
func (g *Graph) Vertex(id any) (*Vertex, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.vertices[id]
	return v, ok
}

// Vertices returns all vertices in creation order.
func (g *Graph) Vertices() []*Vertex {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]*Vertex(nil), g.vOrder...)
}

// Edges returns all edges in creation order.
func (g *Graph) Edges() []*Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]*Edge(nil), g.eOrder...)
}

// Writes returns every write applied so far, including rolled back ones.
func (g *Graph) Writes() []Write {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]Write(nil), g.writes...)
}

// Commits returns the number of successful commits.
func (g *Graph) Commits() int {
	if g.tx == nil {
		return 0
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.tx.commits
}

func (g *Graph) String() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return fmt.Sprintf("memgraph[vertices:%d edges:%d]", len(g.vOrder), len(g.eOrder))
}

// --- elements ---

type property struct {
	key   string
	value any
}

func (p property) Key() string { return p.key }
func (p property) Value() any  { return p.value }

type element struct {
	mu    sync.RWMutex
	id    any
	label string
	props map[string]any
}

func newElement(id any, label string, keyValues []any) *element {
	el := &element{id: id, label: label, props: make(map[string]any)}
	kvs := structure.PropertyKeyValues(keyValues...)
	for i := 0; i < len(kvs); i += 2 {
		el.props[kvs[i].(string)] = kvs[i+1]
	}
	return el
}

func (e *element) ID() any       { return e.id }
func (e *element) Label() string { return e.label }

func (e *element) Property(key string) (structure.Property, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.props[key]
	if !ok {
		return nil, false
	}
	return property{key: key, value: v}, true
}

func (e *element) Keys() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	keys := make([]string, 0, len(e.props))
	for k := range e.props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e *element) Properties() []structure.Property {
	keys := e.Keys()
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]structure.Property, len(keys))
	for i, k := range keys {
		out[i] = property{key: k, value: e.props[k]}
	}
	return out
}

// SetProperty changes a property in place.
func (e *element) SetProperty(key string, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.props[key] = value
}

// Value returns the value of key, or nil.
func (e *element) Value(key string) any {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.props[key]
}

// Vertex is a live in-memory vertex.
type Vertex struct {
	*element
	graph *Graph
}

var _ structure.Vertex = (*Vertex)(nil)

// AddEdge implements structure.Vertex.
func (v *Vertex) AddEdge(label string, in structure.Vertex, keyValues ...any) (structure.Edge, error) {
	return v.graph.addEdge(label, v, in, keyValues)
}

func (v *Vertex) String() string { return fmt.Sprintf("v[%v]", v.id) }

// Edge is a live in-memory edge.
type Edge struct {
	*element
	out, in *Vertex
}

var _ structure.Edge = (*Edge)(nil)

func (e *Edge) OutVertex() structure.Vertex { return e.out }
func (e *Edge) InVertex() structure.Vertex  { return e.in }

func (e *Edge) String() string {
	return fmt.Sprintf("e[%v][%v-%s->%v]", e.id, e.out.id, e.label, e.in.id)
}
