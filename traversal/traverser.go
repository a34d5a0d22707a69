package traversal

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/kbukum/graphkit/structure"
)

// Traverser is the unit of flow: a value plus the number of identical
// traversers it stands for.
type Traverser interface {
	Get() any
	Bulk() int64
	SetBulk(bulk int64)
	// Path returns the objects visited so far, or nil when the traversal
	// does not track paths.
	Path() *Path
	Loops() int
	IncrLoops()
	// Split derives a traverser carrying value with the same bulk. When
	// paths are tracked the path is extended with value under step's labels.
	Split(value any, step Step) Traverser
}

// --- empty ---

type emptyTraverser struct{}

var empty Traverser = emptyTraverser{}

// EmptyTraverser returns the sentinel used when no traverser is available,
// e.g. when evaluating parameters before any data flows.
func EmptyTraverser() Traverser { return empty }

// IsEmpty reports whether t is nil or the empty sentinel.
func IsEmpty(t Traverser) bool {
	if t == nil {
		return true
	}
	_, ok := t.(emptyTraverser)
	return ok
}

func (emptyTraverser) Get() any    { return nil }
func (emptyTraverser) Bulk() int64 { return 0 }
func (emptyTraverser) SetBulk(int64)                {}
func (emptyTraverser) Path() *Path { return nil }
func (emptyTraverser) Loops() int  { return 0 }
func (emptyTraverser) IncrLoops()                   {}
func (e emptyTraverser) Split(any, Step) Traverser { return e }
func (emptyTraverser) String() string              { return "empty" }

// --- lightweight ---

type valueTraverser struct {
	value any
	bulk  int64
}

func (t *valueTraverser) Get() any           { return t.value }
func (t *valueTraverser) Bulk() int64        { return t.bulk }
func (t *valueTraverser) SetBulk(bulk int64) { t.bulk = bulk }
func (t *valueTraverser) Path() *Path        { return nil }
func (t *valueTraverser) Loops() int         { return 0 }
func (t *valueTraverser) IncrLoops()         {}

func (t *valueTraverser) Split(value any, _ Step) Traverser {
	return &valueTraverser{value: value, bulk: t.bulk}
}

func (t *valueTraverser) String() string { return fmt.Sprintf("%v", t.value) }

// --- tracking ---

type trackingTraverser struct {
	value any
	bulk  int64
	path  *Path
	loops int
}

func (t *trackingTraverser) Get() any           { return t.value }
func (t *trackingTraverser) Bulk() int64        { return t.bulk }
func (t *trackingTraverser) SetBulk(bulk int64) { t.bulk = bulk }
func (t *trackingTraverser) Path() *Path        { return t.path }
func (t *trackingTraverser) Loops() int         { return t.loops }
func (t *trackingTraverser) IncrLoops()         { t.loops++ }

func (t *trackingTraverser) Split(value any, step Step) Traverser {
	path := t.path
	if step != nil {
		path = path.Extend(value, step.Labels()...)
	}
	return &trackingTraverser{value: value, bulk: t.bulk, path: path, loops: t.loops}
}

func (t *trackingTraverser) String() string { return fmt.Sprintf("%v", t.value) }

// --- path ---

// Path is an immutable history of the objects a traverser visited, each
// with the labels of the step that produced it.
type Path struct {
	objects []any
	labels  [][]string
}

// Extend returns a new path with obj appended.
func (p *Path) Extend(obj any, labels ...string) *Path {
	n := &Path{}
	if p != nil {
		n.objects = append(make([]any, 0, len(p.objects)+1), p.objects...)
		n.labels = append(make([][]string, 0, len(p.labels)+1), p.labels...)
	}
	n.objects = append(n.objects, obj)
	n.labels = append(n.labels, append([]string(nil), labels...))
	return n
}

func (p *Path) Len() int {
	if p == nil {
		return 0
	}
	return len(p.objects)
}

func (p *Path) Objects() []any {
	if p == nil {
		return nil
	}
	return append([]any(nil), p.objects...)
}

func (p *Path) Labels() [][]string {
	if p == nil {
		return nil
	}
	out := make([][]string, len(p.labels))
	for i, l := range p.labels {
		out[i] = append([]string(nil), l...)
	}
	return out
}

// Get returns the most recent object stored under label.
func (p *Path) Get(label string) (any, bool) {
	for i := p.Len() - 1; i >= 0; i-- {
		for _, l := range p.labels[i] {
			if l == label {
				return p.objects[i], true
			}
		}
	}
	return nil, false
}

func (p *Path) String() string {
	parts := make([]string, p.Len())
	for i := range parts {
		parts[i] = fmt.Sprintf("%v", p.objects[i])
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// --- set ---

type mergeKey struct {
	value any
	path  string
}

// TraverserSet is a FIFO queue of traversers that merges equal traversers
// by summing their bulks.
type TraverserSet struct {
	items []Traverser
	head  int
	index map[mergeKey]int
}

// NewTraverserSet creates an empty set.
func NewTraverserSet() *TraverserSet {
	return &TraverserSet{index: make(map[mergeKey]int)}
}

// Add enqueues t, or adds its bulk to an equal traverser already queued.
func (s *TraverserSet) Add(t Traverser) {
	if IsEmpty(t) {
		return
	}
	key, ok := keyOf(t)
	if ok {
		if pos, found := s.index[key]; found {
			queued := s.items[pos]
			queued.SetBulk(queued.Bulk() + t.Bulk())
			return
		}
		s.index[key] = len(s.items)
	}
	s.items = append(s.items, t)
}

// Next pops the oldest traverser. It returns (nil, false, nil) when empty
// and the context error once ctx is done.
func (s *TraverserSet) Next(ctx context.Context) (Traverser, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if s.head >= len(s.items) {
		return nil, false, nil
	}
	t := s.items[s.head]
	s.items[s.head] = nil
	s.head++
	if key, ok := keyOf(t); ok {
		delete(s.index, key)
	}
	if s.head == len(s.items) {
		s.items = s.items[:0]
		s.head = 0
	}
	return t, true, nil
}

func (s *TraverserSet) Len() int { return len(s.items) - s.head }

// Slice returns the queued traversers without removing them.
func (s *TraverserSet) Slice() []Traverser {
	return append([]Traverser(nil), s.items[s.head:]...)
}

// Clear drops every queued traverser.
func (s *TraverserSet) Clear() {
	s.items = nil
	s.head = 0
	s.index = make(map[mergeKey]int)
}

// keyOf returns the identity two traversers must share to be merged. Values
// that cannot be compared are never merged.
func keyOf(t Traverser) (mergeKey, bool) {
	v := t.Get()
	var path string
	if p := t.Path(); p != nil {
		path = fmt.Sprintf("%v|%v", p.objects, p.labels)
	}
	switch e := v.(type) {
	case nil:
		return mergeKey{path: path}, true
	case structure.Vertex:
		if !isComparable(e.ID()) {
			return mergeKey{}, false
		}
		return mergeKey{value: vertexKey{e.ID()}, path: path}, true
	case structure.Edge:
		if !isComparable(e.ID()) {
			return mergeKey{}, false
		}
		return mergeKey{value: edgeKey{e.ID()}, path: path}, true
	}
	if !isComparable(v) {
		return mergeKey{}, false
	}
	return mergeKey{value: v, path: path}, true
}

type vertexKey struct{ id any }
type edgeKey struct{ id any }

func isComparable(v any) bool {
	if v == nil {
		return true
	}
	t := reflect.TypeOf(v)
	if !t.Comparable() {
		return false
	}
	// interfaces nested in structs may still hold uncomparable values
	return t.Kind() != reflect.Struct && t.Kind() != reflect.Array && t.Kind() != reflect.Interface
}
