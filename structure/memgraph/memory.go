package memgraph

import (
	"sort"
	"sync"

	"github.com/kbukum/graphkit/errors"
)

type memory struct {
	mu     sync.RWMutex
	values map[string]any
}

func (m *memory) Set(key string, value any) error {
	if key == "" {
		return errors.InvalidArgument("key", "memory keys must not be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memory) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type pendingWrite struct {
	op string
	id any
}

// transaction tracks the elements written since the last commit. Writes are
// visible immediately; Rollback removes them again.
type transaction struct {
	graph   *Graph
	pending []pendingWrite
	commits int
	hook    func(pending int) error
}

// Commit keeps the pending writes when the commit hook fails, so the commit
// can be attempted again.
func (t *transaction) Commit() error {
	t.graph.mu.Lock()
	defer t.graph.mu.Unlock()
	if t.hook != nil {
		if err := t.hook(len(t.pending)); err != nil {
			return err
		}
	}
	t.pending = nil
	t.commits++
	return nil
}

func (t *transaction) Rollback() error {
	g := t.graph
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := len(t.pending) - 1; i >= 0; i-- {
		w := t.pending[i]
		switch w.op {
		case "addVertex":
			delete(g.vertices, w.id)
			g.vOrder = removeVertex(g.vOrder, w.id)
		case "addEdge":
			delete(g.edges, w.id)
			g.eOrder = removeEdge(g.eOrder, w.id)
		}
	}
	t.pending = nil
	return nil
}

func removeVertex(vs []*Vertex, id any) []*Vertex {
	out := vs[:0]
	for _, v := range vs {
		if v.id != id {
			out = append(out, v)
		}
	}
	return out
}

func removeEdge(es []*Edge, id any) []*Edge {
	out := es[:0]
	for _, e := range es {
		if e.id != id {
			out = append(out, e)
		}
	}
	return out
}
