// Package event defines the notifications emitted by mutating steps and the
// ordered listener registry that delivers them.
package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/structure"
)

// VertexAdded is emitted after a vertex is written. The vertex is a detached
// snapshot taken at write time.
type VertexAdded struct {
	Vertex *structure.DetachedVertex
}

func (e VertexAdded) String() string { return fmt.Sprintf("VertexAdded(%v)", e.Vertex) }

// EdgeAdded is emitted after an edge is written.
type EdgeAdded struct {
	Edge *structure.DetachedEdge
}

func (e EdgeAdded) String() string { return fmt.Sprintf("EdgeAdded(%v)", e.Edge) }

// Callback receives an event. A non-nil error aborts the mutating pull that
// triggered it.
type Callback[E any] func(ctx context.Context, e E) error

// Registry holds callbacks in registration order. Callbacks cannot be
// removed once added.
type Registry[E any] struct {
	mu        sync.RWMutex
	owner     string
	callbacks []Callback[E]
}

// NewRegistry creates an empty registry. owner names the step kind in
// listener failures.
func NewRegistry[E any](owner string) *Registry[E] {
	return &Registry[E]{owner: owner}
}

// Add appends cb. A nil callback is ignored.
func (r *Registry[E]) Add(cb Callback[E]) {
	if cb == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks = append(r.callbacks, cb)
}

// Callbacks returns a copy of the registered callbacks.
func (r *Registry[E]) Callbacks() []Callback[E] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Callback[E](nil), r.callbacks...)
}

func (r *Registry[E]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.callbacks)
}

// Notify invokes every callback synchronously in registration order. The
// first failure stops delivery and is returned as LISTENER_FAILED.
func (r *Registry[E]) Notify(ctx context.Context, e E) error {
	for i, cb := range r.Callbacks() {
		if err := cb(ctx, e); err != nil {
			return errors.ListenerFailed(r.owner, err).WithDetail("callback", i)
		}
	}
	return nil
}
