package step

import (
	"context"

	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/logger"
	"github.com/kbukum/graphkit/structure"
	"github.com/kbukum/graphkit/traversal"
	"github.com/kbukum/graphkit/traversal/event"
)

// sourceState tracks whether a single-shot source step has produced its
// output.
type sourceState uint8

const (
	notFired sourceState = iota
	fired
)

func (s sourceState) String() string {
	if s == fired {
		return "fired"
	}
	return "not_fired"
}

// graphOf resolves the graph a step writes to.
func graphOf(s traversal.Step) (structure.Graph, error) {
	t := s.Traversal()
	if t == nil {
		return nil, errors.InvalidArgument("traversal", "step "+s.Kind()+" is not attached to a traversal")
	}
	g, ok := t.Graph()
	if !ok {
		return nil, errors.InvalidArgument("graph", "traversal has no graph")
	}
	return g, nil
}

func stepLogger(s traversal.Step) *logger.Logger {
	if t := s.Traversal(); t != nil {
		return t.Root().Logger()
	}
	return logger.NewNop()
}

func logMutation(s traversal.Step, msg string, el structure.Element, bulk int64) {
	stepLogger(s).Debug(msg, logger.Fields(
		logger.FieldStep, s.ID(),
		logger.FieldElementID, el.ID(),
		logger.FieldLabel, el.Label(),
		logger.FieldBulk, bulk,
	))
}

// notifyVertex delivers a VertexAdded event when listeners are registered.
func notifyVertex(ctx context.Context, r *event.Registry[event.VertexAdded], v structure.Vertex) error {
	if r.Len() == 0 {
		return nil
	}
	return r.Notify(ctx, event.VertexAdded{Vertex: structure.DetachVertex(v, true)})
}

func notifyEdge(ctx context.Context, r *event.Registry[event.EdgeAdded], e structure.Edge) error {
	if r.Len() == 0 {
		return nil
	}
	return r.Notify(ctx, event.EdgeAdded{Edge: structure.DetachEdge(e, true)})
}

// checkPairs validates a property key/value list and rejects child
// traversals once the owning traversal is locked.
func checkPairs(s traversal.Step, keyValues []any) error {
	if err := structure.ValidateKeyValues(keyValues...); err != nil {
		return err
	}
	t := s.Traversal()
	if t == nil || !t.IsLocked() {
		return nil
	}
	for i := 1; i < len(keyValues); i += 2 {
		if _, ok := keyValues[i].(*traversal.Traversal); ok {
			return errors.Locked("add child traversal to " + s.Kind())
		}
	}
	return nil
}

func hashKeyValues(keyValues []any) uint64 {
	var h uint64
	for _, kv := range keyValues {
		h ^= traversal.HashValue(kv)
	}
	return h
}
