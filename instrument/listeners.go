package instrument

import (
	"context"

	"github.com/kbukum/graphkit/logger"
	"github.com/kbukum/graphkit/observability"
	"github.com/kbukum/graphkit/traversal/event"
)

// LogVertexAdded returns a listener logging every new vertex at info level.
func LogVertexAdded(log *logger.Logger) event.Callback[event.VertexAdded] {
	return func(_ context.Context, e event.VertexAdded) error {
		log.Info("vertex added", logger.Fields(
			logger.FieldElementID, e.Vertex.ID(),
			logger.FieldLabel, e.Vertex.Label(),
		))
		return nil
	}
}

// LogEdgeAdded returns a listener logging every new edge at info level.
func LogEdgeAdded(log *logger.Logger) event.Callback[event.EdgeAdded] {
	return func(_ context.Context, e event.EdgeAdded) error {
		log.Info("edge added", logger.Fields(
			logger.FieldElementID, e.Edge.ID(),
			logger.FieldLabel, e.Edge.Label(),
			"out", e.Edge.OutID(),
			"in", e.Edge.InID(),
		))
		return nil
	}
}

// CountMutations returns a listener recording mutation.total per element
// kind and label.
func CountMutations[E event.VertexAdded | event.EdgeAdded](metrics *observability.Metrics) event.Callback[E] {
	return func(ctx context.Context, e E) error {
		switch ev := any(e).(type) {
		case event.VertexAdded:
			metrics.RecordMutation(ctx, "vertex", ev.Vertex.Label())
		case event.EdgeAdded:
			metrics.RecordMutation(ctx, "edge", ev.Edge.Label())
		}
		return nil
	}
}
