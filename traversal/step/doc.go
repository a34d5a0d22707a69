// Package step provides the step kinds traversals are assembled from.
//
// Source steps (AddVertexStartStep, InjectStep) originate traversers; map
// steps transform each upstream traverser into exactly one output with the
// same bulk. AddVertexStartStep, AddVertexStep and AddEdgeStep write to the
// traversal's graph and notify listeners registered on their callback
// registry with a detached snapshot of the written element.
package step
