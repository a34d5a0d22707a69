package structure

// Property is a key/value pair attached to an element.
type Property interface {
	Key() string
	Value() any
}

// Element is the common view of vertices and edges.
type Element interface {
	ID() any
	Label() string
	// Property returns the property stored under key.
	Property(key string) (Property, bool)
	// Properties returns every property in a stable key order.
	Properties() []Property
	Keys() []string
}

// Vertex is a graph vertex.
type Vertex interface {
	Element
	// AddEdge creates an edge from this vertex to in. keyValues is a
	// flattened key,value sequence; T.ID may be used to request an id.
	AddEdge(label string, in Vertex, keyValues ...any) (Edge, error)
}

// Edge is a directed, labeled graph edge.
type Edge interface {
	Element
	OutVertex() Vertex
	InVertex() Vertex
}

// Memory stores graph-level properties that do not belong to any element.
type Memory interface {
	Set(key string, value any) error
	Get(key string) (any, bool)
	Keys() []string
}

// Transaction is the commit boundary of a graph that batches writes.
type Transaction interface {
	Commit() error
	Rollback() error
}

// Graph is the capability contract required by the traversal core.
type Graph interface {
	// AddVertex creates a vertex from a flattened key,value sequence. T.Label
	// and T.ID select the label and id; all other keys become properties.
	AddVertex(keyValues ...any) (Vertex, error)
	// Memory reports whether the graph supports graph-level properties.
	Memory() (Memory, bool)
	// Tx reports whether the graph exposes an explicit commit boundary. When
	// it does not, every write is committed as it happens.
	Tx() (Transaction, bool)
}
