// Package structure defines the capability contract the traversal core
// requires from a backing graph, together with the helpers every
// implementation shares: reserved key tokens, flattened key/value handling,
// and detached element snapshots.
//
// A graph is consumed, never implemented, by the core. The contract is
// deliberately small: create a vertex, create an edge from a vertex, and two
// optional sub-capabilities (graph memory and transactions) that callers
// check for before use:
//
//	if mem, ok := g.Memory(); ok {
//	    _ = mem.Set("name", "modern")
//	}
package structure
