package structure

// Token is a reserved key in a flattened key/value sequence.
type Token int

// T holds the reserved tokens.
var T = struct {
	Label Token
	ID    Token
}{
	Label: tokenLabel,
	ID:    tokenID,
}

const (
	tokenLabel Token = iota + 1
	tokenID
)

func (t Token) String() string {
	switch t {
	case tokenLabel:
		return "label"
	case tokenID:
		return "id"
	default:
		return "unknown"
	}
}

// Direction selects an edge end relative to a vertex.
type Direction int

const (
	Out Direction = iota
	In
	Both
)

func (d Direction) String() string {
	switch d {
	case In:
		return "IN"
	case Both:
		return "BOTH"
	}
	return "OUT"
}

// DefaultVertexLabel and DefaultEdgeLabel are used when no label is given.
const (
	DefaultVertexLabel = "vertex"
	DefaultEdgeLabel   = "edge"
)
