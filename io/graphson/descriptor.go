package graphson

import (
	"io"
	"sort"

	"github.com/goccy/go-json"

	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/structure"
)

// Record field names.
const (
	fieldProperties = "properties"
	fieldVertices   = "vertices"
	fieldEdges      = "edges"
)

// PropertyDescriptor is one property entry. Only the value is used; other
// fields such as ids or meta properties are ignored.
type PropertyDescriptor struct {
	Value any `json:"value"`
}

// VertexDescriptor is a decoded vertex record. OutE and InE hold the
// adjacency lists a record may embed. An embedded edge without outV (in
// OutE) or inV (in InE) refers to the vertex itself.
type VertexDescriptor struct {
	ID         any                           `json:"id"`
	Label      string                        `json:"label"`
	Properties map[string]PropertyDescriptor `json:"properties"`
	OutE       []EdgeDescriptor              `json:"outE,omitempty"`
	InE        []EdgeDescriptor              `json:"inE,omitempty"`
}

// KeyValues flattens the record into a key/value sequence accepted by
// structure.Graph.AddVertex. Properties come first in sorted key order,
// followed by T.Label and T.ID when present.
func (d *VertexDescriptor) KeyValues() []any {
	kvs := flatten(d.Properties)
	if d.Label != "" {
		kvs = append(kvs, structure.T.Label, d.Label)
	}
	if d.ID != nil {
		kvs = append(kvs, structure.T.ID, d.ID)
	}
	return kvs
}

func (d *VertexDescriptor) normalize() error {
	d.ID = normalizeNumbers(d.ID)
	if !validID(d.ID) {
		return errors.InvalidFormat("vertex id", "a string or a number")
	}
	normalizeProperties(d.Properties)
	for i := range d.OutE {
		e := &d.OutE[i]
		if e.OutV == nil {
			e.OutV = d.ID
		}
		if err := e.normalize(); err != nil {
			return err
		}
	}
	for i := range d.InE {
		e := &d.InE[i]
		if e.InV == nil {
			e.InV = d.ID
		}
		if err := e.normalize(); err != nil {
			return err
		}
	}
	return nil
}

// Edges returns the embedded edges in direction dir, OutE before InE for
// structure.Both.
func (d *VertexDescriptor) Edges(dir structure.Direction) []EdgeDescriptor {
	var out []EdgeDescriptor
	if dir == structure.Out || dir == structure.Both {
		out = append(out, d.OutE...)
	}
	if dir == structure.In || dir == structure.Both {
		out = append(out, d.InE...)
	}
	return out
}

// EdgeDescriptor is a decoded edge record. OutV and InV are the ids of the
// tail and head vertices as they appear in the input.
type EdgeDescriptor struct {
	ID         any                           `json:"id"`
	OutV       any                           `json:"outV"`
	InV        any                           `json:"inV"`
	Label      string                        `json:"label"`
	Properties map[string]PropertyDescriptor `json:"properties"`
}

// KeyValues flattens the edge properties in sorted key order, followed by
// T.ID when present. The label and endpoints are passed separately.
func (d *EdgeDescriptor) KeyValues() []any {
	kvs := flatten(d.Properties)
	if d.ID != nil {
		kvs = append(kvs, structure.T.ID, d.ID)
	}
	return kvs
}

func (d *EdgeDescriptor) normalize() error {
	d.ID = normalizeNumbers(d.ID)
	d.OutV = normalizeNumbers(d.OutV)
	d.InV = normalizeNumbers(d.InV)
	if !validID(d.ID) {
		return errors.InvalidFormat("edge id", "a string or a number")
	}
	if d.OutV == nil || !validID(d.OutV) {
		return errors.InvalidFormat("edge outV", "a string or a number")
	}
	if d.InV == nil || !validID(d.InV) {
		return errors.InvalidFormat("edge inV", "a string or a number")
	}
	normalizeProperties(d.Properties)
	return nil
}

// DecodeVertex reads a single vertex record.
func DecodeVertex(r io.Reader) (*VertexDescriptor, error) {
	var d VertexDescriptor
	if err := decodeRecord(r, &d); err != nil {
		return nil, err
	}
	if err := d.normalize(); err != nil {
		return nil, err
	}
	return &d, nil
}

// DecodeVertexEdges reads a vertex record and the embedded edges in
// direction dir.
func DecodeVertexEdges(r io.Reader, dir structure.Direction) (*VertexDescriptor, []EdgeDescriptor, error) {
	d, err := DecodeVertex(r)
	if err != nil {
		return nil, nil, err
	}
	return d, d.Edges(dir), nil
}

// DecodeEdge reads a single edge record.
func DecodeEdge(r io.Reader) (*EdgeDescriptor, error) {
	var d EdgeDescriptor
	if err := decodeRecord(r, &d); err != nil {
		return nil, err
	}
	if err := d.normalize(); err != nil {
		return nil, err
	}
	return &d, nil
}

func decodeRecord(r io.Reader, v any) error {
	dec := newDecoder(r)
	if err := dec.Decode(v); err != nil {
		return errors.InvalidFormat("graphson record", "a JSON object").WithCause(err)
	}
	return nil
}

func newDecoder(r io.Reader) *json.Decoder {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec
}

func flatten(props map[string]PropertyDescriptor) []any {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kvs := make([]any, 0, 2*len(keys)+4)
	for _, k := range keys {
		kvs = append(kvs, k, props[k].Value)
	}
	return kvs
}

func normalizeProperties(props map[string]PropertyDescriptor) {
	for k, p := range props {
		props[k] = PropertyDescriptor{Value: normalizeNumbers(p.Value)}
	}
}

// normalizeNumbers turns json.Number values into int64 when they are
// integral and float64 otherwise, recursing into objects and arrays.
func normalizeNumbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any:
		for k, e := range x {
			x[k] = normalizeNumbers(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = normalizeNumbers(e)
		}
		return x
	default:
		return v
	}
}

// validID reports whether id can key the loader's id cache.
func validID(id any) bool {
	switch id.(type) {
	case nil, string, int64, float64, bool:
		return true
	default:
		return false
	}
}
