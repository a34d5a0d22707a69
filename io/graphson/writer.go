package graphson

import (
	"bytes"
	"io"

	"github.com/goccy/go-json"

	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/structure"
)

type document struct {
	Properties map[string]any      `json:"properties,omitempty"`
	Vertices   []*VertexDescriptor `json:"vertices"`
	Edges      []*EdgeDescriptor   `json:"edges"`
}

// WriteGraph writes a document that ReadGraph can load back. Graph
// properties are taken from g.Memory when it is supported.
func WriteGraph(w io.Writer, g structure.Graph, vertices []structure.Vertex, edges []structure.Edge) error {
	doc := document{
		Vertices: make([]*VertexDescriptor, 0, len(vertices)),
		Edges:    make([]*EdgeDescriptor, 0, len(edges)),
	}
	if g != nil {
		if mem, ok := g.Memory(); ok {
			doc.Properties = make(map[string]any)
			for _, k := range mem.Keys() {
				doc.Properties[k], _ = mem.Get(k)
			}
		}
	}
	for _, v := range vertices {
		doc.Vertices = append(doc.Vertices, vertexRecord(v))
	}
	for _, e := range edges {
		doc.Edges = append(doc.Edges, edgeRecord(e))
	}
	return encodeRecord(w, &doc)
}

// EncodeVertex writes v as a single vertex record. It is the inverse of
// DecodeVertex for graphs whose property values are JSON encodable.
func EncodeVertex(w io.Writer, v structure.Vertex) error {
	return encodeRecord(w, vertexRecord(v))
}

// EncodeEdge writes e as a single edge record.
func EncodeEdge(w io.Writer, e structure.Edge) error {
	return encodeRecord(w, edgeRecord(e))
}

func vertexRecord(v structure.Vertex) *VertexDescriptor {
	return &VertexDescriptor{ID: v.ID(), Label: v.Label(), Properties: propertiesOf(v)}
}

func edgeRecord(e structure.Edge) *EdgeDescriptor {
	return &EdgeDescriptor{
		ID:         e.ID(),
		OutV:       e.OutVertex().ID(),
		InV:        e.InVertex().ID(),
		Label:      e.Label(),
		Properties: propertiesOf(e),
	}
}

func propertiesOf(el structure.Element) map[string]PropertyDescriptor {
	props := make(map[string]PropertyDescriptor)
	for _, p := range el.Properties() {
		props[p.Key()] = PropertyDescriptor{Value: p.Value()}
	}
	return props
}

func encodeRecord(w io.Writer, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return errors.InvalidFormat("graphson record", "JSON encodable values").WithCause(err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
