package structure

import "fmt"

// DetachedProperty is a graph-independent copy of a property.
type DetachedProperty struct {
	key   string
	value any
}

func (p DetachedProperty) Key() string { return p.key }
func (p DetachedProperty) Value() any  { return p.value }

type detachedElement struct {
	id         any
	label      string
	properties []DetachedProperty
}

func (e *detachedElement) ID() any       { return e.id }
func (e *detachedElement) Label() string { return e.label }

func (e *detachedElement) Property(key string) (Property, bool) {
	for _, p := range e.properties {
		if p.key == key {
			return p, true
		}
	}
	return nil, false
}

func (e *detachedElement) Properties() []Property {
	out := make([]Property, len(e.properties))
	for i, p := range e.properties {
		out[i] = p
	}
	return out
}

func (e *detachedElement) Keys() []string {
	out := make([]string, len(e.properties))
	for i, p := range e.properties {
		out[i] = p.key
	}
	return out
}

// Value returns the value of key, or nil.
func (e *detachedElement) Value(key string) any {
	if p, ok := e.Property(key); ok {
		return p.Value()
	}
	return nil
}

// DetachedVertex is an immutable snapshot of a vertex. It holds no reference
// to the graph it was taken from.
type DetachedVertex struct {
	detachedElement
}

func (v *DetachedVertex) String() string { return fmt.Sprintf("v[%v]", v.id) }

// DetachedEdge is an immutable snapshot of an edge and the ids and labels
// of its endpoints.
type DetachedEdge struct {
	detachedElement
	outID, inID       any
	outLabel, inLabel string
}

func (e *DetachedEdge) OutID() any       { return e.outID }
func (e *DetachedEdge) InID() any        { return e.inID }
func (e *DetachedEdge) OutLabel() string { return e.outLabel }
func (e *DetachedEdge) InLabel() string  { return e.inLabel }
func (e *DetachedEdge) String() string   { return fmt.Sprintf("e[%v][%v-%s->%v]", e.id, e.outID, e.label, e.inID) }

// DetachVertex snapshots v. Properties are copied only when withProperties
// is set.
func DetachVertex(v Vertex, withProperties bool) *DetachedVertex {
	if v == nil {
		return nil
	}
	return &DetachedVertex{detachedElement: detach(v, withProperties)}
}

// DetachEdge snapshots e. Properties are copied only when withProperties is
// set.
func DetachEdge(e Edge, withProperties bool) *DetachedEdge {
	if e == nil {
		return nil
	}
	d := &DetachedEdge{detachedElement: detach(e, withProperties)}
	if out := e.OutVertex(); out != nil {
		d.outID, d.outLabel = out.ID(), out.Label()
	}
	if in := e.InVertex(); in != nil {
		d.inID, d.inLabel = in.ID(), in.Label()
	}
	return d
}

func detach(el Element, withProperties bool) detachedElement {
	d := detachedElement{id: el.ID(), label: el.Label()}
	if withProperties {
		props := el.Properties()
		d.properties = make([]DetachedProperty, len(props))
		for i, p := range props {
			d.properties[i] = DetachedProperty{key: p.Key(), value: p.Value()}
		}
	}
	return d
}
