package traversal

import (
	"context"
	"fmt"

	"github.com/kbukum/graphkit/errors"
)

// Provider supplies a parameter value: either a constant fixed at
// construction or a child traversal evaluated against each traverser.
type Provider struct {
	value any
	child *Traversal
}

// Constant returns a provider that always yields v.
func Constant(v any) Provider { return Provider{value: v} }

// Bound returns a provider evaluated by running t.
func Bound(t *Traversal) Provider { return Provider{child: t} }

func (p Provider) IsBound() bool         { return p.child != nil }
func (p Provider) Value() any            { return p.value }
func (p Provider) Traversal() *Traversal { return p.child }

func (p Provider) hash() uint64 {
	if p.child != nil {
		return p.child.Hash()
	}
	return HashValue(p.value)
}

func (p Provider) String() string {
	if p.child != nil {
		return p.child.String()
	}
	return fmt.Sprintf("%v", p.value)
}

// Resolve returns the provider's value for t. A bound child is reset, seeded
// with a unit-bulk split of t and pulled once. With the empty traverser the
// child runs without input and a missing result resolves to nil; with a real
// traverser a missing result is an error.
func (p Provider) Resolve(ctx context.Context, t Traverser) (any, error) {
	if p.child == nil {
		return p.value, nil
	}
	child := p.child
	child.Reset()
	if !IsEmpty(t) {
		start := t.Split(t.Get(), nil)
		start.SetBulk(1)
		child.AddStart(start)
	}
	out, ok, err := child.Next(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		if IsEmpty(t) {
			return nil, nil
		}
		return nil, errors.NoValue(child.String()).WithDetail("input", fmt.Sprintf("%v", t.Get()))
	}
	return out.Get(), nil
}

type parameter struct {
	key      any
	provider Provider
}

// Parameters is an ordered multimap from property key to providers. Keys
// are property names or structure tokens.
type Parameters struct {
	entries []parameter
}

// NewParameters creates an empty table.
func NewParameters() *Parameters { return &Parameters{} }

// Set appends a provider for key. A *Traversal value becomes a bound
// provider; callers must follow up with IntegrateTraversals.
func (p *Parameters) Set(key, value any) {
	var prov Provider
	switch v := value.(type) {
	case *Traversal:
		prov = Bound(v)
	case Provider:
		prov = v
	default:
		prov = Constant(v)
	}
	p.entries = append(p.entries, parameter{key: key, provider: prov})
}

// Get returns the providers registered for key in insertion order.
func (p *Parameters) Get(key any) []Provider {
	var out []Provider
	for _, e := range p.entries {
		if e.key == key {
			out = append(out, e.provider)
		}
	}
	return out
}

func (p *Parameters) Contains(key any) bool {
	for _, e := range p.entries {
		if e.key == key {
			return true
		}
	}
	return false
}

// Remove drops every provider for key and returns them.
func (p *Parameters) Remove(key any) []Provider {
	var removed []Provider
	kept := p.entries[:0]
	for _, e := range p.entries {
		if e.key == key {
			removed = append(removed, e.provider)
			continue
		}
		kept = append(kept, e)
	}
	p.entries = kept
	return removed
}

// Keys returns the distinct keys in first-insertion order.
func (p *Parameters) Keys() []any {
	var keys []any
	seen := make(map[any]struct{}, len(p.entries))
	for _, e := range p.entries {
		if _, ok := seen[e.key]; ok {
			continue
		}
		seen[e.key] = struct{}{}
		keys = append(keys, e.key)
	}
	return keys
}

func (p *Parameters) Len() int { return len(p.entries) }

// Traversals returns the bound child traversals in insertion order.
func (p *Parameters) Traversals() []*Traversal {
	var out []*Traversal
	for _, e := range p.entries {
		if e.provider.IsBound() {
			out = append(out, e.provider.child)
		}
	}
	return out
}

// IntegrateTraversals links every bound child to owner so the owner's
// requirements and graph flow to it. Once owner's traversal is locked,
// children that are not linked yet are removed and TRAVERSAL_LOCKED is
// returned.
func (p *Parameters) IntegrateTraversals(owner Step) error {
	if owner == nil {
		return errors.InvalidArgument("owner", "must not be nil")
	}
	if t := owner.Traversal(); t != nil && t.IsLocked() {
		kept := p.entries[:0]
		for _, e := range p.entries {
			if e.provider.IsBound() && e.provider.child.Parent() != owner {
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) == len(p.entries) {
			return nil
		}
		clear(p.entries[len(kept):])
		p.entries = kept
		return errors.Locked("integrate child traversal")
	}
	for _, child := range p.Traversals() {
		child.SetParent(owner)
	}
	return nil
}

// KeyValues flattens the table into a key,value sequence for t in insertion
// order, skipping exceptKeys.
func (p *Parameters) KeyValues(ctx context.Context, t Traverser, exceptKeys ...any) ([]any, error) {
	out := make([]any, 0, 2*len(p.entries))
	for _, e := range p.entries {
		if containsKey(exceptKeys, e.key) {
			continue
		}
		v, err := e.provider.Resolve(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, e.key, v)
	}
	return out, nil
}

// Hash folds every key and provider hash with XOR, so it does not depend on
// insertion order.
func (p *Parameters) Hash() uint64 {
	var h uint64
	for _, e := range p.entries {
		h ^= HashValue(e.key) ^ e.provider.hash()
	}
	return h
}

func (p *Parameters) Equal(o *Parameters) bool {
	if p == nil || o == nil {
		return p == o
	}
	return len(p.entries) == len(o.entries) && p.Hash() == o.Hash()
}

func (p *Parameters) String() string {
	s := "{"
	for i, e := range p.entries {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%v=%s", e.key, e.provider)
	}
	return s + "}"
}

func containsKey(keys []any, key any) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
