package traversal

import (
	"context"
	"reflect"

	"github.com/kbukum/graphkit/traversal/event"
)

// Puller is the pull protocol shared by steps, traversals and start queues.
// Next returns (nil, false, nil) once exhausted.
type Puller interface {
	Next(ctx context.Context) (Traverser, bool, error)
}

// Step is one stage of a traversal.
type Step interface {
	Puller

	ID() string
	SetID(id string)
	// Kind names the step type, e.g. "AddVertexStep".
	Kind() string
	Labels() []string
	AddLabel(label string)

	Traversal() *Traversal
	SetTraversal(t *Traversal)
	SetUpstream(p Puller)

	// Reset returns the step to its initial state so the traversal can be
	// iterated again.
	Reset()
	Requirements() RequirementSet
	Hash() uint64
	Equal(other Step) bool
	Close() error
}

// Parent is implemented by steps holding child traversals.
type Parent interface {
	LocalChildren() []*Traversal
}

// PropertyMutator is a step whose written element accepts extra properties.
type PropertyMutator interface {
	Step
	AddPropertyMutations(keyValues ...any) error
}

// Mutating is a step that writes to the graph and notifies listeners with
// events of type E.
type Mutating[E any] interface {
	PropertyMutator
	MutatingCallbackRegistry() *event.Registry[E]
}

// Wrapper is implemented by step decorators.
type Wrapper interface {
	Unwrap() Step
}

// Unwrap strips every decorator from s.
func Unwrap(s Step) Step {
	for {
		w, ok := s.(Wrapper)
		if !ok {
			return s
		}
		s = w.Unwrap()
	}
}

// StepsEqual reports whether a and b have the same concrete type and the
// same structural hash.
func StepsEqual(a, b Step) bool {
	if a == nil || b == nil {
		return a == b
	}
	a, b = Unwrap(a), Unwrap(b)
	return reflect.TypeOf(a) == reflect.TypeOf(b) && a.Hash() == b.Hash()
}

// SelfAndChildRequirements returns self united with the requirements of
// every child traversal of p.
func SelfAndChildRequirements(self RequirementSet, p Parent) RequirementSet {
	for _, child := range p.LocalChildren() {
		self = self.Union(child.Requirements())
	}
	return self
}

// Base carries the state every step shares. Concrete steps embed it and
// override what they need.
type Base struct {
	id        string
	kind      string
	labels    []string
	traversal *Traversal
	upstream  Puller
}

// NewBase returns a Base for a step of the given kind.
func NewBase(kind string) Base { return Base{kind: kind} }

func (b *Base) ID() string                { return b.id }
func (b *Base) SetID(id string)           { b.id = id }
func (b *Base) Kind() string              { return b.kind }
func (b *Base) Traversal() *Traversal     { return b.traversal }
func (b *Base) SetTraversal(t *Traversal) { b.traversal = t }
func (b *Base) SetUpstream(p Puller)      { b.upstream = p }
func (b *Base) Upstream() Puller          { return b.upstream }

func (b *Base) Labels() []string { return append([]string(nil), b.labels...) }

func (b *Base) AddLabel(label string) {
	for _, l := range b.labels {
		if l == label {
			return
		}
	}
	b.labels = append(b.labels, label)
}

func (b *Base) Reset()                       {}
func (b *Base) Requirements() RequirementSet { return RequirementSet{} }
func (b *Base) Close() error                 { return nil }

// Hash folds the kind and labels. Steps with configuration XOR their own
// content into it.
func (b *Base) Hash() uint64 {
	h := hashString(b.kind)
	for _, l := range b.labels {
		h ^= hashString("label:" + l)
	}
	return h
}

// PullUpstream pulls the next traverser from the upstream, treating a
// missing upstream as exhausted.
func (b *Base) PullUpstream(ctx context.Context) (Traverser, bool, error) {
	if b.upstream == nil {
		return nil, false, nil
	}
	return b.upstream.Next(ctx)
}

// Generate creates a traverser through the owning traversal's generator.
func (b *Base) Generate(value any, origin Step, bulk int64) Traverser {
	if b.traversal == nil {
		return NewGenerator(RequirementSet{}).Generate(value, origin, bulk)
	}
	return b.traversal.Generator().Generate(value, origin, bulk)
}
