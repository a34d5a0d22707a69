package traversal

import (
	"context"
	stderrors "errors"
	"fmt"
	"math/bits"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/logger"
	"github.com/kbukum/graphkit/structure"
)

// ErrExhausted is returned by NextValue when the traversal has no more
// output. It signals the end of iteration, not a fault.
var ErrExhausted = stderrors.New("traversal exhausted")

// Option configures a Traversal.
type Option func(*Traversal)

// WithGraph sets the graph the traversal writes to.
func WithGraph(g structure.Graph) Option {
	return func(t *Traversal) { t.graph = g }
}

// WithLogger sets the traversal logger.
func WithLogger(l *logger.Logger) Option {
	return func(t *Traversal) { t.log = l }
}

// Traversal is an ordered chain of steps pulled from its end step. Child
// traversals used as parameter values are linked to the step owning them.
type Traversal struct {
	steps  []Step
	starts *TraverserSet
	graph  structure.Graph
	parent Step
	log    *logger.Logger

	locked    bool
	reqs      RequirementSet
	generator Generator
}

// New creates an empty traversal.
func New(opts ...Option) *Traversal {
	t := &Traversal{starts: NewTraverserSet()}
	for _, opt := range opts {
		opt(t)
	}
	if t.log == nil {
		t.log = logger.NewNop()
	}
	return t
}

// AddStep appends s to the chain. The first step pulls from the start queue.
func (t *Traversal) AddStep(s Step) error {
	if s == nil {
		return errors.InvalidArgument("step", "must not be nil")
	}
	if t.locked {
		return errors.Locked("add step " + s.Kind())
	}
	s.SetTraversal(t)
	s.SetID(strconv.Itoa(len(t.steps)) + "." + s.Kind())
	if end := t.EndStep(); end != nil {
		s.SetUpstream(end)
	} else {
		s.SetUpstream(t.starts)
	}
	t.steps = append(t.steps, s)
	return nil
}

func (t *Traversal) Steps() []Step { return append([]Step(nil), t.steps...) }

// StartStep returns the first step, or nil for an empty traversal.
func (t *Traversal) StartStep() Step {
	if len(t.steps) == 0 {
		return nil
	}
	return t.steps[0]
}

// EndStep returns the last step, or nil for an empty traversal.
func (t *Traversal) EndStep() Step {
	if len(t.steps) == 0 {
		return nil
	}
	return t.steps[len(t.steps)-1]
}

// Graph returns the traversal's graph. Child traversals inherit the graph of
// the traversal owning their parent step.
func (t *Traversal) Graph() (structure.Graph, bool) {
	if t.graph != nil {
		return t.graph, true
	}
	if t.parent != nil && t.parent.Traversal() != nil {
		return t.parent.Traversal().Graph()
	}
	return nil, false
}

func (t *Traversal) SetGraph(g structure.Graph) { t.graph = g }
func (t *Traversal) Parent() Step               { return t.parent }
func (t *Traversal) SetParent(s Step)           { t.parent = s }
func (t *Traversal) Logger() *logger.Logger     { return t.log }
func (t *Traversal) IsLocked() bool             { return t.locked }

// Root returns the outermost traversal t is nested in.
func (t *Traversal) Root() *Traversal {
	for t.parent != nil && t.parent.Traversal() != nil {
		t = t.parent.Traversal()
	}
	return t
}

// AddStart queues s as input for the first step.
func (t *Traversal) AddStart(s Traverser) { t.starts.Add(s) }

// Lock freezes the requirements and the traverser generator of t and every
// child traversal. Steps and child traversals can no longer be added.
func (t *Traversal) Lock() {
	if t.locked {
		return
	}
	t.reqs = t.Requirements()
	t.generator = NewGenerator(t.reqs)
	t.locked = true
	for _, s := range t.steps {
		if p, ok := Unwrap(s).(Parent); ok {
			for _, child := range p.LocalChildren() {
				child.Lock()
			}
		}
	}
	t.log.Debug("traversal locked", logger.Fields(
		logger.FieldTraversal, t.String(),
		logger.FieldRequirements, t.reqs.String(),
	))
}

// Requirements returns the union of every step's requirements. It is frozen
// once the traversal is locked.
func (t *Traversal) Requirements() RequirementSet {
	if t.locked {
		return t.reqs
	}
	var reqs RequirementSet
	for _, s := range t.steps {
		reqs = reqs.Union(s.Requirements())
	}
	return reqs
}

// Generator returns the traverser generator, locking t first.
func (t *Traversal) Generator() Generator {
	t.Lock()
	return t.generator
}

// Next pulls the next traverser from the end step.
func (t *Traversal) Next(ctx context.Context) (Traverser, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	t.Lock()
	if end := t.EndStep(); end != nil {
		return end.Next(ctx)
	}
	return t.starts.Next(ctx)
}

// Reset clears queued starts and resets every step.
func (t *Traversal) Reset() {
	t.starts.Clear()
	for _, s := range t.steps {
		s.Reset()
	}
}

// Hash combines the step hashes in order.
func (t *Traversal) Hash() uint64 {
	var h uint64
	for _, s := range t.steps {
		h = bits.RotateLeft64(h, 7) ^ s.Hash()
	}
	return h
}

func (t *Traversal) Equal(o *Traversal) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.steps) != len(o.steps) {
		return false
	}
	for i := range t.steps {
		if !StepsEqual(t.steps[i], o.steps[i]) {
			return false
		}
	}
	return true
}

// Close closes every step and returns the combined error.
func (t *Traversal) Close() error {
	var err error
	for _, s := range t.steps {
		err = multierr.Append(err, s.Close())
	}
	return err
}

func (t *Traversal) String() string {
	parts := make([]string, len(t.steps))
	for i, s := range t.steps {
		if str, ok := s.(fmt.Stringer); ok {
			parts[i] = str.String()
		} else {
			parts[i] = s.Kind()
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Collect drains t and returns every traverser.
func Collect(ctx context.Context, t *Traversal) ([]Traverser, error) {
	var out []Traverser
	for {
		tr, ok, err := t.Next(ctx)
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, tr)
	}
}

// NextValue pulls one traverser and returns its value, or ErrExhausted.
func NextValue(ctx context.Context, t *Traversal) (any, error) {
	tr, ok, err := t.Next(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrExhausted
	}
	return tr.Get(), nil
}
