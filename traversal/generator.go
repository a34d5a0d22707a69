package traversal

// Generator creates traversers in the representation demanded by a
// traversal's requirements.
type Generator interface {
	// Generate creates a traverser for value produced by origin.
	Generate(value any, origin Step, bulk int64) Traverser
	// Requirements returns the requirements the generator was built for.
	Requirements() RequirementSet
}

// NewGenerator returns the lightweight generator unless reqs asks for path
// or loop tracking.
func NewGenerator(reqs RequirementSet) Generator {
	if reqs.NeedsTracking() {
		return trackingGenerator{reqs: reqs}
	}
	return valueGenerator{reqs: reqs}
}

type valueGenerator struct{ reqs RequirementSet }

func (g valueGenerator) Generate(value any, _ Step, bulk int64) Traverser {
	return &valueTraverser{value: value, bulk: bulk}
}

func (g valueGenerator) Requirements() RequirementSet { return g.reqs }

type trackingGenerator struct{ reqs RequirementSet }

func (g trackingGenerator) Generate(value any, origin Step, bulk int64) Traverser {
	var labels []string
	if origin != nil {
		labels = origin.Labels()
	}
	return &trackingTraverser{value: value, bulk: bulk, path: (*Path)(nil).Extend(value, labels...)}
}

func (g trackingGenerator) Requirements() RequirementSet { return g.reqs }
