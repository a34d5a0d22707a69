package traversal

import "strings"

// Requirement is a capability a step needs from the traverser representation
// used by its traversal.
type Requirement uint8

const (
	RequireObject Requirement = iota
	RequireBulk
	RequirePath
	RequireLabeledPath
	RequireSingleLoop
	RequireSideEffects
	numRequirements
)

var requirementNames = [...]string{
	RequireObject:      "object",
	RequireBulk:        "bulk",
	RequirePath:        "path",
	RequireLabeledPath: "labeled_path",
	RequireSingleLoop:  "single_loop",
	RequireSideEffects: "side_effects",
}

func (r Requirement) String() string {
	if r < numRequirements {
		return requirementNames[r]
	}
	return "unknown"
}

// RequirementSet is an immutable set of requirements. The zero value is the
// empty set.
type RequirementSet struct {
	bits uint32
}

// NewRequirementSet returns a set holding reqs.
func NewRequirementSet(reqs ...Requirement) RequirementSet {
	return RequirementSet{}.With(reqs...)
}

// With returns a copy of s extended with reqs.
func (s RequirementSet) With(reqs ...Requirement) RequirementSet {
	for _, r := range reqs {
		s.bits |= 1 << r
	}
	return s
}

// Union returns a set holding every requirement of s and others.
func (s RequirementSet) Union(others ...RequirementSet) RequirementSet {
	for _, o := range others {
		s.bits |= o.bits
	}
	return s
}

func (s RequirementSet) Contains(r Requirement) bool { return s.bits&(1<<r) != 0 }
func (s RequirementSet) IsEmpty() bool               { return s.bits == 0 }

// ContainsAll reports whether every requirement of o is in s.
func (s RequirementSet) ContainsAll(o RequirementSet) bool { return s.bits&o.bits == o.bits }

// Slice returns the requirements in declaration order.
func (s RequirementSet) Slice() []Requirement {
	var out []Requirement
	for r := Requirement(0); r < numRequirements; r++ {
		if s.Contains(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s RequirementSet) String() string {
	reqs := s.Slice()
	names := make([]string, len(reqs))
	for i, r := range reqs {
		names[i] = r.String()
	}
	return "[" + strings.Join(names, ",") + "]"
}

// NeedsTracking reports whether s demands the path-carrying representation.
func (s RequirementSet) NeedsTracking() bool {
	return s.Contains(RequirePath) || s.Contains(RequireLabeledPath) || s.Contains(RequireSingleLoop)
}
