package capability

import (
	"sort"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/exp/maps"
)

// Set is a set of Capability values. Non-parametrized kinds are tracked in
// a fixed-width bitset (one bit per Kind) since the enum is small and
// closed -- membership, union and intersection over the common case are
// then single-word operations instead of map traffic. The two
// parametrized resource kinds, which can carry arbitrary N, fall back to
// a small map keyed by (Kind, N).
//
// This mirrors set.Set[T]'s generic map-of-struct{} shape for the API
// surface (Add/Contains/Remove/Union/Intersection/List) but
// specializes the storage to the closed capability enum.
type Set struct {
	fixed     *bitset.BitSet
	resources map[Capability]struct{}
}

// NewSet returns a Set initialized with elts.
func NewSet(elts ...Capability) Set {
	s := Set{fixed: bitset.New(uint(numKinds))}
	s.Add(elts...)
	return s
}

func (s *Set) ensure() {
	if s.fixed == nil {
		s.fixed = bitset.New(uint(numKinds))
	}
}

// Add adds capabilities to the set.
func (s *Set) Add(elts ...Capability) {
	s.ensure()
	for _, c := range elts {
		if c.Kind.IsParametrized() {
			if s.resources == nil {
				s.resources = make(map[Capability]struct{})
			}
			s.resources[c] = struct{}{}
			continue
		}
		s.fixed.Set(uint(c.Kind))
	}
}

// Contains reports whether the set contains c.
func (s Set) Contains(c Capability) bool {
	if c.Kind.IsParametrized() {
		if s.resources == nil {
			return false
		}
		_, ok := s.resources[c]
		return ok
	}
	if s.fixed == nil {
		return false
	}
	return s.fixed.Test(uint(c.Kind))
}

// Remove removes capabilities from the set.
func (s *Set) Remove(elts ...Capability) {
	s.ensure()
	for _, c := range elts {
		if c.Kind.IsParametrized() {
			delete(s.resources, c)
			continue
		}
		s.fixed.Clear(uint(c.Kind))
	}
}

// Len returns the number of elements in the set.
func (s Set) Len() int {
	n := 0
	if s.fixed != nil {
		n += int(s.fixed.Count())
	}
	n += len(s.resources)
	return n
}

// List returns the elements of the set. Fixed-kind members are returned
// in Kind order; resource members follow in no particular order.
func (s Set) List() []Capability {
	out := make([]Capability, 0, s.Len())
	if s.fixed != nil {
		for i, e := s.fixed.NextSet(0); e; i, e = s.fixed.NextSet(i + 1) {
			out = append(out, Of(Kind(i)))
		}
	}
	out = append(out, maps.Keys(s.resources)...)
	return out
}

// Union returns a new set containing all elements from both sets.
func (s Set) Union(other Set) Set {
	out := NewSet()
	out.fixed = s.fixed.Clone()
	if other.fixed != nil {
		out.fixed = out.fixed.Union(other.fixed)
	}
	out.resources = make(map[Capability]struct{}, len(s.resources)+len(other.resources))
	maps.Copy(out.resources, s.resources)
	maps.Copy(out.resources, other.resources)
	return out
}

// Intersection returns a new set containing only elements present in both sets.
func (s Set) Intersection(other Set) Set {
	out := NewSet()
	if s.fixed != nil && other.fixed != nil {
		out.fixed = s.fixed.Intersection(other.fixed)
	}
	out.resources = make(map[Capability]struct{})
	for c := range s.resources {
		if _, ok := other.resources[c]; ok {
			out.resources[c] = struct{}{}
		}
	}
	return out
}

// IsSubsetOf reports whether every element of s is also in other -- the
// relation spec.md's "capability monotonicity per tier" property is
// phrased in terms of (⊊, strict subset).
func (s Set) IsSubsetOf(other Set) bool {
	if s.fixed != nil && s.fixed.Count() > 0 {
		if other.fixed == nil {
			return false
		}
		// s ⊆ other iff intersecting s with other leaves s unchanged.
		if s.fixed.Intersection(other.fixed).Count() != s.fixed.Count() {
			return false
		}
	}
	for c := range s.resources {
		if _, ok := other.resources[c]; !ok {
			return false
		}
	}
	return true
}

// IsStrictSubsetOf reports whether s is a subset of other and the two
// sets are not equal.
func (s Set) IsStrictSubsetOf(other Set) bool {
	return s.IsSubsetOf(other) && s.Len() < other.Len()
}

// Clone returns a copy of the set.
func (s Set) Clone() Set {
	out := Set{}
	if s.fixed != nil {
		out.fixed = s.fixed.Clone()
	} else {
		out.fixed = bitset.New(uint(numKinds))
	}
	out.resources = make(map[Capability]struct{}, len(s.resources))
	maps.Copy(out.resources, s.resources)
	return out
}

// String renders the set in a stable, sorted order for deterministic
// diagnostics and test output.
func (s Set) String() string {
	list := s.List()
	names := make([]string, len(list))
	for i, c := range list {
		names[i] = c.String()
	}
	sort.Strings(names)
	return "{" + strings.Join(names, ", ") + "}"
}
