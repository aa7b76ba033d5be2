package mesh

import (
	"fmt"
	"math/bits"
	"strings"
)

// IndexSet is a set of entity indices bound to an owning mesh and a
// topological level. Membership is deduplicated structurally and
// iteration is ascending by index regardless of how the set was
// assembled, so downstream numerical assembly order is reproducible.
// The owning mesh and level are fixed at construction.
type IndexSet struct {
	mesh  *Mesh
	level TopologicalLevel
	words []uint64
	n     int // capacity: domain entity count at construction
}

// NewIndexSet creates an empty index set over the mesh's domain
// entities at the given topological level.
func NewIndexSet(m *Mesh, level TopologicalLevel) (*IndexSet, error) {
	if m == nil {
		return nil, configErrf("mesh", "index set requires an owning mesh")
	}
	if level < TVertex || level > TVolume {
		return nil, configErrf("topologicalIndex", "must be within [0,3], got %d", int(level))
	}
	n := m.topo.DomainCount(level)
	return &IndexSet{
		mesh:  m,
		level: level,
		words: make([]uint64, (n+63)/64),
		n:     n,
	}, nil
}

// FullIndexSet creates an index set holding every domain entity at the
// given level.
func FullIndexSet(m *Mesh, level TopologicalLevel) (*IndexSet, error) {
	s, err := NewIndexSet(m, level)
	if err != nil {
		return nil, err
	}
	s.AddAll()
	return s, nil
}

// Mesh returns the owning mesh.
func (s *IndexSet) Mesh() *Mesh { return s.mesh }

// Level returns the topological level the indices refer to.
func (s *IndexSet) Level() TopologicalLevel { return s.level }

// Size returns the index capacity (the domain entity count at
// construction time).
func (s *IndexSet) Size() int { return s.n }

// Add inserts a local entity index. Adding an index twice is a no-op.
func (s *IndexSet) Add(i int) error {
	if i < 0 || i >= s.n {
		return configErrf("index", "%d out of range [0,%d)", i, s.n)
	}
	s.words[i>>6] |= 1 << (uint(i) & 63)
	return nil
}

// AddAll inserts every entity index.
func (s *IndexSet) AddAll() {
	for w := range s.words {
		s.words[w] = ^uint64(0)
	}
	s.trim()
}

// trim clears bits beyond the capacity in the last word.
func (s *IndexSet) trim() {
	if tail := s.n & 63; tail != 0 && len(s.words) > 0 {
		s.words[len(s.words)-1] &= (1 << uint(tail)) - 1
	}
}

// Contains reports membership of a local entity index.
func (s *IndexSet) Contains(i int) bool {
	if i < 0 || i >= s.n {
		return false
	}
	return s.words[i>>6]&(1<<(uint(i)&63)) != 0
}

// Count returns the number of member indices.
func (s *IndexSet) Count() int {
	c := 0
	for _, w := range s.words {
		c += bits.OnesCount64(w)
	}
	return c
}

// checkCompatWith verifies that two sets may legally be combined: both
// the topological level and the owning mesh must be identical.
func (s *IndexSet) checkCompatWith(other *IndexSet) error {
	if other == nil {
		return &IncompatibleSetError{Reason: "other set is nil"}
	}
	if s.level != other.level {
		return &IncompatibleSetError{
			Reason: fmt.Sprintf("topological levels differ (%d vs %d)", int(s.level), int(other.level)),
		}
	}
	if s.mesh != other.mesh {
		return &IncompatibleSetError{Reason: "the meshes associated with these index sets differ"}
	}
	return nil
}

// Union returns a new set holding indices present in either set.
func (s *IndexSet) Union(other *IndexSet) (*IndexSet, error) {
	out, err := s.cloneFor(other)
	if err != nil {
		return nil, err
	}
	for w := range out.words {
		out.words[w] = s.word(w) | other.word(w)
	}
	out.trim()
	return out, nil
}

// Intersect returns a new set holding indices present in both sets.
func (s *IndexSet) Intersect(other *IndexSet) (*IndexSet, error) {
	out, err := s.cloneFor(other)
	if err != nil {
		return nil, err
	}
	for w := range out.words {
		out.words[w] = s.word(w) & other.word(w)
	}
	return out, nil
}

// Difference returns a new set holding indices present in s but not in
// other.
func (s *IndexSet) Difference(other *IndexSet) (*IndexSet, error) {
	out, err := s.cloneFor(other)
	if err != nil {
		return nil, err
	}
	for w := range out.words {
		out.words[w] = s.word(w) &^ other.word(w)
	}
	return out, nil
}

func (s *IndexSet) cloneFor(other *IndexSet) (*IndexSet, error) {
	if err := s.checkCompatWith(other); err != nil {
		return nil, err
	}
	n := s.n
	if other.n > n {
		n = other.n
	}
	return &IndexSet{
		mesh:  s.mesh,
		level: s.level,
		words: make([]uint64, (n+63)/64),
		n:     n,
	}, nil
}

func (s *IndexSet) word(w int) uint64 {
	if w >= len(s.words) {
		return 0
	}
	return s.words[w]
}

// Indices returns the member indices in ascending order. The slice is
// freshly allocated on every call, so iteration is restartable.
func (s *IndexSet) Indices() []int {
	out := make([]int, 0, s.Count())
	for w, word := range s.words {
		for word != 0 {
			b := bits.TrailingZeros64(word)
			out = append(out, w<<6+b)
			word &= word - 1
		}
	}
	return out
}

// String renders the set in ascending order.
func (s *IndexSet) String() string {
	var sb strings.Builder
	sb.WriteString("IndexSet[")
	for i, idx := range s.Indices() {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%d", idx)
	}
	sb.WriteString("]")
	return sb.String()
}
