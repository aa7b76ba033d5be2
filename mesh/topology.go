package mesh

import (
	"github.com/geodynamics/femesh/decomp"
)

// TopologicalLevel classifies mesh entities by dimension.
type TopologicalLevel int

const (
	TVertex TopologicalLevel = 0
	TEdge   TopologicalLevel = 1
	TFace   TopologicalLevel = 2
	TVolume TopologicalLevel = 3
)

// Topology tabulates entity counts at each topological level under a
// domain decomposition. It is populated once by the generator at mesh
// build time and read-only thereafter.
type Topology struct {
	local  [4]int
	global [4]int
	domain [4]int // local plus ghost
}

// LocalCount returns the number of owned entities at a level.
func (t *Topology) LocalCount(level TopologicalLevel) int {
	if level < 0 || level > 3 {
		return 0
	}
	return t.local[level]
}

// GlobalCount returns the global entity count at a level.
func (t *Topology) GlobalCount(level TopologicalLevel) int {
	if level < 0 || level > 3 {
		return 0
	}
	return t.global[level]
}

// DomainCount returns owned plus ghost entities at a level.
func (t *Topology) DomainCount(level TopologicalLevel) int {
	if level < 0 || level > 3 {
		return 0
	}
	return t.domain[level]
}

// setFromDecomposition fills all four levels from a decomposition.
func (t *Topology) setFromDecomposition(d *decomp.Decomposition) {
	for level := 0; level <= 3; level++ {
		t.local[level] = d.LocalCount(level)
		t.global[level] = d.GlobalCount(level)
		t.domain[level] = d.DomainCount(level)
	}
}

// setLevel overrides the counts at one level. Used by templated
// generators whose node stencil is decoupled from the cell topology.
func (t *Topology) setLevel(level TopologicalLevel, local, global, domain int) {
	t.local[level] = local
	t.global[level] = global
	t.domain[level] = domain
}
