package decomp

import (
	"fmt"
)

// Topological levels used throughout the decomposition.
const (
	LevelVertex = 0
	LevelEdge   = 1
	LevelFace   = 2
	LevelVolume = 3
)

// Decomposition partitions a structured grid of mesh entities across
// the ranks of a Communicator. The grid is sliced into slabs along the
// last (slowest-varying) axis: each rank owns a contiguous range of
// element planes and the node planes they span, plus a one-plane ghost
// halo of vertices on interior slab boundaries. The vertex plane at a
// slab interface is owned by the upper rank; the lower rank, whose
// topmost elements also touch it, carries it as a ghost.
//
// Global entity numbering is row-major with the first axis varying
// fastest, so a plane along the last axis is a contiguous index range.
type Decomposition struct {
	Comm Communicator

	dim          int
	nodesPerAxis []int // Node planes per axis (element-order dependent)
	elemsPerAxis []int // Element count per axis
	periodic     []bool

	// Slab ranges along the last axis, [start, end)
	elemStart, elemEnd int
	nodeStart, nodeEnd int
	ghostAbove         int // Ghost node planes above nodeEnd (0 or 1)
	ghostPlane         int // Global index of the ghost node plane, -1 if none

	crossNodes int // Nodes per plane: product of nodesPerAxis[:dim-1]
	crossElems int // Elements per plane

	localCounts  [4]int
	globalCounts [4]int
	domainCounts [4]int
}

// NewDecomposition builds the slab decomposition of a structured grid.
// nodesPerAxis gives the node planes per axis (resolution+1 for a
// non-periodic linear axis, 2*resolution+1 quadratic, the +1 dropped on
// periodic axes), elemsPerAxis the element count per axis. The node
// grid must be an integer refinement of the element grid along the
// last axis so slab boundaries fall on element boundaries.
//
// Construction is collective over comm: ranks cross-check global
// element totals via an allreduce, and any disagreement is fatal.
func NewDecomposition(nodesPerAxis, elemsPerAxis []int, periodic []bool, comm Communicator) (*Decomposition, error) {
	if comm == nil {
		comm = SelfComm{}
	}
	dim := len(elemsPerAxis)
	if dim < 2 || dim > 3 {
		return nil, fmt.Errorf("decomposition supports 2 or 3 axes, got %d", dim)
	}
	if len(nodesPerAxis) != dim || len(periodic) != dim {
		return nil, fmt.Errorf("axis count mismatch: nodes=%d elems=%d periodic=%d",
			len(nodesPerAxis), dim, len(periodic))
	}
	for a := 0; a < dim; a++ {
		if elemsPerAxis[a] < 1 || nodesPerAxis[a] < 1 {
			return nil, fmt.Errorf("axis %d: counts must be positive (nodes=%d, elems=%d)",
				a, nodesPerAxis[a], elemsPerAxis[a])
		}
	}

	last := dim - 1
	extra := 1
	if periodic[last] {
		extra = 0
	}
	if (nodesPerAxis[last]-extra)%elemsPerAxis[last] != 0 {
		return nil, fmt.Errorf("node planes %d along axis %d are not an integer refinement of %d elements",
			nodesPerAxis[last], last, elemsPerAxis[last])
	}
	nodesPerElem := (nodesPerAxis[last] - extra) / elemsPerAxis[last]

	size, rank := comm.Size(), comm.Rank()
	if size > elemsPerAxis[last] {
		return nil, fmt.Errorf("cannot decompose %d element planes over %d ranks",
			elemsPerAxis[last], size)
	}

	d := &Decomposition{
		Comm:         comm,
		dim:          dim,
		nodesPerAxis: append([]int(nil), nodesPerAxis...),
		elemsPerAxis: append([]int(nil), elemsPerAxis...),
		periodic:     append([]bool(nil), periodic...),
		ghostPlane:   -1,
	}

	d.crossNodes, d.crossElems = 1, 1
	for a := 0; a < last; a++ {
		d.crossNodes *= nodesPerAxis[a]
		d.crossElems *= elemsPerAxis[a]
	}

	d.elemStart, d.elemEnd = SplitPlanes(elemsPerAxis[last], size, rank)
	d.nodeStart = d.elemStart * nodesPerElem
	d.nodeEnd = d.elemEnd * nodesPerElem
	if rank == size-1 && !periodic[last] {
		d.nodeEnd++ // top boundary plane
	}

	// A rank's topmost elements touch node plane elemEnd*nodesPerElem,
	// which the rank above owns as its first plane, so every rank but
	// the last ghosts the plane above its slab. With a periodic last
	// axis the last rank's elements wrap onto plane 0.
	if rank < size-1 {
		d.ghostAbove = 1
		d.ghostPlane = d.nodeEnd
	} else if periodic[last] && size > 1 {
		d.ghostAbove = 1
		d.ghostPlane = 0
	}

	d.fillCounts()

	// Collective consistency check: the owned element planes must tile
	// the global grid exactly. A mismatch means the ranks disagree on
	// the grid and the whole construction is unrecoverable.
	sum := comm.AllreduceInt(OpSum, []int{d.elemEnd - d.elemStart})
	if sum[0] != elemsPerAxis[last] {
		return nil, fmt.Errorf("collective mismatch: ranks own %d of %d element planes",
			sum[0], elemsPerAxis[last])
	}

	return d, nil
}

// SplitPlanes distributes n planes over size ranks, front-loading the
// remainder, and returns rank's [start, end) range.
func SplitPlanes(n, size, rank int) (start, end int) {
	base := n / size
	rem := n % size
	start = rank*base + min(rank, rem)
	end = start + base
	if rank < rem {
		end++
	}
	return start, end
}

func (d *Decomposition) fillCounts() {
	last := d.dim - 1

	// Topological vertex count per axis: element intervals plus the
	// closing plane on non-periodic axes. Independent of element order.
	tv := make([]int, d.dim)
	for a := 0; a < d.dim; a++ {
		tv[a] = d.elemsPerAxis[a]
		if !d.periodic[a] {
			tv[a]++
		}
	}

	d.globalCounts = structuredCounts(d.elemsPerAxis, tv)
	d.globalCounts[LevelVertex] = prod(d.nodesPerAxis)

	// Local counts substitute the slab's share along the last axis.
	localElems := append([]int(nil), d.elemsPerAxis...)
	localElems[last] = d.elemEnd - d.elemStart
	localTV := append([]int(nil), tv...)
	localTV[last] = d.elemEnd - d.elemStart
	if d.Comm.Rank() == d.Comm.Size()-1 && !d.periodic[last] {
		localTV[last]++
	}
	d.localCounts = structuredCounts(localElems, localTV)
	d.localCounts[LevelVertex] = d.crossNodes * (d.nodeEnd - d.nodeStart)

	d.domainCounts = d.localCounts
	d.domainCounts[LevelVertex] += d.ghostAbove * d.crossNodes
}

// structuredCounts computes entity counts for a structured grid from
// per-axis element counts and per-axis topological vertex counts.
// Index 0 (vertices) is left to the caller, which knows the node grid.
func structuredCounts(elems, tv []int) (counts [4]int) {
	dim := len(elems)
	switch dim {
	case 2:
		counts[LevelEdge] = elems[0]*tv[1] + elems[1]*tv[0]
		counts[LevelFace] = elems[0] * elems[1]
	case 3:
		counts[LevelEdge] = elems[0]*tv[1]*tv[2] + elems[1]*tv[0]*tv[2] + elems[2]*tv[0]*tv[1]
		counts[LevelFace] = elems[0]*elems[1]*tv[2] + elems[0]*elems[2]*tv[1] + elems[1]*elems[2]*tv[0]
		counts[LevelVolume] = elems[0] * elems[1] * elems[2]
	}
	return counts
}

func prod(vs []int) int {
	p := 1
	for _, v := range vs {
		p *= v
	}
	return p
}

// Dim returns the number of axes.
func (d *Decomposition) Dim() int { return d.dim }

// NodesPerAxis returns the global node plane counts per axis.
func (d *Decomposition) NodesPerAxis() []int {
	return append([]int(nil), d.nodesPerAxis...)
}

// ElemsPerAxis returns the global element counts per axis.
func (d *Decomposition) ElemsPerAxis() []int {
	return append([]int(nil), d.elemsPerAxis...)
}

// GlobalCount returns the global entity count at a topological level.
func (d *Decomposition) GlobalCount(level int) int {
	if level < 0 || level > 3 {
		return 0
	}
	return d.globalCounts[level]
}

// LocalCount returns the number of entities this rank owns at a level.
func (d *Decomposition) LocalCount(level int) int {
	if level < 0 || level > 3 {
		return 0
	}
	return d.localCounts[level]
}

// DomainCount returns owned plus ghost entities at a level.
func (d *Decomposition) DomainCount(level int) int {
	if level < 0 || level > 3 {
		return 0
	}
	return d.domainCounts[level]
}

// elementLevel is the top topological level for this grid dimension.
func (d *Decomposition) elementLevel() int {
	if d.dim == 3 {
		return LevelVolume
	}
	return LevelFace
}

// LocalRange returns the global [start, end) index range of entities
// this rank owns at a level, ghosts excluded. Ownership ranges are
// contiguous at the vertex level and the element level; intermediate
// levels have no local numbering here.
func (d *Decomposition) LocalRange(level int) (start, end int, err error) {
	switch level {
	case LevelVertex:
		return d.nodeStart * d.crossNodes, d.nodeEnd * d.crossNodes, nil
	case d.elementLevel():
		return d.elemStart * d.crossElems, d.elemEnd * d.crossElems, nil
	default:
		return 0, 0, fmt.Errorf("no ownership range at topological level %d", level)
	}
}

// GlobalToLocal translates a global entity index to this rank's local
// numbering. Owned entities come first, ghosts after, both in global
// order. Translation is provided at the vertex level and the element
// level; intermediate levels have no local numbering here.
func (d *Decomposition) GlobalToLocal(level, global int) (int, error) {
	switch level {
	case LevelVertex:
		if global < 0 || global >= d.globalCounts[LevelVertex] {
			return 0, fmt.Errorf("global vertex %d out of range [0,%d)", global, d.globalCounts[LevelVertex])
		}
		plane := global / d.crossNodes
		within := global % d.crossNodes
		if plane >= d.nodeStart && plane < d.nodeEnd {
			return (plane-d.nodeStart)*d.crossNodes + within, nil
		}
		if d.ghostAbove == 1 && plane == d.ghostPlane {
			return d.localCounts[LevelVertex] + within, nil
		}
		return 0, fmt.Errorf("global vertex %d is not in rank %d's domain", global, d.Comm.Rank())
	case d.elementLevel():
		if global < 0 || global >= d.globalCounts[level] {
			return 0, fmt.Errorf("global element %d out of range [0,%d)", global, d.globalCounts[level])
		}
		plane := global / d.crossElems
		if plane < d.elemStart || plane >= d.elemEnd {
			return 0, fmt.Errorf("global element %d is not owned by rank %d", global, d.Comm.Rank())
		}
		return global - d.elemStart*d.crossElems, nil
	default:
		return 0, fmt.Errorf("no local numbering at topological level %d", level)
	}
}

// LocalToGlobal is the inverse of GlobalToLocal.
func (d *Decomposition) LocalToGlobal(level, local int) (int, error) {
	switch level {
	case LevelVertex:
		if local < 0 || local >= d.domainCounts[LevelVertex] {
			return 0, fmt.Errorf("local vertex %d out of range [0,%d)", local, d.domainCounts[LevelVertex])
		}
		if local < d.localCounts[LevelVertex] {
			return d.nodeStart*d.crossNodes + local, nil
		}
		within := local - d.localCounts[LevelVertex]
		return d.ghostPlane*d.crossNodes + within, nil
	case d.elementLevel():
		if local < 0 || local >= d.localCounts[level] {
			return 0, fmt.Errorf("local element %d out of range [0,%d)", local, d.localCounts[level])
		}
		return d.elemStart*d.crossElems + local, nil
	default:
		return 0, fmt.Errorf("no local numbering at topological level %d", level)
	}
}

// IsGhost reports whether a local vertex index refers to a ghost.
func (d *Decomposition) IsGhost(level, local int) bool {
	if level != LevelVertex {
		return false
	}
	return local >= d.localCounts[LevelVertex] && local < d.domainCounts[LevelVertex]
}

// String summarizes the decomposition for one rank.
func (d *Decomposition) String() string {
	return fmt.Sprintf("rank %d/%d: element planes [%d,%d), node planes [%d,%d), %d ghost planes",
		d.Comm.Rank(), d.Comm.Size(), d.elemStart, d.elemEnd, d.nodeStart, d.nodeEnd, d.ghostAbove)
}
