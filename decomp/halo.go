package decomp

import (
	"fmt"
)

// HaloLayout holds pick and place indices for ghost-plane exchange
// across all ranks of a slab decomposition. Each interface between
// neighboring slabs is a single node plane owned by the upper rank;
// the lower rank carries a ghost copy. Pick indices gather the owned
// interface vertices into a send buffer, place indices scatter the
// received values into the neighbor's ghost slots.
type HaloLayout struct {
	Size         int // Ranks in the decomposition
	NodePlanes   int // Global node planes along the decomposed axis
	CrossSection int // Vertices per plane
	Periodic     bool

	PlaneRanges [][2]int // [rank] → owned node plane range [start, end)
	LocalCounts []int    // [rank] → owned vertex count

	PickIndices  [][]PickBuffer  // [sourceRank][targetRank]
	PlaceIndices [][]PlaceBuffer // [targetRank][sourceRank]
}

// PickBuffer contains local vertex indices a rank gathers to send.
type PickBuffer struct {
	Indices    []int
	TargetRank int
}

// PlaceBuffer contains local ghost slots a rank scatters received
// values into.
type PlaceBuffer struct {
	Indices    []int
	SourceRank int
}

// NewHaloLayout builds the exchange layout for a slab-decomposed node
// grid. planeRanges gives each rank's owned node plane range along the
// decomposed axis; the ranges must be contiguous and tile [0, total).
// Periodic adds the wrap interface between the last and first rank.
func NewHaloLayout(planeRanges [][2]int, crossSection int, periodic bool) (*HaloLayout, error) {
	size := len(planeRanges)
	if size == 0 || crossSection <= 0 {
		return nil, fmt.Errorf("invalid dimensions: ranks=%d, crossSection=%d", size, crossSection)
	}
	total := 0
	for r, pr := range planeRanges {
		if pr[1] <= pr[0] {
			return nil, fmt.Errorf("rank %d owns no node planes (range [%d,%d))", r, pr[0], pr[1])
		}
		if pr[0] != total {
			return nil, fmt.Errorf("rank %d's plane range [%d,%d) does not tile (expected start %d)",
				r, pr[0], pr[1], total)
		}
		total = pr[1]
	}

	hl := &HaloLayout{
		Size:         size,
		NodePlanes:   total,
		CrossSection: crossSection,
		Periodic:     periodic,
	}

	hl.PlaneRanges = make([][2]int, size)
	copy(hl.PlaneRanges, planeRanges)
	hl.LocalCounts = make([]int, size)
	for r := 0; r < size; r++ {
		hl.LocalCounts[r] = (planeRanges[r][1] - planeRanges[r][0]) * crossSection
	}

	hl.initializeBuffers()
	hl.buildIndices()

	return hl, nil
}

// initializeBuffers creates empty pick and place buffer structures.
func (hl *HaloLayout) initializeBuffers() {
	hl.PickIndices = make([][]PickBuffer, hl.Size)
	hl.PlaceIndices = make([][]PlaceBuffer, hl.Size)
	for r := 0; r < hl.Size; r++ {
		hl.PickIndices[r] = make([]PickBuffer, hl.Size)
		hl.PlaceIndices[r] = make([]PlaceBuffer, hl.Size)
		for q := 0; q < hl.Size; q++ {
			hl.PickIndices[r][q] = PickBuffer{Indices: make([]int, 0), TargetRank: q}
			hl.PlaceIndices[r][q] = PlaceBuffer{Indices: make([]int, 0), SourceRank: q}
		}
	}
}

// buildIndices constructs pick and place indices for every slab
// interface. The owner of the interface plane is the rank above it;
// the rank below ghosts the full plane, so each exchange is one plane
// of crossSection vertices.
func (hl *HaloLayout) buildIndices() {
	for lower := 0; lower < hl.Size; lower++ {
		upper := lower + 1
		if upper == hl.Size {
			if !hl.Periodic || hl.Size == 1 {
				continue
			}
			upper = 0 // wrap interface
		}

		// The upper rank sends its bottommost owned plane, which is
		// always its local plane 0.
		pickBase := 0

		// The lower rank places into ghost slots after its owned range.
		placeBase := hl.LocalCounts[lower]

		for i := 0; i < hl.CrossSection; i++ {
			hl.PickIndices[upper][lower].Indices = append(
				hl.PickIndices[upper][lower].Indices, pickBase+i)
			hl.PlaceIndices[lower][upper].Indices = append(
				hl.PlaceIndices[lower][upper].Indices, placeBase+i)
		}
	}
}

// GetPickIndices returns pick indices for sending from source to target rank.
func (hl *HaloLayout) GetPickIndices(sourceRank, targetRank int) []int {
	if sourceRank < 0 || sourceRank >= hl.Size || targetRank < 0 || targetRank >= hl.Size {
		return nil
	}
	return hl.PickIndices[sourceRank][targetRank].Indices
}

// GetPlaceIndices returns place indices for target rank receiving from source.
func (hl *HaloLayout) GetPlaceIndices(targetRank, sourceRank int) []int {
	if targetRank < 0 || targetRank >= hl.Size || sourceRank < 0 || sourceRank >= hl.Size {
		return nil
	}
	return hl.PlaceIndices[targetRank][sourceRank].Indices
}

// Verify checks index validity and conservation properties.
func (hl *HaloLayout) Verify() error {
	// Verify 1: local validity - all pick indices are within the
	// owning rank's local range.
	for r := 0; r < hl.Size; r++ {
		for q := 0; q < hl.Size; q++ {
			for _, idx := range hl.PickIndices[r][q].Indices {
				if idx < 0 || idx >= hl.LocalCounts[r] {
					return fmt.Errorf("invalid pick index %d for rank %d (max %d)",
						idx, r, hl.LocalCounts[r]-1)
				}
			}
		}
	}

	// Verify 2: correspondence - pick and place arrays have the same length.
	for r := 0; r < hl.Size; r++ {
		for q := 0; q < hl.Size; q++ {
			pickLen := len(hl.PickIndices[r][q].Indices)
			placeLen := len(hl.PlaceIndices[q][r].Indices)
			if pickLen != placeLen {
				return fmt.Errorf("length mismatch: pick[%d][%d]=%d, place[%d][%d]=%d",
					r, q, pickLen, q, r, placeLen)
			}
		}
	}

	// Verify 3: conservation - total picks equals one plane per interface.
	interfaces := hl.Size - 1
	if hl.Periodic && hl.Size > 1 {
		interfaces++
	}
	totalPicks := 0
	for r := 0; r < hl.Size; r++ {
		for q := 0; q < hl.Size; q++ {
			totalPicks += len(hl.PickIndices[r][q].Indices)
		}
	}
	if totalPicks != interfaces*hl.CrossSection {
		return fmt.Errorf("conservation error: total picks %d != %d interfaces x %d vertices",
			totalPicks, interfaces, hl.CrossSection)
	}

	return nil
}

// HaloLayout derives the global exchange layout for this decomposition
// by replaying every rank's slab split.
func (d *Decomposition) HaloLayout() (*HaloLayout, error) {
	last := d.dim - 1
	size := d.Comm.Size()

	extra := 1
	if d.periodic[last] {
		extra = 0
	}
	nodesPerElem := (d.nodesPerAxis[last] - extra) / d.elemsPerAxis[last]

	ranges := make([][2]int, size)
	for r := 0; r < size; r++ {
		es, ee := SplitPlanes(d.elemsPerAxis[last], size, r)
		ns, ne := es*nodesPerElem, ee*nodesPerElem
		if r == size-1 && !d.periodic[last] {
			ne++
		}
		ranges[r] = [2]int{ns, ne}
	}
	return NewHaloLayout(ranges, d.crossNodes, d.periodic[last])
}
