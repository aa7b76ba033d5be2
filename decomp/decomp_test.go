package decomp

import (
	"testing"
)

func TestDecomposition_GlobalCounts2D(t *testing.T) {
	// 2x2 element grid, linear nodes (3x3), non-periodic
	d, err := NewDecomposition([]int{3, 3}, []int{2, 2}, []bool{false, false}, SelfComm{})
	if err != nil {
		t.Fatalf("Failed to create decomposition: %v", err)
	}

	if got := d.GlobalCount(LevelVertex); got != 9 {
		t.Errorf("global vertices = %d, want 9", got)
	}
	// 3x3 grid: 6 horizontal + 6 vertical edges
	if got := d.GlobalCount(LevelEdge); got != 12 {
		t.Errorf("global edges = %d, want 12", got)
	}
	if got := d.GlobalCount(LevelFace); got != 4 {
		t.Errorf("global faces = %d, want 4", got)
	}
	if got := d.GlobalCount(LevelVolume); got != 0 {
		t.Errorf("global volumes = %d, want 0 in 2D", got)
	}
}

func TestDecomposition_GlobalCounts3D(t *testing.T) {
	// Unit cube, 2x2x2 elements, linear nodes
	d, err := NewDecomposition([]int{3, 3, 3}, []int{2, 2, 2}, []bool{false, false, false}, SelfComm{})
	if err != nil {
		t.Fatalf("Failed to create decomposition: %v", err)
	}

	if got := d.GlobalCount(LevelVertex); got != 27 {
		t.Errorf("global vertices = %d, want 27", got)
	}
	// 2*3*3 edges per orientation, three orientations
	if got := d.GlobalCount(LevelEdge); got != 54 {
		t.Errorf("global edges = %d, want 54", got)
	}
	// 2*2*3 faces per orientation, three orientations
	if got := d.GlobalCount(LevelFace); got != 36 {
		t.Errorf("global faces = %d, want 36", got)
	}
	if got := d.GlobalCount(LevelVolume); got != 8 {
		t.Errorf("global volumes = %d, want 8", got)
	}
}

func TestDecomposition_PeriodicCounts(t *testing.T) {
	// Periodic in I: nodes wrap, 2x3 node grid for 2x2 elements
	d, err := NewDecomposition([]int{2, 3}, []int{2, 2}, []bool{true, false}, SelfComm{})
	if err != nil {
		t.Fatalf("Failed to create decomposition: %v", err)
	}

	if got := d.GlobalCount(LevelVertex); got != 6 {
		t.Errorf("global vertices = %d, want 6", got)
	}
	// Horizontal: 2 elems x 3 vertex rows = 6; vertical: 2 elems x 2
	// wrapped vertex columns = 4
	if got := d.GlobalCount(LevelEdge); got != 10 {
		t.Errorf("global edges = %d, want 10", got)
	}
	if got := d.GlobalCount(LevelFace); got != 4 {
		t.Errorf("global faces = %d, want 4", got)
	}
}

func TestDecomposition_SingleRankOwnsEverything(t *testing.T) {
	d, err := NewDecomposition([]int{5, 5}, []int{4, 4}, []bool{false, false}, SelfComm{})
	if err != nil {
		t.Fatalf("Failed to create decomposition: %v", err)
	}

	for level := 0; level <= 3; level++ {
		if d.LocalCount(level) != d.GlobalCount(level) {
			t.Errorf("level %d: local %d != global %d on a single rank",
				level, d.LocalCount(level), d.GlobalCount(level))
		}
	}
	if d.DomainCount(LevelVertex) != d.LocalCount(LevelVertex) {
		t.Errorf("single rank should carry no ghosts: domain %d, local %d",
			d.DomainCount(LevelVertex), d.LocalCount(LevelVertex))
	}
}

func TestDecomposition_IndexTranslationRoundTrip(t *testing.T) {
	d, err := NewDecomposition([]int{4, 3}, []int{3, 2}, []bool{false, false}, SelfComm{})
	if err != nil {
		t.Fatalf("Failed to create decomposition: %v", err)
	}

	for g := 0; g < d.GlobalCount(LevelVertex); g++ {
		l, err := d.GlobalToLocal(LevelVertex, g)
		if err != nil {
			t.Fatalf("GlobalToLocal(%d): %v", g, err)
		}
		back, err := d.LocalToGlobal(LevelVertex, l)
		if err != nil {
			t.Fatalf("LocalToGlobal(%d): %v", l, err)
		}
		if back != g {
			t.Errorf("round trip %d -> %d -> %d", g, l, back)
		}
	}

	for g := 0; g < d.GlobalCount(LevelFace); g++ {
		l, err := d.GlobalToLocal(LevelFace, g)
		if err != nil {
			t.Fatalf("GlobalToLocal(face %d): %v", g, err)
		}
		back, err := d.LocalToGlobal(LevelFace, l)
		if err != nil {
			t.Fatalf("LocalToGlobal(face %d): %v", l, err)
		}
		if back != g {
			t.Errorf("element round trip %d -> %d -> %d", g, l, back)
		}
	}
}

func TestDecomposition_TranslationErrors(t *testing.T) {
	d, err := NewDecomposition([]int{3, 3}, []int{2, 2}, []bool{false, false}, SelfComm{})
	if err != nil {
		t.Fatalf("Failed to create decomposition: %v", err)
	}

	if _, err := d.GlobalToLocal(LevelVertex, 9); err == nil {
		t.Error("expected error for out-of-range global vertex")
	}
	if _, err := d.GlobalToLocal(LevelVertex, -1); err == nil {
		t.Error("expected error for negative global vertex")
	}
	if _, err := d.GlobalToLocal(LevelEdge, 0); err == nil {
		t.Error("expected error for edge-level translation")
	}
	if _, err := d.LocalToGlobal(LevelVertex, 9); err == nil {
		t.Error("expected error for out-of-range local vertex")
	}
}

func TestDecomposition_InvalidConfiguration(t *testing.T) {
	cases := []struct {
		name     string
		nodes    []int
		elems    []int
		periodic []bool
	}{
		{"one axis", []int{3}, []int{2}, []bool{false}},
		{"four axes", []int{3, 3, 3, 3}, []int{2, 2, 2, 2}, []bool{false, false, false, false}},
		{"length mismatch", []int{3, 3}, []int{2, 2, 2}, []bool{false, false}},
		{"zero elements", []int{3, 1}, []int{2, 0}, []bool{false, false}},
		{"non-integer refinement", []int{3, 4}, []int{2, 2}, []bool{false, false}},
	}
	for _, tc := range cases {
		if _, err := NewDecomposition(tc.nodes, tc.elems, tc.periodic, SelfComm{}); err == nil {
			t.Errorf("%s: expected construction to fail", tc.name)
		}
	}
}

// groupComm simulates one rank of a multi-rank group for sequential
// in-process tests. Reductions return the result a consistent group
// would compute, supplied up front by the test.
type groupComm struct {
	rank, size int
	reduced    []int
}

func (c groupComm) Size() int { return c.size }
func (c groupComm) Rank() int { return c.rank }

func (c groupComm) AllreduceInt(op Op, vals []int) []int {
	out := make([]int, len(vals))
	copy(out, c.reduced)
	return out
}

func (c groupComm) Barrier() {}

func TestDecomposition_TwoRankOwnershipAndGhosts(t *testing.T) {
	// 2x2 elements, 3x3 Q1 nodes, one element plane per rank. The
	// interface node plane 1 is owned by rank 1; rank 0 ghosts it.
	nodes, elems := []int{3, 3}, []int{2, 2}
	comm := func(r int) groupComm { return groupComm{rank: r, size: 2, reduced: []int{2}} }

	for rank := 0; rank < 2; rank++ {
		d, err := NewDecomposition(nodes, elems, []bool{false, false}, comm(rank))
		if err != nil {
			t.Fatalf("rank %d: %v", rank, err)
		}

		// Every vertex of every owned element must resolve to a local
		// index, owned or ghost.
		es, ee, err := d.LocalRange(LevelFace)
		if err != nil {
			t.Fatalf("rank %d: LocalRange(face): %v", rank, err)
		}
		for e := es; e < ee; e++ {
			ex, ey := e%2, e/2
			for dy := 0; dy <= 1; dy++ {
				for dx := 0; dx <= 1; dx++ {
					g := (ex + dx) + (ey+dy)*3
					if _, err := d.GlobalToLocal(LevelVertex, g); err != nil {
						t.Errorf("rank %d: element %d vertex %d not in domain: %v", rank, e, g, err)
					}
				}
			}
		}
	}

	d0, err := NewDecomposition(nodes, elems, []bool{false, false}, comm(0))
	if err != nil {
		t.Fatalf("rank 0: %v", err)
	}
	if got := d0.LocalCount(LevelVertex); got != 3 {
		t.Errorf("rank 0 local vertices = %d, want 3", got)
	}
	if got := d0.DomainCount(LevelVertex); got != 6 {
		t.Errorf("rank 0 domain vertices = %d, want 6", got)
	}
	for g := 3; g <= 5; g++ {
		l, err := d0.GlobalToLocal(LevelVertex, g)
		if err != nil {
			t.Fatalf("rank 0: interface vertex %d: %v", g, err)
		}
		if !d0.IsGhost(LevelVertex, l) {
			t.Errorf("rank 0: interface vertex %d (local %d) should be a ghost", g, l)
		}
		if back, _ := d0.LocalToGlobal(LevelVertex, l); back != g {
			t.Errorf("rank 0: ghost round trip %d -> %d -> %d", g, l, back)
		}
	}

	d1, err := NewDecomposition(nodes, elems, []bool{false, false}, comm(1))
	if err != nil {
		t.Fatalf("rank 1: %v", err)
	}
	if got := d1.LocalCount(LevelVertex); got != 6 {
		t.Errorf("rank 1 local vertices = %d, want 6", got)
	}
	// Last rank carries no ghosts; plane 0 is outside its domain.
	if got := d1.DomainCount(LevelVertex); got != 6 {
		t.Errorf("rank 1 domain vertices = %d, want 6", got)
	}
	if _, err := d1.GlobalToLocal(LevelVertex, 0); err == nil {
		t.Error("rank 1 should not resolve vertex 0")
	}

	// The owned vertex ranges tile the global grid.
	if _, e0, _ := d0.LocalRange(LevelVertex); e0 != 3 {
		t.Errorf("rank 0 vertex range end = %d, want 3", e0)
	}
	if s1, e1, _ := d1.LocalRange(LevelVertex); s1 != 3 || e1 != 9 {
		t.Errorf("rank 1 vertex range = [%d,%d), want [3,9)", s1, e1)
	}
}

func TestDecomposition_PeriodicWrapGhost(t *testing.T) {
	// Periodic last axis over two ranks: the last rank's top elements
	// wrap onto node plane 0, which it ghosts from rank 0.
	d, err := NewDecomposition([]int{3, 2}, []int{2, 2}, []bool{false, true},
		groupComm{rank: 1, size: 2, reduced: []int{2}})
	if err != nil {
		t.Fatalf("rank 1: %v", err)
	}

	if got := d.DomainCount(LevelVertex); got != 6 {
		t.Fatalf("domain vertices = %d, want 3 owned + 3 ghost", got)
	}
	for g := 0; g <= 2; g++ {
		l, err := d.GlobalToLocal(LevelVertex, g)
		if err != nil {
			t.Fatalf("wrap vertex %d: %v", g, err)
		}
		if !d.IsGhost(LevelVertex, l) {
			t.Errorf("wrap vertex %d (local %d) should be a ghost", g, l)
		}
	}
}

func TestDecomposition_LocalRange(t *testing.T) {
	d, err := NewDecomposition([]int{4, 3}, []int{3, 2}, []bool{false, false}, SelfComm{})
	if err != nil {
		t.Fatalf("Failed to create decomposition: %v", err)
	}

	if s, e, err := d.LocalRange(LevelVertex); err != nil || s != 0 || e != 12 {
		t.Errorf("vertex range = [%d,%d) (%v), want [0,12)", s, e, err)
	}
	if s, e, err := d.LocalRange(LevelFace); err != nil || s != 0 || e != 6 {
		t.Errorf("element range = [%d,%d) (%v), want [0,6)", s, e, err)
	}
	if _, _, err := d.LocalRange(LevelEdge); err == nil {
		t.Error("expected error for edge-level range")
	}
}

func TestSplitPlanes(t *testing.T) {
	// 10 planes over 3 ranks: 4, 3, 3
	wants := [][2]int{{0, 4}, {4, 7}, {7, 10}}
	for r, want := range wants {
		s, e := SplitPlanes(10, 3, r)
		if s != want[0] || e != want[1] {
			t.Errorf("rank %d: got [%d,%d), want [%d,%d)", r, s, e, want[0], want[1])
		}
	}
}
