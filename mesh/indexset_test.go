package mesh

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func testMesh(t *testing.T, res ...int) *CartesianMesh {
	t.Helper()
	if len(res) == 0 {
		res = []int{2, 2}
	}
	m, err := NewCartesian(Options{
		ElementType: "Q1",
		ElementRes:  res,
		MinCoord:    make([]float64, len(res)),
		MaxCoord:    ones(len(res)),
	})
	if err != nil {
		t.Fatalf("test mesh: %v", err)
	}
	return m
}

func TestIndexSet_FullIsAscendingAndComplete(t *testing.T) {
	m := testMesh(t, 3, 3)
	full, err := FullIndexSet(m.Mesh, TVertex)
	if err != nil {
		t.Fatalf("FullIndexSet: %v", err)
	}

	idx := full.Indices()
	if len(idx) != m.Topology().DomainCount(TVertex) {
		t.Fatalf("full set has %d indices, want %d", len(idx), m.Topology().DomainCount(TVertex))
	}
	for i := 1; i < len(idx); i++ {
		if idx[i] <= idx[i-1] {
			t.Fatalf("indices not strictly ascending at %d: %d then %d", i, idx[i-1], idx[i])
		}
	}
}

func TestIndexSet_IterationOrderIndependentOfAssembly(t *testing.T) {
	m := testMesh(t)
	forward, err := NewIndexSet(m.Mesh, TVertex)
	require.NoError(t, err)
	backward, err := NewIndexSet(m.Mesh, TVertex)
	require.NoError(t, err)

	members := []int{7, 2, 5, 0}
	for _, i := range members {
		require.NoError(t, forward.Add(i))
	}
	for i := len(members) - 1; i >= 0; i-- {
		require.NoError(t, backward.Add(members[i]))
	}

	require.Equal(t, []int{0, 2, 5, 7}, forward.Indices())
	require.Equal(t, forward.Indices(), backward.Indices())
}

func TestIndexSet_AddDeduplicatesAndBoundsChecks(t *testing.T) {
	m := testMesh(t)
	s, err := NewIndexSet(m.Mesh, TVertex)
	require.NoError(t, err)

	require.NoError(t, s.Add(3))
	require.NoError(t, s.Add(3))
	require.Equal(t, 1, s.Count())

	require.Error(t, s.Add(-1))
	require.Error(t, s.Add(9))
}

func TestIndexSet_Algebra(t *testing.T) {
	m := testMesh(t)
	a, err := NewIndexSet(m.Mesh, TVertex)
	require.NoError(t, err)
	b, err := NewIndexSet(m.Mesh, TVertex)
	require.NoError(t, err)

	for _, i := range []int{0, 1, 2, 5} {
		require.NoError(t, a.Add(i))
	}
	for _, i := range []int{2, 5, 7} {
		require.NoError(t, b.Add(i))
	}

	union, err := a.Union(b)
	require.NoError(t, err)
	intersect, err := a.Intersect(b)
	require.NoError(t, err)
	diff, err := a.Difference(b)
	require.NoError(t, err)

	for i := 0; i < a.Size(); i++ {
		if got, want := union.Contains(i), a.Contains(i) || b.Contains(i); got != want {
			t.Errorf("union.Contains(%d) = %v, want %v", i, got, want)
		}
		if got, want := intersect.Contains(i), a.Contains(i) && b.Contains(i); got != want {
			t.Errorf("intersect.Contains(%d) = %v, want %v", i, got, want)
		}
		if got, want := diff.Contains(i), a.Contains(i) && !b.Contains(i); got != want {
			t.Errorf("diff.Contains(%d) = %v, want %v", i, got, want)
		}
	}

	require.Equal(t, []int{0, 1, 2, 5, 7}, union.Indices())
	require.Equal(t, []int{2, 5}, intersect.Indices())
	require.Equal(t, []int{0, 1}, diff.Indices())
}

func TestIndexSet_CrossMeshCombinationFails(t *testing.T) {
	m1 := testMesh(t)
	m2 := testMesh(t)

	a, err := FullIndexSet(m1.Mesh, TVertex)
	require.NoError(t, err)
	b, err := FullIndexSet(m2.Mesh, TVertex)
	require.NoError(t, err)

	var ise *IncompatibleSetError
	for _, op := range []func(*IndexSet) (*IndexSet, error){a.Union, a.Intersect, a.Difference} {
		_, err := op(b)
		if err == nil {
			t.Fatal("expected cross-mesh combination to fail")
		}
		if !errors.As(err, &ise) {
			t.Errorf("error %v is not an IncompatibleSetError", err)
		}
	}
}

func TestIndexSet_CrossLevelCombinationFails(t *testing.T) {
	m := testMesh(t)
	verts, err := FullIndexSet(m.Mesh, TVertex)
	require.NoError(t, err)
	faces, err := FullIndexSet(m.Mesh, TFace)
	require.NoError(t, err)

	_, err = verts.Union(faces)
	var ise *IncompatibleSetError
	require.Error(t, err)
	require.True(t, errors.As(err, &ise))
}

func TestIndexSet_LevelValidation(t *testing.T) {
	m := testMesh(t)
	if _, err := NewIndexSet(m.Mesh, TopologicalLevel(4)); err == nil {
		t.Error("expected level 4 to be rejected")
	}
	if _, err := NewIndexSet(m.Mesh, TopologicalLevel(-1)); err == nil {
		t.Error("expected level -1 to be rejected")
	}
	if _, err := NewIndexSet(nil, TVertex); err == nil {
		t.Error("expected nil mesh to be rejected")
	}
}

func TestIndexSet_FaceLevelCounts(t *testing.T) {
	m := testMesh(t, 4, 3)
	faces, err := FullIndexSet(m.Mesh, TFace)
	require.NoError(t, err)
	require.Equal(t, 12, faces.Count())
}

func TestIndexSet_String(t *testing.T) {
	m := testMesh(t)
	s, err := NewIndexSet(m.Mesh, TVertex)
	require.NoError(t, err)
	require.NoError(t, s.Add(2))
	require.NoError(t, s.Add(0))
	require.Equal(t, "IndexSet[0, 2]", s.String())
}
