package mesh

import (
	"gonum.org/v1/gonum/mat"

	"github.com/geodynamics/femesh/config"
	"github.com/geodynamics/femesh/decomp"
)

// TemplatedGenerator builds a mesh by stenciling a fixed pattern of
// nodes onto each cell of an existing geometry mesh. The reference to
// the geometry mesh is non-owning (the geometry mesh may in turn
// reference this generator), so it is held as a plain back-pointer
// with an explicit liveness check at generation time rather than an
// owning handle.
type TemplatedGenerator struct {
	geometry *Mesh
	dim      int

	// stencil holds the per-cell node positions in unit-cell
	// coordinates, one offset tuple per generated node.
	stencil [][]float64
	variant string
}

// NewConstantGenerator builds a DQ0 generator: one node per cell of
// the geometry mesh, at the cell centroid.
func NewConstantGenerator(geometryMesh *Mesh) (*TemplatedGenerator, error) {
	return newTemplatedGenerator(geometryMesh, "constant", centroidStencil)
}

// NewInnerGenerator builds a DPC1 generator: dim+1 inner nodes per
// cell, the discontinuous linear-inner simplex stencil.
func NewInnerGenerator(geometryMesh *Mesh) (*TemplatedGenerator, error) {
	return newTemplatedGenerator(geometryMesh, "inner", innerStencil)
}

// NewDQ1Generator builds a DQ1 generator: 2^dim duplicated corner
// nodes per cell, inset to the quarter points.
func NewDQ1Generator(geometryMesh *Mesh) (*TemplatedGenerator, error) {
	return newTemplatedGenerator(geometryMesh, "dQ1", cornerStencil)
}

func newTemplatedGenerator(geometryMesh *Mesh, variant string, stencil func(dim int) [][]float64) (*TemplatedGenerator, error) {
	if geometryMesh == nil {
		return nil, configErrf("geometryMesh", "a templated generator requires a geometry mesh")
	}
	dim := geometryMesh.Dim()
	return &TemplatedGenerator{
		geometry: geometryMesh,
		dim:      dim,
		stencil:  stencil(dim),
		variant:  variant,
	}, nil
}

// centroidStencil places a single node at the cell centre.
func centroidStencil(dim int) [][]float64 {
	c := make([]float64, dim)
	for a := range c {
		c[a] = 0.5
	}
	return [][]float64{c}
}

// innerStencil places dim+1 nodes on an inset simplex.
func innerStencil(dim int) [][]float64 {
	if dim == 2 {
		return [][]float64{
			{0.25, 0.25},
			{0.75, 0.25},
			{0.5, 0.75},
		}
	}
	return [][]float64{
		{0.25, 0.25, 0.25},
		{0.75, 0.25, 0.25},
		{0.5, 0.75, 0.25},
		{0.5, 0.5, 0.75},
	}
}

// cornerStencil places 2^dim nodes at the inset quarter-point corners,
// first axis varying fastest.
func cornerStencil(dim int) [][]float64 {
	n := 1 << dim
	out := make([][]float64, n)
	for s := 0; s < n; s++ {
		off := make([]float64, dim)
		for a := 0; a < dim; a++ {
			if s>>a&1 == 1 {
				off[a] = 0.75
			} else {
				off[a] = 0.25
			}
		}
		out[s] = off
	}
	return out
}

// GeometryMesh returns the mesh whose cells are stenciled, or nil if
// the reference has been released.
func (g *TemplatedGenerator) GeometryMesh() *Mesh { return g.geometry }

// ReleaseGeometry severs the non-owning geometry reference. Subsequent
// generation fails until a live geometry mesh is observed again.
func (g *TemplatedGenerator) ReleaseGeometry() { g.geometry = nil }

// Dim returns the dimensionality inherited from the geometry mesh.
func (g *TemplatedGenerator) Dim() int { return g.dim }

// NodesPerCell returns the stencil size.
func (g *TemplatedGenerator) NodesPerCell() int { return len(g.stencil) }

// Generate stencils the geometry mesh's cells into the target's
// vertex buffer. Node numbering is cell-major: node s of global cell c
// has global index c*NodesPerCell()+s, and likewise locally, so
// global/local translation follows the cell decomposition directly.
// The generated nodes are discontinuous and carry no ghost halo.
func (g *TemplatedGenerator) Generate(m *Mesh) error {
	geo := g.geometry
	if geo == nil {
		return configErrf("geometryMesh", "geometry mesh is no longer available")
	}
	if geo.Dim() != g.dim {
		return &DimensionMismatchError{Want: g.dim, Got: geo.Dim()}
	}
	cg, ok := geo.Generator().(*CartesianGenerator)
	if !ok {
		return configErrf("geometryMesh", "geometry mesh's generator does not expose cell geometry")
	}
	geoDec := geo.Decomposition()
	if geoDec == nil {
		return configErrf("geometryMesh", "geometry mesh has not been generated")
	}

	elemLevel := decomp.LevelFace
	if g.dim == 3 {
		elemLevel = decomp.LevelVolume
	}
	cellsLocal := geoDec.LocalCount(elemLevel)
	cellsGlobal := geoDec.GlobalCount(elemLevel)
	npc := len(g.stencil)

	// Cell topology is shared with the geometry mesh; only the vertex
	// level reflects the stencil.
	m.topo = Topology{}
	m.topo.setFromDecomposition(geoDec)
	m.topo.setLevel(TVertex, cellsLocal*npc, cellsGlobal*npc, cellsLocal*npc)
	m.dec = geoDec

	n := cellsLocal * npc
	if m.vertices == nil {
		m.vertices = mat.NewDense(n, g.dim, nil)
	} else if r, c := m.vertices.Dims(); r != n || c != g.dim {
		m.vertices = mat.NewDense(n, g.dim, nil)
	}

	for c := 0; c < cellsLocal; c++ {
		cellGlobal, err := geoDec.LocalToGlobal(elemLevel, c)
		if err != nil {
			return err
		}
		cellMin, cellMax, err := cg.CellBounds(cellGlobal)
		if err != nil {
			return err
		}
		for s, off := range g.stencil {
			row := c*npc + s
			for a := 0; a < g.dim; a++ {
				m.vertices.Set(row, a, cellMin[a]+off[a]*(cellMax[a]-cellMin[a]))
			}
		}
	}
	return nil
}

// GlobalToLocalVertex translates a global stenciled node index into
// local numbering via the geometry mesh's cell decomposition.
func (g *TemplatedGenerator) GlobalToLocalVertex(global int) (int, error) {
	geo := g.geometry
	if geo == nil || geo.Decomposition() == nil {
		return 0, configErrf("geometryMesh", "geometry mesh is no longer available")
	}
	npc := len(g.stencil)
	elemLevel := decomp.LevelFace
	if g.dim == 3 {
		elemLevel = decomp.LevelVolume
	}
	localCell, err := geo.Decomposition().GlobalToLocal(elemLevel, global/npc)
	if err != nil {
		return 0, err
	}
	return localCell*npc + global%npc, nil
}

// LocalToGlobalVertex is the inverse of GlobalToLocalVertex.
func (g *TemplatedGenerator) LocalToGlobalVertex(local int) (int, error) {
	geo := g.geometry
	if geo == nil || geo.Decomposition() == nil {
		return 0, configErrf("geometryMesh", "geometry mesh is no longer available")
	}
	npc := len(g.stencil)
	elemLevel := decomp.LevelFace
	if g.dim == 3 {
		elemLevel = decomp.LevelVolume
	}
	globalCell, err := geo.Decomposition().LocalToGlobal(elemLevel, local/npc)
	if err != nil {
		return 0, err
	}
	return globalCell*npc + local%npc, nil
}

// AddToDictionary links the generator to its geometry mesh component.
func (g *TemplatedGenerator) AddToDictionary(name string, d config.Dictionary) {
	p := config.Params{
		"dim":     g.dim,
		"variant": g.variant,
	}
	if g.geometry != nil {
		p["elementMesh"] = g.geometry.Name()
	}
	d.Add(name, p)
}
