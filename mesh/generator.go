package mesh

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/geodynamics/femesh/config"
	"github.com/geodynamics/femesh/decomp"
)

// Generator produces vertex coordinates and topology for a mesh,
// either independently (Cartesian-regular) or by templating another
// mesh's cells. Generate is collective: every rank of the target
// mesh's communicator must call it with consistent state, and any
// failure leaves the process group unrecoverable.
type Generator interface {
	// Dim returns the generated mesh dimensionality.
	Dim() int

	// Generate populates the target mesh's topology table and vertex
	// buffer.
	Generate(m *Mesh) error

	// AddToDictionary describes the generator into a component
	// dictionary under the given component name.
	AddToDictionary(name string, d config.Dictionary)
}

// CartesianGenerator builds meshes that are logically and
// geometrically Cartesian: a tensor-product grid of nodes spanning
// [MinCoord, MaxCoord] with ElementRes elements per axis. The node
// grid refinement per element is set by the element order: 1 for
// linear (Q1), 2 for quadratic (Q2). Along a periodic axis the
// closing node plane is dropped and indexing wraps.
type CartesianGenerator struct {
	ElementRes []int
	MinCoord   []float64
	MaxCoord   []float64
	Periodic   []bool

	// Comm is the process group the mesh is decomposed over. Nil
	// selects the single-rank SelfComm.
	Comm decomp.Communicator

	order int // node planes per element per axis
	dim   int

	dec *decomp.Decomposition // built during Generate
}

// NewLinearCartesianGenerator validates and builds a Q1 (linear)
// Cartesian generator: resolution+1 node planes per non-periodic axis.
func NewLinearCartesianGenerator(elementRes []int, minCoord, maxCoord []float64, periodic []bool) (*CartesianGenerator, error) {
	return newCartesianGenerator(1, elementRes, minCoord, maxCoord, periodic)
}

// NewQuadraticCartesianGenerator validates and builds a Q2 (quadratic)
// Cartesian generator: 2*resolution+1 node planes per non-periodic
// axis, the extra planes carrying midside nodes.
func NewQuadraticCartesianGenerator(elementRes []int, minCoord, maxCoord []float64, periodic []bool) (*CartesianGenerator, error) {
	return newCartesianGenerator(2, elementRes, minCoord, maxCoord, periodic)
}

func newCartesianGenerator(order int, elementRes []int, minCoord, maxCoord []float64, periodic []bool) (*CartesianGenerator, error) {
	if len(elementRes) != 2 && len(elementRes) != 3 {
		return nil, configErrf("elementRes", "length must be 2 or 3 (for a 2d or 3d mesh), got %d", len(elementRes))
	}
	for i, res := range elementRes {
		if res < 1 {
			return nil, configErrf("elementRes", "entries must be positive integers, got %d at axis %d", res, i)
		}
	}
	dim := len(elementRes)
	if len(minCoord) != dim {
		return nil, configErrf("minCoord", "length (%d) must match elementRes length (%d)", len(minCoord), dim)
	}
	if len(maxCoord) != dim {
		return nil, configErrf("maxCoord", "length (%d) must match elementRes length (%d)", len(maxCoord), dim)
	}
	if periodic == nil {
		periodic = make([]bool, dim)
	}
	if len(periodic) != dim {
		return nil, configErrf("periodic", "length (%d) must match elementRes length (%d)", len(periodic), dim)
	}
	for i := 0; i < dim; i++ {
		if minCoord[i] >= maxCoord[i] {
			return nil, configErrf("minCoord", "minCoord[%d] (%g) must be less than maxCoord[%d] (%g)",
				i, minCoord[i], i, maxCoord[i])
		}
	}

	return &CartesianGenerator{
		ElementRes: append([]int(nil), elementRes...),
		MinCoord:   append([]float64(nil), minCoord...),
		MaxCoord:   append([]float64(nil), maxCoord...),
		Periodic:   append([]bool(nil), periodic...),
		order:      order,
		dim:        dim,
	}, nil
}

// Dim returns the mesh dimensionality.
func (g *CartesianGenerator) Dim() int { return g.dim }

// Order returns the node planes per element per axis (1 linear, 2
// quadratic).
func (g *CartesianGenerator) Order() int { return g.order }

// NodeCounts returns the global node plane count per axis.
func (g *CartesianGenerator) NodeCounts() []int {
	counts := make([]int, g.dim)
	for a := 0; a < g.dim; a++ {
		counts[a] = g.order * g.ElementRes[a]
		if !g.Periodic[a] {
			counts[a]++
		}
	}
	return counts
}

// Decomposition returns the domain decomposition built by the last
// Generate call, or nil before generation.
func (g *CartesianGenerator) Decomposition() *decomp.Decomposition { return g.dec }

// Generate builds the decomposition, fills the target's topology table
// and writes the domain (owned plus ghost) vertex coordinates into the
// target's buffer. The existing buffer is reused in place when its
// shape already matches, so external views stay valid across
// regeneration.
func (g *CartesianGenerator) Generate(m *Mesh) error {
	comm := g.Comm
	if comm == nil {
		comm = decomp.SelfComm{}
	}

	nodes := g.NodeCounts()
	d, err := decomp.NewDecomposition(nodes, g.ElementRes, g.Periodic, comm)
	if err != nil {
		return err
	}
	g.dec = d

	m.topo = Topology{}
	m.topo.setFromDecomposition(d)
	m.dec = d

	n := d.DomainCount(decomp.LevelVertex)
	if m.vertices == nil {
		m.vertices = mat.NewDense(n, g.dim, nil)
	} else if r, c := m.vertices.Dims(); r != n || c != g.dim {
		m.vertices = mat.NewDense(n, g.dim, nil)
	}

	coords := g.axisCoordinates()
	idx := make([]int, g.dim)
	for local := 0; local < n; local++ {
		global, err := d.LocalToGlobal(decomp.LevelVertex, local)
		if err != nil {
			return err
		}
		g.nodeIndices(global, nodes, idx)
		for a := 0; a < g.dim; a++ {
			m.vertices.Set(local, a, coords[a][idx[a]])
		}
	}
	return nil
}

// nodeIndices decomposes a row-major global node index into per-axis
// node indices, first axis fastest.
func (g *CartesianGenerator) nodeIndices(global int, nodes, out []int) {
	rem := global
	for a := 0; a < g.dim; a++ {
		out[a] = rem % nodes[a]
		rem /= nodes[a]
	}
}

// axisCoordinates tabulates the node positions along each axis.
// floats.Span computes interior points as min + i*step, which can
// leave the closing plane off MaxCoord by an ulp, so the last entry is
// overwritten with the exact bound. The wall special sets rely on
// boundary nodes sitting exactly on MinCoord/MaxCoord. Along a
// periodic axis the closing node coincides with the start and is
// dropped.
func (g *CartesianGenerator) axisCoordinates() [][]float64 {
	coords := make([][]float64, g.dim)
	for a := 0; a < g.dim; a++ {
		n := g.order * g.ElementRes[a]
		span := floats.Span(make([]float64, n+1), g.MinCoord[a], g.MaxCoord[a])
		if g.Periodic[a] {
			span = span[:n]
		} else {
			span[n] = g.MaxCoord[a]
		}
		coords[a] = span
	}
	return coords
}

// CellBounds returns the coordinate bounds of a global cell, for
// templated generators stenciling nodes onto this grid's cells.
func (g *CartesianGenerator) CellBounds(cell int) (min, max []float64, err error) {
	total := 1
	for _, res := range g.ElementRes {
		total *= res
	}
	if cell < 0 || cell >= total {
		return nil, nil, configErrf("cell", "index %d out of range [0,%d)", cell, total)
	}

	min = make([]float64, g.dim)
	max = make([]float64, g.dim)
	rem := cell
	for a := 0; a < g.dim; a++ {
		i := rem % g.ElementRes[a]
		rem /= g.ElementRes[a]
		h := (g.MaxCoord[a] - g.MinCoord[a]) / float64(g.ElementRes[a])
		min[a] = g.MinCoord[a] + float64(i)*h
		max[a] = min[a] + h
	}
	return min, max, nil
}

// GlobalToLocalVertex translates a global vertex index into the local
// numbering established by the last Generate call.
func (g *CartesianGenerator) GlobalToLocalVertex(global int) (int, error) {
	if g.dec == nil {
		return 0, configErrf("generator", "not generated yet")
	}
	return g.dec.GlobalToLocal(decomp.LevelVertex, global)
}

// LocalToGlobalVertex is the inverse of GlobalToLocalVertex.
func (g *CartesianGenerator) LocalToGlobalVertex(local int) (int, error) {
	if g.dec == nil {
		return 0, configErrf("generator", "not generated yet")
	}
	return g.dec.LocalToGlobal(decomp.LevelVertex, local)
}

// AddToDictionary emits the generator's parameters as a flat component
// description: size, coordinate bounds, dimensionality and per-axis
// periodicity.
func (g *CartesianGenerator) AddToDictionary(name string, d config.Dictionary) {
	p := config.Params{
		"size":       append([]int(nil), g.ElementRes...),
		"minCoord":   append([]float64(nil), g.MinCoord...),
		"maxCoord":   append([]float64(nil), g.MaxCoord...),
		"dim":        g.dim,
		"periodic_x": g.Periodic[0],
		"periodic_y": g.Periodic[1],
	}
	if g.dim == 3 {
		p["periodic_z"] = g.Periodic[2]
	}
	d.Add(name, p)
}
