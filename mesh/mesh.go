// Package mesh provides structured and templated finite-element mesh
// generation over a domain decomposition: element-type parsing, vertex
// and topology construction, dual-mesh coupling, index sets over the
// distributed entity space, and geometry-derived special sets.
package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/geodynamics/femesh/config"
	"github.com/geodynamics/femesh/decomp"
)

// Mesh provides the geometry and topology of a finite-element
// discretised domain. The mesh is implicitly parallel: vertex storage
// holds the local slab of a globally distributed array, and counts are
// available at local, global and domain (local+ghost) scope.
type Mesh struct {
	name        string
	elementType ElementType
	generator   Generator
	// selfGen marks a mesh that doubles as its own generator; the
	// generator field is then a non-owning back-reference.
	selfGen bool

	topo     Topology
	vertices *mat.Dense
	dec      *decomp.Decomposition

	special   *SpecialSets
	secondary *Mesh
}

// New constructs a mesh of the given element type and generates it.
// The element type must be one of the supported enumeration and a
// generator must be supplied: a mesh with no generator is invalid and
// cannot be constructed.
func New(elementType ElementType, generator Generator) (*Mesh, error) {
	if _, ok := elementTypeNames[elementType]; !ok {
		return nil, &UnsupportedElementTypeError{Type: fmt.Sprintf("%d", int(elementType))}
	}
	if generator == nil {
		return nil, &MissingGeneratorError{}
	}

	m := &Mesh{
		name:        "femesh",
		elementType: elementType,
		generator:   generator,
	}
	if err := generator.Generate(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Name returns the mesh's component name.
func (m *Mesh) Name() string { return m.name }

// SetName sets the component name used in configuration dictionaries.
func (m *Mesh) SetName(name string) { m.name = name }

// ElementType returns the mesh's element type.
func (m *Mesh) ElementType() ElementType { return m.elementType }

// Generator returns the generator that builds this mesh. For a mesh
// that is its own generator this is a non-owning back-reference.
func (m *Mesh) Generator() Generator { return m.generator }

// SetGenerator replaces the current generator and re-triggers
// generation, updating the topology table and vertex buffer in place.
func (m *Mesh) SetGenerator(g Generator) error {
	if g == nil {
		return &MissingGeneratorError{}
	}
	m.generator = g
	m.selfGen = false
	return g.Generate(m)
}

// Dim returns the mesh dimensionality.
func (m *Mesh) Dim() int { return m.generator.Dim() }

// VertexData returns the live vertex coordinate buffer: one row per
// domain-local vertex, row order equal to local vertex index, one
// column per spatial dimension. The returned matrix is a proxy over
// the mesh's storage, never a copy, so caller mutations are
// immediately visible to the mesh. Concurrent in-process mutation is
// not guarded.
func (m *Mesh) VertexData() *mat.Dense { return m.vertices }

// Topology returns the mesh's topology table.
func (m *Mesh) Topology() *Topology { return &m.topo }

// Decomposition returns the domain decomposition the mesh was
// generated under.
func (m *Mesh) Decomposition() *decomp.Decomposition { return m.dec }

// NodesLocal returns the number of vertices this rank owns.
func (m *Mesh) NodesLocal() int { return m.topo.LocalCount(TVertex) }

// NodesGlobal returns the global vertex count.
func (m *Mesh) NodesGlobal() int { return m.topo.GlobalCount(TVertex) }

// NodesDomain returns owned plus ghost vertices on this rank.
func (m *Mesh) NodesDomain() int { return m.topo.DomainCount(TVertex) }

// elementLevel is the topological level of the mesh's cells.
func (m *Mesh) elementLevel() TopologicalLevel {
	if m.Dim() == 3 {
		return TVolume
	}
	return TFace
}

// ElementsLocal returns the number of elements this rank owns.
func (m *Mesh) ElementsLocal() int { return m.topo.LocalCount(m.elementLevel()) }

// ElementsGlobal returns the global element count.
func (m *Mesh) ElementsGlobal() int { return m.topo.GlobalCount(m.elementLevel()) }

// SubMesh returns the secondary mesh of a dual-mesh pair, or nil when
// only one element type was requested. The primary mesh owns the
// secondary.
func (m *Mesh) SubMesh() *Mesh { return m.secondary }

// SpecialSets returns the mesh's special-set registry, creating it
// lazily on first access.
func (m *Mesh) SpecialSets() *SpecialSets {
	if m.special == nil {
		m.special = newSpecialSets(m)
	}
	return m.special
}

// SpecialSet looks up a named rule and evaluates it against this mesh
// at call time, so the result reflects the current geometry even after
// generator reattachment.
func (m *Mesh) SpecialSet(name string) (*IndexSet, error) {
	rule, err := m.SpecialSets().Rule(name)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(m)
}

// AddToDictionary describes the mesh and its generator into a
// component dictionary. The generator is linked under the name
// "<name>Generator"; a secondary mesh adds itself under "<name>Sub".
func (m *Mesh) AddToDictionary(name string, d config.Dictionary) {
	d.Add(name, config.Params{
		"elementType": m.elementType.String(),
		"generator":   name + "Generator",
	})
	m.generator.AddToDictionary(name+"Generator", d)
	if m.secondary != nil {
		m.secondary.AddToDictionary(name+"Sub", d)
	}
}

// String summarizes the mesh.
func (m *Mesh) String() string {
	return fmt.Sprintf("%s mesh (%dD): %d local / %d global vertices, %d local / %d global elements",
		m.elementType, m.Dim(), m.NodesLocal(), m.NodesGlobal(), m.ElementsLocal(), m.ElementsGlobal())
}
