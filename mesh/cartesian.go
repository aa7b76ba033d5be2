package mesh

import (
	"github.com/geodynamics/femesh/config"
	"github.com/geodynamics/femesh/decomp"
)

// Options configures a Cartesian mesh. Zero values select the
// defaults: a Q1/DQ0 dual mesh of 4x4 elements on the unit square,
// non-periodic, single rank.
type Options struct {
	// ElementType is one or two '/'-separated element type tokens. A
	// pair builds a dual mesh: the primary from the first type, a
	// secondary mesh from the second.
	ElementType string

	ElementRes []int
	MinCoord   []float64
	MaxCoord   []float64
	Periodic   []bool

	// Comm is the process group to decompose over; nil selects the
	// single-rank SelfComm.
	Comm decomp.Communicator

	// Name is the component name used in configuration dictionaries.
	Name string
}

// CartesianMesh is a mesh that is topologically Cartesian and
// geometrically regular, and that doubles as its own generator: the
// mesh's generator reference is a non-owning back-reference into the
// same composite.
type CartesianMesh struct {
	*Mesh
	*CartesianGenerator
}

// NewCartesian builds a Cartesian mesh, optionally with a dual
// secondary mesh. The primary mesh is built from the first element
// type (Q2 or Q1). When a second type is given, the secondary is
// built from an independent linear Cartesian generator (Q1) or a
// generator templated on the primary mesh's cells (DQ1, DPC1, DQ0),
// and is reachable through SubMesh. The standard Cartesian special
// sets are registered on the primary mesh.
func NewCartesian(opts Options) (*CartesianMesh, error) {
	if opts.ElementType == "" {
		opts.ElementType = "Q1/DQ0"
	}
	if opts.ElementRes == nil {
		opts.ElementRes = []int{4, 4}
	}
	dim := len(opts.ElementRes)
	if opts.MinCoord == nil {
		opts.MinCoord = make([]float64, dim)
	}
	if opts.MaxCoord == nil {
		opts.MaxCoord = make([]float64, dim)
		for a := range opts.MaxCoord {
			opts.MaxCoord[a] = 1
		}
	}
	if opts.Name == "" {
		opts.Name = "femesh"
	}

	types, err := ParseElementTypes(opts.ElementType)
	if err != nil {
		return nil, err
	}

	var gen *CartesianGenerator
	if types[0] == Q2 {
		gen, err = NewQuadraticCartesianGenerator(opts.ElementRes, opts.MinCoord, opts.MaxCoord, opts.Periodic)
	} else {
		gen, err = NewLinearCartesianGenerator(opts.ElementRes, opts.MinCoord, opts.MaxCoord, opts.Periodic)
	}
	if err != nil {
		return nil, err
	}
	gen.Comm = opts.Comm

	m, err := New(types[0], gen)
	if err != nil {
		return nil, err
	}
	m.SetName(opts.Name)
	m.selfGen = true

	if len(types) == 2 {
		var secGen Generator
		switch types[1] {
		case Q1:
			lin, err := NewLinearCartesianGenerator(opts.ElementRes, opts.MinCoord, opts.MaxCoord, opts.Periodic)
			if err != nil {
				return nil, err
			}
			lin.Comm = opts.Comm
			secGen = lin
		case DQ1:
			secGen, err = NewDQ1Generator(m)
		case DPC1:
			secGen, err = NewInnerGenerator(m)
		case DQ0:
			secGen, err = NewConstantGenerator(m)
		}
		if err != nil {
			return nil, err
		}

		sub, err := New(types[1], secGen)
		if err != nil {
			return nil, err
		}
		sub.SetName(opts.Name + "Sub")
		m.secondary = sub
	}

	registerCartesianSets(m, dim)

	return &CartesianMesh{Mesh: m, CartesianGenerator: gen}, nil
}

// Dim returns the mesh dimensionality.
func (cm *CartesianMesh) Dim() int { return cm.CartesianGenerator.Dim() }

// Decomposition returns the domain decomposition the mesh was
// generated under.
func (cm *CartesianMesh) Decomposition() *decomp.Decomposition {
	return cm.Mesh.Decomposition()
}

// AddToDictionary describes the mesh, its generator, and any
// secondary mesh into a component dictionary.
func (cm *CartesianMesh) AddToDictionary(name string, d config.Dictionary) {
	cm.Mesh.AddToDictionary(name, d)
}

// String summarizes the mesh.
func (cm *CartesianMesh) String() string { return cm.Mesh.String() }
