package mesh

import (
	"fmt"
)

// SpecialSetRule produces an index set from a mesh's current geometry.
// Rules are stored by name and evaluated on demand, so results always
// reflect the mesh at evaluation time, not at registration time.
type SpecialSetRule interface {
	Evaluate(m *Mesh) (*IndexSet, error)
}

// RuleFunc adapts a function to the SpecialSetRule interface.
type RuleFunc func(m *Mesh) (*IndexSet, error)

func (f RuleFunc) Evaluate(m *Mesh) (*IndexSet, error) { return f(m) }

// SpecialSets is a registry of named, lazily-materialized index set
// rules bound to a mesh. The mesh back-pointer is non-owning. Entries
// are added by the mesh's own construction logic and may be extended
// by callers.
type SpecialSets struct {
	mesh  *Mesh
	rules map[string]SpecialSetRule
	order []string
}

func newSpecialSets(m *Mesh) *SpecialSets {
	return &SpecialSets{
		mesh:  m,
		rules: make(map[string]SpecialSetRule),
	}
}

// Register installs a named rule, replacing any previous rule of the
// same name.
func (ss *SpecialSets) Register(name string, rule SpecialSetRule) {
	if _, exists := ss.rules[name]; !exists {
		ss.order = append(ss.order, name)
	}
	ss.rules[name] = rule
}

// Rule returns the named rule without evaluating it.
func (ss *SpecialSets) Rule(name string) (SpecialSetRule, error) {
	rule, ok := ss.rules[name]
	if !ok {
		return nil, fmt.Errorf("no special set named %q (have %v)", name, ss.order)
	}
	return rule, nil
}

// Names returns the registered rule names in registration order.
func (ss *SpecialSets) Names() []string {
	return append([]string(nil), ss.order...)
}

// Evaluate looks up a named rule and materializes it against the bound
// mesh.
func (ss *SpecialSets) Evaluate(name string) (*IndexSet, error) {
	rule, err := ss.Rule(name)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ss.mesh)
}

// wallRule selects domain vertices lying exactly on one boundary wall
// of a Cartesian domain. Boundary nodes of a regular grid sit exactly
// at the domain minimum/maximum, so the comparison is exact.
type wallRule struct {
	axis int
	max  bool
}

func (r wallRule) Evaluate(m *Mesh) (*IndexSet, error) {
	cg, ok := m.Generator().(*CartesianGenerator)
	if !ok {
		return nil, fmt.Errorf("wall sets require a Cartesian generator, mesh has %T", m.Generator())
	}
	if r.axis >= cg.Dim() {
		return nil, fmt.Errorf("wall axis %d out of range for a %dD mesh", r.axis, cg.Dim())
	}

	bound := cg.MinCoord[r.axis]
	if r.max {
		bound = cg.MaxCoord[r.axis]
	}

	set, err := NewIndexSet(m, TVertex)
	if err != nil {
		return nil, err
	}
	verts := m.VertexData()
	for l := 0; l < m.NodesDomain(); l++ {
		if verts.At(l, r.axis) == bound {
			if err := set.Add(l); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

// allWallsRule is the union of the named per-axis wall sets.
type allWallsRule struct {
	walls []string
}

func (r allWallsRule) Evaluate(m *Mesh) (*IndexSet, error) {
	out, err := NewIndexSet(m, TVertex)
	if err != nil {
		return nil, err
	}
	for _, name := range r.walls {
		wall, err := m.SpecialSet(name)
		if err != nil {
			return nil, err
		}
		out, err = out.Union(wall)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// emptyRule produces the empty vertex set.
type emptyRule struct{}

func (emptyRule) Evaluate(m *Mesh) (*IndexSet, error) {
	return NewIndexSet(m, TVertex)
}

// registerCartesianSets installs the standard wall sets for a
// Cartesian mesh: per-axis min/max vertex walls, their union, and the
// empty set. Wall sets along periodic axes stay registered: they are
// internal coincident walls, not boundaries, and keeping them is the
// specified behavior.
func registerCartesianSets(m *Mesh, dim int) {
	ss := m.SpecialSets()
	axes := []string{"I", "J", "K"}
	var walls []string
	for a := 0; a < dim; a++ {
		maxName := fmt.Sprintf("Max%s_VertexSet", axes[a])
		minName := fmt.Sprintf("Min%s_VertexSet", axes[a])
		ss.Register(maxName, wallRule{axis: a, max: true})
		ss.Register(minName, wallRule{axis: a, max: false})
		walls = append(walls, maxName, minName)
	}
	ss.Register("AllWalls", allWallsRule{walls: walls})
	ss.Register("Empty", emptyRule{})
}
