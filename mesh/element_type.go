package mesh

import (
	"strings"
)

// ElementType identifies the discretization order and continuity class
// of a mesh.
type ElementType int

const (
	Q2   ElementType = iota // Quadratic continuous
	Q1                      // Linear continuous
	DQ1                     // Discontinuous linear
	DPC1                    // Discontinuous piecewise-constant (inner linear)
	DQ0                     // Discontinuous constant
)

var elementTypeNames = map[ElementType]string{
	Q2:   "Q2",
	Q1:   "Q1",
	DQ1:  "DQ1",
	DPC1: "DPC1",
	DQ0:  "DQ0",
}

func (et ElementType) String() string {
	if name, ok := elementTypeNames[et]; ok {
		return name
	}
	return "unknown"
}

// SupportedElementTypes returns the fixed enumeration of element type
// tokens.
func SupportedElementTypes() []string {
	return []string{"Q2", "Q1", "DQ1", "DPC1", "DQ0"}
}

// ParseElementType parses a single element type token,
// case-insensitively. Unknown tokens are rejected outright.
func ParseElementType(tok string) (ElementType, error) {
	switch strings.ToUpper(strings.TrimSpace(tok)) {
	case "Q2":
		return Q2, nil
	case "Q1":
		return Q1, nil
	case "DQ1":
		return DQ1, nil
	case "DPC1":
		return DPC1, nil
	case "DQ0":
		return DQ0, nil
	default:
		return 0, &UnsupportedElementTypeError{Type: tok}
	}
}

// ParseElementTypes parses an element type specification: one or two
// tokens from the fixed enumeration, separated by '/'.  Tokens are
// parsed left to right with no ambiguity. A pair requests a dual mesh:
// the first token is the primary type and must be continuous (Q2 or
// Q1), the second names the secondary mesh and must be one of Q1,
// DQ1, DPC1 or DQ0.
func ParseElementTypes(s string) ([]ElementType, error) {
	toks := strings.Split(s, "/")
	if len(toks) > 2 {
		return nil, configErrf("elementType", "at most two element types are supported, got %d", len(toks))
	}

	types := make([]ElementType, 0, len(toks))
	for _, tok := range toks {
		et, err := ParseElementType(tok)
		if err != nil {
			return nil, err
		}
		types = append(types, et)
	}

	if types[0] != Q2 && types[0] != Q1 {
		return nil, configErrf("elementType", "primary element type must be Q2 or Q1, got %s", types[0])
	}
	if len(types) == 2 && types[1] == Q2 {
		return nil, configErrf("elementType", "secondary element type must be one of Q1, DQ1, DPC1, DQ0")
	}
	return types, nil
}
