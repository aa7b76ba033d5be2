package mesh

import (
	"fmt"
)

// ConfigurationError reports an invalid generator parameter. It is
// raised eagerly at construction, never deferred to generation time,
// and names the offending field.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func configErrf(field, format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// UnsupportedElementTypeError reports an element type outside the
// fixed enumeration.
type UnsupportedElementTypeError struct {
	Type string
}

func (e *UnsupportedElementTypeError) Error() string {
	return fmt.Sprintf("element type %q is not supported (supported types are %v)",
		e.Type, SupportedElementTypes())
}

// MissingGeneratorError reports mesh construction without a generator.
type MissingGeneratorError struct{}

func (e *MissingGeneratorError) Error() string {
	return "no generator provided for mesh: a mesh requires a generator unless it is itself generator-capable"
}

// DimensionMismatchError reports a templated generator whose geometry
// mesh dimensionality disagrees with the target.
type DimensionMismatchError struct {
	Want, Got int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: generator is %dD but geometry mesh is %dD", e.Want, e.Got)
}

// IncompatibleSetError reports index-set algebra across different
// meshes or topological levels.
type IncompatibleSetError struct {
	Reason string
}

func (e *IncompatibleSetError) Error() string {
	return fmt.Sprintf("incompatible index sets: %s", e.Reason)
}
