// Package config builds flat component-configuration dictionaries for
// an external component-description system. This package only produces
// the mapping from component name to key/value parameters; it never
// interprets it.
package config

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Params is the flat parameter set of one component.
type Params map[string]interface{}

// Dictionary maps component names to their parameters.
type Dictionary map[string]Params

// NewDictionary returns an empty component dictionary.
func NewDictionary() Dictionary {
	return make(Dictionary)
}

// Set installs the parameters for a named component, replacing any
// previous entry.
func (d Dictionary) Set(name string, p Params) {
	d[name] = p
}

// Add merges parameters into a component, creating it if needed.
func (d Dictionary) Add(name string, p Params) {
	if _, ok := d[name]; !ok {
		d[name] = make(Params, len(p))
	}
	for k, v := range p {
		d[name][k] = v
	}
}

// Merge folds other's components into d. Components present in both
// are merged key by key, other winning.
func (d Dictionary) Merge(other Dictionary) {
	for name, p := range other {
		d.Add(name, p)
	}
}

// Names returns the component names in sorted order.
func (d Dictionary) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Marshal serializes the dictionary as YAML. Output is deterministic:
// yaml.v3 emits map keys in sorted order.
func (d Dictionary) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshaling component dictionary: %w", err)
	}
	return out, nil
}

// Component is implemented by anything that can describe itself into a
// dictionary under a given component name.
type Component interface {
	AddToDictionary(name string, d Dictionary)
}
