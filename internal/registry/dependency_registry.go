// Package registry holds the aggregate-scoped state threaded through one
// controller expansion.
package registry

import (
	"sort"

	"github.com/toyz/synapse/internal/errors"
)

// dependencyRegistry implements the DependencyRegistry interface
type dependencyRegistry struct {
	ids   map[string]struct{}
	order []string
}

// NewDependencyRegistry creates an empty registry. Create one per
// aggregate expansion and discard it afterwards.
func NewDependencyRegistry() DependencyRegistry {
	return &dependencyRegistry{
		ids: make(map[string]struct{}),
	}
}

// Register inserts id, failing with a DependencyConflictError the first
// time an id repeats
func (r *dependencyRegistry) Register(id string) error {
	if _, exists := r.ids[id]; exists {
		return errors.NewDependencyConflictError(id, "")
	}
	r.ids[id] = struct{}{}
	r.order = append(r.order, id)
	return nil
}

// IDs returns the registered ids in insertion order
func (r *dependencyRegistry) IDs() []string {
	return append([]string(nil), r.order...)
}

// DependencyInfo is the aggregate-scoped state of one expansion: the
// dependency field table, the set of provider manager types that were
// actually injected, and the provider id registry.
type DependencyInfo struct {
	Fields   map[string]string // injected field name -> provider manager
	Registry DependencyRegistry

	types map[string]struct{}
}

// NewDependencyInfo creates the state for an aggregate with the given
// dependency field table
func NewDependencyInfo(fields map[string]string) *DependencyInfo {
	if fields == nil {
		fields = make(map[string]string)
	}
	return &DependencyInfo{
		Fields:   fields,
		Registry: NewDependencyRegistry(),
		types:    make(map[string]struct{}),
	}
}

// AddType records a provider manager type as used
func (d *DependencyInfo) AddType(name string) {
	d.types[name] = struct{}{}
}

// UniqueTypes returns every recorded type, sorted
func (d *DependencyInfo) UniqueTypes() []string {
	types := make([]string, 0, len(d.types))
	for t := range d.types {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
