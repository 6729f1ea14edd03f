package registry

// DependencyRegistry tracks the provider identifiers generated for one
// aggregate and rejects the first duplicate
type DependencyRegistry interface {
	Register(id string) error
	IDs() []string
}
