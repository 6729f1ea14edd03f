// Package annotations parses synapse annotation comments and extracts the
// route, prefix and injection information they carry.
package annotations

import (
	"fmt"

	"github.com/toyz/synapse/internal/errors"
)

// Reserved annotation names. Every other annotation found on a controller
// method is a verb annotation.
const (
	ControllerAnnotation = "controller"
	InjectAnnotation     = "inject"
)

// DefaultNamespace is the prefix in //synapse::name
const DefaultNamespace = "synapse"

// ValueKind is the lexical kind of an annotation argument
type ValueKind int

const (
	StringValue ValueKind = iota
	NumberValue
	IdentValue
	// RawValue is anything the grammar could lex but not classify,
	// e.g. an unquoted path
	RawValue
)

// String returns the string representation of the value kind
func (k ValueKind) String() string {
	switch k {
	case StringValue:
		return "string literal"
	case NumberValue:
		return "number"
	case IdentValue:
		return "identifier"
	default:
		return "raw text"
	}
}

// Value is one argument of an annotation. Text holds the unquoted contents
// for string literals and the source text otherwise.
type Value struct {
	Kind ValueKind
	Text string
}

// ParsedAnnotation is a single //ns::name(args) comment
type ParsedAnnotation struct {
	Name string
	Args []Value

	// HasArgs is true when a parenthesised list was written, even "()"
	HasArgs bool

	Raw      string
	Location errors.SourceLocation
}

// IsController reports whether a is the aggregate marker
func (a *ParsedAnnotation) IsController() bool {
	return a.Name == ControllerAnnotation
}

// IsInject reports whether a marks a dependency field
func (a *ParsedAnnotation) IsInject() bool {
	return a.Name == InjectAnnotation
}

// IsVerb reports whether a is an HTTP-verb annotation
func (a *ParsedAnnotation) IsVerb() bool {
	return !a.IsController() && !a.IsInject()
}

func (a *ParsedAnnotation) String() string {
	return fmt.Sprintf("%s(%d args) at %s", a.Name, len(a.Args), a.Location)
}
