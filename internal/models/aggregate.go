// Package models holds the data passed between the parser, the rewriter and
// the generator.
package models

import (
	"go/ast"
	"go/token"

	"github.com/toyz/synapse/internal/annotations"
	"github.com/toyz/synapse/internal/errors"
)

// SourceFile is one parsed Go file that declares at least one controller
type SourceFile struct {
	Path        string         // path of the annotated source file
	PackageName string         // package clause of the file
	Fset        *token.FileSet // file set the AST positions belong to
	File        *ast.File      // parsed file, comments included
	HasBuildTag bool           // whether the file is excluded by the generator build tag
	Aggregates  []*AggregateDefinition
}

// AggregateDefinition is a struct annotated as a controller together with
// its method container. It is read-only to the generator.
type AggregateDefinition struct {
	Name        string                          // struct name
	Prefix      string                          // route prefix from the controller annotation
	Annotations []*annotations.ParsedAnnotation // annotations on the type declaration
	Fields      []FieldInfo                     // struct fields in declaration order
	Methods     []*MethodDefinition             // method container in source order
	Decl        *ast.GenDecl                    // declaration that introduced the type
	Location    errors.SourceLocation
}

// DependencyFields maps every injected field name to its provider manager,
// the bare type name of the field
func (a *AggregateDefinition) DependencyFields() map[string]string {
	deps := make(map[string]string)
	for _, f := range a.Fields {
		if f.Inject {
			deps[f.Name] = f.TypeName
		}
	}
	return deps
}

// Routes returns the methods carrying a verb annotation, in source order
func (a *AggregateDefinition) Routes() []*MethodDefinition {
	var routes []*MethodDefinition
	for _, m := range a.Methods {
		if m.IsRoute() {
			routes = append(routes, m)
		}
	}
	return routes
}

// FieldInfo describes one struct field of an aggregate
type FieldInfo struct {
	Name     string   // field name; embedded fields use their type name
	TypeExpr ast.Expr // declared type expression
	TypeName string   // bare type name: no pointer, package or type arguments
	Inject   bool     // whether the field carries //synapse::inject
}

// MethodDefinition is one method of the aggregate's method container
type MethodDefinition struct {
	Name         string                        // method name
	Receiver     string                        // receiver name, "" when unnamed
	RequestParam string                        // name of the first parameter, "" when absent
	Verb         *annotations.ParsedAnnotation // first verb annotation, nil for plain methods
	Decl         *ast.FuncDecl
	Location     errors.SourceLocation
}

// IsRoute reports whether the method is turned into a handler
func (m *MethodDefinition) IsRoute() bool {
	return m.Verb != nil
}
