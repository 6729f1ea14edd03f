package models

import (
	"github.com/toyz/synapse/internal/utils"
	"github.com/toyz/synapse/pkg/synapse"
)

// Injection records one rewritten dependency reference, grouped by
// (SourceFunction, FieldName)
type Injection struct {
	ProviderManager string // bare type name of the injected field
	SourceFunction  string // method called on the field
	FieldName       string // aggregate field the call went through
}

// ProviderID derives the provider identifier of the injection
func (i Injection) ProviderID() string {
	return synapse.DeriveProviderID(i.SourceFunction, i.ProviderManager)
}

// HandlerField is the name of the generated handler field that replaces
// the call, e.g. repoFind for c.Repo.Find
func (i Injection) HandlerField() string {
	return utils.LowerFirst(i.FieldName) + i.SourceFunction
}

// FieldDefinition is one field of a generated handler struct
type FieldDefinition struct {
	Name           string // handler field name
	CapabilityType string // type expression, always the provider capability
}

// DependencyBinding ties a handler field to the provider bound into it
type DependencyBinding struct {
	FieldName  string `yaml:"field"`
	ProviderID string `yaml:"provider"`
}

// MetadataInfo summarises one generated handler for the manager
type MetadataInfo struct {
	StructName   string              `yaml:"handler"`
	Dependencies []DependencyBinding `yaml:"dependencies"`
}

// GeneratedArtifact is one synthesized handler
type GeneratedArtifact struct {
	HandlerName string             // generated struct name, also the token
	MethodName  string             // originating controller method
	Verb        string             // verb token as written in the annotation
	Method      synapse.HttpMethod // resolved verb
	Route       string             // prefix + path, verbatim
	Fields      []FieldDefinition  // one per injection, in injection order
	Injections  []Injection
	Source      string // Go source of the type and its methods
}

// Expansion is the full result for one aggregate
type Expansion struct {
	Aggregate    string               // aggregate struct name
	Prefix       string               // route prefix
	Handlers     []*GeneratedArtifact // in annotated-method order
	Metadata     []MetadataInfo       // parallel to Handlers
	Dependencies []string             // sorted unique provider manager types
	Providers    []string             // provider ids in registration order
	ManagerName  string
	Manager      string // Go source of the manager
	Source       string // aggregate, methods, handlers and manager concatenated
}

// FileExpansion is the generated compilation unit for one source file
type FileExpansion struct {
	SourcePath string
	OutputPath string
	Package    string
	Expansions []*Expansion
	Content    []byte // formatted Go source
}
