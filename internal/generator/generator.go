// Package generator turns controller aggregates into handler types, their
// metadata and a registration manager, and assembles the generated file.
package generator

import (
	"go/ast"
	"strconv"

	"github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/models"
	"github.com/toyz/synapse/internal/parser"
	"github.com/toyz/synapse/internal/registry"
	"github.com/toyz/synapse/internal/rewriter"
	"github.com/toyz/synapse/internal/templates"
)

// DefaultRuntimeImport is the import path of the handler runtime
const DefaultRuntimeImport = "github.com/toyz/synapse/pkg/synapse"

// Expander runs the expansion pipeline. It holds no per-aggregate state
// and may be shared between goroutines.
type Expander struct {
	buildTag        string
	runtimeImport   string
	localPrefix     string
	requireBuildTag bool
	resolvers       ResolverFactory
	templates       *templates.TemplateRegistry
}

// Option configures an Expander
type Option func(*Expander)

// WithBuildTag sets the tag that excludes annotated sources from builds
func WithBuildTag(tag string) Option {
	return func(e *Expander) {
		if tag != "" {
			e.buildTag = tag
		}
	}
}

// WithRuntimeImport sets the import path of the handler runtime
func WithRuntimeImport(path string) Option {
	return func(e *Expander) {
		if path != "" {
			e.runtimeImport = path
		}
	}
}

// WithLocalPrefix groups imports starting with prefix last, usually the
// module path
func WithLocalPrefix(prefix string) Option {
	return func(e *Expander) {
		e.localPrefix = prefix
	}
}

// WithRequireBuildTag controls whether sources without the build tag are
// rejected. Without it both the source and the generated file would be
// compiled.
func WithRequireBuildTag(require bool) Option {
	return func(e *Expander) {
		e.requireBuildTag = require
	}
}

// WithResolverFactory enables typed provider results
func WithResolverFactory(factory ResolverFactory) Option {
	return func(e *Expander) {
		e.resolvers = factory
	}
}

// NewExpander creates an expander
func NewExpander(opts ...Option) *Expander {
	e := &Expander{
		buildTag:        parser.DefaultBuildTag,
		runtimeImport:   DefaultRuntimeImport,
		requireBuildTag: true,
		templates:       templates.NewTemplateRegistry(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// fileContext is what every aggregate of one file shares
type fileContext struct {
	source    *models.SourceFile
	runtime   string // identifier the runtime is referenced by
	addImport bool   // whether the runtime import must be added
	resolver  rewriter.ResultResolver
}

func (e *Expander) newFileContext(sf *models.SourceFile) (*fileContext, error) {
	ctx := &fileContext{source: sf}
	ctx.runtime, ctx.addImport = runtimeName(sf.File, e.runtimeImport)

	if e.resolvers != nil {
		resolver, err := e.resolvers(sf)
		if err != nil {
			return nil, err
		}
		ctx.resolver = resolver
	}
	return ctx, nil
}

// runtimeName returns how file refers to the runtime package, and whether
// an import has to be added for it
func runtimeName(file *ast.File, importPath string) (string, bool) {
	const fallback = "synapse"
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil || path != importPath {
			continue
		}
		if spec.Name == nil {
			return fallback, false
		}
		if spec.Name.Name != "_" && spec.Name.Name != "." {
			return spec.Name.Name, false
		}
	}
	return fallback, true
}

// Expand runs the pipeline for one aggregate of sf
func (e *Expander) Expand(sf *models.SourceFile, agg *models.AggregateDefinition) (*models.Expansion, error) {
	ctx, err := e.newFileContext(sf)
	if err != nil {
		return nil, err
	}
	return e.expand(ctx, agg)
}

// ExpandFile expands every aggregate of sf and assembles the generated
// file. Any error aborts the whole file.
func (e *Expander) ExpandFile(sf *models.SourceFile) (*models.FileExpansion, error) {
	if len(sf.Aggregates) == 0 {
		return nil, errors.NewGenerationError("no controllers declared in " + sf.Path).WithTargetFile(sf.Path)
	}
	if e.requireBuildTag && !sf.HasBuildTag {
		return nil, errors.NewValidationErrorf("build constraint",
			"%s declares controllers but is not excluded by the '%s' build tag", sf.Path, e.buildTag).
			WithLocation(errors.SourceLocation{File: sf.Path, Line: 1, Column: 1}).
			WithSuggestion("add //go:build " + e.buildTag + " as the first line of the file")
	}

	ctx, err := e.newFileContext(sf)
	if err != nil {
		return nil, err
	}

	var expansions []*models.Expansion
	for _, agg := range sf.Aggregates {
		expansion, err := e.expand(ctx, agg)
		if err != nil {
			return nil, err
		}
		expansions = append(expansions, expansion)
	}
	if err := checkGeneratedNames(sf, expansions); err != nil {
		return nil, err
	}

	outputPath := parser.OutputPath(sf.Path)
	content, err := e.assembleFile(ctx, expansions, outputPath)
	if err != nil {
		return nil, err
	}

	return &models.FileExpansion{
		SourcePath: sf.Path,
		OutputPath: outputPath,
		Package:    sf.PackageName,
		Expansions: expansions,
		Content:    content,
	}, nil
}

// expand builds handlers, metadata and manager for one aggregate. The
// dependency state lives only for the duration of this call.
func (e *Expander) expand(ctx *fileContext, agg *models.AggregateDefinition) (*models.Expansion, error) {
	deps := registry.NewDependencyInfo(agg.DependencyFields())
	for _, field := range agg.Fields {
		if field.Inject {
			deps.AddType(field.TypeName)
		}
	}

	var handlers []*models.GeneratedArtifact
	var metadata []models.MetadataInfo
	for _, method := range agg.Routes() {
		artifact, err := e.synthesize(ctx, agg, method, deps)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, artifact)
		metadata = append(metadata, assembleMetadata(artifact))
	}

	managerName, manager, err := e.generateManager(ctx, agg, metadata, deps.UniqueTypes())
	if err != nil {
		return nil, err
	}

	expansion := &models.Expansion{
		Aggregate:    agg.Name,
		Prefix:       agg.Prefix,
		Handlers:     handlers,
		Metadata:     metadata,
		Dependencies: deps.UniqueTypes(),
		Providers:    deps.Registry.IDs(),
		ManagerName:  managerName,
		Manager:      manager,
	}

	source, err := assembleAggregate(ctx.source, agg, expansion)
	if err != nil {
		return nil, err
	}
	expansion.Source = source
	return expansion, nil
}

// checkGeneratedNames rejects files whose aggregates would generate the
// same type twice, or a type the file already declares
func checkGeneratedNames(sf *models.SourceFile, expansions []*models.Expansion) error {
	declared := make(map[string]bool)
	for _, decl := range sf.File.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok {
			continue
		}
		for _, spec := range gen.Specs {
			if ts, ok := spec.(*ast.TypeSpec); ok {
				declared[ts.Name.Name] = true
			}
		}
	}

	owner := make(map[string]string)
	claim := func(name, aggregate string) error {
		if declared[name] {
			return errors.NewValidationErrorf(name,
				"generated type '%s' for controller '%s' collides with a declared type", name, aggregate).
				WithLocation(errors.SourceLocation{File: sf.Path})
		}
		if previous, ok := owner[name]; ok {
			return errors.NewValidationErrorf(name,
				"controllers '%s' and '%s' both generate type '%s'", previous, aggregate, name).
				WithLocation(errors.SourceLocation{File: sf.Path}).
				WithSuggestion("rename one of the methods or move the controllers into separate packages")
		}
		owner[name] = aggregate
		return nil
	}

	for _, expansion := range expansions {
		for _, handler := range expansion.Handlers {
			if err := claim(handler.HandlerName, expansion.Aggregate); err != nil {
				return err
			}
		}
		if err := claim(expansion.ManagerName, expansion.Aggregate); err != nil {
			return err
		}
	}
	return nil
}
