// Package parser reads annotated Go files into aggregate definitions.
package parser

import (
	"fmt"
	"go/ast"
	"go/build/constraint"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"strings"

	"github.com/toyz/synapse/internal/annotations"
	"github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/models"
	"github.com/toyz/synapse/internal/utils"
)

// Parser extracts controllers from Go source files
type Parser struct {
	annotations *annotations.Parser
	buildTag    string
}

// NewParser creates a parser for the given annotation namespace and build
// tag. Empty values select the defaults.
func NewParser(namespace, buildTag string) *Parser {
	if buildTag == "" {
		buildTag = DefaultBuildTag
	}
	return &Parser{
		annotations: annotations.NewParser(namespace),
		buildTag:    buildTag,
	}
}

// Namespace returns the annotation namespace
func (p *Parser) Namespace() string {
	return p.annotations.Namespace()
}

// BuildTag returns the build tag annotated sources must carry
func (p *Parser) BuildTag() string {
	return p.buildTag
}

// ParseFile reads and parses one file from disk
func (p *Parser) ParseFile(path string) (*models.SourceFile, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFileSystemError("read", path, err)
	}
	return p.ParseSource(path, src)
}

// ParseSource parses src as the contents of filename. The result has no
// aggregates when the file declares no controller.
func (p *Parser) ParseSource(filename string, src []byte) (*models.SourceFile, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, errors.WrapParseError(filename, err).WithLocation(errors.SourceLocation{File: filename})
	}

	sf := &models.SourceFile{
		Path:        filename,
		PackageName: file.Name.Name,
		Fset:        fset,
		File:        file,
		HasBuildTag: p.hasBuildTag(file),
	}

	aggregates, err := p.extractAggregates(sf)
	if err != nil {
		return nil, err
	}
	if err := p.attachMethods(sf, aggregates); err != nil {
		return nil, err
	}
	sf.Aggregates = aggregates
	return sf, nil
}

// OutputPath returns the generated file path for a source file
func OutputPath(sourcePath string) string {
	return strings.TrimSuffix(sourcePath, ".go") + GeneratedSuffix
}

// hasBuildTag reports whether the file's //go:build line is unsatisfied
// without the generator tag
func (p *Parser) hasBuildTag(file *ast.File) bool {
	for _, group := range file.Comments {
		if group.Pos() >= file.Package {
			break
		}
		for _, c := range group.List {
			if !constraint.IsGoBuild(c.Text) {
				continue
			}
			expr, err := constraint.Parse(c.Text)
			if err != nil {
				continue
			}
			withoutTag := expr.Eval(func(tag string) bool { return tag != p.buildTag })
			withTag := expr.Eval(func(string) bool { return true })
			return !withoutTag && withTag
		}
	}
	return false
}

func (p *Parser) location(fset *token.FileSet, pos token.Pos) errors.SourceLocation {
	position := fset.Position(pos)
	return errors.SourceLocation{File: position.Filename, Line: position.Line, Column: position.Column}
}

// commentAnnotations parses every annotation in the given comment groups
func (p *Parser) commentAnnotations(fset *token.FileSet, groups ...*ast.CommentGroup) ([]*annotations.ParsedAnnotation, error) {
	var result []*annotations.ParsedAnnotation
	for _, group := range groups {
		if group == nil {
			continue
		}
		for _, c := range group.List {
			if !p.annotations.IsAnnotation(c.Text) {
				continue
			}
			parsed, err := p.annotations.Parse(c.Text, p.location(fset, c.Pos()))
			if err != nil {
				return nil, err
			}
			if parsed != nil {
				result = append(result, parsed)
			}
		}
	}
	return result, nil
}

func (p *Parser) extractAggregates(sf *models.SourceFile) ([]*models.AggregateDefinition, error) {
	var aggregates []*models.AggregateDefinition

	for _, decl := range sf.File.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			typeSpec := spec.(*ast.TypeSpec)

			groups := []*ast.CommentGroup{typeSpec.Doc}
			if len(gen.Specs) == 1 {
				groups = append(groups, gen.Doc)
			}
			list, err := p.commentAnnotations(sf.Fset, groups...)
			if err != nil {
				return nil, err
			}
			marker := annotations.Find(list, annotations.ControllerAnnotation)
			if marker == nil {
				continue
			}

			structType, ok := typeSpec.Type.(*ast.StructType)
			if !ok {
				return nil, errors.NewValidationErrorf(typeSpec.Name.Name,
					"controller annotation on '%s' requires a struct type", typeSpec.Name.Name).
					WithLocation(marker.Location)
			}
			if len(gen.Specs) > 1 {
				return nil, errors.NewValidationErrorf(typeSpec.Name.Name,
					"controller '%s' must be declared in its own type declaration", typeSpec.Name.Name).
					WithLocation(marker.Location).
					WithSuggestion("move the controller out of the grouped type ( ... ) block")
			}

			prefix, err := annotations.ExtractPrefix(marker)
			if err != nil {
				return nil, err
			}
			fields, err := p.extractFields(sf.Fset, structType)
			if err != nil {
				return nil, err
			}

			aggregates = append(aggregates, &models.AggregateDefinition{
				Name:        typeSpec.Name.Name,
				Prefix:      prefix,
				Annotations: list,
				Fields:      fields,
				Decl:        gen,
				Location:    p.location(sf.Fset, typeSpec.Pos()),
			})
		}
	}

	return aggregates, nil
}

func (p *Parser) extractFields(fset *token.FileSet, structType *ast.StructType) ([]models.FieldInfo, error) {
	var fields []models.FieldInfo

	for _, field := range structType.Fields.List {
		list, err := p.commentAnnotations(fset, field.Doc, field.Comment)
		if err != nil {
			return nil, err
		}
		inject := annotations.Find(list, annotations.InjectAnnotation) != nil
		typeName := utils.BareTypeName(types.ExprString(field.Type))

		if len(field.Names) == 0 {
			fields = append(fields, models.FieldInfo{
				Name:     typeName,
				TypeExpr: field.Type,
				TypeName: typeName,
				Inject:   inject,
			})
			continue
		}
		for _, name := range field.Names {
			fields = append(fields, models.FieldInfo{
				Name:     name.Name,
				TypeExpr: field.Type,
				TypeName: typeName,
				Inject:   inject,
			})
		}
	}

	return fields, nil
}

// attachMethods fills each aggregate's method container in source order
func (p *Parser) attachMethods(sf *models.SourceFile, aggregates []*models.AggregateDefinition) error {
	byName := make(map[string]*models.AggregateDefinition, len(aggregates))
	for _, agg := range aggregates {
		byName[agg.Name] = agg
	}

	for _, decl := range sf.File.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv == nil || len(fn.Recv.List) == 0 {
			continue
		}
		recv := fn.Recv.List[0]
		agg, ok := byName[receiverTypeName(recv.Type)]
		if !ok {
			continue
		}

		list, err := p.commentAnnotations(sf.Fset, fn.Doc)
		if err != nil {
			return err
		}

		method := &models.MethodDefinition{
			Name:     fn.Name.Name,
			Verb:     annotations.FindVerbAnnotation(list),
			Decl:     fn,
			Location: p.location(sf.Fset, fn.Pos()),
		}
		if len(recv.Names) > 0 {
			method.Receiver = recv.Names[0].Name
		}
		if params := fn.Type.Params; params != nil && len(params.List) > 0 && len(params.List[0].Names) > 0 {
			method.RequestParam = params.List[0].Names[0].Name
		}
		agg.Methods = append(agg.Methods, method)
	}
	return nil
}

// receiverTypeName returns T for receivers T, *T, T[K] and *T[K]
func receiverTypeName(expr ast.Expr) string {
	for {
		switch t := expr.(type) {
		case *ast.StarExpr:
			expr = t.X
		case *ast.ParenExpr:
			expr = t.X
		case *ast.IndexExpr:
			expr = t.X
		case *ast.IndexListExpr:
			expr = t.X
		case *ast.Ident:
			return t.Name
		default:
			return fmt.Sprintf("%T", expr)
		}
	}
}
