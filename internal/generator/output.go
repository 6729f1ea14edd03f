package generator

import (
	"bytes"
	"go/ast"
	"go/printer"
	"go/token"
	"strconv"
	"strings"

	"github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/models"
	"github.com/toyz/synapse/internal/templates"
	"github.com/toyz/synapse/internal/utils"
)

var printConfig = &printer.Config{Mode: printer.UseSpaces | printer.TabIndent, Tabwidth: 8}

// assembleAggregate concatenates, in this order: the aggregate
// declaration, its methods in source order, the handlers in method order
// and the manager
func assembleAggregate(sf *models.SourceFile, agg *models.AggregateDefinition, expansion *models.Expansion) (string, error) {
	var parts []string

	decl, err := printDecl(sf, agg.Decl)
	if err != nil {
		return "", err
	}
	parts = append(parts, decl)

	for _, method := range agg.Methods {
		src, err := printDecl(sf, method.Decl)
		if err != nil {
			return "", err
		}
		parts = append(parts, src)
	}

	for _, handler := range expansion.Handlers {
		parts = append(parts, strings.TrimSpace(handler.Source))
	}
	parts = append(parts, strings.TrimSpace(expansion.Manager))

	return strings.Join(parts, "\n\n") + "\n", nil
}

// assembleFile builds the generated compilation unit: header, build
// constraint, package clause and imports, then the file's other
// declarations in source order, then every aggregate unit
func (e *Expander) assembleFile(ctx *fileContext, expansions []*models.Expansion, outputPath string) ([]byte, error) {
	sf := ctx.source

	im := templates.NewImportManager()
	for _, spec := range sf.File.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := ""
		if spec.Name != nil {
			name = spec.Name.Name
		}
		im.AddNamedImport(name, path)
	}
	if ctx.addImport && !im.Has(e.runtimeImport) {
		im.AddNamedImport(runtimeAlias(ctx.runtime, e.runtimeImport), e.runtimeImport)
	}

	header, err := e.templates.RenderFileHeader(templates.FileHeaderData{
		BuildTag: e.buildTag,
		Package:  sf.PackageName,
		Imports:  im.GenerateImports(),
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(header)

	for _, decl := range passthroughDecls(sf) {
		src, err := printDecl(sf, decl)
		if err != nil {
			return nil, err
		}
		buf.WriteString("\n")
		buf.WriteString(src)
		buf.WriteString("\n")
	}

	for _, expansion := range expansions {
		buf.WriteString("\n")
		buf.WriteString(expansion.Source)
	}

	formatted, err := utils.FormatGoCode(outputPath, buf.Bytes(), e.localPrefix)
	if err != nil {
		return nil, errors.WrapGenerateError("file", outputPath, err).WithStage("format")
	}
	return formatted, nil
}

// runtimeAlias returns "" when the default package name already matches
func runtimeAlias(runtime, importPath string) string {
	if importPath[strings.LastIndex(importPath, "/")+1:] == runtime {
		return ""
	}
	return runtime
}

// passthroughDecls returns the top-level declarations of sf that are not
// imports, aggregates or aggregate methods, in source order
func passthroughDecls(sf *models.SourceFile) []ast.Decl {
	owned := make(map[ast.Decl]bool)
	for _, agg := range sf.Aggregates {
		owned[agg.Decl] = true
		for _, m := range agg.Methods {
			owned[m.Decl] = true
		}
	}

	var decls []ast.Decl
	for _, decl := range sf.File.Decls {
		if owned[decl] {
			continue
		}
		if gen, ok := decl.(*ast.GenDecl); ok && gen.Tok == token.IMPORT {
			continue
		}
		decls = append(decls, decl)
	}
	return decls
}

// printDecl prints decl unmodified, doc comment and inner comments included
func printDecl(sf *models.SourceFile, decl ast.Decl) (string, error) {
	start := decl.Pos()
	switch d := decl.(type) {
	case *ast.GenDecl:
		if d.Doc != nil {
			start = d.Doc.Pos()
		}
	case *ast.FuncDecl:
		if d.Doc != nil {
			start = d.Doc.Pos()
		}
	}

	var comments []*ast.CommentGroup
	for _, group := range sf.File.Comments {
		if group.Pos() >= start && group.End() <= decl.End() {
			comments = append(comments, group)
		}
	}

	var buf bytes.Buffer
	if err := printConfig.Fprint(&buf, sf.Fset, &printer.CommentedNode{Node: decl, Comments: comments}); err != nil {
		return "", errors.WrapGenerateError("declaration", sf.Path, err).WithStage("print")
	}
	return buf.String(), nil
}
