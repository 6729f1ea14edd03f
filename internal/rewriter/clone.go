// Package rewriter transforms controller method bodies into handler
// bodies: injected dependency calls become provider calls and every return
// goes through the runtime response wrapper.
package rewriter

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
)

// Body is a method body detached from its source file. Rewrites mutate
// Block; the source declaration is never touched.
type Body struct {
	Fset  *token.FileSet
	File  *ast.File // synthetic file holding Block, carries its comments
	Block *ast.BlockStmt
}

var printConfig = &printer.Config{Mode: printer.UseSpaces | printer.TabIndent, Tabwidth: 8}

// CloneBody deep-copies fn's body by printing and reparsing it, keeping
// comments attached.
func CloneBody(fset *token.FileSet, file *ast.File, fn *ast.FuncDecl) (*Body, error) {
	if fn.Body == nil {
		return nil, fmt.Errorf("function %s has no body", fn.Name.Name)
	}

	var buf bytes.Buffer
	buf.WriteString("package body\n\nfunc _() ")
	var comments []*ast.CommentGroup
	if file != nil {
		comments = commentsWithin(file.Comments, fn.Body)
	}
	if err := printConfig.Fprint(&buf, fset, &printer.CommentedNode{Node: fn.Body, Comments: comments}); err != nil {
		return nil, fmt.Errorf("failed to print body of %s: %w", fn.Name.Name, err)
	}

	cloneFset := token.NewFileSet()
	cloned, err := parser.ParseFile(cloneFset, fn.Name.Name+".body.go", buf.Bytes(), parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to reparse body of %s: %w", fn.Name.Name, err)
	}

	decl := cloned.Decls[0].(*ast.FuncDecl)
	return &Body{Fset: cloneFset, File: cloned, Block: decl.Body}, nil
}

func commentsWithin(groups []*ast.CommentGroup, node ast.Node) []*ast.CommentGroup {
	var result []*ast.CommentGroup
	for _, g := range groups {
		if g.Pos() >= node.Pos() && g.End() <= node.End() {
			result = append(result, g)
		}
	}
	return result
}

// Source prints the block, braces included
func (b *Body) Source() (string, error) {
	var buf bytes.Buffer
	node := &printer.CommentedNode{Node: b.Block, Comments: b.File.Comments}
	if err := printConfig.Fprint(&buf, b.Fset, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}
