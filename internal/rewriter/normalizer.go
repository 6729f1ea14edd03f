package rewriter

import (
	"go/ast"

	"golang.org/x/tools/go/ast/astutil"
)

// Normalizer wraps every return of a handler body in the runtime's
// Respond call
type Normalizer struct {
	runtime string
}

// NewNormalizer creates a normalizer emitting <runtime>.Respond
func NewNormalizer(runtime string) *Normalizer {
	if runtime == "" {
		runtime = "synapse"
	}
	return &Normalizer{runtime: runtime}
}

// Normalize rewrites block in place. namedResults lists the method's named
// results, which a bare return passes on. Returns inside function literals
// belong to the literal and are left alone. A body that can fall off its
// end (a method without results) gets a trailing empty response.
// Normalizing an already normalized body changes nothing.
func (n *Normalizer) Normalize(block *ast.BlockStmt, namedResults []string, hasResults bool) {
	astutil.Apply(block, func(c *astutil.Cursor) bool {
		switch node := c.Node().(type) {
		case *ast.FuncLit:
			return false
		case *ast.ReturnStmt:
			if n.isWrapped(node) {
				return false
			}
			results := node.Results
			if len(results) == 0 && len(namedResults) > 0 {
				for _, name := range namedResults {
					results = append(results, ast.NewIdent(name))
				}
			}
			node.Results = []ast.Expr{n.respond(results)}
			return false
		}
		return true
	}, nil)

	if hasResults {
		return
	}
	if len(block.List) > 0 {
		if _, ok := block.List[len(block.List)-1].(*ast.ReturnStmt); ok {
			return
		}
	}
	block.List = append(block.List, &ast.ReturnStmt{Results: []ast.Expr{n.respond(nil)}})
}

func (n *Normalizer) respond(args []ast.Expr) *ast.CallExpr {
	return &ast.CallExpr{
		Fun:  &ast.SelectorExpr{X: ast.NewIdent(n.runtime), Sel: ast.NewIdent("Respond")},
		Args: args,
	}
}

func (n *Normalizer) isWrapped(ret *ast.ReturnStmt) bool {
	if len(ret.Results) != 1 {
		return false
	}
	call, ok := ret.Results[0].(*ast.CallExpr)
	if !ok {
		return false
	}
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "Respond" {
		return false
	}
	pkg, ok := sel.X.(*ast.Ident)
	return ok && pkg.Name == n.runtime
}
