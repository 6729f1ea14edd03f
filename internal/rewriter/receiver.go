package rewriter

import (
	"go/ast"
	"sort"
)

// LeftoverMembers lists receiver members still referenced by block after
// rewriting, other than the generated handler fields in allowed. Generated
// handlers only carry provider fields, so any other recv.X would not compile.
func LeftoverMembers(block *ast.BlockStmt, receiver string, allowed map[string]bool) []string {
	if receiver == "" || receiver == "_" {
		return nil
	}

	found := make(map[string]bool)
	ast.Inspect(block, func(node ast.Node) bool {
		sel, ok := node.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if id, ok := sel.X.(*ast.Ident); ok && id.Name == receiver && !allowed[sel.Sel.Name] {
			found[sel.Sel.Name] = true
		}
		return true
	})

	members := make([]string, 0, len(found))
	for name := range found {
		members = append(members, name)
	}
	sort.Strings(members)
	return members
}
