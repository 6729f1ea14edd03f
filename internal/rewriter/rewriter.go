package rewriter

import (
	"go/ast"
	"go/parser"
	"go/token"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/toyz/synapse/internal/models"
)

// ResultResolver reports the result types of a dependency method as Go
// type expressions valid in the controller's file
type ResultResolver interface {
	ResultTypes(aggregate, field, method string) ([]string, bool)
}

// Rewriter replaces calls through injected fields with provider calls
type Rewriter struct {
	aggregate string
	receiver  string
	fields    map[string]string
	runtime   string
	resolver  ResultResolver
}

// Option configures a Rewriter
type Option func(*Rewriter)

// WithResolver types provider results with synapse.As and synapse.UnpackN
func WithResolver(r ResultResolver) Option {
	return func(rw *Rewriter) {
		rw.resolver = r
	}
}

// WithRuntimeName sets the identifier the runtime package is imported as
func WithRuntimeName(name string) Option {
	return func(rw *Rewriter) {
		rw.runtime = name
	}
}

// New creates a rewriter for methods of aggregate with the given receiver
// name and dependency field table (field -> provider manager type)
func New(aggregate, receiver string, fields map[string]string, opts ...Option) *Rewriter {
	rw := &Rewriter{
		aggregate: aggregate,
		receiver:  receiver,
		fields:    fields,
		runtime:   "synapse",
	}
	for _, opt := range opts {
		opt(rw)
	}
	return rw
}

// Rewrite walks block depth-first, closures included, rewriting every
// recv.Field.Fn(args) where Field is a dependency field into
// recv.<field><Fn>.Execute(args). It returns one injection per distinct
// (Fn, Field) in first-seen order.
func (rw *Rewriter) Rewrite(block *ast.BlockStmt) []models.Injection {
	if rw.receiver == "" || rw.receiver == "_" || len(rw.fields) == 0 {
		return nil
	}

	var injections []models.Injection
	seen := make(map[[2]string]bool)
	arity := make(map[*ast.CallExpr]int)
	wrap := make(map[*ast.CallExpr][]ast.Expr)
	// calls run by defer or go must stay bare; wrapping would evaluate them
	// when the statement executes
	detached := make(map[*ast.CallExpr]bool)

	pre := func(c *astutil.Cursor) bool {
		switch n := c.Node().(type) {
		case *ast.DeferStmt:
			detached[n.Call] = true
		case *ast.GoStmt:
			detached[n.Call] = true
		case *ast.AssignStmt:
			rw.noteArity(arity, n.Lhs, n.Rhs)
		case *ast.ValueSpec:
			rw.noteArity(arity, identExprs(n.Names), n.Values)
		case *ast.CallExpr:
			field, fn, ok := rw.match(n)
			if !ok {
				return true
			}

			inj := models.Injection{
				ProviderManager: rw.fields[field],
				SourceFunction:  fn,
				FieldName:       field,
			}
			key := [2]string{fn, field}
			if !seen[key] {
				seen[key] = true
				injections = append(injections, inj)
			}

			n.Fun = &ast.SelectorExpr{
				X: &ast.SelectorExpr{
					X:   ast.NewIdent(rw.receiver),
					Sel: ast.NewIdent(inj.HandlerField()),
				},
				Sel: ast.NewIdent("Execute"),
			}
			// a spread slice is handed to the provider whole
			n.Ellipsis = 0

			if detached[n] {
				return true
			}
			if types := rw.resultTypes(field, fn, arity[n]); types != nil {
				wrap[n] = types
			}
		}
		return true
	}

	post := func(c *astutil.Cursor) bool {
		call, ok := c.Node().(*ast.CallExpr)
		if !ok {
			return true
		}
		if types, ok := wrap[call]; ok {
			c.Replace(rw.typed(call, types))
		}
		return true
	}

	astutil.Apply(block, pre, post)
	return injections
}

// match reports whether call is recv.Field.Fn(...) on a dependency field
func (rw *Rewriter) match(call *ast.CallExpr) (field, fn string, ok bool) {
	outer, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return "", "", false
	}
	inner, ok := outer.X.(*ast.SelectorExpr)
	if !ok {
		return "", "", false
	}
	recv, ok := inner.X.(*ast.Ident)
	if !ok || recv.Name != rw.receiver {
		return "", "", false
	}
	if _, isDep := rw.fields[inner.Sel.Name]; !isDep {
		return "", "", false
	}
	return inner.Sel.Name, outer.Sel.Name, true
}

// noteArity remembers how many values a lone dependency call on the right
// of a multi-value assignment must produce
func (rw *Rewriter) noteArity(arity map[*ast.CallExpr]int, lhs, rhs []ast.Expr) {
	if len(lhs) < 2 || len(rhs) != 1 {
		return
	}
	if call, ok := rhs[0].(*ast.CallExpr); ok {
		if _, _, dep := rw.match(call); dep {
			arity[call] = len(lhs)
		}
	}
}

// resultTypes decides how a rewritten call is converted back to typed
// values. nil means the bare provider result is used.
func (rw *Rewriter) resultTypes(field, fn string, want int) []ast.Expr {
	if rw.resolver != nil {
		if names, ok := rw.resolver.ResultTypes(rw.aggregate, field, fn); ok && len(names) >= 1 && len(names) <= 3 {
			if types, ok := parseTypes(names); ok {
				return types
			}
		}
	}
	if want == 2 || want == 3 {
		types := make([]ast.Expr, want)
		for i := range types {
			types[i] = ast.NewIdent("any")
		}
		return types
	}
	return nil
}

func (rw *Rewriter) typed(call *ast.CallExpr, types []ast.Expr) ast.Expr {
	var fun ast.Expr
	switch len(types) {
	case 1:
		fun = &ast.IndexExpr{X: rw.runtimeSel("As"), Index: types[0]}
	case 2:
		fun = &ast.IndexListExpr{X: rw.runtimeSel("Unpack2"), Indices: types}
	default:
		fun = &ast.IndexListExpr{X: rw.runtimeSel("Unpack3"), Indices: types}
	}
	return &ast.CallExpr{Fun: fun, Args: []ast.Expr{call}}
}

func (rw *Rewriter) runtimeSel(name string) ast.Expr {
	return &ast.SelectorExpr{X: ast.NewIdent(rw.runtime), Sel: ast.NewIdent(name)}
}

func parseTypes(names []string) ([]ast.Expr, bool) {
	types := make([]ast.Expr, 0, len(names))
	for _, name := range names {
		expr, err := parser.ParseExpr(name)
		if err != nil {
			return nil, false
		}
		stripPositions(expr)
		types = append(types, expr)
	}
	return types, true
}

func identExprs(idents []*ast.Ident) []ast.Expr {
	exprs := make([]ast.Expr, len(idents))
	for i, id := range idents {
		exprs[i] = id
	}
	return exprs
}

// stripPositions clears the positions of a parsed type expression so the
// printer does not mix them up with positions of the body's file set
func stripPositions(expr ast.Expr) {
	ast.Inspect(expr, func(node ast.Node) bool {
		switch n := node.(type) {
		case *ast.Ident:
			n.NamePos = token.NoPos
		case *ast.StarExpr:
			n.Star = token.NoPos
		case *ast.ArrayType:
			n.Lbrack = token.NoPos
		case *ast.MapType:
			n.Map = token.NoPos
		case *ast.ChanType:
			n.Begin, n.Arrow = token.NoPos, token.NoPos
		case *ast.IndexExpr:
			n.Lbrack, n.Rbrack = token.NoPos, token.NoPos
		case *ast.IndexListExpr:
			n.Lbrack, n.Rbrack = token.NoPos, token.NoPos
		case *ast.FuncType:
			n.Func = token.NoPos
		case *ast.FieldList:
			n.Opening, n.Closing = token.NoPos, token.NoPos
		case *ast.InterfaceType:
			n.Interface = token.NoPos
		case *ast.StructType:
			n.Struct = token.NoPos
		case *ast.Ellipsis:
			n.Ellipsis = token.NoPos
		case *ast.ParenExpr:
			n.Lparen, n.Rparen = token.NoPos, token.NoPos
		}
		return true
	})
}
