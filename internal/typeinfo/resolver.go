// Package typeinfo looks up the result types of dependency methods so the
// rewriter can type provider results.
package typeinfo

import (
	"context"
	"go/ast"
	"go/types"
	"path/filepath"
	"strconv"
	"sync"

	"golang.org/x/tools/go/packages"

	"github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/models"
	"github.com/toyz/synapse/internal/utils"
)

const loadMode = packages.NeedName | packages.NeedTypes | packages.NeedImports | packages.NeedDeps

// Loader type-checks package directories with the generator build tag
// enabled. Loaded packages are cached per directory.
type Loader struct {
	buildTag string

	// loading serializes packages.Load so a directory is checked once
	loading sync.Mutex
	cache   *utils.Cache[string, *types.Package]
}

// NewLoader creates a loader for sources guarded by buildTag
func NewLoader(buildTag string) *Loader {
	return &Loader{
		buildTag: buildTag,
		cache:    utils.NewCache[string, *types.Package](),
	}
}

// Load type-checks the package in dir. Type errors are tolerated as long as
// the checker produced a package.
func (l *Loader) Load(ctx context.Context, dir string) (*types.Package, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.WrapFileSystemError("resolve", dir, err)
	}

	l.loading.Lock()
	defer l.loading.Unlock()

	if pkg, ok := l.cache.Get(abs); ok {
		return pkg, nil
	}

	cfg := &packages.Config{
		Context:    ctx,
		Mode:       loadMode,
		Dir:        abs,
		BuildFlags: []string{"-tags=" + l.buildTag},
	}
	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return nil, errors.WrapParseError("package "+abs, err)
	}
	if len(pkgs) == 0 || pkgs[0].Types == nil {
		return nil, errors.NewSyntaxError("no type information for package " + abs)
	}

	l.cache.Set(abs, pkgs[0].Types)
	return pkgs[0].Types, nil
}

// ForFile returns a resolver that renders types as seen from sf
func (l *Loader) ForFile(ctx context.Context, sf *models.SourceFile) (*Resolver, error) {
	pkg, err := l.Load(ctx, filepath.Dir(sf.Path))
	if err != nil {
		return nil, err
	}
	return NewResolver(pkg, sf.File), nil
}

// Resolver answers result-type queries for one source file
type Resolver struct {
	pkg     *types.Package
	imports map[string]string
}

// NewResolver creates a resolver for file within pkg
func NewResolver(pkg *types.Package, file *ast.File) *Resolver {
	return &Resolver{
		pkg:     pkg,
		imports: fileImports(pkg, file),
	}
}

// ResultTypes returns the result types of aggregate.field.method. ok is
// false when the method cannot be found or a result type names a package
// the file does not import.
func (r *Resolver) ResultTypes(aggregate, field, method string) ([]string, bool) {
	obj := r.pkg.Scope().Lookup(aggregate)
	if obj == nil {
		return nil, false
	}

	fieldObj, _, _ := types.LookupFieldOrMethod(obj.Type(), true, r.pkg, field)
	fieldVar, ok := fieldObj.(*types.Var)
	if !ok {
		return nil, false
	}

	fnObj, _, _ := types.LookupFieldOrMethod(fieldVar.Type(), true, r.pkg, method)
	fn, ok := fnObj.(*types.Func)
	if !ok {
		return nil, false
	}

	sig := fn.Type().(*types.Signature)
	missing := false
	qualifier := func(p *types.Package) string {
		if p == r.pkg {
			return ""
		}
		name, ok := r.imports[p.Path()]
		if !ok {
			missing = true
		}
		return name
	}

	results := make([]string, sig.Results().Len())
	for i := range results {
		results[i] = types.TypeString(sig.Results().At(i).Type(), qualifier)
	}
	if missing {
		return nil, false
	}
	return results, true
}

// fileImports maps import paths of file to the name they are referenced by
func fileImports(pkg *types.Package, file *ast.File) map[string]string {
	names := make(map[string]string)
	if file == nil {
		return names
	}

	byPath := make(map[string]*types.Package)
	for _, imp := range pkg.Imports() {
		byPath[imp.Path()] = imp
	}

	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		switch {
		case spec.Name != nil && (spec.Name.Name == "_" || spec.Name.Name == "."):
			continue
		case spec.Name != nil:
			names[path] = spec.Name.Name
		case byPath[path] != nil:
			names[path] = byPath[path].Name()
		default:
			names[path] = filepath.Base(path)
		}
	}
	return names
}
