package cli

import (
	"fmt"
	"path/filepath"

	"github.com/toyz/synapse/internal/utils"
)

// ModuleResolver handles resolving Go module information
type ModuleResolver struct {
	gomod *utils.GoModParser
}

// NewModuleResolver creates a new module resolver
func NewModuleResolver() *ModuleResolver {
	return &ModuleResolver{gomod: utils.NewGoModParser()}
}

// ResolveModuleName returns customModule when set, otherwise the module
// path of the go.mod enclosing dir
func (r *ModuleResolver) ResolveModuleName(customModule, dir string) (string, error) {
	if customModule != "" {
		return customModule, nil
	}

	moduleName, _, err := r.gomod.ModuleFor(dir)
	if err != nil {
		return "", fmt.Errorf("failed to determine module name: %w (consider using --module flag)", err)
	}
	return moduleName, nil
}

// BuildPackagePath builds the import path of packageDir from the go.mod
// that encloses it. moduleName replaces the declared module path when set.
func (r *ModuleResolver) BuildPackagePath(moduleName, packageDir string) (string, error) {
	declared, root, err := r.gomod.ModuleFor(packageDir)
	if err != nil {
		return "", fmt.Errorf("failed to determine module of %s: %w", packageDir, err)
	}
	if moduleName == "" {
		moduleName = declared
	}

	absPackageDir, err := filepath.Abs(packageDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve package directory: %w", err)
	}
	relPath, err := filepath.Rel(root, absPackageDir)
	if err != nil {
		return "", fmt.Errorf("failed to calculate relative path: %w", err)
	}

	importPath := filepath.ToSlash(relPath)
	if importPath == "." {
		return moduleName, nil
	}
	return moduleName + "/" + importPath, nil
}
