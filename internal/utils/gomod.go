package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// GoModParser reads module paths from go.mod files. Results are cached
// until the file changes.
type GoModParser struct {
	modules *Cache[string, string]
}

// NewGoModParser creates a go.mod parser
func NewGoModParser() *GoModParser {
	return &GoModParser{
		modules: NewCache[string, string](),
	}
}

// ParseModuleName extracts the module path from a go.mod file
func (p *GoModParser) ParseModuleName(goModPath string) (string, error) {
	cleanPath := filepath.Clean(goModPath)
	if filepath.Base(cleanPath) != "go.mod" {
		return "", fmt.Errorf("file is not a go.mod file: %s", goModPath)
	}

	if cached, ok := p.modules.GetWithFileValidation(cleanPath, cleanPath); ok {
		return cached, nil
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod file: %w", err)
	}

	modFile, err := modfile.ParseLax(cleanPath, content, nil)
	if err != nil {
		return "", fmt.Errorf("failed to parse go.mod file: %w", err)
	}
	if modFile.Module == nil {
		return "", fmt.Errorf("no module declaration found in go.mod")
	}

	path := modFile.Module.Mod.Path
	_ = p.modules.SetWithFileInfo(cleanPath, path, cleanPath)
	return path, nil
}

// FindGoModFile searches for go.mod starting at startDir and walking up
func (p *GoModParser) FindGoModFile(startDir string) (string, error) {
	currentDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", startDir, err)
	}

	for {
		goModPath := filepath.Join(currentDir, "go.mod")
		if info, err := os.Stat(goModPath); err == nil && !info.IsDir() {
			return goModPath, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", fmt.Errorf("go.mod file not found")
}

// ModuleFor returns the module path and root directory enclosing dir
func (p *GoModParser) ModuleFor(dir string) (modulePath, root string, err error) {
	goModPath, err := p.FindGoModFile(dir)
	if err != nil {
		return "", "", err
	}
	modulePath, err = p.ParseModuleName(goModPath)
	if err != nil {
		return "", "", err
	}
	return modulePath, filepath.Dir(goModPath), nil
}
