package utils

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/tools/imports"
)

// imports.LocalPrefix is package state
var localPrefixMu sync.Mutex

// FormatGoCode formats generated source like goimports would, grouping
// imports under localPrefix (usually the module path) last. Missing or
// unused imports are fixed up.
func FormatGoCode(filename string, source []byte, localPrefix string) ([]byte, error) {
	localPrefixMu.Lock()
	defer localPrefixMu.Unlock()

	previous := imports.LocalPrefix
	imports.LocalPrefix = localPrefix
	defer func() { imports.LocalPrefix = previous }()

	formatted, err := imports.Process(filename, source, &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		if parseErr := ValidateGoCode(string(source)); parseErr != nil {
			return nil, fmt.Errorf("invalid Go syntax: %w (format error: %v)", parseErr, err)
		}
		return nil, err
	}
	return formatted, nil
}

// WriteGoFile writes content to filename through a temporary file in the
// same directory so readers never observe a partial file
func WriteGoFile(filename string, content []byte) error {
	dir := filepath.Dir(filename)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filename)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set mode of %s: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filename, err)
	}
	return os.Rename(tmp.Name(), filename)
}

// ValidateGoCode checks if the provided code is valid Go syntax
func ValidateGoCode(code string) error {
	fset := token.NewFileSet()
	_, err := parser.ParseFile(fset, "", code, parser.ParseComments)
	return err
}
