package cli

import (
	"os"

	"github.com/toyz/synapse/internal/errors"
)

// Cleaner removes generated files
type Cleaner struct {
	scanner *DirectoryScanner
}

// NewCleaner creates a new cleaner
func NewCleaner() *Cleaner {
	return &Cleaner{
		scanner: NewDirectoryScanner(),
	}
}

// CleanGeneratedFiles removes the generated Go files and metadata below
// the directory arguments and returns the removed paths. Go files without
// the generated header are left alone.
func (c *Cleaner) CleanGeneratedFiles(patterns []string) ([]string, error) {
	files, err := c.scanner.GeneratedFiles(patterns)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, file := range files {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			return removed, errors.WrapFileSystemError("remove", file, err)
		}
		removed = append(removed, file)
	}
	return removed, nil
}
