package cli

import (
	"sort"

	"github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/utils"
)

// DirectoryScanner resolves directory arguments into source files
type DirectoryScanner struct {
	fileProcessor *utils.FileProcessor
}

// NewDirectoryScanner creates a new directory scanner
func NewDirectoryScanner() *DirectoryScanner {
	return &DirectoryScanner{
		fileProcessor: utils.NewFileProcessor(),
	}
}

// ScanDirectories expands the directory arguments and keeps the
// directories holding at least one candidate Go source. Go-style
// "./..." patterns scan recursively.
func (s *DirectoryScanner) ScanDirectories(patterns []string) ([]string, error) {
	dirs, err := s.expand(patterns)
	if err != nil {
		return nil, err
	}

	var packageDirs []string
	for _, dir := range dirs {
		files, err := s.fileProcessor.SourceFiles(dir)
		if err != nil {
			return nil, errors.WrapFileSystemError("scan", dir, err)
		}
		if len(files) > 0 {
			packageDirs = append(packageDirs, dir)
		}
	}
	return packageDirs, nil
}

// SourceFiles lists the candidate Go sources of dirs, sorted by path
func (s *DirectoryScanner) SourceFiles(dirs []string) ([]string, error) {
	var files []string
	for _, dir := range dirs {
		found, err := s.fileProcessor.SourceFiles(dir)
		if err != nil {
			return nil, errors.WrapFileSystemError("scan", dir, err)
		}
		files = append(files, found...)
	}
	sort.Strings(files)
	return files, nil
}

// GeneratedFiles lists the generated files below the directory arguments
func (s *DirectoryScanner) GeneratedFiles(patterns []string) ([]string, error) {
	dirs, err := s.expand(patterns)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, dir := range dirs {
		found, err := s.fileProcessor.GeneratedFiles(dir)
		if err != nil {
			return nil, errors.WrapFileSystemError("scan", dir, err)
		}
		files = append(files, found...)
	}
	sort.Strings(files)
	return files, nil
}

func (s *DirectoryScanner) expand(patterns []string) ([]string, error) {
	dirs, err := s.fileProcessor.ExpandPatterns(patterns)
	if err != nil {
		return nil, errors.Wrap(errors.FileSystemErrorCode, "directory does not exist or is not readable", err).
			WithSuggestion("pass package directories, or ./... to scan recursively")
	}
	return dirs, nil
}
