package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// GeneratedHeader is the first line of every generated file
	GeneratedHeader = "// Code generated by synapse. DO NOT EDIT."

	// GeneratedSuffix marks generated Go files
	GeneratedSuffix = "_gen.go"

	// MetadataSuffix marks exported handler metadata
	MetadataSuffix = "_gen.yaml"
)

// FileProcessor finds source and generated files in directory trees
type FileProcessor struct{}

// NewFileProcessor creates a new file processor
func NewFileProcessor() *FileProcessor {
	return &FileProcessor{}
}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info os.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be processed
type DirectoryFilter func(path string, info os.DirEntry) bool

// DefaultGoFileFilter accepts Go sources, excluding tests and generated files
func DefaultGoFileFilter() FileFilter {
	return func(path string, info os.DirEntry) bool {
		if info.IsDir() {
			return false
		}

		name := info.Name()
		return strings.HasSuffix(name, ".go") &&
			!strings.HasSuffix(name, "_test.go") &&
			!strings.HasSuffix(name, GeneratedSuffix)
	}
}

// GeneratedFileFilter accepts generated Go files and their metadata
func GeneratedFileFilter() FileFilter {
	return func(path string, info os.DirEntry) bool {
		if info.IsDir() {
			return false
		}

		name := info.Name()
		return strings.HasSuffix(name, GeneratedSuffix) || strings.HasSuffix(name, MetadataSuffix)
	}
}

// DefaultDirectoryFilter skips directories that never hold package sources
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"vendor":       true,
		"node_modules": true,
		"testdata":     true,
	}

	return func(path string, info os.DirEntry) bool {
		if !info.IsDir() {
			return true
		}

		name := info.Name()
		if name == "." || name == ".." {
			return true
		}
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			return false
		}
		return !skipDirs[name]
	}
}

// ExpandPatterns resolves directory arguments. "dir/..." selects dir and
// every package directory below it; any other argument selects exactly
// that directory. The result is sorted and free of duplicates.
func (fp *FileProcessor) ExpandPatterns(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		dir = filepath.Clean(dir)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, pattern := range patterns {
		root, recursive := strings.CutSuffix(filepath.ToSlash(pattern), "/...")
		if pattern == "..." {
			root, recursive = ".", true
		}
		root = filepath.FromSlash(root)

		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to process directory %s: %w", root, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("not a directory: %s", root)
		}

		if !recursive {
			add(root)
			continue
		}

		filter := DefaultDirectoryFilter()
		err = filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !entry.IsDir() {
				return nil
			}
			if path != root && !filter(path, entry) {
				return filepath.SkipDir
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to process directory %s: %w", root, err)
		}
	}

	sort.Strings(dirs)
	return dirs, nil
}

// SourceFiles lists the candidate Go sources directly inside dir
func (fp *FileProcessor) SourceFiles(dir string) ([]string, error) {
	return fp.listDir(dir, DefaultGoFileFilter())
}

// GeneratedFiles lists generated files directly inside dir. Go files only
// count when they start with GeneratedHeader.
func (fp *FileProcessor) GeneratedFiles(dir string) ([]string, error) {
	candidates, err := fp.listDir(dir, GeneratedFileFilter())
	if err != nil {
		return nil, err
	}

	var files []string
	for _, path := range candidates {
		if strings.HasSuffix(path, ".go") {
			generated, err := IsGeneratedFile(path)
			if err != nil {
				return nil, err
			}
			if !generated {
				continue
			}
		}
		files = append(files, path)
	}
	return files, nil
}

func (fp *FileProcessor) listDir(dir string, filter FileFilter) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to process directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if filter(path, entry) {
			files = append(files, path)
		}
	}
	return files, nil
}

// IsGeneratedFile reports whether the first line of path is GeneratedHeader
func IsGeneratedFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return false, scanner.Err()
	}
	return strings.TrimSpace(scanner.Text()) == GeneratedHeader, nil
}
