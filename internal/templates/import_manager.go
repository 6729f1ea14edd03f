package templates

import (
	"sort"
	"strconv"
	"strings"
)

type importSpec struct {
	name string
	path string
}

// ImportManager collects the imports of a generated file
type ImportManager struct {
	imports []importSpec
	paths   map[string]string // path -> name
}

// NewImportManager creates an empty import manager
func NewImportManager() *ImportManager {
	return &ImportManager{paths: make(map[string]string)}
}

// AddImport adds an unnamed import
func (im *ImportManager) AddImport(path string) {
	im.AddNamedImport("", path)
}

// AddNamedImport adds path under name. Blank and dot imports may repeat
// a path only once.
func (im *ImportManager) AddNamedImport(name, path string) {
	if path == "" {
		return
	}
	if existing, ok := im.paths[path]; ok && existing == name {
		return
	}
	im.paths[path] = name
	im.imports = append(im.imports, importSpec{name: name, path: path})
}

// Has reports whether path is imported
func (im *ImportManager) Has(path string) bool {
	_, ok := im.paths[path]
	return ok
}

// GenerateImports renders the import declaration, standard library first
func (im *ImportManager) GenerateImports() string {
	if len(im.imports) == 0 {
		return ""
	}

	specs := append([]importSpec(nil), im.imports...)
	sort.SliceStable(specs, func(i, j int) bool { return specs[i].path < specs[j].path })

	var std, external []string
	for _, spec := range specs {
		line := strconv.Quote(spec.path)
		if spec.name != "" {
			line = spec.name + " " + line
		}
		if isStandardLibrary(spec.path) {
			std = append(std, line)
		} else {
			external = append(external, line)
		}
	}

	if len(std)+len(external) == 1 {
		return "import " + append(std, external...)[0] + "\n"
	}

	var result strings.Builder
	result.WriteString("import (\n")
	for _, line := range std {
		result.WriteString("\t" + line + "\n")
	}
	if len(std) > 0 && len(external) > 0 {
		result.WriteString("\n")
	}
	for _, line := range external {
		result.WriteString("\t" + line + "\n")
	}
	result.WriteString(")\n")

	return result.String()
}

// isStandardLibrary treats paths without a dot in the first element as
// standard library packages
func isStandardLibrary(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	return !strings.Contains(first, ".")
}
