package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/models"
	"github.com/toyz/synapse/internal/utils"
)

// MetadataDocument is the YAML export written next to a generated file
type MetadataDocument struct {
	Source      string               `yaml:"source"`
	Generated   string               `yaml:"generated"`
	Package     string               `yaml:"package"`
	ImportPath  string               `yaml:"import_path,omitempty"`
	Controllers []ControllerMetadata `yaml:"controllers"`
}

// ControllerMetadata describes one controller and its manager
type ControllerMetadata struct {
	Name         string            `yaml:"name"`
	Prefix       string            `yaml:"prefix"`
	Manager      string            `yaml:"manager"`
	Dependencies []string          `yaml:"dependencies,omitempty"`
	Providers    []string          `yaml:"providers,omitempty"`
	Handlers     []HandlerMetadata `yaml:"handlers"`
}

// HandlerMetadata describes one generated handler
type HandlerMetadata struct {
	models.MetadataInfo `yaml:",inline"`
	Method              string `yaml:"method"`
	Route               string `yaml:"route"`
	Source              string `yaml:"source"`
}

// MetadataPath returns the metadata file of a generated Go file
func MetadataPath(outputPath string) string {
	return strings.TrimSuffix(outputPath, utils.GeneratedSuffix) + utils.MetadataSuffix
}

// BuildMetadata describes the expansion of one file
func BuildMetadata(fe *models.FileExpansion) MetadataDocument {
	doc := MetadataDocument{
		Source:    filepath.Base(fe.SourcePath),
		Generated: filepath.Base(fe.OutputPath),
		Package:   fe.Package,
	}

	for _, expansion := range fe.Expansions {
		controller := ControllerMetadata{
			Name:         expansion.Aggregate,
			Prefix:       expansion.Prefix,
			Manager:      expansion.ManagerName,
			Dependencies: expansion.Dependencies,
			Providers:    expansion.Providers,
		}
		for i, handler := range expansion.Handlers {
			controller.Handlers = append(controller.Handlers, HandlerMetadata{
				MetadataInfo: expansion.Metadata[i],
				Method:       handler.Method.String(),
				Route:        handler.Route,
				Source:       expansion.Aggregate + "." + handler.MethodName,
			})
		}
		doc.Controllers = append(doc.Controllers, controller)
	}
	return doc
}

// WriteMetadata writes the metadata of fe and returns the file path.
// importPath may be empty when the package is outside a module.
func WriteMetadata(fe *models.FileExpansion, importPath string) (string, error) {
	path := MetadataPath(fe.OutputPath)
	doc := BuildMetadata(fe)
	doc.ImportPath = importPath

	var buf bytes.Buffer
	buf.WriteString("# " + strings.TrimPrefix(utils.GeneratedHeader, "// ") + "\n")

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return "", errors.WrapGenerateError("metadata", path, err)
	}
	if err := encoder.Close(); err != nil {
		return "", errors.WrapGenerateError("metadata", path, err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", errors.WrapFileSystemError("write", path, err)
	}
	return path, nil
}
