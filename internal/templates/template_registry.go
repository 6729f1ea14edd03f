package templates

import (
	"bytes"
	"text/template"

	"github.com/toyz/synapse/internal/errors"
)

const (
	FileHeader = "file-header"
	Handler    = "handler"
	Manager    = "manager"
)

// TemplateRegistry holds the parsed generator templates
type TemplateRegistry struct {
	templates map[string]*template.Template
}

// NewTemplateRegistry parses every built-in template. The templates are
// constants, so a parse failure is a programming error.
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]*template.Template),
	}

	registry.register(FileHeader, FileHeaderTemplate)
	registry.register(Handler, HandlerTemplate)
	registry.register(Manager, ManagerTemplate)

	return registry
}

func (tr *TemplateRegistry) register(name, text string) {
	tr.templates[name] = template.Must(template.New(name).Funcs(funcMap).Parse(text))
}

// Has reports whether a template is registered under name
func (tr *TemplateRegistry) Has(name string) bool {
	_, exists := tr.templates[name]
	return exists
}

// Execute renders the named template
func (tr *TemplateRegistry) Execute(name string, data interface{}) (string, error) {
	if !tr.Has(name) {
		return "", errors.NewGenerationError("template not found: " + name).WithStage("render")
	}
	tmpl := tr.templates[name]

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.WrapTemplateError(name, "execute", err)
	}
	return buf.String(), nil
}

// RenderHandler renders one handler
func (tr *TemplateRegistry) RenderHandler(data HandlerData) (string, error) {
	return tr.Execute(Handler, data)
}

// RenderManager renders the manager of one aggregate
func (tr *TemplateRegistry) RenderManager(data ManagerData) (string, error) {
	return tr.Execute(Manager, data)
}

// RenderFileHeader renders the header, package clause and imports
func (tr *TemplateRegistry) RenderFileHeader(data FileHeaderData) (string, error) {
	return tr.Execute(FileHeader, data)
}
