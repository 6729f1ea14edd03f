// Package templates renders the Go source fragments of generated files.
package templates

import (
	"strconv"
	"text/template"

	"github.com/toyz/synapse/internal/models"
)

// FileHeaderTemplate opens every generated compilation unit
const FileHeaderTemplate = `// Code generated by synapse. DO NOT EDIT.

//go:build !{{.BuildTag}}

package {{.Package}}
{{if .Imports}}
{{.Imports}}{{end}}`

// HandlerTemplate renders one synthesized handler and its dispatch contract
const HandlerTemplate = `// {{.Name}} serves {{.Method}} {{.Route}}
type {{.Name}} struct {
{{- range .Fields}}
	{{.Name}} {{.CapabilityType}}
{{- end}}
}

// Execute runs the body of {{.Aggregate}}.{{.MethodName}} for one request
func ({{.Receiver}} *{{.Name}}) Execute({{.RequestParam}} *{{.Runtime}}.HttpRequest) {{.Runtime}}.IntoResponse {{.Body}}

func (h *{{.Name}}) GetToken() string {
	return {{quote .Name}}
}

func (h *{{.Name}}) GetPath() string {
	return {{quote .Route}}
}

func (h *{{.Name}}) GetMethod() {{.Runtime}}.HttpMethod {
	return {{.Runtime}}.{{.MethodConst}}
}
`

// ManagerTemplate renders the registration type of one aggregate
const ManagerTemplate = `// {{.Name}} registers the handlers generated from {{.Aggregate}}
type {{.Name}} struct{}

func New{{.Name}}() *{{.Name}} {
	return &{{.Name}}{}
}

func (m *{{.Name}}) GetToken() string {
	return {{quote .Name}}
}

// GetDependencies lists the provider types the handlers are bound from
func (m *{{.Name}}) GetDependencies() []string {
	return []string{ {{- range $i, $dep := .Dependencies}}{{if $i}}, {{end}}{{quote $dep}}{{end -}} }
}

// GetHandlers builds every handler and binds its providers from container
func (m *{{.Name}}) GetHandlers(container *{{.Runtime}}.Container) ([]{{.Runtime}}.Handler, error) {
{{- range .Handlers}}
	{{.Var}} := &{{.Type}}{}
{{- $var := .Var}}
{{- range .Bindings}}
	if err := container.Bind({{quote .ProviderID}}, &{{$var}}.{{.FieldName}}); err != nil {
		return nil, err
	}
{{- end}}
{{end}}
	return []{{.Runtime}}.Handler{ {{- range $i, $h := .Handlers}}{{if $i}}, {{end}}{{$h.Var}}{{end -}} }, nil
}
`

// FileHeaderData fills FileHeaderTemplate
type FileHeaderData struct {
	BuildTag string
	Package  string
	Imports  string
}

// HandlerData fills HandlerTemplate
type HandlerData struct {
	Name         string // generated struct name, also the token
	Aggregate    string
	MethodName   string
	Method       string // canonical verb, e.g. GET
	MethodConst  string // runtime constant, e.g. MethodGet
	Route        string
	Receiver     string
	RequestParam string
	Runtime      string // identifier the runtime package is imported as
	Fields       []models.FieldDefinition
	Body         string // block statement, braces included
}

// ManagerHandler is one handler constructed by the manager
type ManagerHandler struct {
	Var      string
	Type     string
	Bindings []models.DependencyBinding
}

// ManagerData fills ManagerTemplate
type ManagerData struct {
	Name         string
	Aggregate    string
	Runtime      string
	Dependencies []string
	Handlers     []ManagerHandler
}

var funcMap = template.FuncMap{
	"quote": strconv.Quote,
}
