package templates

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/synapse/internal/models"
)

func parses(t *testing.T, src string) {
	t.Helper()
	_, err := parser.ParseFile(token.NewFileSet(), "gen.go", "package p\n\n"+src, parser.AllErrors)
	require.NoError(t, err, src)
}

func TestRenderHandler(t *testing.T) {
	registry := NewTemplateRegistry()

	out, err := registry.RenderHandler(HandlerData{
		Name:         "GetUserHandler",
		Aggregate:    "UserController",
		MethodName:   "GetUser",
		Method:       "GET",
		MethodConst:  "MethodGet",
		Route:        "/users/:id",
		Receiver:     "c",
		RequestParam: "req",
		Runtime:      "synapse",
		Fields: []models.FieldDefinition{
			{Name: "repoFind", CapabilityType: "synapse.Provider"},
		},
		Body: "{\n\treturn synapse.Respond(c.repoFind.Execute(req.Param(\"id\")))\n}",
	})
	require.NoError(t, err)
	parses(t, out)

	assert.Contains(t, out, "type GetUserHandler struct {\n\trepoFind synapse.Provider\n}")
	assert.Contains(t, out, "func (c *GetUserHandler) Execute(req *synapse.HttpRequest) synapse.IntoResponse {")
	assert.Contains(t, out, `return "GetUserHandler"`)
	assert.Contains(t, out, `return "/users/:id"`)
	assert.Contains(t, out, "return synapse.MethodGet")
}

func TestRenderHandler_NoFields(t *testing.T) {
	out, err := NewTemplateRegistry().RenderHandler(HandlerData{
		Name:         "PingHandler",
		Method:       "HEAD",
		MethodConst:  "MethodHead",
		Route:        `/ping"quoted"`,
		Receiver:     "h",
		RequestParam: "_",
		Runtime:      "rt",
		Body:         "{\n\treturn rt.Respond()\n}",
	})
	require.NoError(t, err)
	parses(t, out)

	assert.Contains(t, out, "type PingHandler struct {\n}")
	assert.Contains(t, out, `return "/ping\"quoted\""`)
	assert.Contains(t, out, "Execute(_ *rt.HttpRequest) rt.IntoResponse")
}

func TestRenderManager(t *testing.T) {
	out, err := NewTemplateRegistry().RenderManager(ManagerData{
		Name:         "UserControllerManager",
		Aggregate:    "UserController",
		Runtime:      "synapse",
		Dependencies: []string{"Store", "UserRepository"},
		Handlers: []ManagerHandler{
			{
				Var:  "getUserHandler",
				Type: "GetUserHandler",
				Bindings: []models.DependencyBinding{
					{FieldName: "repoFind", ProviderID: "Find_UserRepository"},
					{FieldName: "cacheGet", ProviderID: "Get_Store"},
				},
			},
			{Var: "healthHandler", Type: "HealthHandler"},
		},
	})
	require.NoError(t, err)
	parses(t, out)

	assert.Contains(t, out, `return "UserControllerManager"`)
	assert.Contains(t, out, `return []string{"Store", "UserRepository"}`)
	assert.Contains(t, out, `if err := container.Bind("Find_UserRepository", &getUserHandler.repoFind); err != nil {`)
	assert.Contains(t, out, `container.Bind("Get_Store", &getUserHandler.cacheGet)`)
	assert.Contains(t, out, "healthHandler := &HealthHandler{}")
	assert.Contains(t, out, "return []synapse.Handler{getUserHandler, healthHandler}, nil")
	assert.Less(t,
		strings.Index(out, "Find_UserRepository"), strings.Index(out, "Get_Store"),
		"bindings keep field order")
}

func TestRenderManager_Empty(t *testing.T) {
	out, err := NewTemplateRegistry().RenderManager(ManagerData{
		Name:      "EmptyManager",
		Aggregate: "Empty",
		Runtime:   "synapse",
	})
	require.NoError(t, err)
	parses(t, out)

	assert.Contains(t, out, "return []string{}")
	assert.Contains(t, out, "return []synapse.Handler{}, nil")
}

func TestRenderFileHeader(t *testing.T) {
	im := NewImportManager()
	im.AddImport("github.com/toyz/synapse/pkg/synapse")
	im.AddImport("strings")

	out, err := NewTemplateRegistry().RenderFileHeader(FileHeaderData{
		BuildTag: "synapse",
		Package:  "users",
		Imports:  im.GenerateImports(),
	})
	require.NoError(t, err)

	expected := "// Code generated by synapse. DO NOT EDIT.\n\n" +
		"//go:build !synapse\n\n" +
		"package users\n\n" +
		"import (\n\t\"strings\"\n\n\t\"github.com/toyz/synapse/pkg/synapse\"\n)\n"
	assert.Equal(t, expected, out)
}

func TestRegistry_UnknownTemplate(t *testing.T) {
	registry := NewTemplateRegistry()
	assert.True(t, registry.Has(Handler))
	assert.False(t, registry.Has("missing"))

	_, err := registry.Execute("missing", nil)
	assert.Error(t, err)
}

func TestImportManager(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(*ImportManager)
		expected string
	}{
		{
			name:     "empty",
			setup:    func(*ImportManager) {},
			expected: "",
		},
		{
			name:     "single",
			setup:    func(im *ImportManager) { im.AddImport("fmt") },
			expected: "import \"fmt\"\n",
		},
		{
			name: "named and duplicates",
			setup: func(im *ImportManager) {
				im.AddNamedImport("rt", "github.com/toyz/synapse/pkg/synapse")
				im.AddImport("fmt")
				im.AddImport("fmt")
				im.AddNamedImport("_", "embed")
			},
			expected: "import (\n\t_ \"embed\"\n\t\"fmt\"\n\n\trt \"github.com/toyz/synapse/pkg/synapse\"\n)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			im := NewImportManager()
			tt.setup(im)
			assert.Equal(t, tt.expected, im.GenerateImports())
		})
	}
}

func TestImportManager_Lookup(t *testing.T) {
	im := NewImportManager()
	im.AddNamedImport("rt", "github.com/toyz/synapse/pkg/synapse")

	assert.True(t, im.Has("github.com/toyz/synapse/pkg/synapse"))
	assert.Contains(t, im.GenerateImports(), `rt "github.com/toyz/synapse/pkg/synapse"`)
	assert.False(t, im.Has("fmt"))
}
