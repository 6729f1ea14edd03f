package generator

import (
	stderrors "errors"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/models"
	synparser "github.com/toyz/synapse/internal/parser"
	"github.com/toyz/synapse/internal/rewriter"
	"github.com/toyz/synapse/pkg/synapse"
)

const usersSource = `//go:build synapse

package users

import (
	"strings"

	"github.com/toyz/synapse/pkg/synapse"
)

type User struct {
	ID   string
	Name string
}

type UserRepository struct{}

func (r *UserRepository) Find(id string) (*User, error) { return &User{ID: id}, nil }
func (r *UserRepository) Save(u *User) error          { return nil }

type Mailer struct{}

func (m *Mailer) Send(to string) {}

// UserController serves the user endpoints
//
//synapse::controller("/users")
type UserController struct {
	//synapse::inject
	Repo *UserRepository
	//synapse::inject
	Mail *Mailer
}

//synapse::get("/:id")
func (c *UserController) GetUser(req *synapse.HttpRequest) (*User, error) {
	// lookup by path id
	return c.Repo.Find(strings.TrimSpace(req.Param("id")))
}

func (c *UserController) audit() {}

//synapse::POST("/")
func (c *UserController) CreateUser(req *synapse.HttpRequest) error {
	var u User
	if err := req.BindJSON(&u); err != nil {
		return err
	}
	c.Mail.Send(u.Name)
	return c.Repo.Save(&u)
}

//synapse::delete("/:id")
func (c *UserController) DeleteUser(req *synapse.HttpRequest) {
	if req.Param("id") == "" {
		return
	}
}
`

func parseSource(t *testing.T, src string) *models.SourceFile {
	t.Helper()
	sf, err := synparser.NewParser("", "").ParseSource("users.go", []byte(src))
	require.NoError(t, err)
	require.NotEmpty(t, sf.Aggregates)
	return sf
}

func expand(t *testing.T, src string, opts ...Option) (*models.Expansion, error) {
	t.Helper()
	sf := parseSource(t, src)
	return NewExpander(opts...).Expand(sf, sf.Aggregates[0])
}

// controller builds a minimal controller file around the given members
func controller(prefix string, members string) string {
	return `//go:build synapse

package api

import "github.com/toyz/synapse/pkg/synapse"

type UserRepository struct{}

func (r *UserRepository) Find(id string) (string, error) { return id, nil }
func (r *UserRepository) Count() int                     { return 0 }

//synapse::controller(` + prefix + `)
type Controller struct {
	//synapse::inject
	Repo *UserRepository
	limit int
}
` + members
}

func TestExpand_Users(t *testing.T) {
	expansion, err := expand(t, usersSource)
	require.NoError(t, err)

	assert.Equal(t, "UserController", expansion.Aggregate)
	assert.Equal(t, "/users", expansion.Prefix)
	assert.Equal(t, "UserControllerManager", expansion.ManagerName)
	assert.Equal(t, []string{"Mailer", "UserRepository"}, expansion.Dependencies)
	assert.Equal(t, []string{"Find_UserRepository", "Send_Mailer", "Save_UserRepository"}, expansion.Providers)

	require.Len(t, expansion.Handlers, 3)
	get, create, del := expansion.Handlers[0], expansion.Handlers[1], expansion.Handlers[2]

	assert.Equal(t, "GetUserHandler", get.HandlerName)
	assert.Equal(t, synapse.MethodGet, get.Method)
	assert.Equal(t, "/users/:id", get.Route)
	assert.Equal(t, []models.FieldDefinition{{Name: "repoFind", CapabilityType: "synapse.Provider"}}, get.Fields)
	assert.Contains(t, get.Source, "return synapse.Respond(c.repoFind.Execute(strings.TrimSpace(req.Param(\"id\"))))")
	assert.Contains(t, get.Source, "// lookup by path id")

	assert.Equal(t, "CreateUserHandler", create.HandlerName)
	assert.Equal(t, "POST", create.Verb)
	assert.Equal(t, synapse.MethodPost, create.Method)
	assert.Equal(t, "/users/", create.Route)
	assert.Equal(t, []string{"mailSend", "repoSave"}, fieldNames(create.Fields))
	assert.Contains(t, create.Source, "return synapse.Respond(err)")
	assert.Contains(t, create.Source, "c.mailSend.Execute(u.Name)")

	assert.Equal(t, synapse.MethodDelete, del.Method)
	assert.Empty(t, del.Fields)
	assert.Contains(t, del.Source, "return synapse.Respond()")

	require.Len(t, expansion.Metadata, 3)
	assert.Equal(t, models.MetadataInfo{
		StructName: "CreateUserHandler",
		Dependencies: []models.DependencyBinding{
			{FieldName: "mailSend", ProviderID: "Send_Mailer"},
			{FieldName: "repoSave", ProviderID: "Save_UserRepository"},
		},
	}, expansion.Metadata[1])

	assert.Contains(t, expansion.Manager, `container.Bind("Find_UserRepository", &getUserHandler.repoFind)`)
	assert.Contains(t, expansion.Manager, "return []synapse.Handler{getUserHandler, createUserHandler, deleteUserHandler}, nil")
}

func TestExpand_ScenarioNoDependencies(t *testing.T) {
	expansion, err := expand(t, controller(`"/users"`, `
//synapse::GET("/:id")
func (c *Controller) Show(req *synapse.HttpRequest) string {
	return req.Param("id")
}
`))
	require.NoError(t, err)

	require.Len(t, expansion.Handlers, 1)
	handler := expansion.Handlers[0]
	assert.Equal(t, "/users/:id", handler.Route)
	assert.Contains(t, handler.Source, `return "/users/:id"`)
	assert.Empty(t, expansion.Metadata[0].Dependencies)
	assert.Empty(t, handler.Injections)
}

func TestExpand_RouteCompositionIsVerbatim(t *testing.T) {
	tests := []struct {
		prefix   string
		path     string
		expected string
	}{
		{`"/api/"`, "/items", "/api//items"},
		{`"/api"`, "items", "/apiitems"},
		{"", "/health", "/health"},
		{`""`, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			prefix := tt.prefix
			src := controller(prefix, `
//synapse::get("`+tt.path+`")
func (c *Controller) Route() string { return "ok" }
`)
			if prefix == "" {
				src = strings.Replace(src, "//synapse::controller()", "//synapse::controller", 1)
			}
			expansion, err := expand(t, src)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, expansion.Handlers[0].Route)
		})
	}
}

func TestExpand_DependencyConflictAcrossHandlers(t *testing.T) {
	_, err := expand(t, controller(`"/users"`, `
//synapse::get("/:id")
func (c *Controller) Show(req *synapse.HttpRequest) (string, error) {
	return c.Repo.Find(req.Param("id"))
}

//synapse::get("/:id/again")
func (c *Controller) ShowAgain(req *synapse.HttpRequest) (string, error) {
	return c.Repo.Find(req.Param("id"))
}
`))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrDependencyConflict))

	var conflict *errors.DependencyConflictError
	require.True(t, stderrors.As(err, &conflict))
	assert.Equal(t, "Find_UserRepository", conflict.ProviderID)
	assert.Equal(t, "ShowAgainHandler", conflict.Handler)
}

func TestExpand_SameCallTwiceInOneHandler(t *testing.T) {
	expansion, err := expand(t, controller(`"/users"`, `
//synapse::get("/pair")
func (c *Controller) Pair() (string, string) {
	a, _ := c.Repo.Find("a")
	b, _ := c.Repo.Find("b")
	return a.(string), b.(string)
}
`))
	require.NoError(t, err)

	handler := expansion.Handlers[0]
	require.Len(t, handler.Injections, 1)
	assert.Len(t, handler.Fields, 1)
	assert.Equal(t, 2, strings.Count(handler.Source, "synapse.Unpack2[any, any](c.repoFind.Execute("))
}

func TestExpand_SameFieldDifferentFunctions(t *testing.T) {
	expansion, err := expand(t, controller(`"/users"`, `
//synapse::get("/stats")
func (c *Controller) Stats() any {
	return c.Repo.Count()
}

//synapse::get("/first")
func (c *Controller) First() (string, error) {
	return c.Repo.Find("first")
}
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"repoCount"}, fieldNames(expansion.Handlers[0].Fields))
	assert.Equal(t, []string{"repoFind"}, fieldNames(expansion.Handlers[1].Fields))
}

func TestExpand_Parity(t *testing.T) {
	expansion, err := expand(t, usersSource)
	require.NoError(t, err)

	for i, handler := range expansion.Handlers {
		assert.Len(t, handler.Fields, len(handler.Injections), handler.HandlerName)
		assert.Len(t, expansion.Metadata[i].Dependencies, len(handler.Injections), handler.HandlerName)
		assert.Equal(t, handler.HandlerName, expansion.Metadata[i].StructName)
		for j, inj := range handler.Injections {
			assert.Equal(t, inj.HandlerField(), handler.Fields[j].Name)
			assert.Equal(t, inj.ProviderID(), expansion.Metadata[i].Dependencies[j].ProviderID)
		}
	}
}

func TestExpand_Order(t *testing.T) {
	expansion, err := expand(t, controller(`"/o"`, `
//synapse::get("/c")
func (c *Controller) Charlie() string { return "c" }

func (c *Controller) helper() {}

//synapse::get("/a")
func (c *Controller) Alpha() string { return "a" }

//synapse::get("/b")
func (c *Controller) Bravo() string { return "b" }
`))
	require.NoError(t, err)

	var names []string
	for _, h := range expansion.Handlers {
		names = append(names, h.HandlerName)
	}
	assert.Equal(t, []string{"CharlieHandler", "AlphaHandler", "BravoHandler"}, names)

	alpha := strings.Index(expansion.Source, "type AlphaHandler struct")
	bravo := strings.Index(expansion.Source, "type BravoHandler struct")
	charlie := strings.Index(expansion.Source, "type CharlieHandler struct")
	helper := strings.Index(expansion.Source, "func (c *Controller) helper()")
	aggregate := strings.Index(expansion.Source, "type Controller struct")
	manager := strings.Index(expansion.Source, "type ControllerManager struct")

	assert.True(t, aggregate < helper, "aggregate before methods")
	assert.True(t, helper < charlie, "methods before handlers")
	assert.True(t, charlie < alpha && alpha < bravo, "handlers in method order")
	assert.True(t, bravo < manager, "manager last")
}

func TestExpand_InvalidAttributeFormat(t *testing.T) {
	for _, annotation := range []string{`get(123)`, `get`, `get("/a", "/b")`, `get(path)`} {
		t.Run(annotation, func(t *testing.T) {
			_, err := expand(t, controller(`"/x"`, `
//synapse::`+annotation+`
func (c *Controller) Route() string { return "" }
`))
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, errors.ErrInvalidAttributeFormat), err.Error())
		})
	}
}

func TestExpand_UnknownHttpMethod(t *testing.T) {
	_, err := expand(t, controller(`"/x"`, `
//synapse::fetch("/thing")
func (c *Controller) Fetch() string { return "" }
`))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrUnknownHttpMethod))

	var unknown *errors.UnknownHttpMethodError
	require.True(t, stderrors.As(err, &unknown))
	assert.Equal(t, "fetch", unknown.Verb)
}

func TestExpand_LeftoverReceiverMembers(t *testing.T) {
	_, err := expand(t, controller(`"/x"`, `
//synapse::get("/limit")
func (c *Controller) Limit() int {
	return c.limit
}
`))
	require.Error(t, err)

	var validation *errors.ValidationError
	require.True(t, stderrors.As(err, &validation))
	assert.Contains(t, err.Error(), "c.limit")
}

func TestExpand_Signature(t *testing.T) {
	tests := []struct {
		name      string
		signature string
		wantErr   bool
	}{
		{"no parameters", "func (c *Controller) Route() string", false},
		{"request", "func (c *Controller) Route(r *synapse.HttpRequest) string", false},
		{"unnamed request", "func (c *Controller) Route(*synapse.HttpRequest) string", false},
		{"wrong type", "func (c *Controller) Route(id string) string", true},
		{"two parameters", "func (c *Controller) Route(r *synapse.HttpRequest, id string) string", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := expand(t, controller(`"/x"`, "\n//synapse::get(\"/\")\n"+tt.signature+" { return \"\" }\n"))
			if tt.wantErr {
				var validation *errors.ValidationError
				assert.True(t, stderrors.As(err, &validation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExpand_NamedResults(t *testing.T) {
	expansion, err := expand(t, controller(`"/x"`, `
//synapse::get("/named")
func (c *Controller) Named(req *synapse.HttpRequest) (id string, err error) {
	id, err = req.Param("id"), nil
	return
}
`))
	require.NoError(t, err)

	source := expansion.Handlers[0].Source
	assert.Contains(t, source, "var id string")
	assert.Contains(t, source, "var err error")
	assert.Contains(t, source, "return synapse.Respond(id, err)")
}

type stubResolver map[string][]string

func (r stubResolver) ResultTypes(aggregate, field, method string) ([]string, bool) {
	types, ok := r[aggregate+"."+field+"."+method]
	return types, ok
}

func TestExpand_TypedResults(t *testing.T) {
	resolver := stubResolver{
		"Controller.Repo.Find":  {"string", "error"},
		"Controller.Repo.Count": {"int"},
	}
	factory := func(*models.SourceFile) (rewriter.ResultResolver, error) { return resolver, nil }

	expansion, err := expand(t, controller(`"/x"`, `
//synapse::get("/typed")
func (c *Controller) Typed() (int, error) {
	name, err := c.Repo.Find("x")
	if err != nil {
		return 0, err
	}
	return c.Repo.Count() + len(name), nil
}
`), WithResolverFactory(factory))
	require.NoError(t, err)

	source := expansion.Handlers[0].Source
	assert.Contains(t, source, `name, err := synapse.Unpack2[string, error](c.repoFind.Execute("x"))`)
	assert.Contains(t, source, `synapse.As[int](c.repoCount.Execute())`)
}

func TestExpand_ResolverFactoryError(t *testing.T) {
	factory := func(*models.SourceFile) (rewriter.ResultResolver, error) {
		return nil, stderrors.New("no packages")
	}
	_, err := expand(t, usersSource, WithResolverFactory(factory))
	assert.EqualError(t, err, "no packages")
}

func TestExpandFile_Output(t *testing.T) {
	sf := parseSource(t, usersSource)

	result, err := NewExpander().ExpandFile(sf)
	require.NoError(t, err)

	assert.Equal(t, "users.go", result.SourcePath)
	assert.Equal(t, "users_gen.go", result.OutputPath)
	assert.Equal(t, "users", result.Package)
	require.Len(t, result.Expansions, 1)

	content := string(result.Content)
	assert.True(t, strings.HasPrefix(content, "// Code generated by synapse. DO NOT EDIT.\n\n//go:build !synapse\n\npackage users\n"))
	assert.NotContains(t, content, "//go:build synapse\n")

	_, err = parser.ParseFile(token.NewFileSet(), "users_gen.go", result.Content, parser.ParseComments)
	require.NoError(t, err, content)

	order := []string{
		"type User struct",
		"func (r *UserRepository) Find",
		"type Mailer struct",
		"// UserController serves the user endpoints",
		"type UserController struct",
		"func (c *UserController) GetUser",
		"func (c *UserController) audit()",
		"type GetUserHandler struct",
		"type CreateUserHandler struct",
		"type DeleteUserHandler struct",
		"type UserControllerManager struct",
	}
	last := -1
	for _, marker := range order {
		idx := strings.Index(content, marker)
		require.NotEqual(t, -1, idx, "missing %q in\n%s", marker, content)
		assert.Greater(t, idx, last, "%q out of order", marker)
		last = idx
	}
}

func TestExpandFile_Deterministic(t *testing.T) {
	first, err := NewExpander().ExpandFile(parseSource(t, usersSource))
	require.NoError(t, err)
	second, err := NewExpander().ExpandFile(parseSource(t, usersSource))
	require.NoError(t, err)

	assert.Equal(t, string(first.Content), string(second.Content))
}

func TestExpandFile_AddsRuntimeImport(t *testing.T) {
	src := `//go:build synapse

package health

//synapse::controller
type Health struct{}

//synapse::get("/health")
func (Health) Check() string { return "ok" }
`
	result, err := NewExpander().ExpandFile(parseSource(t, src))
	require.NoError(t, err)

	content := string(result.Content)
	assert.Contains(t, content, `import "github.com/toyz/synapse/pkg/synapse"`)
	assert.Contains(t, content, "func (h *CheckHandler) Execute(_ *synapse.HttpRequest) synapse.IntoResponse")
}

func TestExpandFile_AliasedRuntime(t *testing.T) {
	src := `//go:build synapse

package health

import rt "github.com/toyz/synapse/pkg/synapse"

//synapse::controller
type Health struct{}

//synapse::head("/health")
func (h Health) Check(req *rt.HttpRequest) {}
`
	result, err := NewExpander().ExpandFile(parseSource(t, src))
	require.NoError(t, err)

	content := string(result.Content)
	assert.Contains(t, content, "return rt.MethodHead")
	assert.Contains(t, content, "return rt.Respond()")
	assert.NotContains(t, content, "synapse.HttpRequest")
	assert.NotContains(t, content, "synapse.Provider")
}

func TestExpandFile_RequiresBuildTag(t *testing.T) {
	src := strings.TrimPrefix(usersSource, "//go:build synapse\n")
	sf := parseSource(t, src)

	_, err := NewExpander().ExpandFile(sf)
	var validation *errors.ValidationError
	require.True(t, stderrors.As(err, &validation))

	_, err = NewExpander(WithRequireBuildTag(false)).ExpandFile(sf)
	assert.NoError(t, err)
}

func TestExpandFile_CustomBuildTag(t *testing.T) {
	src := strings.Replace(usersSource, "//go:build synapse", "//go:build codegen", 1)
	sf, err := synparser.NewParser("", "codegen").ParseSource("users.go", []byte(src))
	require.NoError(t, err)

	result, err := NewExpander(WithBuildTag("codegen")).ExpandFile(sf)
	require.NoError(t, err)
	assert.Contains(t, string(result.Content), "//go:build !codegen")
}

func TestExpandFile_DuplicateHandlerNames(t *testing.T) {
	src := `//go:build synapse

package api

//synapse::controller("/a")
type A struct{}

//synapse::get("/")
func (a *A) List() string { return "a" }

//synapse::controller("/b")
type B struct{}

//synapse::get("/")
func (b *B) List() string { return "b" }
`
	_, err := NewExpander().ExpandFile(parseSource(t, src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both generate type 'ListHandler'")
}

func TestExpandFile_NoControllers(t *testing.T) {
	sf, err := synparser.NewParser("", "").ParseSource("plain.go", []byte("package plain\n"))
	require.NoError(t, err)

	_, err = NewExpander().ExpandFile(sf)
	assert.Error(t, err)
}

func fieldNames(fields []models.FieldDefinition) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}
