package synapse

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// getUserHandler mirrors what the generator emits for a controller method
type getUserHandler struct {
	repoFind Provider
}

func (h *getUserHandler) Execute(req *HttpRequest) IntoResponse {
	name, err := Unpack2[string, error](h.repoFind.Execute(1))
	if err != nil {
		return Respond(nil, ErrNotFound(err.Error()))
	}
	return Respond(name)
}

func (h *getUserHandler) GetToken() string      { return "getUserHandler" }
func (h *getUserHandler) GetPath() string       { return "/users/:id" }
func (h *getUserHandler) GetMethod() HttpMethod { return MethodGet }

type userControllerManager struct{}

func (m *userControllerManager) GetToken() string { return "UserControllerManager" }

func (m *userControllerManager) GetDependencies() []string {
	return []string{"UserRepository"}
}

func (m *userControllerManager) GetHandlers(container *Container) ([]Handler, error) {
	getUser := &getUserHandler{}
	if err := container.Bind("Find_UserRepository", &getUser.repoFind); err != nil {
		return nil, err
	}
	return []Handler{getUser}, nil
}

func TestContainer_RegisterMethods(t *testing.T) {
	c := NewContainer()
	require.NoError(t, c.RegisterMethods(newRepo()))

	assert.Equal(t, []string{
		"Count_UserRepository",
		"Find_UserRepository",
		"Join_UserRepository",
		"Reset_UserRepository",
	}, c.Tokens())

	p, ok := c.Provider("Count_UserRepository")
	require.True(t, ok)
	assert.Equal(t, 2, p.Execute())
}

func TestContainer_DuplicateProvider(t *testing.T) {
	c := NewContainer()
	require.NoError(t, c.RegisterMethods(newRepo()))

	err := c.RegisterMethods(newRepo())
	assert.ErrorContains(t, err, "already registered")
}

func TestContainer_RegisterMethods_Errors(t *testing.T) {
	c := NewContainer()

	assert.Error(t, c.RegisterMethods(nil))
	assert.Error(t, c.RegisterMethods(struct{}{}))
}

func TestContainer_Bind(t *testing.T) {
	c := NewContainer()
	var p Provider

	assert.ErrorContains(t, c.Bind("Find_UserRepository", &p), "no provider")

	require.NoError(t, c.RegisterMethods(newRepo()))
	require.NoError(t, c.Bind("Find_UserRepository", &p))
	assert.Equal(t, "Find_UserRepository", p.GetToken())
}

func TestContainer_Handlers(t *testing.T) {
	c := NewContainer()
	manager := &userControllerManager{}

	_, err := c.Handlers(manager)
	assert.ErrorContains(t, err, "missing services: UserRepository")

	require.NoError(t, c.RegisterMethods(newRepo()))
	handlers, err := c.Handlers(manager)
	require.NoError(t, err)
	require.Len(t, handlers, 1)

	h := handlers[0]
	assert.Equal(t, MethodGet, h.GetMethod())
	assert.Equal(t, "/users/:id", h.GetPath())

	resp := h.Execute(NewHttpRequest(nil, MethodGet, "/users/1")).IntoResponse()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ada", string(resp.Body))
}
