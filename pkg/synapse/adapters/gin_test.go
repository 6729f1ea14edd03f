package adapters

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Set Gin to test mode to reduce log output
	gin.SetMode(gin.TestMode)
}

func TestGinAdapter_BasicFunctionality(t *testing.T) {
	adapter, engine := NewDefaultGinAdapter()
	assert.Equal(t, "Gin", adapter.Name())

	adapter.Mount(testHandlers()...)

	req := httptest.NewRequest(http.MethodPost, "/users/42?sort=name&sort=id", strings.NewReader("payload"))
	req.Header.Set("X-Test", "yes")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeEchoBack(t, rec.Body.Bytes())
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, map[string]string{"id": "42"}, got.Params)
	assert.Equal(t, map[string]string{"sort": "name"}, got.Query)
	assert.Equal(t, "yes", got.Header)
	assert.Equal(t, "payload", got.Body)
}

func TestGinAdapter_ErrorAndEmpty(t *testing.T) {
	adapter, engine := NewDefaultGinAdapter()
	adapter.Mount(testHandlers()...)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status_code":404,"message":"missing"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/items/7", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGinAdapter_RouteGroup(t *testing.T) {
	engine := gin.New()
	NewGinAdapter(engine.Group("/v1")).Mount(testHandlers()...)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/users/5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "5", decodeEchoBack(t, rec.Body.Bytes()).Params["id"])
}
