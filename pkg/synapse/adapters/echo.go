package adapters

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/toyz/synapse/pkg/synapse"
)

// EchoRouter is satisfied by *echo.Echo and *echo.Group
type EchoRouter interface {
	Add(method, path string, handler echo.HandlerFunc, middleware ...echo.MiddlewareFunc) *echo.Route
}

// EchoAdapter mounts handlers on an Echo router
type EchoAdapter struct {
	router      EchoRouter
	middlewares []echo.MiddlewareFunc
}

// NewEchoAdapter creates a new Echo adapter. The middlewares are applied to
// every mounted route.
func NewEchoAdapter(router EchoRouter, middlewares ...echo.MiddlewareFunc) *EchoAdapter {
	return &EchoAdapter{router: router, middlewares: middlewares}
}

// NewDefaultEchoAdapter creates an adapter over a fresh Echo instance
func NewDefaultEchoAdapter() (*EchoAdapter, *echo.Echo) {
	e := echo.New()
	e.HideBanner = true
	return NewEchoAdapter(e), e
}

// Name returns the adapter name
func (ea *EchoAdapter) Name() string {
	return "Echo"
}

// Mount registers each handler under its method and path
func (ea *EchoAdapter) Mount(handlers ...synapse.Handler) {
	for _, h := range handlers {
		ea.router.Add(h.GetMethod().String(), convertPath(h.GetPath()), ea.convertHandler(h), ea.middlewares...)
	}
}

func (ea *EchoAdapter) convertHandler(h synapse.Handler) echo.HandlerFunc {
	return func(c echo.Context) error {
		req, err := newEchoRequest(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
		}
		return writeEchoResponse(c, h.Execute(req).IntoResponse())
	}
}

func newEchoRequest(c echo.Context) (*synapse.HttpRequest, error) {
	r := c.Request()
	req := synapse.NewHttpRequest(r.Context(), parseMethod(r.Method), r.URL.Path)
	req.ID = requestID(r.Header)
	req.Header = r.Header.Clone()
	req.Query = c.QueryParams()

	values := c.ParamValues()
	for i, name := range c.ParamNames() {
		if i < len(values) {
			req.Params[name] = values[i]
		}
	}

	if r.Body != nil {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		req.Body = body
	}
	return req, nil
}

func writeEchoResponse(c echo.Context, resp *synapse.HttpResponse) error {
	header := c.Response().Header()
	for key, values := range resp.Header {
		header[key] = values
	}
	if len(resp.Body) == 0 {
		return c.NoContent(resp.StatusCode)
	}
	return c.Blob(resp.StatusCode, contentType(resp), resp.Body)
}
