package adapters

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/toyz/synapse/pkg/synapse"
)

// FiberAdapter mounts handlers on a fiber.Router (an *fiber.App or a group)
type FiberAdapter struct {
	router fiber.Router
}

// NewFiberAdapter creates a new Fiber adapter
func NewFiberAdapter(router fiber.Router) *FiberAdapter {
	return &FiberAdapter{router: router}
}

// NewDefaultFiberAdapter creates an adapter over a fresh Fiber app
func NewDefaultFiberAdapter() (*FiberAdapter, *fiber.App) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	return NewFiberAdapter(app), app
}

// Name returns the adapter name
func (fa *FiberAdapter) Name() string {
	return "Fiber"
}

// Mount registers each handler under its method and path
func (fa *FiberAdapter) Mount(handlers ...synapse.Handler) {
	for _, h := range handlers {
		fa.router.Add(h.GetMethod().String(), convertPath(h.GetPath()), convertFiberHandler(h))
	}
}

func convertFiberHandler(h synapse.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return writeFiberResponse(c, h.Execute(newFiberRequest(c)).IntoResponse())
	}
}

func newFiberRequest(c *fiber.Ctx) *synapse.HttpRequest {
	req := synapse.NewHttpRequest(c.UserContext(), parseMethod(c.Method()), c.Path())

	c.Request().Header.VisitAll(func(key, value []byte) {
		req.Header.Add(string(key), string(value))
	})
	c.Request().URI().QueryArgs().VisitAll(func(key, value []byte) {
		req.Query.Add(string(key), string(value))
	})
	for name, value := range c.AllParams() {
		req.Params[name] = strings.Clone(value)
	}

	req.ID = requestID(req.Header)
	// fasthttp reuses the body buffer once the handler returns
	req.Body = append([]byte(nil), c.Body()...)
	return req
}

func writeFiberResponse(c *fiber.Ctx, resp *synapse.HttpResponse) error {
	for key, values := range resp.Header {
		for i, value := range values {
			if i == 0 {
				c.Set(key, value)
				continue
			}
			c.Append(key, value)
		}
	}
	c.Status(resp.StatusCode)
	if len(resp.Body) == 0 {
		if resp.StatusCode == http.StatusNoContent {
			return nil
		}
		return c.Send(nil)
	}
	return c.Send(resp.Body)
}
