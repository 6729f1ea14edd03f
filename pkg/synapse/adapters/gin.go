package adapters

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/toyz/synapse/pkg/synapse"
)

// GinAdapter mounts handlers on any gin.IRoutes, such as *gin.Engine or
// *gin.RouterGroup
type GinAdapter struct {
	routes gin.IRoutes
}

// NewGinAdapter creates a new Gin adapter
func NewGinAdapter(routes gin.IRoutes) *GinAdapter {
	return &GinAdapter{routes: routes}
}

// NewDefaultGinAdapter creates an adapter over gin.New()
func NewDefaultGinAdapter() (*GinAdapter, *gin.Engine) {
	engine := gin.New()
	return NewGinAdapter(engine), engine
}

// Name returns the adapter name
func (ga *GinAdapter) Name() string {
	return "Gin"
}

// Mount registers each handler under its method and path
func (ga *GinAdapter) Mount(handlers ...synapse.Handler) {
	for _, h := range handlers {
		ga.routes.Handle(h.GetMethod().String(), convertPath(h.GetPath()), convertGinHandler(h))
	}
}

func convertGinHandler(h synapse.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := newGinRequest(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, synapse.ErrBadRequest("failed to read request body"))
			return
		}
		writeGinResponse(c, h.Execute(req).IntoResponse())
	}
}

func newGinRequest(c *gin.Context) (*synapse.HttpRequest, error) {
	r := c.Request
	req := synapse.NewHttpRequest(r.Context(), parseMethod(r.Method), r.URL.Path)
	req.ID = requestID(r.Header)
	req.Header = r.Header.Clone()
	req.Query = r.URL.Query()

	for _, p := range c.Params {
		req.Params[p.Key] = p.Value
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

func writeGinResponse(c *gin.Context, resp *synapse.HttpResponse) {
	for key, values := range resp.Header {
		c.Writer.Header()[key] = values
	}
	if len(resp.Body) == 0 {
		c.Status(resp.StatusCode)
		return
	}
	c.Data(resp.StatusCode, contentType(resp), resp.Body)
}
