// Package adapters mounts generated synapse handlers on Echo, Gin and
// Fiber routers.
package adapters

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/toyz/synapse/pkg/synapse"
)

// RequestIDHeader is read to populate HttpRequest.ID
const RequestIDHeader = "X-Request-ID"

// Adapter is implemented by every framework adapter
type Adapter interface {
	Name() string
	Mount(handlers ...synapse.Handler)
}

// MountManagers resolves the handlers of every manager from container and
// mounts them on a. Nothing is mounted when any manager fails.
func MountManagers(a Adapter, container *synapse.Container, managers ...synapse.Manager) error {
	handlers, err := container.Handlers(managers...)
	if err != nil {
		return err
	}
	a.Mount(handlers...)
	return nil
}

// convertPath rewrites brace parameters ("/users/{id}") to the colon form
// all three routers accept. Colon and wildcard segments pass through.
func convertPath(path string) string {
	if !strings.Contains(path, "{") {
		return path
	}
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			name := strings.TrimSuffix(strings.TrimPrefix(seg, "{"), "}")
			// drop type hints like {id:int}
			if j := strings.IndexByte(name, ':'); j >= 0 {
				name = name[:j]
			}
			segments[i] = ":" + name
		}
	}
	return strings.Join(segments, "/")
}

func requestID(header http.Header) string {
	if id := header.Get(RequestIDHeader); id != "" {
		return id
	}
	return uuid.NewString()
}

func parseMethod(verb string) synapse.HttpMethod {
	method, err := synapse.ParseHttpMethod(verb)
	if err != nil {
		return synapse.MethodUnknown
	}
	return method
}

func contentType(resp *synapse.HttpResponse) string {
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
