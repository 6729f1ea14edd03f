// Package synapse is the runtime contract that code generated by the
// synapse generator compiles against.
//
// Generated handlers implement Handler, generated managers implement
// Manager, and both are wired together through a Container that holds
// the dependency providers for every injected service method.
package synapse

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// HttpMethod is the closed set of HTTP verbs a handler can be bound to
type HttpMethod int

const (
	MethodUnknown HttpMethod = iota
	MethodGet
	MethodHead
	MethodPost
	MethodPut
	MethodPatch
	MethodDelete
	MethodConnect
	MethodOptions
	MethodTrace
)

// ErrUnknownMethod is returned when a verb does not map to an HttpMethod
var ErrUnknownMethod = errors.New("unknown http method")

// httpMethods is the lookup table used by ParseHttpMethod. Keys are the
// canonical upper-case verbs.
var httpMethods = map[string]HttpMethod{
	http.MethodGet:     MethodGet,
	http.MethodHead:    MethodHead,
	http.MethodPost:    MethodPost,
	http.MethodPut:     MethodPut,
	http.MethodPatch:   MethodPatch,
	http.MethodDelete:  MethodDelete,
	http.MethodConnect: MethodConnect,
	http.MethodOptions: MethodOptions,
	http.MethodTrace:   MethodTrace,
}

var methodNames = map[HttpMethod]string{
	MethodGet:     http.MethodGet,
	MethodHead:    http.MethodHead,
	MethodPost:    http.MethodPost,
	MethodPut:     http.MethodPut,
	MethodPatch:   http.MethodPatch,
	MethodDelete:  http.MethodDelete,
	MethodConnect: http.MethodConnect,
	MethodOptions: http.MethodOptions,
	MethodTrace:   http.MethodTrace,
}

// ParseHttpMethod resolves a verb such as "GET", "Get" or "get".
func ParseHttpMethod(verb string) (HttpMethod, error) {
	method, ok := httpMethods[strings.ToUpper(strings.TrimSpace(verb))]
	if !ok {
		return MethodUnknown, fmt.Errorf("%w: %q", ErrUnknownMethod, verb)
	}
	return method, nil
}

// String returns the canonical verb, e.g. "GET"
func (m HttpMethod) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "UNKNOWN"
}

// ConstName returns the name of the exported constant for m, e.g.
// "MethodGet". The generator uses it to reference the verb in emitted code.
func (m HttpMethod) ConstName() string {
	name, ok := methodNames[m]
	if !ok {
		return "MethodUnknown"
	}
	return "Method" + name[:1] + strings.ToLower(name[1:])
}

// Methods returns every supported verb in declaration order
func Methods() []HttpMethod {
	return []HttpMethod{
		MethodGet, MethodHead, MethodPost, MethodPut, MethodPatch,
		MethodDelete, MethodConnect, MethodOptions, MethodTrace,
	}
}
