package synapse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

var (
	validate     = validator.New(validator.WithRequiredStructEnabled())
	queryDecoder = newQueryDecoder()
)

func newQueryDecoder() *schema.Decoder {
	decoder := schema.NewDecoder()
	decoder.SetAliasTag("query")
	decoder.IgnoreUnknownKeys(true)
	return decoder
}

// HttpRequest is the framework-agnostic request handed to Handler.Execute
type HttpRequest struct {
	// ID identifies the request, taken from X-Request-ID when present
	ID string

	Method HttpMethod
	Path   string

	// Params holds the named path parameters, e.g. {"id": "42"} for /users/:id
	Params map[string]string
	Query  url.Values
	Header http.Header
	Body   []byte

	ctx context.Context
}

// NewHttpRequest creates an empty request bound to ctx
func NewHttpRequest(ctx context.Context, method HttpMethod, path string) *HttpRequest {
	if ctx == nil {
		ctx = context.Background()
	}
	return &HttpRequest{
		Method: method,
		Path:   path,
		Params: make(map[string]string),
		Query:  make(url.Values),
		Header: make(http.Header),
		ctx:    ctx,
	}
}

// Context returns the request context, never nil
func (r *HttpRequest) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// WithContext returns a shallow copy of r using ctx
func (r *HttpRequest) WithContext(ctx context.Context) *HttpRequest {
	clone := *r
	clone.ctx = ctx
	return &clone
}

// Param returns a path parameter or "" when absent
func (r *HttpRequest) Param(name string) string {
	return r.Params[name]
}

// QueryParam returns the first value of a query parameter
func (r *HttpRequest) QueryParam(name string) string {
	return r.Query.Get(name)
}

// BindJSON decodes the body into dst and validates it using the
// `validate` struct tags. Failures are returned as a 400 HttpError so a
// handler can return them unchanged.
func (r *HttpRequest) BindJSON(dst any) error {
	if len(r.Body) == 0 {
		return ErrBadRequest("request body is empty")
	}
	if err := json.Unmarshal(r.Body, dst); err != nil {
		return ErrBadRequestWithDetails("invalid JSON body", err.Error())
	}
	return validateStruct(dst)
}

// BindQuery decodes the query string into dst using `query` struct tags
func (r *HttpRequest) BindQuery(dst any) error {
	if err := queryDecoder.Decode(dst, r.Query); err != nil {
		return ErrBadRequestWithDetails("invalid query parameters", err.Error())
	}
	return validateStruct(dst)
}

func validateStruct(dst any) error {
	if reflect.Indirect(reflect.ValueOf(dst)).Kind() != reflect.Struct {
		return nil
	}
	if err := validate.Struct(dst); err != nil {
		return ErrUnprocessableEntityWithDetails("validation failed", err.Error())
	}
	return nil
}
