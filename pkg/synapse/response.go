package synapse

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
)

const (
	contentTypeJSON   = "application/json; charset=utf-8"
	contentTypeText   = "text/plain; charset=utf-8"
	contentTypeBinary = "application/octet-stream"
)

// HttpResponse is the framework-agnostic response produced by a handler
type HttpResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IntoResponse is implemented by every value a handler can produce
type IntoResponse interface {
	IntoResponse() *HttpResponse
}

// IntoResponse returns r itself
func (r *HttpResponse) IntoResponse() *HttpResponse {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	if r.StatusCode == 0 {
		r.StatusCode = http.StatusOK
	}
	return r
}

// Response lets a handler pick the status code of a JSON body.
//
// Example usage:
//
//	func (c *UserController) Create(req *synapse.HttpRequest) (*synapse.Response, error) {
//		user, err := c.Repo.Save(req.Body)
//		return synapse.Created(user), err
//	}
type Response struct {
	StatusCode int
	Body       any
}

// IntoResponse encodes Body as JSON. A nil body produces an empty response.
func (r *Response) IntoResponse() *HttpResponse {
	if r.Body == nil {
		return &HttpResponse{StatusCode: r.StatusCode, Header: make(http.Header)}
	}
	return jsonResponse(r.StatusCode, r.Body)
}

// NewResponse creates a new Response with the specified status code and body
func NewResponse(statusCode int, body any) *Response {
	return &Response{StatusCode: statusCode, Body: body}
}

// OK creates a 200 OK response with the given body
func OK(body any) *Response {
	return NewResponse(http.StatusOK, body)
}

// Created creates a 201 Created response with the given body
func Created(body any) *Response {
	return NewResponse(http.StatusCreated, body)
}

// NoContent creates a 204 No Content response
func NoContent() *Response {
	return NewResponse(http.StatusNoContent, nil)
}

// Text creates a text/plain response
func Text(statusCode int, body string) *HttpResponse {
	header := make(http.Header)
	header.Set("Content-Type", contentTypeText)
	return &HttpResponse{StatusCode: statusCode, Header: header, Body: []byte(body)}
}

// Respond converts the values returned by a handler body into a response.
// Generated handlers wrap every return statement with it.
//
// A trailing non-nil error wins and becomes the response: an *HttpError
// keeps its status, anything else is a 500 with a generic message. A
// trailing nil error, typed or not, is dropped. The remaining value is
// converted by kind, and several remaining values are encoded as a JSON
// array. A single Results argument is spread first.
func Respond(values ...any) IntoResponse {
	if len(values) == 1 {
		if results, ok := values[0].(Results); ok {
			values = results
		}
	}
	if n := len(values); n > 0 {
		if err, ok := values[n-1].(error); ok && err != nil && !isNilPointer(err) {
			return errorResponse(err)
		}
		if n > 1 && (values[n-1] == nil || isError(values[n-1])) {
			values = values[:n-1]
		}
	}

	switch len(values) {
	case 0:
		return &HttpResponse{StatusCode: http.StatusNoContent, Header: make(http.Header)}
	case 1:
		return toResponse(values[0])
	default:
		return jsonResponse(http.StatusOK, values)
	}
}

func isError(v any) bool {
	_, ok := v.(error)
	return ok
}

func errorResponse(err error) IntoResponse {
	var httpErr *HttpError
	if errors.As(err, &httpErr) && httpErr != nil {
		return httpErr
	}
	return ErrInternalServerError(http.StatusText(http.StatusInternalServerError))
}

func toResponse(value any) IntoResponse {
	if isNilPointer(value) {
		return &HttpResponse{StatusCode: http.StatusNoContent, Header: make(http.Header)}
	}
	switch v := value.(type) {
	case nil:
		return &HttpResponse{StatusCode: http.StatusNoContent, Header: make(http.Header)}
	case IntoResponse:
		return v
	case error:
		return errorResponse(v)
	case string:
		return Text(http.StatusOK, v)
	case []byte:
		header := make(http.Header)
		header.Set("Content-Type", contentTypeBinary)
		return &HttpResponse{StatusCode: http.StatusOK, Header: header, Body: v}
	default:
		return jsonResponse(http.StatusOK, v)
	}
}

func jsonResponse(statusCode int, body any) *HttpResponse {
	data, err := json.Marshal(body)
	if err != nil {
		return Text(http.StatusInternalServerError, "failed to encode response")
	}
	header := make(http.Header)
	header.Set("Content-Type", contentTypeJSON)
	return &HttpResponse{StatusCode: statusCode, Header: header, Body: data}
}

func isNilPointer(value any) bool {
	if value == nil {
		return false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
