package lyt

import (
	"context"
	"net"
	"net/http"
)

// MethodAny registers a route for every HTTP method.
const MethodAny = "*"

// WebServerInterface defines the contract for web server implementations
type WebServerInterface interface {
	// Route registration
	RegisterRoute(method string, path Path, handler HandlerFunc)
	RegisterGroup(prefix string) RouteGroup

	// Global middleware
	Use(middleware MiddlewareFunc)

	// Server lifecycle. Serve blocks until the server is stopped.
	Serve(ln net.Listener) error
	Stop(ctx context.Context) error

	// Server information
	Name() string
}

// RouteGroup represents a group of routes with a common prefix
type RouteGroup interface {
	RegisterRoute(method string, path Path, handler HandlerFunc)
	Group(prefix string) RouteGroup
	Prefix() string
}

// RequestContext provides a framework-agnostic interface for handling HTTP requests
type RequestContext interface {
	// Context returns the request's context.Context
	Context() context.Context

	// Request data
	Method() string
	Path() string
	RealIP() string

	// Parameters
	Param(key string) string
	QueryParam(key string) string

	Request() RequestInterface
	Response() ResponseInterface

	// Bind decodes the request body into i
	Bind(i any) error

	// Context data
	Get(key string) any
	Set(key string, val any)
}

// RequestInterface provides access to the underlying request
type RequestInterface interface {
	Header(key string) string
	ContentLength() int64
	ContentType() string
}

// ResponseInterface provides response writing capabilities
type ResponseInterface interface {
	Status() int
	Header(key string) string
	SetHeader(key, value string)

	JSON(code int, i any) error
	String(code int, s string) error
	Blob(code int, contentType string, b []byte) error
	NoContent(code int) error

	// Written reports whether the status line has been sent
	Written() bool
}

// HandlerFunc defines the signature for HTTP handlers
type HandlerFunc func(RequestContext) error

// MiddlewareFunc defines the signature for middleware
type MiddlewareFunc func(HandlerFunc) HandlerFunc

// ErrorHandlerFunc handles an error returned further down a route's chain.
// Returning nil marks the error as handled.
type ErrorHandlerFunc func(err error, ctx RequestContext) error

// Middleware is implemented by middleware types constructed per request.
type Middleware interface {
	Handle(next HandlerFunc) HandlerFunc
}

// Chain composes middlewares around h so that middlewares[0] runs first.
func Chain(h HandlerFunc, middlewares ...MiddlewareFunc) HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

var nativeMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodConnect: true,
	http.MethodOptions: true,
	http.MethodTrace:   true,
}

// IsNativeMethod reports whether method is one of the standard verbs every
// adapter registers directly.
func IsNativeMethod(method string) bool {
	return nativeMethods[method]
}

// MethodSupport is implemented by servers that register non-standard
// methods directly.
type MethodSupport interface {
	SupportsMethod(method string) bool
}

func supportsMethod(server WebServerInterface, method string) bool {
	if IsNativeMethod(method) {
		return true
	}
	ms, ok := server.(MethodSupport)
	return ok && ms.SupportsMethod(method)
}
