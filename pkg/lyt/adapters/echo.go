package adapters

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lytical/app/pkg/lyt"
)

func init() {
	lyt.SetDefaultServer(func() lyt.WebServerInterface {
		return NewDefaultEchoAdapter()
	})
}

// EchoAdapter implements lyt.WebServerInterface for Echo v4
type EchoAdapter struct {
	engine *echo.Echo
}

// NewEchoAdapter creates a new Echo adapter. It replaces the engine's
// error handler so unhandled errors render as lyt.HttpError JSON.
func NewEchoAdapter(e *echo.Echo) *EchoAdapter {
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = renderEchoError
	return &EchoAdapter{engine: e}
}

// NewDefaultEchoAdapter creates a new Echo adapter with default Echo instance
func NewDefaultEchoAdapter() *EchoAdapter {
	return NewEchoAdapter(echo.New())
}

// RegisterRoute registers a route with the Echo server
func (ea *EchoAdapter) RegisterRoute(method string, path lyt.Path, handler lyt.HandlerFunc) {
	echoPath := echoPathOf(path)
	if method == lyt.MethodAny {
		ea.engine.Any(echoPath, convertEchoHandler(handler))
		return
	}
	ea.engine.Add(method, echoPath, convertEchoHandler(handler))
}

// RegisterGroup creates a new route group. The root prefix "/" mounts
// routes directly on the engine paths.
func (ea *EchoAdapter) RegisterGroup(prefix string) lyt.RouteGroup {
	p := echoPathOf(lyt.Path(prefix))
	if p == "/" {
		p = ""
	}
	return &EchoGroupAdapter{group: ea.engine.Group(p), prefix: prefix}
}

// Use adds global middleware
func (ea *EchoAdapter) Use(middleware lyt.MiddlewareFunc) {
	ea.engine.Use(convertEchoMiddleware(middleware))
}

// SupportsMethod reports true for any method: the Echo router keeps
// handlers for non-standard methods alongside the standard ones.
func (ea *EchoAdapter) SupportsMethod(method string) bool {
	return method != "" && method != lyt.MethodAny
}

// Serve serves HTTP on ln until Stop is called
func (ea *EchoAdapter) Serve(ln net.Listener) error {
	ea.engine.Listener = ln
	err := ea.engine.Start(ln.Addr().String())
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop stops the server
func (ea *EchoAdapter) Stop(ctx context.Context) error {
	return ea.engine.Shutdown(ctx)
}

// Name returns the adapter name
func (ea *EchoAdapter) Name() string {
	return "Echo"
}

// GetEngine returns the underlying Echo instance
func (ea *EchoAdapter) GetEngine() *echo.Echo {
	return ea.engine
}

// EchoGroupAdapter implements lyt.RouteGroup for Echo groups. Group
// middleware is never set on the echo.Group: Group.Use registers catch-all
// routes.
type EchoGroupAdapter struct {
	group  *echo.Group
	prefix string
}

// RegisterRoute registers a route with the group
func (ega *EchoGroupAdapter) RegisterRoute(method string, path lyt.Path, handler lyt.HandlerFunc) {
	echoPath := echoPathOf(path)
	if method == lyt.MethodAny {
		ega.group.Any(echoPath, convertEchoHandler(handler))
		return
	}
	ega.group.Add(method, echoPath, convertEchoHandler(handler))
}

// Group creates a sub-group
func (ega *EchoGroupAdapter) Group(prefix string) lyt.RouteGroup {
	return &EchoGroupAdapter{
		group:  ega.group.Group(echoPathOf(lyt.Path(prefix))),
		prefix: lyt.JoinPaths(ega.prefix, prefix),
	}
}

// Prefix returns the full prefix of the group
func (ega *EchoGroupAdapter) Prefix() string {
	return ega.prefix
}

func echoPathOf(path lyt.Path) string {
	return path.Render(":", "*")
}

func convertEchoHandler(handler lyt.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handler(NewEchoRequestContext(c))
	}
}

func convertEchoMiddleware(middleware lyt.MiddlewareFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lytNext := func(lyt.RequestContext) error {
				return fromEchoError(next(c))
			}
			return middleware(lytNext)(NewEchoRequestContext(c))
		}
	}
}

// fromEchoError turns echo's own errors, such as the router's 404 and 405,
// into lyt errors so that lyt middleware sees their status.
func fromEchoError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if _, ok := err.(*lyt.HttpError); !ok {
			return lyt.NewHttpError(he.Code, fmt.Sprint(he.Message)).WithInternal(err)
		}
	}
	return err
}

// renderEchoError writes errors nothing else handled. Router errors
// (404, 405) arrive as *echo.HTTPError.
func renderEchoError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := lyt.StatusOf(err), lyt.ErrorBody(err)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		body = lyt.NewHttpError(he.Code, fmt.Sprint(he.Message))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

// EchoRequestContext implements lyt.RequestContext for Echo
type EchoRequestContext struct {
	context echo.Context
}

// NewEchoRequestContext wraps c for lyt handlers and middleware
func NewEchoRequestContext(c echo.Context) *EchoRequestContext {
	return &EchoRequestContext{context: c}
}

// Context returns the request context
func (erc *EchoRequestContext) Context() context.Context {
	return erc.context.Request().Context()
}

// Method returns the HTTP method
func (erc *EchoRequestContext) Method() string {
	return erc.context.Request().Method
}

// Path returns the request path
func (erc *EchoRequestContext) Path() string {
	return erc.context.Request().URL.Path
}

// RealIP returns the real IP address
func (erc *EchoRequestContext) RealIP() string {
	return erc.context.RealIP()
}

// Param returns path parameter by name
func (erc *EchoRequestContext) Param(key string) string {
	return erc.context.Param(key)
}

// QueryParam returns query parameter by name
func (erc *EchoRequestContext) QueryParam(key string) string {
	return erc.context.QueryParam(key)
}

// Request returns the request interface
func (erc *EchoRequestContext) Request() lyt.RequestInterface {
	return &EchoRequestInterface{request: erc.context.Request()}
}

// Response returns the response interface
func (erc *EchoRequestContext) Response() lyt.ResponseInterface {
	return &EchoResponseInterface{response: erc.context.Response(), context: erc.context}
}

// Bind binds request body to provided struct
func (erc *EchoRequestContext) Bind(i any) error {
	return erc.context.Bind(i)
}

// Get retrieves data from context
func (erc *EchoRequestContext) Get(key string) any {
	return erc.context.Get(key)
}

// Set stores data in context
func (erc *EchoRequestContext) Set(key string, val any) {
	erc.context.Set(key, val)
}

// EchoRequestInterface implements lyt.RequestInterface for Echo requests
type EchoRequestInterface struct {
	request *http.Request
}

// Header returns request header value
func (eri *EchoRequestInterface) Header(key string) string {
	return eri.request.Header.Get(key)
}

// ContentLength returns content length
func (eri *EchoRequestInterface) ContentLength() int64 {
	return eri.request.ContentLength
}

// ContentType returns content type
func (eri *EchoRequestInterface) ContentType() string {
	return eri.request.Header.Get(echo.HeaderContentType)
}

// EchoResponseInterface implements lyt.ResponseInterface for Echo responses
type EchoResponseInterface struct {
	response *echo.Response
	context  echo.Context
}

// Status returns response status code
func (eri *EchoResponseInterface) Status() int {
	return eri.response.Status
}

// Header returns response header value
func (eri *EchoResponseInterface) Header(key string) string {
	return eri.response.Header().Get(key)
}

// SetHeader sets response header
func (eri *EchoResponseInterface) SetHeader(key, value string) {
	eri.response.Header().Set(key, value)
}

// JSON writes JSON response
func (eri *EchoResponseInterface) JSON(code int, i any) error {
	return eri.context.JSON(code, i)
}

// String writes string response
func (eri *EchoResponseInterface) String(code int, s string) error {
	return eri.context.String(code, s)
}

// Blob writes blob response
func (eri *EchoResponseInterface) Blob(code int, contentType string, b []byte) error {
	return eri.context.Blob(code, contentType, b)
}

// NoContent writes a response without a body
func (eri *EchoResponseInterface) NoContent(code int) error {
	return eri.context.NoContent(code)
}

// Written returns whether response has been written
func (eri *EchoResponseInterface) Written() bool {
	return eri.response.Committed
}
