package adapters

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/lytical/app/pkg/lyt"
)

// writtenKey marks a fiber.Ctx whose response was produced through lyt.
const writtenKey = "lyt.written"

// FiberAdapter wraps a Fiber app to implement lyt.WebServerInterface
type FiberAdapter struct {
	app *fiber.App

	mu      sync.Mutex
	ln      net.Listener
	stopped bool
}

// NewFiberAdapter creates a new Fiber adapter instance. Fiber answers
// methods outside its method list with 501, so non-standard methods used by
// routes must be passed here.
func NewFiberAdapter(methods ...string) *FiberAdapter {
	cfg := fiber.Config{
		ErrorHandler:          renderFiberError,
		DisableStartupMessage: true,
	}
	if len(methods) > 0 {
		cfg.RequestMethods = append(append([]string(nil), fiber.DefaultMethods...), methods...)
	}

	return &FiberAdapter{app: fiber.New(cfg)}
}

// NewDefaultFiberAdapter creates a new Fiber adapter with panic recovery
func NewDefaultFiberAdapter(methods ...string) *FiberAdapter {
	adapter := NewFiberAdapter(methods...)
	adapter.app.Use(recover.New())
	return adapter
}

// RegisterRoute registers a route with the Fiber app
func (fa *FiberAdapter) RegisterRoute(method string, path lyt.Path, handler lyt.HandlerFunc) {
	registerFiber(fa.app, method, path, handler)
}

// RegisterGroup creates a new route group with the given prefix
func (fa *FiberAdapter) RegisterGroup(prefix string) lyt.RouteGroup {
	return &FiberRouteGroup{group: fa.app.Group(fiberPathOf(lyt.Path(prefix))), prefix: prefix}
}

// Use adds middleware to the Fiber app
func (fa *FiberAdapter) Use(middleware lyt.MiddlewareFunc) {
	fa.app.Use(convertFiberMiddleware(middleware))
}

// Serve serves HTTP on ln until Stop is called. fasthttp only shuts down
// listeners it already serves, so a Stop that comes first closes ln here.
func (fa *FiberAdapter) Serve(ln net.Listener) error {
	fa.mu.Lock()
	if fa.stopped {
		fa.mu.Unlock()
		ln.Close()
		return nil
	}
	fa.ln = ln
	fa.mu.Unlock()

	err := fa.app.Listener(ln)

	fa.mu.Lock()
	defer fa.mu.Unlock()
	if fa.stopped {
		return nil
	}
	return err
}

// Stop stops the Fiber server
func (fa *FiberAdapter) Stop(ctx context.Context) error {
	fa.mu.Lock()
	fa.stopped = true
	ln := fa.ln
	fa.mu.Unlock()

	err := fa.app.ShutdownWithContext(ctx)
	if ln != nil {
		// no-op when fasthttp already closed it
		ln.Close()
	}
	return err
}

// Name returns the adapter name
func (fa *FiberAdapter) Name() string {
	return "Fiber"
}

// GetApp returns the underlying Fiber app
func (fa *FiberAdapter) GetApp() *fiber.App {
	return fa.app
}

// FiberRouteGroup wraps a Fiber route group to implement lyt.RouteGroup
type FiberRouteGroup struct {
	group  fiber.Router
	prefix string
}

// RegisterRoute registers a route with this group
func (frg *FiberRouteGroup) RegisterRoute(method string, path lyt.Path, handler lyt.HandlerFunc) {
	registerFiber(frg.group, method, path, handler)
}

// Group creates a sub-group with the given prefix
func (frg *FiberRouteGroup) Group(prefix string) lyt.RouteGroup {
	return &FiberRouteGroup{
		group:  frg.group.Group(fiberPathOf(lyt.Path(prefix))),
		prefix: lyt.JoinPaths(frg.prefix, prefix),
	}
}

// Prefix returns the full prefix of the group
func (frg *FiberRouteGroup) Prefix() string {
	return frg.prefix
}

func registerFiber(router fiber.Router, method string, path lyt.Path, handler lyt.HandlerFunc) {
	fiberPath := fiberPathOf(path)
	if method == lyt.MethodAny {
		router.All(fiberPath, convertFiberHandler(handler))
		return
	}
	router.Add(method, fiberPath, convertFiberHandler(handler))
}

func fiberPathOf(path lyt.Path) string {
	return path.Render(":", "*")
}

// convertFiberHandler continues routing with c.Next when the handler
// declines the request.
func convertFiberHandler(handler lyt.HandlerFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := handler(&FiberRequestContext{ctx: c})
		if errors.Is(err, lyt.ErrNextRoute) {
			return c.Next()
		}
		return err
	}
}

// convertFiberMiddleware maps next onto c.Next. Not calling next leaves
// the rest of the stack unexecuted.
func convertFiberMiddleware(middleware lyt.MiddlewareFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		next := func(lyt.RequestContext) error {
			return fromFiberError(c.Next())
		}
		return middleware(next)(&FiberRequestContext{ctx: c})
	}
}

// fromFiberError turns fiber's own errors, such as the router's 404, into
// lyt errors so that lyt middleware sees their status.
func fromFiberError(err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		if _, ok := err.(*lyt.HttpError); !ok {
			return lyt.NewHttpError(fe.Code, fe.Message).WithInternal(err)
		}
	}
	return err
}

func renderFiberError(c *fiber.Ctx, err error) error {
	if written, _ := c.Locals(writtenKey).(bool); written {
		return nil
	}

	status, body := lyt.StatusOf(err), lyt.ErrorBody(err)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
		body = lyt.NewHttpError(fe.Code, fe.Message)
	}

	if c.Method() == fiber.MethodHead {
		return c.SendStatus(status)
	}
	return c.Status(status).JSON(body)
}

// FiberRequestContext implements lyt.RequestContext for Fiber
type FiberRequestContext struct {
	ctx *fiber.Ctx
}

// Context returns the user context of the request
func (frc *FiberRequestContext) Context() context.Context {
	return frc.ctx.UserContext()
}

// Method returns the HTTP method
func (frc *FiberRequestContext) Method() string {
	return frc.ctx.Method()
}

// Path returns the request path
func (frc *FiberRequestContext) Path() string {
	return frc.ctx.Path()
}

// RealIP returns the client IP address
func (frc *FiberRequestContext) RealIP() string {
	return frc.ctx.IP()
}

// Param returns a route parameter by name
func (frc *FiberRequestContext) Param(key string) string {
	return frc.ctx.Params(key)
}

// QueryParam returns a query parameter by name
func (frc *FiberRequestContext) QueryParam(key string) string {
	return frc.ctx.Query(key)
}

// Request returns the request interface
func (frc *FiberRequestContext) Request() lyt.RequestInterface {
	return &FiberRequestInterface{ctx: frc.ctx}
}

// Response returns the response interface
func (frc *FiberRequestContext) Response() lyt.ResponseInterface {
	return &FiberResponseInterface{ctx: frc.ctx}
}

// Bind parses the request body into i
func (frc *FiberRequestContext) Bind(i any) error {
	return frc.ctx.BodyParser(i)
}

// Get retrieves a value from request locals
func (frc *FiberRequestContext) Get(key string) any {
	return frc.ctx.Locals(key)
}

// Set stores a value in request locals
func (frc *FiberRequestContext) Set(key string, val any) {
	frc.ctx.Locals(key, val)
}

// FiberRequestInterface implements lyt.RequestInterface for Fiber
type FiberRequestInterface struct {
	ctx *fiber.Ctx
}

// Header returns a request header value
func (fri *FiberRequestInterface) Header(key string) string {
	return fri.ctx.Get(key)
}

// ContentLength returns the request content length
func (fri *FiberRequestInterface) ContentLength() int64 {
	return int64(fri.ctx.Request().Header.ContentLength())
}

// ContentType returns the request content type
func (fri *FiberRequestInterface) ContentType() string {
	return string(fri.ctx.Request().Header.ContentType())
}

// FiberResponseInterface implements lyt.ResponseInterface for Fiber
type FiberResponseInterface struct {
	ctx *fiber.Ctx
}

// Status returns the response status code
func (fri *FiberResponseInterface) Status() int {
	return fri.ctx.Response().StatusCode()
}

// Header returns a response header value
func (fri *FiberResponseInterface) Header(key string) string {
	return string(fri.ctx.Response().Header.Peek(key))
}

// SetHeader sets a response header
func (fri *FiberResponseInterface) SetHeader(key, value string) {
	fri.ctx.Set(key, value)
}

// JSON writes a JSON response
func (fri *FiberResponseInterface) JSON(code int, i any) error {
	fri.markWritten()
	return fri.ctx.Status(code).JSON(i)
}

// String writes a plain text response
func (fri *FiberResponseInterface) String(code int, s string) error {
	fri.markWritten()
	return fri.ctx.Status(code).SendString(s)
}

// Blob writes a response with the given content type
func (fri *FiberResponseInterface) Blob(code int, contentType string, b []byte) error {
	fri.markWritten()
	fri.ctx.Set(fiber.HeaderContentType, contentType)
	return fri.ctx.Status(code).Send(b)
}

// NoContent writes a response without a body
func (fri *FiberResponseInterface) NoContent(code int) error {
	fri.markWritten()
	return fri.ctx.SendStatus(code)
}

// Written reports whether a response was written through lyt
func (fri *FiberResponseInterface) Written() bool {
	written, _ := fri.ctx.Locals(writtenKey).(bool)
	return written
}

func (fri *FiberResponseInterface) markWritten() {
	fri.ctx.Locals(writtenKey, true)
}
