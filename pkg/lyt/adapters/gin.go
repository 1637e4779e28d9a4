package adapters

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lytical/app/pkg/lyt"
)

// GinAdapter implements lyt.WebServerInterface for Gin framework.
//
// Handler errors are recorded on the gin.Context and surface as the return
// value of next in the middleware before them. Errors still recorded when
// the chain unwinds are rendered unless a response was written.
type GinAdapter struct {
	engine *gin.Engine
	server *http.Server
}

// NewGinAdapter creates a new Gin adapter. The error renderer is installed
// as the engine's first global middleware.
func NewGinAdapter(g *gin.Engine) *GinAdapter {
	g.Use(renderGinErrors)
	return &GinAdapter{engine: g, server: &http.Server{Handler: g}}
}

// NewDefaultGinAdapter creates a new Gin adapter with a recovering Gin instance
func NewDefaultGinAdapter() *GinAdapter {
	g := gin.New()
	g.Use(gin.Recovery())
	return NewGinAdapter(g)
}

// RegisterRoute registers a route with the Gin server
func (ga *GinAdapter) RegisterRoute(method string, path lyt.Path, handler lyt.HandlerFunc) {
	registerGin(&ga.engine.RouterGroup, method, path, handler)
}

// RegisterGroup registers a route group with the Gin server
func (ga *GinAdapter) RegisterGroup(prefix string) lyt.RouteGroup {
	return &GinRouteGroup{group: ga.engine.Group(ginPathOf(lyt.Path(prefix))), prefix: prefix}
}

// Use registers a global middleware with the Gin server
func (ga *GinAdapter) Use(middleware lyt.MiddlewareFunc) {
	ga.engine.Use(convertGinMiddleware(middleware))
}

// SupportsMethod reports true for any method: gin keeps one tree per method.
func (ga *GinAdapter) SupportsMethod(method string) bool {
	return method != "" && method != lyt.MethodAny
}

// Serve serves HTTP on ln until Stop is called. A stopped adapter does
// not serve again.
func (ga *GinAdapter) Serve(ln net.Listener) error {
	err := ga.server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the http.Server serving the engine
func (ga *GinAdapter) Stop(ctx context.Context) error {
	return ga.server.Shutdown(ctx)
}

// Name returns the adapter name
func (ga *GinAdapter) Name() string {
	return "Gin"
}

// GetEngine returns the underlying Gin engine
func (ga *GinAdapter) GetEngine() *gin.Engine {
	return ga.engine
}

// GinRouteGroup implements lyt.RouteGroup for Gin
type GinRouteGroup struct {
	group  *gin.RouterGroup
	prefix string
}

// RegisterRoute registers a route within the group
func (grg *GinRouteGroup) RegisterRoute(method string, path lyt.Path, handler lyt.HandlerFunc) {
	registerGin(grg.group, method, path, handler)
}

// Group creates a sub-group
func (grg *GinRouteGroup) Group(prefix string) lyt.RouteGroup {
	return &GinRouteGroup{
		group:  grg.group.Group(ginPathOf(lyt.Path(prefix))),
		prefix: lyt.JoinPaths(grg.prefix, prefix),
	}
}

// Prefix returns the full prefix of the group
func (grg *GinRouteGroup) Prefix() string {
	return grg.prefix
}

func registerGin(group *gin.RouterGroup, method string, path lyt.Path, handler lyt.HandlerFunc) {
	ginPath := ginPathOf(path)
	if method == lyt.MethodAny {
		group.Any(ginPath, convertGinHandler(handler))
		return
	}
	group.Handle(method, ginPath, convertGinHandler(handler))
}

// ginPathOf renders wildcards as *path; gin requires a name.
func ginPathOf(path lyt.Path) string {
	return path.Render(":", "*path")
}

func convertGinHandler(handler lyt.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := handler(&GinRequestContext{ctx: c}); err != nil {
			_ = c.Error(err)
		}
	}
}

// convertGinMiddleware adapts middleware to gin's c.Next chain. A middleware
// that returns without calling next aborts the chain, and its return value
// replaces whatever error the rest of the chain recorded.
func convertGinMiddleware(middleware lyt.MiddlewareFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		called := false
		next := func(lyt.RequestContext) error {
			called = true
			c.Next()
			if last := c.Errors.Last(); last != nil {
				return last.Err
			}
			return nil
		}

		err := middleware(next)(&GinRequestContext{ctx: c})
		if !called {
			c.Abort()
		}

		if err == nil {
			c.Errors = c.Errors[:0]
			return
		}
		if last := c.Errors.Last(); last == nil || last.Err != err {
			_ = c.Error(err)
		}
	}
}

func renderGinErrors(c *gin.Context) {
	c.Next()

	last := c.Errors.Last()
	if last == nil || c.Writer.Written() {
		return
	}
	status := lyt.StatusOf(last.Err)
	if c.Request.Method == http.MethodHead {
		c.Status(status)
		c.Writer.WriteHeaderNow()
		return
	}
	c.JSON(status, lyt.ErrorBody(last.Err))
}

// GinRequestContext implements lyt.RequestContext for Gin
type GinRequestContext struct {
	ctx *gin.Context
}

// Context returns the request context
func (grc *GinRequestContext) Context() context.Context {
	return grc.ctx.Request.Context()
}

// Method returns the HTTP method
func (grc *GinRequestContext) Method() string {
	return grc.ctx.Request.Method
}

// Path returns the request path
func (grc *GinRequestContext) Path() string {
	return grc.ctx.Request.URL.Path
}

// RealIP returns the client IP address
func (grc *GinRequestContext) RealIP() string {
	return grc.ctx.ClientIP()
}

// Param returns path parameter by name
func (grc *GinRequestContext) Param(key string) string {
	return grc.ctx.Param(key)
}

// QueryParam returns query parameter by name
func (grc *GinRequestContext) QueryParam(key string) string {
	return grc.ctx.Query(key)
}

// Request returns the request interface
func (grc *GinRequestContext) Request() lyt.RequestInterface {
	return &GinRequestInterface{request: grc.ctx.Request}
}

// Response returns the response interface
func (grc *GinRequestContext) Response() lyt.ResponseInterface {
	return &GinResponseInterface{ctx: grc.ctx}
}

// Bind binds the request body to i based on the content type
func (grc *GinRequestContext) Bind(i any) error {
	return grc.ctx.ShouldBind(i)
}

// Get retrieves data from context
func (grc *GinRequestContext) Get(key string) any {
	v, _ := grc.ctx.Get(key)
	return v
}

// Set stores data in context
func (grc *GinRequestContext) Set(key string, val any) {
	grc.ctx.Set(key, val)
}

// GinRequestInterface implements lyt.RequestInterface for Gin
type GinRequestInterface struct {
	request *http.Request
}

// Header returns request header value
func (gri *GinRequestInterface) Header(key string) string {
	return gri.request.Header.Get(key)
}

// ContentLength returns content length
func (gri *GinRequestInterface) ContentLength() int64 {
	return gri.request.ContentLength
}

// ContentType returns content type
func (gri *GinRequestInterface) ContentType() string {
	return gri.request.Header.Get("Content-Type")
}

// GinResponseInterface implements lyt.ResponseInterface for Gin
type GinResponseInterface struct {
	ctx *gin.Context
}

// Status returns response status code
func (gri *GinResponseInterface) Status() int {
	return gri.ctx.Writer.Status()
}

// Header returns response header value
func (gri *GinResponseInterface) Header(key string) string {
	return gri.ctx.Writer.Header().Get(key)
}

// SetHeader sets response header
func (gri *GinResponseInterface) SetHeader(key, value string) {
	gri.ctx.Header(key, value)
}

// JSON writes JSON response
func (gri *GinResponseInterface) JSON(code int, i any) error {
	gri.ctx.JSON(code, i)
	return nil
}

// String writes string response
func (gri *GinResponseInterface) String(code int, s string) error {
	gri.ctx.String(code, "%s", s)
	return nil
}

// Blob writes blob response
func (gri *GinResponseInterface) Blob(code int, contentType string, b []byte) error {
	gri.ctx.Data(code, contentType, b)
	return nil
}

// NoContent writes a response without a body
func (gri *GinResponseInterface) NoContent(code int) error {
	gri.ctx.Status(code)
	gri.ctx.Writer.WriteHeaderNow()
	return nil
}

// Written returns whether response has been written
func (gri *GinResponseInterface) Written() bool {
	return gri.ctx.Writer.Written()
}
