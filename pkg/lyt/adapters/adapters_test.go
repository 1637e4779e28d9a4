package adapters_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lytical/app/internal/logging"
	"github.com/lytical/app/pkg/lyt"
	"github.com/lytical/app/pkg/lyt/adapters"
)

func init() {
	gin.SetMode(gin.TestMode)

	lyt.Handle((*itemsRoute).Index, lyt.On("GET /"))
	lyt.Handle((*itemsRoute).Show, lyt.On("GET /items/{id:int}"))
	lyt.Handle((*itemsRoute).Purge, lyt.On("PURGE /items/{id:int}"))
	lyt.Handle((*itemsRoute).Teapot, lyt.On("GET /teapot", lyt.WithErrorHandler(
		func(err error, c lyt.RequestContext) error {
			return c.Response().JSON(http.StatusTeapot, map[string]string{"handled": err.Error()})
		},
	)))
	lyt.Handle((*itemsRoute).Fail, lyt.On("GET /fail"))
	lyt.Handle((*itemsRoute).Panic, lyt.On("GET /panic"))
	lyt.Handle((*sharedRoute).Purge, lyt.On("PURGE /x"))
	lyt.Handle((*sharedRoute).Get, lyt.On("GET /x"))

	lyt.Handle((*itemsRoute).Guarded, lyt.On("GET /guarded", lyt.WithDependencies(lyt.Func(
		func(next lyt.HandlerFunc) lyt.HandlerFunc {
			return func(c lyt.RequestContext) error {
				if c.Request().Header("Authorization") == "" {
					return lyt.ErrUnauthorized("token required")
				}
				c.Set("user", "alice")
				return next(c)
			}
		},
	))))
}

type itemsRoute struct{}

func (r *itemsRoute) Index(c lyt.RequestContext) error {
	return c.Response().JSON(http.StatusOK, map[string]string{"message": "hi"})
}

func (r *itemsRoute) Show(c lyt.RequestContext) error {
	return c.Response().String(http.StatusOK, "item "+c.Param("id")+" "+c.QueryParam("q"))
}

func (r *itemsRoute) Purge(c lyt.RequestContext) error {
	return c.Response().String(http.StatusOK, "purged "+c.Param("id"))
}

func (r *itemsRoute) Teapot(c lyt.RequestContext) error {
	return lyt.ErrBadRequest("short and stout")
}

func (r *itemsRoute) Fail(c lyt.RequestContext) error {
	return errors.New("connection string leaked")
}

func (r *itemsRoute) Panic(c lyt.RequestContext) error {
	panic("handler exploded")
}

func (r *itemsRoute) Guarded(c lyt.RequestContext) error {
	return c.Response().String(http.StatusOK, "hello "+c.Get("user").(string))
}

// sharedRoute declares a custom method before a standard one on the same path.
type sharedRoute struct{}

func (r *sharedRoute) Purge(c lyt.RequestContext) error {
	return c.Response().String(http.StatusOK, "purge")
}

func (r *sharedRoute) Get(c lyt.RequestContext) error {
	return c.Response().String(http.StatusOK, "get")
}

var servers = []struct {
	name   string
	server func() lyt.WebServerInterface
}{
	{"echo", func() lyt.WebServerInterface { return adapters.NewDefaultEchoAdapter() }},
	{"gin", func() lyt.WebServerInterface { return adapters.NewDefaultGinAdapter() }},
	{"fiber", func() lyt.WebServerInterface { return adapters.NewDefaultFiberAdapter("PURGE") }},
}

func newApp(t *testing.T, server lyt.WebServerInterface, modules []lyt.ModuleRef, listen ...lyt.MiddlewareFunc) *lyt.Application {
	t.Helper()

	app := lyt.NewApplication(
		lyt.WithConfig(&lyt.Config{Hostname: "127.0.0.1", Prefix: "/api"}),
		lyt.WithLogger(logging.Discard()),
		lyt.WithServer(server),
		lyt.WithModules(modules...),
	)
	app.OnCreateServer(func(ctx context.Context, cfg *lyt.ServerConfig) error {
		cfg.Use(lyt.Recover())
		return nil
	})
	app.OnServerStarting(func(ctx context.Context, lc *lyt.ListenConfig) error {
		lc.Port = 0
		lc.Use(listen...)
		return nil
	})
	return app
}

var itemsModule = lyt.ModuleRef{Name: "items", Init: func(app *lyt.Application) error {
	return lyt.RegisterRoute[itemsRoute](app, lyt.RouteOptions{Path: "/store"}, nil)
}}

func startWith(t *testing.T, server lyt.WebServerInterface, listen ...lyt.MiddlewareFunc) (*lyt.Application, string) {
	t.Helper()

	app := newApp(t, server, []lyt.ModuleRef{itemsModule}, listen...)
	require.NoError(t, app.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, app.Stop(ctx))
	})
	return app, "http://" + app.Addr() + "/api/store"
}

func request(t *testing.T, method, url string, header http.Header) (*http.Response, string) {
	t.Helper()

	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, strings.TrimSpace(string(body))
}

func TestAdapters(t *testing.T) {
	for _, s := range servers {
		t.Run(s.name, func(t *testing.T) {
			app, base := startWith(t, s.server())

			t.Run("index", func(t *testing.T) {
				res, body := request(t, http.MethodGet, base+"/", nil)
				assert.Equal(t, http.StatusOK, res.StatusCode)
				assert.JSONEq(t, `{"message":"hi"}`, body)
				assert.Equal(t, lyt.PoweredBy, res.Header.Get(lyt.HeaderPoweredBy))
				assert.Equal(t, lyt.Version, res.Header.Get(lyt.HeaderLytVersion))
			})

			t.Run("path and query parameters", func(t *testing.T) {
				_, body := request(t, http.MethodGet, base+"/items/42?q=blue", nil)
				assert.Equal(t, "item 42 blue", body)
			})

			t.Run("non-standard method", func(t *testing.T) {
				res, body := request(t, "PURGE", base+"/items/7", nil)
				assert.Equal(t, http.StatusOK, res.StatusCode)
				assert.Equal(t, "purged 7", body)
			})

			t.Run("not found keeps default headers", func(t *testing.T) {
				res, _ := request(t, http.MethodGet, base+"/missing", nil)
				assert.Equal(t, http.StatusNotFound, res.StatusCode)
				assert.Equal(t, lyt.PoweredBy, res.Header.Get(lyt.HeaderPoweredBy))
			})

			t.Run("route error handler", func(t *testing.T) {
				res, body := request(t, http.MethodGet, base+"/teapot", nil)
				assert.Equal(t, http.StatusTeapot, res.StatusCode)
				assert.Contains(t, body, "short and stout")
			})

			t.Run("http errors render as json", func(t *testing.T) {
				res, body := request(t, http.MethodGet, base+"/guarded", nil)
				assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
				assert.JSONEq(t, `{"status_code":401,"message":"token required"}`, body)
			})

			t.Run("dependency passes values to the handler", func(t *testing.T) {
				_, body := request(t, http.MethodGet, base+"/guarded", http.Header{"Authorization": {"Bearer x"}})
				assert.Equal(t, "hello alice", body)
			})

			t.Run("plain errors are not leaked", func(t *testing.T) {
				res, body := request(t, http.MethodGet, base+"/fail", nil)
				assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
				assert.NotContains(t, body, "leaked")
			})

			t.Run("panics are recovered", func(t *testing.T) {
				res, _ := request(t, http.MethodGet, base+"/panic", nil)
				assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
			})

			assert.Equal(t, s.name, strings.ToLower(app.Server().Name()))
		})
	}
}

func TestAdapters_ErrorHandlerMiddleware(t *testing.T) {
	for _, s := range servers {
		t.Run(s.name, func(t *testing.T) {
			_, base := startWith(t, s.server(), lyt.ErrorHandler(logging.Discard()))

			res, body := request(t, http.MethodGet, base+"/guarded", nil)
			assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
			assert.JSONEq(t, `{"status_code":401,"message":"token required"}`, body)

			res, _ = request(t, http.MethodGet, base+"/missing", nil)
			assert.Equal(t, http.StatusNotFound, res.StatusCode)
		})
	}
}

func TestAdapters_GuardedMethodOnlyMatchesItsMethods(t *testing.T) {
	app, base := startWith(t, adapters.NewDefaultFiberAdapter("PURGE", "LINK"))

	res, _ := request(t, "LINK", base+"/items/7", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	guarded := app.Routes().GetRoutesByMethod("PURGE")
	require.Len(t, guarded, 1)
	assert.True(t, guarded[0].Guarded)
}

func TestAdapters_NativeCustomMethods(t *testing.T) {
	for _, s := range servers[:2] {
		t.Run(s.name, func(t *testing.T) {
			app, _ := startWith(t, s.server())

			purge := app.Routes().GetRoutesByMethod("PURGE")
			require.Len(t, purge, 1)
			assert.False(t, purge[0].Guarded)
		})
	}
}

func TestAdapters_CustomAndStandardMethodsShareAPath(t *testing.T) {
	shared := lyt.ModuleRef{Name: "shared", Init: func(app *lyt.Application) error {
		return lyt.RegisterRoute[sharedRoute](app, lyt.RouteOptions{Path: "/p"}, nil)
	}}

	for _, s := range servers {
		t.Run(s.name, func(t *testing.T) {
			app := newApp(t, s.server(), []lyt.ModuleRef{shared}, lyt.ErrorHandler(logging.Discard()))
			require.NoError(t, app.Start(context.Background()))
			t.Cleanup(func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				assert.NoError(t, app.Stop(ctx))
			})
			base := "http://" + app.Addr() + "/api/p"

			res, body := request(t, http.MethodGet, base+"/x", nil)
			assert.Equal(t, http.StatusOK, res.StatusCode)
			assert.Equal(t, "get", body)

			res, body = request(t, "PURGE", base+"/x", nil)
			assert.Equal(t, http.StatusOK, res.StatusCode)
			assert.Equal(t, "purge", body)

			res, _ = request(t, http.MethodPut, base+"/x", nil)
			assert.NotEqual(t, http.StatusOK, res.StatusCode)
		})
	}
}

func TestAdapters_StopRightAfterStart(t *testing.T) {
	for _, s := range servers {
		t.Run(s.name, func(t *testing.T) {
			for i := 0; i < 10; i++ {
				app := newApp(t, s.server(), []lyt.ModuleRef{itemsModule})
				require.NoError(t, app.Start(context.Background()))
				addr := app.Addr()

				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				err := app.Stop(ctx)
				cancel()
				require.NoError(t, err, "iteration %d", i)

				select {
				case <-app.Done():
				default:
					t.Fatalf("iteration %d: still serving at %s", i, addr)
				}

				_, err = http.Get("http://" + addr + "/api/store/")
				assert.Error(t, err, "iteration %d", i)
			}
		})
	}
}
