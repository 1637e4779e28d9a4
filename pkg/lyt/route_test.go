package lyt

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type traceLog struct {
	steps []string
}

type tracingMiddleware struct {
	name  string
	trace *traceLog
}

func newTracingMiddleware(name string, trace *traceLog) *tracingMiddleware {
	return &tracingMiddleware{name: name, trace: trace}
}

func (m *tracingMiddleware) Handle(next HandlerFunc) HandlerFunc {
	return func(c RequestContext) error {
		m.trace.steps = append(m.trace.steps, m.name)
		return next(c)
	}
}

type notMiddleware struct{}

func TestMethodGuard(t *testing.T) {
	h := methodGuard([]string{"PURGE", "LINK"}, ok)

	assert.NoError(t, h(newFakeContext("PURGE", "/")))
	assert.NoError(t, h(newFakeContext("LINK", "/")))

	err := h(newFakeContext("GET", "/"))
	assert.ErrorIs(t, err, ErrNextRoute)
	assert.Equal(t, http.StatusNotFound, StatusOf(err))
}

func TestWithErrorHandler(t *testing.T) {
	var seen error
	h := withErrorHandler(func(RequestContext) error { return ErrForbidden("") }, func(err error, c RequestContext) error {
		seen = err
		return c.Response().JSON(http.StatusTeapot, map[string]string{"handled": "yes"})
	})

	c := newFakeContext("GET", "/")
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusForbidden, StatusOf(seen))
	assert.Equal(t, http.StatusTeapot, c.res.status)

	h = withErrorHandler(ok, func(error, RequestContext) error {
		t.Fatal("error handler called without an error")
		return nil
	})
	assert.NoError(t, h(newFakeContext("GET", "/")))
}

func TestDependency_TypeBuiltPerRequest(t *testing.T) {
	inj := NewInjector()
	trace := &traceLog{}
	require.NoError(t, inj.Supply(trace))

	dep := Use(newTracingMiddleware, "auth")
	mw, err := dep.middleware(inj)
	require.NoError(t, err)

	h := mw(ok)
	require.NoError(t, h(newFakeContext("GET", "/")))
	require.NoError(t, h(newFakeContext("GET", "/")))
	assert.Equal(t, []string{"auth", "auth"}, trace.steps)
	assert.Equal(t, "*lyt.tracingMiddleware", dep.String())
}

func TestDependency_Invalid(t *testing.T) {
	inj := NewInjector()
	fn := func(next HandlerFunc) HandlerFunc { return next }

	tests := map[string]Dependency{
		"empty":           {},
		"both":            {Func: fn, Constructor: newTracingMiddleware},
		"not middleware":  Use(func() *notMiddleware { return &notMiddleware{} }),
		"not constructor": Use("nope"),
	}
	for name, dep := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := dep.middleware(inj)
			assert.Error(t, err)
		})
	}

	assert.Equal(t, "<empty>", Dependency{}.String())
}

func TestSupportsMethod(t *testing.T) {
	assert.True(t, IsNativeMethod(http.MethodPatch))
	assert.False(t, IsNativeMethod("PURGE"))

	assert.True(t, supportsMethod(customServer{}, "PURGE"))
	assert.False(t, supportsMethod(plainServer{}, "PURGE"))
	assert.True(t, supportsMethod(plainServer{}, http.MethodGet))
}

type plainServer struct{ WebServerInterface }

type customServer struct{ WebServerInterface }

func (customServer) SupportsMethod(string) bool { return true }
