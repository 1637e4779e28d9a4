package lyt

import (
	"context"
	"net/http"
)

// fakeContext is a RequestContext without a server behind it.
type fakeContext struct {
	method  string
	path    string
	params  map[string]string
	query   map[string]string
	headers http.Header
	values  map[string]any
	res     *fakeResponse
}

func newFakeContext(method, path string) *fakeContext {
	return &fakeContext{
		method:  method,
		path:    path,
		params:  map[string]string{},
		query:   map[string]string{},
		headers: http.Header{},
		values:  map[string]any{},
		res:     &fakeResponse{status: http.StatusOK, header: http.Header{}},
	}
}

func (c *fakeContext) Context() context.Context      { return context.Background() }
func (c *fakeContext) Method() string                { return c.method }
func (c *fakeContext) Path() string                  { return c.path }
func (c *fakeContext) RealIP() string                { return "127.0.0.1" }
func (c *fakeContext) Param(key string) string       { return c.params[key] }
func (c *fakeContext) QueryParam(key string) string  { return c.query[key] }
func (c *fakeContext) Request() RequestInterface     { return fakeRequest{headers: c.headers} }
func (c *fakeContext) Response() ResponseInterface   { return c.res }
func (c *fakeContext) Bind(any) error                { return nil }
func (c *fakeContext) Get(key string) any            { return c.values[key] }
func (c *fakeContext) Set(key string, val any)       { c.values[key] = val }

type fakeRequest struct {
	headers http.Header
}

func (r fakeRequest) Header(key string) string { return r.headers.Get(key) }
func (r fakeRequest) ContentLength() int64     { return 0 }
func (r fakeRequest) ContentType() string      { return r.headers.Get("Content-Type") }

type fakeResponse struct {
	status  int
	header  http.Header
	body    any
	written bool
}

func (r *fakeResponse) Status() int                 { return r.status }
func (r *fakeResponse) Header(key string) string    { return r.header.Get(key) }
func (r *fakeResponse) SetHeader(key, value string) { r.header.Set(key, value) }
func (r *fakeResponse) Written() bool               { return r.written }

func (r *fakeResponse) JSON(code int, i any) error {
	r.status, r.body, r.written = code, i, true
	return nil
}

func (r *fakeResponse) String(code int, s string) error {
	r.status, r.body, r.written = code, s, true
	return nil
}

func (r *fakeResponse) Blob(code int, _ string, b []byte) error {
	r.status, r.body, r.written = code, b, true
	return nil
}

func (r *fakeResponse) NoContent(code int) error {
	r.status, r.written = code, true
	return nil
}
