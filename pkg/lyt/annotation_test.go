package lyt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHandlerInfo(t *testing.T) {
	tests := []struct {
		annotation string
		methods    []string
		path       string
	}{
		{"GET /items", []string{"GET"}, "/items"},
		{"GET,POST /items/{id}", []string{"GET", "POST"}, "/items/{id}"},
		{"PUT|PATCH /items/{id:int}", []string{"PUT", "PATCH"}, "/items/{id:int}"},
		{"* /health", []string{"*"}, "/health"},
		{"/anything", nil, "/anything"},
		{"  delete   / ", []string{"delete"}, "/"},
		{"M-SEARCH /", []string{"M-SEARCH"}, "/"},
	}

	for _, tt := range tests {
		t.Run(tt.annotation, func(t *testing.T) {
			info, err := ParseHandlerInfo(tt.annotation)
			require.NoError(t, err)
			assert.Equal(t, tt.methods, info.Methods)
			assert.Equal(t, tt.path, info.Path)
		})
	}
}

func TestParseHandlerInfo_Invalid(t *testing.T) {
	for _, annotation := range []string{"", "GET", "GET items", "GET, /items", "GET /a /b"} {
		t.Run(annotation, func(t *testing.T) {
			_, err := ParseHandlerInfo(annotation)
			assert.Error(t, err)
		})
	}

	assert.Panics(t, func() { MustParseHandlerInfo("nope") })
}

func TestOn_AppliesOptions(t *testing.T) {
	dep := Func(func(next HandlerFunc) HandlerFunc { return next })
	handled := false

	info := On("post /items",
		WithDependencies(dep, dep),
		WithErrorHandler(func(err error, ctx RequestContext) error {
			handled = true
			return nil
		}),
	)

	d := info.normalize()
	assert.Equal(t, []string{"POST"}, d.Methods)
	assert.Len(t, d.Dependencies, 2)
	require.NotNil(t, d.ErrorHandler)
	assert.NoError(t, d.ErrorHandler(assert.AnError, nil))
	assert.True(t, handled)
}
