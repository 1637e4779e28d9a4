package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lytical/app/internal/logging"
	"github.com/lytical/app/pkg/lyt"
	"github.com/lytical/app/pkg/lyt/adapters"
)

func contextFor(req *http.Request) (*adapters.EchoRequestContext, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	return adapters.NewEchoRequestContext(c), rec
}

func TestAuthMiddleware(t *testing.T) {
	m := NewAuthMiddleware("admin", &AuthConfig{Token: "t0ken"}, logging.Discard())
	next := func(c lyt.RequestContext) error {
		return c.Response().String(http.StatusOK, c.Get("realm").(string))
	}

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer t0ken", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(context.Background())
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			c, rec := contextFor(req)

			err := m.Handle(next)(c)
			if tt.status == http.StatusOK {
				require.NoError(t, err)
				assert.Equal(t, "admin", rec.Body.String())
				return
			}
			assert.Equal(t, tt.status, lyt.StatusOf(err))
		})
	}
}

func TestAuthMiddleware_ChallengesMissingHeader(t *testing.T) {
	m := NewAuthMiddleware("admin", &AuthConfig{Token: "t0ken"}, logging.Discard())
	c, rec := contextFor(httptest.NewRequest(http.MethodGet, "/", nil))

	err := m.Handle(func(lyt.RequestContext) error { return nil })(c)
	assert.Error(t, err)
	assert.Equal(t, `Bearer realm="admin"`, rec.Header().Get("WWW-Authenticate"))
}
