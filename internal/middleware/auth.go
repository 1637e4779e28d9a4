package middleware

import (
	"log/slog"
	"strings"

	"github.com/lytical/app/pkg/lyt"
)

// AuthConfig holds the bearer token accepted by AuthMiddleware
type AuthConfig struct {
	Token string
}

// AuthMiddleware checks the bearer token of a request. A new value is built
// for every request it guards.
type AuthMiddleware struct {
	realm  string
	config *AuthConfig
	logger *slog.Logger
}

// NewAuthMiddleware takes realm as a constructor argument; config and
// logger come from the injector.
func NewAuthMiddleware(realm string, config *AuthConfig, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{realm: realm, config: config, logger: logger}
}

// Handle implements lyt.Middleware
func (m *AuthMiddleware) Handle(next lyt.HandlerFunc) lyt.HandlerFunc {
	return func(c lyt.RequestContext) error {
		auth := c.Request().Header("Authorization")
		if auth == "" {
			c.Response().SetHeader("WWW-Authenticate", `Bearer realm="`+m.realm+`"`)
			return lyt.ErrUnauthorized("missing authorization header")
		}

		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok {
			return lyt.ErrUnauthorized("invalid authorization format")
		}
		if token != m.config.Token {
			m.logger.Warn("rejected token", "realm", m.realm, "path", c.Path())
			return lyt.ErrUnauthorized("invalid token")
		}

		c.Set("realm", m.realm)
		return next(c)
	}
}
