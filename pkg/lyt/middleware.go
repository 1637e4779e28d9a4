package lyt

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Response headers set on every response.
const (
	HeaderPoweredBy  = "X-Powered-By"
	HeaderLytVersion = "X-Lyt-Version"
	HeaderRequestID  = "X-Request-Id"

	PoweredBy = "lytical(r) enterprise solutions"
)

// RequestIDKey is the context key RequestID stores the id under.
const RequestIDKey = "request_id"

// DefaultHeaders sets the product identification headers.
func DefaultHeaders(version string) MiddlewareFunc {
	return func(next HandlerFunc) HandlerFunc {
		return func(c RequestContext) error {
			c.Response().SetHeader(HeaderPoweredBy, PoweredBy)
			c.Response().SetHeader(HeaderLytVersion, version)
			return next(c)
		}
	}
}

// RequestID propagates the incoming X-Request-Id or generates one.
func RequestID() MiddlewareFunc {
	return func(next HandlerFunc) HandlerFunc {
		return func(c RequestContext) error {
			id := c.Request().Header(HeaderRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Set(RequestIDKey, id)
			c.Response().SetHeader(HeaderRequestID, id)
			return next(c)
		}
	}
}

// RequestLogger logs one line per request.
func RequestLogger(logger *slog.Logger) MiddlewareFunc {
	return func(next HandlerFunc) HandlerFunc {
		return func(c RequestContext) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status()
			if err != nil && !c.Response().Written() {
				status = StatusOf(err)
			}
			attrs := []any{
				"method", c.Method(),
				"path", c.Path(),
				"status", status,
				"duration", time.Since(start),
				"remote_ip", c.RealIP(),
			}
			if id, ok := c.Get(RequestIDKey).(string); ok {
				attrs = append(attrs, "request_id", id)
			}
			if err != nil {
				attrs = append(attrs, "error", err)
			}
			logger.Info("request", attrs...)
			return err
		}
	}
}

// RateLimit rejects requests above limit per second, allowing bursts of
// burst requests, with 429 Too Many Requests.
func RateLimit(limit rate.Limit, burst int) MiddlewareFunc {
	limiter := rate.NewLimiter(limit, burst)
	return func(next HandlerFunc) HandlerFunc {
		return func(c RequestContext) error {
			if !limiter.Allow() {
				return ErrTooManyRequests("")
			}
			return next(c)
		}
	}
}

// Recover turns a panic further down the chain into a 500 error.
func Recover() MiddlewareFunc {
	return func(next HandlerFunc) HandlerFunc {
		return func(c RequestContext) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = ErrInternalServerError("").WithInternal(fmt.Errorf("panic: %v", r))
				}
			}()
			return next(c)
		}
	}
}

// ErrorHandler renders errors returned further down the chain as JSON.
// Errors from responses that were already written are only logged.
func ErrorHandler(logger *slog.Logger) MiddlewareFunc {
	return func(next HandlerFunc) HandlerFunc {
		return func(c RequestContext) error {
			err := next(c)
			if err == nil {
				return nil
			}

			status := StatusOf(err)
			if status >= 500 {
				logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
			}
			if c.Response().Written() {
				return nil
			}
			return c.Response().JSON(status, ErrorBody(err))
		}
	}
}
