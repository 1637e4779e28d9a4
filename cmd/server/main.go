package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"
	"golang.org/x/time/rate"

	"github.com/lytical/app/internal/logging"
	"github.com/lytical/app/internal/middleware"
	"github.com/lytical/app/internal/services"
	"github.com/lytical/app/pkg/lyt"
	"github.com/lytical/app/pkg/lyt/adapters"
	"github.com/lytical/app/pkg/lyt/lytfx"
)

func main() {
	var (
		adapter  = flag.String("adapter", "echo", "Web server adapter to use (echo, gin, or fiber)")
		manifest = flag.String("manifest", "lyt.toml", "Manifest holding [server] and [logging] settings")
		token    = flag.String("token", "valid-token", "Bearer token accepted by protected routes")
	)
	flag.Parse()

	if *adapter != "echo" && *adapter != "gin" && *adapter != "fiber" {
		log.Fatalf("Invalid adapter '%s'. Must be 'echo', 'gin', or 'fiber'", *adapter)
	}

	app := fx.New(
		fx.NopLogger,

		fx.Provide(func() (*lyt.Config, error) {
			if _, err := os.Stat(*manifest); err != nil {
				return lyt.DefaultConfig(), nil
			}
			return lyt.LoadConfig(*manifest)
		}),
		fx.Provide(func(cfg *lyt.Config) *slog.Logger {
			return logging.New(&cfg.Logging)
		}),
		fx.Provide(func() lyt.WebServerInterface {
			switch *adapter {
			case "gin":
				return adapters.NewDefaultGinAdapter()
			case "fiber":
				return adapters.NewDefaultFiberAdapter("PURGE")
			default:
				return adapters.NewDefaultEchoAdapter()
			}
		}),
		fx.Provide(services.NewWidgetStore),
		fx.Supply(&middleware.AuthConfig{Token: *token}),

		lytfx.Module,
		lytfx.Expose[*services.WidgetStore](),
		lytfx.Expose[*middleware.AuthConfig](),
		lytfx.Expose[*slog.Logger](),

		fx.Invoke(configure),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	<-ctx.Done()
	fmt.Println("Received shutdown signal")

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Fatalf("Failed to stop application gracefully: %v", err)
	}
}

// configure installs the process-wide middleware and reports progress.
func configure(app *lyt.Application, logger *slog.Logger) {
	app.OnCreateServer(func(ctx context.Context, cfg *lyt.ServerConfig) error {
		cfg.Use(lyt.Recover(), lyt.RequestID(), lyt.RequestLogger(logger))
		return nil
	})
	app.OnServerStarting(func(ctx context.Context, cfg *lyt.ListenConfig) error {
		cfg.Use(lyt.ErrorHandler(logger), lyt.RateLimit(rate.Limit(100), 200))
		return nil
	})
	app.OnServerListening(func(addr net.Addr) {
		logger.Info("accepting connections", "url", "http://"+addr.String()+app.Config().Prefix)
	})
	app.OnServerStarted(func() {
		for _, r := range app.Routes().GetAllRoutes() {
			logger.Debug("route", "method", r.Method, "path", r.FullPath, "handler", r.RouteType+"."+r.HandlerName)
		}
	})
}
