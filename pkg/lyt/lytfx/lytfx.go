// Package lytfx runs a lyt application inside an fx application: the lyt
// lifecycle starts in fx's OnStart and stops in OnStop.
package lytfx

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/lytical/app/pkg/lyt"
)

// Module provides *lyt.Application and binds it to the fx lifecycle.
// *lyt.Config, *slog.Logger and lyt.WebServerInterface are used when the
// graph provides them; further options come from the "lyt.options" group.
var Module = fx.Module("lyt",
	fx.Provide(NewApplication),
	fx.Invoke(Register),
)

// Params are the optional inputs of NewApplication
type Params struct {
	fx.In

	Config  *lyt.Config            `optional:"true"`
	Logger  *slog.Logger           `optional:"true"`
	Server  lyt.WebServerInterface `optional:"true"`
	Options []lyt.Option           `group:"lyt.options"`
}

// NewApplication builds the application from the fx graph.
func NewApplication(p Params) *lyt.Application {
	var opts []lyt.Option
	if p.Config != nil {
		opts = append(opts, lyt.WithConfig(p.Config))
	}
	if p.Logger != nil {
		opts = append(opts, lyt.WithLogger(p.Logger))
	}
	if p.Server != nil {
		opts = append(opts, lyt.WithServer(p.Server))
	}
	opts = append(opts, p.Options...)
	return lyt.NewApplication(opts...)
}

// Register appends the application's Start and Stop to the fx lifecycle.
func Register(lc fx.Lifecycle, app *lyt.Application) {
	lc.Append(fx.Hook{
		OnStart: app.Start,
		OnStop:  app.Stop,
	})
}

// Option adds an application option through the "lyt.options" group.
func Option(opt lyt.Option) fx.Option {
	return fx.Provide(fx.Annotate(
		func() lyt.Option { return opt },
		fx.ResultTags(`group:"lyt.options"`),
	))
}

// Expose makes the T in the fx graph injectable into lyt routes and middleware.
func Expose[T any]() fx.Option {
	return fx.Invoke(func(app *lyt.Application, v T) error {
		return lyt.SupplyAs(app.Injector(), v)
	})
}
