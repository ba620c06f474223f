package http

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/fx"

	"github.com/Alijeyrad/wscontext/config"
	"github.com/Alijeyrad/wscontext/internal/api/http/router"
	"github.com/Alijeyrad/wscontext/internal/api/natsrpc"
	"github.com/Alijeyrad/wscontext/internal/app"
)

// Start runs the host until it receives a stop signal. Endpoints are served
// over HTTP and, when enabled, over NATS.
func Start(cfg *config.Config, timeout time.Duration) {
	fx.New(
		fx.Supply(cfg),
		app.InfraModule,
		app.ServiceModule,
		router.Module,
		Module,
		natsrpc.Module,

		// Invoke *fiber.App so NewServer runs and registers its OnStart hook
		fx.Invoke(func(*fiber.App) {}),
		fx.Invoke(func(*natsrpc.Server) {}),

		fx.StopTimeout(timeout),
		fx.WithLogger(app.FxLogger),
	).Run()
}
