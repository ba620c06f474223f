package http

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/logger"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/wscontext/config"
	"github.com/Alijeyrad/wscontext/internal/api/http/middleware"
	"github.com/Alijeyrad/wscontext/internal/api/http/router"
	"github.com/Alijeyrad/wscontext/pkg/observability"
)

// Module provides the HTTP Server to the fx graph.
var Module = fx.Module("http", fx.Provide(NewServer))

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Cfg       *config.Config
	Redis     *redis.Client `optional:"true"`
	Router    *router.Router
	OTel      *observability.Provider `optional:"true"`
	Logger    *slog.Logger            `optional:"true"`
}

func NewServer(p Params) *fiber.App {
	app := NewApp(p.Cfg, p.Redis, p.OTel != nil)
	p.Router.Register(app)

	log := p.Logger
	if log == nil {
		log = slog.Default()
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			addr := fmt.Sprintf(":%d", p.Cfg.Server.Port)
			go func() {
				if err := app.Listen(addr); err != nil {
					log.Error("HTTP server error", "error", err)
				}
			}()
			log.Info("HTTP server listening", "addr", addr)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})

	return app
}

// NewApp builds the fiber app with global middleware installed. Routes are
// registered by the router.
func NewApp(cfg *config.Config, rdb *redis.Client, tracing bool) *fiber.App {
	fcfg := fiber.Config{AppName: "wsctx"}
	if cfg.Server.TimeoutSeconds > 0 {
		t := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
		fcfg.ReadTimeout = t
		fcfg.WriteTimeout = t
	}
	app := fiber.New(fcfg)

	if tracing {
		app.Use(observability.FiberMiddleware(observability.FromCentralConfig(cfg).ServiceName))
	}

	configureGlobalMiddleware(app, cfg, rdb)
	return app
}

func configureGlobalMiddleware(app *fiber.App, cfg *config.Config, rdb *redis.Client) {
	app.Use(middleware.RequestID())
	app.Use(recoverer.New())

	if cfg.Server.Environment == "production" {
		app.Use(helmet.New(helmetConfig(cfg.Server.Headers)))
	}
	if cfg.Server.CORS.Enabled {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.CORS.AllowOrigins,
			AllowMethods:     cfg.Server.CORS.AllowMethods,
			AllowHeaders:     cfg.Server.CORS.AllowHeaders,
			ExposeHeaders:    cfg.Server.CORS.ExposeHeaders,
			AllowCredentials: cfg.Server.CORS.AllowCredentials,
			MaxAge:           cfg.Server.CORS.MaxAgeSeconds,
		}))
	}
	if cfg.Server.RateLimit.Enabled {
		app.Use(middleware.NewLimiterWithRedis(rdb, cfg.Server.RateLimit.RequestsPerMinute))
	}

	if cfg.Server.Environment != "test" {
		app.Use(logger.New(logger.Config{
			Format: "${ip} - [${time}] [req_id=${respHeader:X-Request-Id}] ${method} ${url} ${status}\n",
		}))
	}
}

// helmetConfig overrides helmet defaults with configured header values.
func helmetConfig(h config.HeadersConfig) helmet.Config {
	c := helmet.ConfigDefault
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.XSSProtection, h.XSSProtection)
	set(&c.ContentTypeNosniff, h.ContentTypeNosniff)
	set(&c.XFrameOptions, h.XFrameOptions)
	set(&c.ReferrerPolicy, h.ReferrerPolicy)
	set(&c.CrossOriginEmbedderPolicy, h.CrossOriginEmbedderPolicy)
	set(&c.CrossOriginOpenerPolicy, h.CrossOriginOpenerPolicy)
	set(&c.CrossOriginResourcePolicy, h.CrossOriginResourcePolicy)
	set(&c.OriginAgentCluster, h.OriginAgentCluster)
	set(&c.XDNSPrefetchControl, h.XDNSPrefetchControl)
	set(&c.XDownloadOptions, h.XDownloadOptions)
	set(&c.XPermittedCrossDomain, h.XPermittedCrossDomain)
	return c
}
