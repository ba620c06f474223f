package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/Alijeyrad/wscontext/config"
	"github.com/Alijeyrad/wscontext/internal/api/http/handler"
	"github.com/Alijeyrad/wscontext/internal/api/http/middleware"
	"github.com/Alijeyrad/wscontext/internal/dispatch"
	"github.com/Alijeyrad/wscontext/internal/service/session"
	"github.com/Alijeyrad/wscontext/pkg/authorize"
	pasetotoken "github.com/Alijeyrad/wscontext/pkg/paseto"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg        *config.Config
	Dispatcher *dispatch.Dispatcher

	// Auth is absent when authorization is disabled.
	Auth      authorize.IAuthorization `optional:"true"`
	PasetoMgr *pasetotoken.Manager     `optional:"true"`
	Sessions  session.Service          `optional:"true"`
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	api := app.Group("/api/v1")

	// 2. Caller authentication
	if r.p.PasetoMgr != nil {
		api.Use(middleware.Authenticate(r.p.PasetoMgr, r.p.Cfg.Authentication.Required))
		if r.p.Sessions != nil && r.p.Cfg.Authentication.RequireSession {
			api.Use(middleware.RequireSession(r.p.Sessions))
		}
	}

	// 3. Endpoints
	r.registerEndpointRoutes(api, handler.NewEndpointHandler(r.p.Dispatcher))
}

func (r *Router) registerEndpointRoutes(api fiber.Router, h *handler.EndpointHandler) {
	eps := api.Group("/endpoints")

	if r.p.Auth == nil {
		eps.Get("/", h.List)
		eps.Get("/:endpoint/reference", h.Reference)
		eps.Post("/:endpoint/:operation", h.Invoke)
		return
	}

	eps.Get("/", middleware.RequirePermission(r.p.Auth, authorize.ResourceRegistry, authorize.ActionDescribe), h.List)
	eps.Get("/:endpoint/reference", middleware.RequireDescribe(r.p.Auth), h.Reference)
	eps.Post("/:endpoint/:operation", middleware.RequireInvoke(r.p.Auth), h.Invoke)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool {
			if r.p.Auth == nil {
				return true
			}
			return authorize.IsPolicyHealthy()
		},
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
