package app

import (
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/wscontext/config"
	"github.com/Alijeyrad/wscontext/internal/descriptor"
	"github.com/Alijeyrad/wscontext/internal/dispatch"
	"github.com/Alijeyrad/wscontext/internal/service/introspect"
	"github.com/Alijeyrad/wscontext/internal/service/session"
	"github.com/Alijeyrad/wscontext/pkg/authorize"
	"github.com/Alijeyrad/wscontext/pkg/epr"
	"github.com/Alijeyrad/wscontext/pkg/observability"
	pasetotoken "github.com/Alijeyrad/wscontext/pkg/paseto"
	"github.com/Alijeyrad/wscontext/pkg/reqctx"
	s3pkg "github.com/Alijeyrad/wscontext/pkg/s3"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvidePasetoManager,
		ProvideSessionService,
		ProvideDescriptorSource,
		ProvideReferenceBuilder,
		ProvideDispatchMetrics,
		ProvideEndpointContext,
		ProvideRegistry,
		ProvideDispatcher,
	),
)

func ProvidePasetoManager(cfg *config.Config) (*pasetotoken.Manager, error) {
	return pasetotoken.NewPasetoManager(cfg)
}

func ProvideSessionService(rdb *redis.Client, cfg *config.Config) session.Service {
	ttl := time.Duration(cfg.Authentication.SessionTTLMinutes) * time.Minute
	return session.New(rdb, ttl)
}

type DescriptorParams struct {
	fx.In

	Cfg     *config.Config
	Driver  *entsql.Driver `optional:"true"`
	Redis   *redis.Client  `optional:"true"`
	Objects *s3pkg.Client  `optional:"true"`
	Logger  *slog.Logger
}

func ProvideDescriptorSource(p DescriptorParams) (descriptor.Source, error) {
	deps := descriptor.Deps{Logger: p.Logger}
	// Typed nils must not reach the interface fields.
	if p.Driver != nil {
		deps.Driver = p.Driver
	}
	if p.Redis != nil {
		deps.Cache = p.Redis
	}
	if p.Objects != nil {
		deps.Objects = p.Objects
	}
	return descriptor.NewSource(p.Cfg, deps)
}

// ProvideReferenceBuilder supports the configured reference kinds, or only
// W3C references when none are configured.
func ProvideReferenceBuilder(cfg *config.Config) (*epr.Builder, error) {
	kinds := make([]epr.Kind, 0, len(cfg.Dispatch.ReferenceKinds))
	for _, s := range cfg.Dispatch.ReferenceKinds {
		k, err := epr.ParseKind(s)
		if err != nil {
			return nil, fmt.Errorf("dispatch.reference_kinds: %w", err)
		}
		kinds = append(kinds, k)
	}
	if len(kinds) == 0 {
		kinds = append(kinds, epr.KindW3C)
	}
	return epr.NewBuilder(kinds...)
}

type MetricsParams struct {
	fx.In

	OTel *observability.Provider `optional:"true"`
}

// ProvideDispatchMetrics depends on the OTel provider so that instruments are
// created on the configured meter provider.
func ProvideDispatchMetrics(MetricsParams) *observability.DispatchMetrics {
	return observability.NewDispatchMetrics()
}

func ProvideEndpointContext(log *slog.Logger) reqctx.EndpointContext {
	return reqctx.NewAccessor(log)
}

// ProvideRegistry registers the endpoints hosted by this process.
func ProvideRegistry(wsctx reqctx.EndpointContext) (*dispatch.Registry, error) {
	reg := dispatch.NewRegistry()
	if err := reg.Register(introspect.New(wsctx).Endpoint()); err != nil {
		return nil, err
	}
	return reg, nil
}

type DispatcherParams struct {
	fx.In

	Cfg         *config.Config
	Registry    *dispatch.Registry
	Descriptors descriptor.Source
	References  *epr.Builder
	Auth        authorize.IAuthorization `optional:"true"`
	Metrics     *observability.DispatchMetrics
	Logger      *slog.Logger
}

func ProvideDispatcher(p DispatcherParams) (*dispatch.Dispatcher, error) {
	return dispatch.New(dispatch.FromCentralConfig(p.Cfg), dispatch.Deps{
		Registry:    p.Registry,
		Descriptors: p.Descriptors,
		References:  p.References,
		Auth:        p.Auth,
		Metrics:     p.Metrics,
		Logger:      p.Logger,
	})
}
