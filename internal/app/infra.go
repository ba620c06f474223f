package app

import (
	"context"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/wscontext/config"
	"github.com/Alijeyrad/wscontext/internal/descriptor"
	"github.com/Alijeyrad/wscontext/pkg/authorize"
	"github.com/Alijeyrad/wscontext/pkg/database"
	"github.com/Alijeyrad/wscontext/pkg/observability"
	redispkg "github.com/Alijeyrad/wscontext/pkg/redis"
	s3pkg "github.com/Alijeyrad/wscontext/pkg/s3"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideLogger),
	fx.Provide(ProvideEntDriver),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideAuthorization),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideS3Client),
	fx.Provide(ProvideNatsClient),
)

// ProvideLogger hands the process logger to the graph. The serve command
// installs it as the slog default before fx starts.
func ProvideLogger() *slog.Logger {
	return slog.Default()
}

// ProvideEntDriver opens the descriptor database. It is nil unless
// descriptors are stored in SQL.
func ProvideEntDriver(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) (*entsql.Driver, error) {
	if cfg.Descriptors.Store != descriptor.StoreSQL {
		return nil, nil
	}
	dbcfg := database.FromCentralConfig(cfg.Database)
	drv, err := database.NewEntDriverFromConfig(dbcfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !dbcfg.AutoMigrate {
				return nil
			}
			log.Info("creating descriptor table", "table", descriptor.TableName)
			return descriptor.NewSQL(drv).EnsureSchema(ctx)
		},
		OnStop: func(ctx context.Context) error {
			log.Debug("closing descriptor database connection")
			return drv.Close()
		},
	})
	return drv, nil
}

func ProvideRedis(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) (*redis.Client, error) {
	rdb, err := redispkg.NewFromCentral(context.Background(), cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

// ProvideAuthorization builds the Casbin enforcer. With authorization
// disabled it provides nil, and no caller is in any role.
func ProvideAuthorization(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) (authorize.IAuthorization, error) {
	if !cfg.Authorization.Enabled {
		log.Warn("authorization disabled; role checks always fail")
		return nil, nil
	}

	acfg := authorize.FromCentralConfig(cfg.Authorization)
	dsn := database.NewDSN(cfg.CasbinDatabase)
	enforcer, cleanup, err := authorize.NewEnforcer(acfg, dsn, log)
	if err != nil {
		return nil, err
	}
	auth, err := authorize.NewAuthorization(enforcer, acfg.Options()...)
	if err != nil {
		cleanup(context.Background())
		return nil, err
	}
	if acfg.EnableAudit {
		auth = authorize.NewAuditedAuthorization(auth, log)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Debug("cleaning up Casbin enforcer")
			cleanup(ctx)
			return nil
		},
	})
	return auth, nil
}

// ProvideS3Client is nil when no bucket is configured; documents are then
// only read from files.
func ProvideS3Client(cfg *config.Config) (*s3pkg.Client, error) {
	if cfg.S3.Bucket == "" {
		return nil, nil
	}
	return s3pkg.New(context.Background(), cfg.S3)
}

// ProvideNatsClient is nil when the NATS transport is disabled.
func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) (*nats.Conn, error) {
	if !cfg.Nats.Enabled {
		return nil, nil
	}
	nc, err := nats.Connect(cfg.Nats.URL, nats.Name(cfg.Observability.ServiceName))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Debug("draining NATS connection")
			return nc.Drain()
		},
	})
	return nc, nil
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.FromCentralConfig(cfg))
	if err != nil {
		return nil, err
	}
	log.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}
