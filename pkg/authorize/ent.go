package authorize

import (
	"context"
	"log/slog"
	"sync/atomic"

	psqlwatcher "github.com/IguteChung/casbin-psql-watcher"
	casbin "github.com/casbin/casbin/v2"
	entadapter "github.com/casbin/ent-adapter"
)

// policyLoadHealthy tracks the health state of Casbin policy loading.
// When policy reload fails, this is set to false to trigger health check failures.
var policyLoadHealthy atomic.Bool

func init() {
	policyLoadHealthy.Store(true)
}

// IsPolicyHealthy returns true if the Casbin policy is in a healthy state.
// Returns false if the last policy reload attempt failed.
func IsPolicyHealthy() bool {
	return policyLoadHealthy.Load()
}

// CleanupFunc is a function that cleans up resources.
type CleanupFunc func(ctx context.Context)

// NewEnforcer creates a Casbin DistributedEnforcer storing policies in
// PostgreSQL through the ent adapter. With cfg.PolicySyncEnabled a LISTEN/NOTIFY
// watcher reloads policy on every instance when one of them changes it.
// The returned cleanup should be called on shutdown.
func NewEnforcer(cfg Config, dsn string, logger *slog.Logger) (*casbin.DistributedEnforcer, CleanupFunc, error) {
	if logger == nil {
		logger = slog.Default()
	}

	m, err := LoadModel(cfg.CasbinModelPath)
	if err != nil {
		return nil, nil, err
	}

	a, err := entadapter.NewAdapter("postgres", dsn)
	if err != nil {
		return nil, nil, err
	}

	e, err := casbin.NewDistributedEnforcer(m, a)
	if err != nil {
		return nil, nil, err
	}

	var closeWatcher func()
	if cfg.PolicySyncEnabled {
		w, err := psqlwatcher.NewWatcherWithConnString(context.Background(), dsn, psqlwatcher.Option{
			Channel: "casbin_policy_update",
		})
		if err != nil {
			return nil, nil, err
		}

		err = w.SetUpdateCallback(func(msg string) {
			logger.Debug("casbin policy update received", "message", msg)
			if err := e.LoadPolicy(); err != nil {
				logger.Error("failed to reload policy after watcher notification", "error", err)
				policyLoadHealthy.Store(false)
			} else {
				policyLoadHealthy.Store(true)
			}
		})
		if err != nil {
			w.Close()
			return nil, nil, err
		}

		if err := e.SetWatcher(w); err != nil {
			w.Close()
			return nil, nil, err
		}
		closeWatcher = w.Close
	}

	e.EnableAutoSave(true)
	e.EnableEnforce(true)

	cleanup := func(ctx context.Context) {
		if closeWatcher != nil {
			logger.Info("closing casbin policy watcher")
			closeWatcher()
		}
		logger.Info("stopping casbin auto policy loading")
		e.StopAutoLoadPolicy()
		logger.Info("casbin enforcer cleanup completed")
	}

	return e, cleanup, nil
}
