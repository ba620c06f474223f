package descriptor

import (
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"

	"github.com/Alijeyrad/wscontext/config"
)

const (
	StoreStatic = "static"
	StoreSQL    = "sql"
)

// Deps are the optional backends a configured source may use.
type Deps struct {
	Driver  dialect.Driver
	Cache   CacheClient
	Objects ObjectGetter
	Logger  *slog.Logger
}

// NewSource assembles the source described by cfg. The sql store is
// consulted before configured endpoints; the cache wraps the whole chain.
func NewSource(cfg *config.Config, deps Deps) (Source, error) {
	static := NewStatic(cfg.Endpoints, NewDocumentLoader(deps.Objects))

	var src Source = static
	switch cfg.Descriptors.Store {
	case "", StoreStatic:
	case StoreSQL:
		if deps.Driver == nil {
			return nil, fmt.Errorf("descriptor store %q needs a database driver", StoreSQL)
		}
		src = Chain{NewSQL(deps.Driver), static}
	default:
		return nil, fmt.Errorf("unknown descriptor store %q", cfg.Descriptors.Store)
	}

	if cfg.Descriptors.CacheEnabled && deps.Cache != nil {
		ttl := time.Duration(cfg.Descriptors.CacheTTLSeconds) * time.Second
		src = NewCached(src, deps.Cache, ttl, deps.Logger)
	}
	return src, nil
}
