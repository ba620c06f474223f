package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Alijeyrad/wscontext/config"
)

var ErrNoAddr = errors.New("redis addr is empty")

// NewFromCentral connects using central config.
func NewFromCentral(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	return New(ctx, FromCentralConfig(cfg))
}

// New connects and pings the server, waiting at most the dial timeout. The
// client is closed again when the ping fails.
func New(ctx context.Context, cfg Config) (*goredis.Client, error) {
	if cfg.Addr == "" {
		return nil, ErrNoAddr
	}

	rdb := goredis.NewClient(cfg.Options())

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}
