// Package session keeps caller sessions in Redis. A token carrying a
// session id is only accepted while its session exists.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

// Client is the subset of the redis client sessions need.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

type Service interface {
	// Create stores a new session for subject and returns its id.
	Create(ctx context.Context, subject string) (uuid.UUID, error)

	// Check returns the subject of an existing session and extends it.
	Check(ctx context.Context, id uuid.UUID) (string, error)

	// Revoke deletes a session. Revoking an expired session is not an error.
	Revoke(ctx context.Context, id uuid.UUID) error
}

type sessionService struct {
	rdb Client
	ttl time.Duration
}

func New(rdb Client, ttl time.Duration) Service {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &sessionService{rdb: rdb, ttl: ttl}
}

// redisKey returns the Redis key for a session.
func redisKey(id string) string { return "session:" + id }

func (s *sessionService) Create(ctx context.Context, subject string) (uuid.UUID, error) {
	if subject == "" {
		return uuid.Nil, errors.New("session subject is empty")
	}
	id := uuid.Must(uuid.NewV7())
	if err := s.rdb.Set(ctx, redisKey(id.String()), subject, s.ttl).Err(); err != nil {
		return uuid.Nil, fmt.Errorf("store session: %w", err)
	}
	return id, nil
}

func (s *sessionService) Check(ctx context.Context, id uuid.UUID) (string, error) {
	key := redisKey(id.String())

	subject, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get session: %w", err)
	}

	s.rdb.Expire(ctx, key, s.ttl)
	return subject, nil
}

func (s *sessionService) Revoke(ctx context.Context, id uuid.UUID) error {
	if err := s.rdb.Del(ctx, redisKey(id.String())).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
