package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	data    map[string]string
	ttls    map[string]time.Duration
	failGet bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.failGet {
		return redis.NewStringResult("", errors.New("connection reset"))
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, exp time.Duration) *redis.StatusCmd {
	f.data[key] = value.(string)
	f.ttls[key] = exp
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) Expire(_ context.Context, key string, exp time.Duration) *redis.BoolCmd {
	_, ok := f.data[key]
	if ok {
		f.ttls[key] = exp
	}
	return redis.NewBoolResult(ok, nil)
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	svc := New(rdb, time.Hour)

	id, err := svc.Create(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, rdb.ttls["session:"+id.String()])

	subject, err := svc.Check(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)

	require.NoError(t, svc.Revoke(ctx, id))
	_, err = svc.Check(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// revoking twice is fine
	assert.NoError(t, svc.Revoke(ctx, id))
}

func TestSessionErrors(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	svc := New(rdb, 0)

	_, err := svc.Create(ctx, "")
	assert.Error(t, err)

	_, err = svc.Check(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	rdb.failGet = true
	_, err = svc.Check(ctx, uuid.New())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}
