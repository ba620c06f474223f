package descriptor

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCache is an in-memory CacheClient.
type fakeCache struct {
	data    map[string][]byte
	ttls    map[string]time.Duration
	readErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCache) Get(_ context.Context, key string) *goredis.StringCmd {
	if f.readErr != nil {
		return goredis.NewStringResult("", f.readErr)
	}
	v, ok := f.data[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(string(v), nil)
}

func (f *fakeCache) Set(_ context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd {
	f.data[key] = value.([]byte)
	f.ttls[key] = expiration
	return goredis.NewStatusResult("OK", nil)
}

func (f *fakeCache) Del(_ context.Context, keys ...string) *goredis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return goredis.NewIntResult(n, nil)
}

func TestCachedLookup(t *testing.T) {
	ctx := context.Background()
	src := &stubSource{rec: &Record{Name: "greeter", Address: "http://a"}}
	cache := newFakeCache()
	c := NewCached(src, cache, time.Minute, nil)

	rec, err := c.Lookup(ctx, "greeter")
	require.NoError(t, err)
	assert.Equal(t, "http://a", rec.Address)
	assert.Equal(t, time.Minute, cache.ttls["wsctx:descriptor:greeter"])

	rec, err = c.Lookup(ctx, "greeter")
	require.NoError(t, err)
	assert.Equal(t, "http://a", rec.Address)
	assert.Equal(t, 1, src.calls)

	require.NoError(t, c.Invalidate(ctx, "greeter"))
	_, err = c.Lookup(ctx, "greeter")
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestCachedMissNotStored(t *testing.T) {
	cache := newFakeCache()
	c := NewCached(&stubSource{err: ErrNotFound}, cache, 0, nil)

	_, err := c.Lookup(context.Background(), "greeter")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, cache.data)
	assert.Equal(t, DefaultCacheTTL, c.ttl)
}

func TestCachedFallsThroughOnRedisError(t *testing.T) {
	cache := newFakeCache()
	cache.readErr = errors.New("redis down")
	src := &stubSource{rec: &Record{Name: "greeter"}}

	rec, err := NewCached(src, cache, time.Minute, nil).Lookup(context.Background(), "greeter")
	require.NoError(t, err)
	assert.Equal(t, "greeter", rec.Name)
	assert.Equal(t, 1, src.calls)
}

func TestCachedCorruptEntry(t *testing.T) {
	cache := newFakeCache()
	cache.data["wsctx:descriptor:greeter"] = []byte("{not json")
	src := &stubSource{rec: &Record{Name: "greeter"}}

	_, err := NewCached(src, cache, time.Minute, nil).Lookup(context.Background(), "greeter")
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
}
