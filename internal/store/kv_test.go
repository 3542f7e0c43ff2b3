package store

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKV(t *testing.T) (*miniredis.Miniredis, *RedisKV) {
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	return mr, NewRedisKV(c, "lm:")
}

func TestRedisKV_GetSet(t *testing.T) {
	mr, kv := newTestKV(t)
	ctx := context.Background()

	_, err := kv.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, kv.Set(ctx, "a", "1", 0))
	v, err := kv.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	got, err := mr.Get("lm:a")
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestRedisKV_TTL(t *testing.T) {
	mr, kv := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "short", "x", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := kv.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKV_ScanKeysStripsPrefix(t *testing.T) {
	mr, kv := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "job:1", "a", 0))
	require.NoError(t, kv.Set(ctx, "job:2", "b", 0))
	require.NoError(t, kv.Set(ctx, "other", "c", 0))
	require.NoError(t, mr.Set("foreign:job:3", "d"))

	keys, err := kv.ScanKeys(ctx, "job:*")
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"job:1", "job:2"}, keys)
}

func TestJSONHelpers(t *testing.T) {
	_, kv := newTestKV(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	require.NoError(t, SetJSON(ctx, kv, "p", payload{Name: "n", Count: 3}, 0))

	var out payload
	require.NoError(t, GetJSON(ctx, kv, "p", &out))
	assert.Equal(t, payload{Name: "n", Count: 3}, out)

	require.NoError(t, kv.Set(ctx, "bad", "{", 0))
	assert.Error(t, GetJSON(ctx, kv, "bad", &out))

	assert.ErrorIs(t, GetJSON(ctx, kv, "missing", &out), ErrMiss)
}
