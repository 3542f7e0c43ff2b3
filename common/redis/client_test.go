package redis

import (
	"context"
	"testing"

	"loadmap/common/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedisClient(&config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, Ping(context.Background(), client))

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
	require.NoError(t, Close(client))
}

func TestPing_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	client := NewRedisClient(&config.RedisConfig{Addr: addr})
	defer client.Close()
	err := Ping(context.Background(), client)
	require.Error(t, err)
	assert.Contains(t, err.Error(), addr)
}

func TestClose_Nil(t *testing.T) {
	assert.NoError(t, Close(nil))
}
