package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EmptyAddrDisablesCache(t *testing.T) {
	c := New("", "", 0, time.Minute)
	assert.Nil(t, c)

	ctx := context.Background()
	c.SetJSON(ctx, "user:1", map[string]string{"username": "alice"})

	var out map[string]string
	assert.False(t, c.GetJSON(ctx, "user:1", &out))
	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
	c.Delete(ctx, "user:1")
}

func TestClient_UnreachableServerActsAsMiss(t *testing.T) {
	// port 1 is never a redis server
	c := New("127.0.0.1:1", "", 0, time.Minute)
	t.Cleanup(func() { _ = c.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c.SetJSON(ctx, "user:1", map[string]string{"username": "alice"})

	var out map[string]string
	assert.False(t, c.GetJSON(ctx, "user:1", &out))
	assert.Error(t, c.Ping(ctx))
	c.Delete(ctx, "user:1")
}

func TestClient_JSONRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0, 5*time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))
	c.SetJSON(ctx, "user:7", map[string]string{"username": "alice"})
	assert.Equal(t, 5*time.Minute, mr.TTL("user:7"))

	var out map[string]string
	require.True(t, c.GetJSON(ctx, "user:7", &out))
	assert.Equal(t, "alice", out["username"])

	require.NoError(t, mr.Set("user:8", "{not json"))
	assert.False(t, c.GetJSON(ctx, "user:8", &out))

	c.Delete(ctx, "user:7")
	assert.False(t, mr.Exists("user:7"))
	assert.False(t, c.GetJSON(ctx, "user:7", &out))
}
