package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c, err := New(Config{Kind: "memory", Prefix: "jwks"})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Get(ctx, "k")
	assert.True(t, IsNotFound(err))

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.True(t, IsNotFound(err))
}

func TestMemory_Expires(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("", time.Minute)
	require.NoError(t, c.Set(ctx, "k", "v", 20*time.Millisecond))
	time.Sleep(40 * time.Millisecond)
	_, err := c.Get(ctx, "k")
	assert.True(t, IsNotFound(err))
}

func TestNew_UnknownKind(t *testing.T) {
	_, err := New(Config{Kind: "memcached"})
	assert.Error(t, err)
}

func TestPrefixed(t *testing.T) {
	assert.Equal(t, "k", prefixed("", "k"))
	assert.Equal(t, "p:k", prefixed("p", "k"))
}
