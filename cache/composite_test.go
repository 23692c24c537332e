package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompositeFirstHitWins(t *testing.T) {
	ctx := context.Background()
	l1 := NewInMemory(ctx)
	defer l1.Close()
	l2 := NewInMemory(ctx)
	defer l2.Close()

	require.NoError(t, l2.Set(ctx, "key", "from-l2", time.Minute))
	c := NewComposite(l1, l2)
	found, val, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "from-l2", val)
}

func TestCompositeWritesAll(t *testing.T) {
	ctx := context.Background()
	l1 := NewInMemory(ctx)
	defer l1.Close()
	l2, err := NewFile(filepath.Join(t.TempDir(), "l2.bin"))
	require.NoError(t, err)
	defer l2.Close()

	c := NewComposite(l1, l2)
	require.NoError(t, c.Set(ctx, "key", "value", time.Minute))

	found, _, err := l1.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, found)
	found, _, err = l2.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, found)

	ok, err := c.Delete(ctx, "key")
	require.NoError(t, err)
	assert.True(t, ok)
	found, _, _ = l2.Get(ctx, "key")
	assert.False(t, found)
}

func TestCompositeRequiresCache(t *testing.T) {
	assert.Panics(t, func() { NewComposite() })
}
