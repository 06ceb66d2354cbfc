package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, "token")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "token", "abc"))
	v, ok, err := m.Get(ctx, "token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	require.NoError(t, m.Remove(ctx, "token"))
	require.NoError(t, m.Remove(ctx, "token"), "removing a missing key is not an error")
	_, ok, _ = m.Get(ctx, "token")
	assert.False(t, ok)
}

func TestMemoryInstancesAreIsolated(t *testing.T) {
	ctx := context.Background()
	tabA, tabB := NewMemory(), NewMemory()

	require.NoError(t, tabA.Set(ctx, "token", "a"))
	_, ok, _ := tabB.Get(ctx, "token")
	assert.False(t, ok)
}
