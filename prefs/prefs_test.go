package prefs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_DefaultsWhenUnset(t *testing.T) {
	s := NewMemoryStore()

	p, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, p.IsAuthEnabled)
	assert.True(t, p.IsPostCreateEnabled)
}

func TestMemoryStore_SetGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, Preferences{IsAuthEnabled: false, IsPostCreateEnabled: true}))

	p, err := s.Get(ctx)
	require.NoError(t, err)
	assert.False(t, p.IsAuthEnabled)
	assert.True(t, p.IsPostCreateEnabled)
}
