package redisx

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRoundTripAndMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := New(mr.Addr())
	ctx := context.Background()

	var out map[string]int
	found, err := GetJSON(ctx, rdb, "missing", &out)
	require.NoError(t, err)
	assert.False(t, found)

	key := fmt.Sprintf(KeyStorefront, "b1")
	require.NoError(t, SetJSON(ctx, rdb, key, map[string]int{"reviews": 3}, TTLStorefront))
	found, err = GetJSON(ctx, rdb, key, &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3, out["reviews"])

	mr.FastForward(TTLStorefront + time.Second)
	assert.False(t, mr.Exists(key))
}

func TestMarkOnce(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := New(mr.Addr())
	ctx := context.Background()
	key := fmt.Sprintf(KeyDedup, "stockwatch", "ev-1")

	first, err := MarkOnce(ctx, rdb, key, TTLDedup)
	require.NoError(t, err)
	second, err := MarkOnce(ctx, rdb, key, TTLDedup)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
}
