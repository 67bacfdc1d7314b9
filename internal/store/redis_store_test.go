package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnkvreels/vreels-backend/internal/domain"
	"github.com/mnkvreels/vreels-backend/internal/store"
	"github.com/mnkvreels/vreels-backend/internal/testutil"
)

func TestCountsRoundTrip(t *testing.T) {
	mr, client := testutil.NewRedis(t)
	s := store.NewRedisCountStoreFromClient(client, time.Minute)
	ctx := context.Background()

	_, found, err := s.GetCounts(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, found)

	want := domain.Counts{UserID: "u1", FollowersCount: 5, FollowingCount: 2}
	require.NoError(t, s.SetCounts(ctx, want))

	got, found, err := s.GetCounts(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)

	assert.Equal(t, time.Minute, mr.TTL("social:counts:u1"))

	mr.FastForward(2 * time.Minute)
	_, found, err = s.GetCounts(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAdjustFollowOnlyTouchesCachedEntries(t *testing.T) {
	mr, client := testutil.NewRedis(t)
	s := store.NewRedisCountStoreFromClient(client, 0)
	ctx := context.Background()

	require.NoError(t, s.SetCounts(ctx, domain.Counts{UserID: "b", FollowersCount: 3, FollowingCount: 1}))

	// "a" is not cached and must stay absent.
	require.NoError(t, s.AdjustFollow(ctx, "a", "b", 1))
	assert.False(t, mr.Exists("social:counts:a"))

	got, _, err := s.GetCounts(ctx, "b")
	require.NoError(t, err)
	assert.EqualValues(t, 4, got.FollowersCount)
	assert.EqualValues(t, 1, got.FollowingCount)

	// Never below zero.
	require.NoError(t, s.SetCounts(ctx, domain.Counts{UserID: "c"}))
	require.NoError(t, s.AdjustFollow(ctx, "c", "b", -1))
	got, _, err = s.GetCounts(ctx, "c")
	require.NoError(t, err)
	assert.Zero(t, got.FollowingCount)
}

func TestInvalidate(t *testing.T) {
	mr, client := testutil.NewRedis(t)
	s := store.NewRedisCountStoreFromClient(client, 0)
	ctx := context.Background()

	require.NoError(t, s.SetCounts(ctx, domain.Counts{UserID: "a"}))
	require.NoError(t, s.SetCounts(ctx, domain.Counts{UserID: "b"}))
	require.NoError(t, s.Invalidate(ctx, "a", "b"))
	assert.False(t, mr.Exists("social:counts:a"))
	assert.False(t, mr.Exists("social:counts:b"))

	require.NoError(t, s.Invalidate(ctx))
}

func TestHotKeys(t *testing.T) {
	_, client := testutil.NewRedis(t)
	s := store.NewRedisCountStoreFromClient(client, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.RecordAccess(ctx, "hot"))
	}
	require.NoError(t, s.RecordAccess(ctx, "warm"))
	require.NoError(t, s.RecordAccess(ctx, "warm"))
	require.NoError(t, s.RecordAccess(ctx, "cold"))

	top, err := s.GetTopHotKeys(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"hot", "warm"}, top)

	require.NoError(t, s.ResetHotKeyScores(ctx))
	top, err = s.GetTopHotKeys(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, top)
}
