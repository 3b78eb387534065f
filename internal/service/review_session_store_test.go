package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mentora-api/internal/listview"
	"github.com/noah-isme/mentora-api/internal/models"
)

func TestRedisSessionStoreRoundTrip(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	store := NewReviewSessionStore(client, 30*time.Minute)
	ctx := context.Background()
	key := reviewSessionKey(ActivityActor{ID: 3}, models.ReviewKindProgram)
	require.Equal(t, "review:session:3:program", key)

	_, found, err := store.Load(ctx, key)
	require.NoError(t, err)
	require.False(t, found)

	state := listview.State{
		Search:   "robotics",
		Status:   listview.StatusPending,
		Page:     2,
		PageSize: 10,
		Modal:    listview.RejectModal{Open: true, RecordID: "14", Reason: "incomplete"},
	}
	require.NoError(t, store.Save(ctx, key, state))
	require.Equal(t, 30*time.Minute, server.TTL(key))

	loaded, found, err := store.Load(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, state, loaded)

	require.NoError(t, store.Delete(ctx, key))
	_, found, err = store.Load(ctx, key)
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemorySessionStoreExpires(t *testing.T) {
	store := newMemorySessionStore(time.Minute)
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "k", listview.State{Search: "ayu", Page: 1, PageSize: 10}))
	state, found, err := store.Load(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "ayu", state.Search)

	now = now.Add(2 * time.Minute)
	_, found, err = store.Load(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)
}
