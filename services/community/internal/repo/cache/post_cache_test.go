package cache

import (
	"context"
	"testing"
	"time"

	"hobbyhub/services/community/internal/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (PostCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewPostCache(client), mr
}

func samplePost() *entity.Post {
	image := "https://project.supabase.co/storage/v1/object/public/post-images/1-abc.png"
	created := time.Date(2024, 2, 2, 8, 30, 0, 123, time.UTC)
	return &entity.Post{
		ID:        "post-1",
		UserID:    "user-1",
		Title:     "Knitting tips",
		Content:   "Use bamboo needles",
		ImageURL:  &image,
		Type:      entity.PostTypeQuestion,
		Upvotes:   4,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestPostCache_SetGet(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	post := samplePost()

	require.NoError(t, cache.Set(ctx, post))

	got, ok, err := cache.Get(ctx, post.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, post, got)
	assert.Equal(t, PostTTL, mr.TTL(PostKey(post.ID)))
}

func TestPostCache_NilImageRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	post := samplePost()
	post.ImageURL = nil

	require.NoError(t, cache.Set(ctx, post))
	got, ok, err := cache.Get(ctx, post.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, got.ImageURL)
}

func TestPostCache_Miss(t *testing.T) {
	cache, _ := newTestCache(t)

	_, ok, err := cache.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPostCache_CorruptEntryIsMiss(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.HSet(PostKey("post-x"), "id", "post-x", "upvotes", "many")

	_, ok, err := cache.Get(context.Background(), "post-x")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists(PostKey("post-x")))
}

func TestPostCache_Invalidate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	post := samplePost()
	require.NoError(t, cache.Set(ctx, post))

	require.NoError(t, cache.Invalidate(ctx, post.ID))

	_, ok, err := cache.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpvoteView_UpdatesCachedPost(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	post := samplePost()
	require.NoError(t, cache.Set(ctx, post))

	require.NoError(t, cache.UpvoteView(post.ID).Show(ctx, 5))

	got, ok, err := cache.Get(ctx, post.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5, got.Upvotes)
	assert.Equal(t, post.Title, got.Title)
}

func TestUpvoteView_SkipsUncachedPost(t *testing.T) {
	cache, mr := newTestCache(t)

	require.NoError(t, cache.UpvoteView("ghost").Show(context.Background(), 3))
	assert.False(t, mr.Exists(PostKey("ghost")))
}
