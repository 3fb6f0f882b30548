package usecase

import (
	"context"
	"errors"
	"testing"

	"hobbyhub/services/community/internal/entity"
	"hobbyhub/services/community/internal/repo/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPostUseCase_IncrementUpvote_FailedWriteKeepsStoredCount(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := new(MockPostRepository)
	repo.On("GetByID", mock.Anything, "post-1").Return(&entity.Post{ID: "post-1", Title: "Sourdough", Type: entity.PostTypeDiscussion, Upvotes: 10}, nil)
	repo.On("SetUpvotes", mock.Anything, "post-1", 6).Return(errors.New("connection reset"))

	uc := NewPostUseCase(repo, cache.NewPostCache(client), NewImageStager(new(MockObjectStorage), 1<<20), new(MockPublisher), testLogger())
	ctx := context.Background()

	count, err := uc.IncrementUpvote(ctx, "post-1", 5)
	assert.ErrorIs(t, err, entity.ErrBackend)
	assert.Equal(t, 5, count)
	assert.False(t, mr.Exists(cache.PostKey("post-1")))

	post, err := uc.GetPost(ctx, "post-1")
	require.NoError(t, err)
	assert.Equal(t, 10, post.Upvotes)
}

func TestPostUseCase_IncrementUpvote_SuccessUpdatesCachedCount(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := new(MockPostRepository)
	repo.On("GetByID", mock.Anything, "post-1").Return(&entity.Post{ID: "post-1", Title: "Sourdough", Type: entity.PostTypeDiscussion, Upvotes: 2}, nil).Once()
	repo.On("SetUpvotes", mock.Anything, "post-1", 3).Return(nil)

	uc := NewPostUseCase(repo, cache.NewPostCache(client), NewImageStager(new(MockObjectStorage), 1<<20), new(MockPublisher), testLogger())
	ctx := context.Background()

	count, err := uc.IncrementUpvote(ctx, "post-1", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	post, err := uc.GetPost(ctx, "post-1")
	require.NoError(t, err)
	assert.Equal(t, 3, post.Upvotes)
	repo.AssertNumberOfCalls(t, "GetByID", 1)
}
