package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"hobbyhub/pkg/logger"
	"hobbyhub/services/community/internal/entity"
	"hobbyhub/services/community/internal/model"
	postCache "hobbyhub/services/community/internal/repo/cache"
	"hobbyhub/services/community/internal/repo/persistent"
	"hobbyhub/services/community/internal/usecase"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type memoryStorage struct {
	mu   sync.Mutex
	keys []string
}

func (s *memoryStorage) PutObject(_ context.Context, key string, _ []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	return nil
}

func (s *memoryStorage) DeleteObject(context.Context, string) error { return nil }

func (s *memoryStorage) PublicURL(key string) string { return "http://storage.test/" + key }

func (s *memoryStorage) KeyFromURL(url string) (string, bool) {
	return strings.TrimPrefix(url, "http://storage.test/"), strings.HasPrefix(url, "http://storage.test/")
}

func newTestSeeder(t *testing.T) (*seeder, *memoryStorage, persistent.PostRepository) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.PostModel{}, &model.CommentModel{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	log := logger.NewWithWriter(io.Discard, io.Discard)
	storage := &memoryStorage{}
	postRepo := persistent.NewPostRepository(db)
	images := usecase.NewImageStager(storage, 1<<20)

	return &seeder{
		posts:      usecase.NewPostUseCase(postRepo, postCache.NewPostCache(redisClient), images, nil, log),
		comments:   usecase.NewCommentUseCase(postRepo, persistent.NewCommentRepository(db), nil, log),
		images:     images,
		httpClient: http.DefaultClient,
		log:        log,
	}, storage, postRepo
}

func TestSeed_IsIdempotent(t *testing.T) {
	s, _, postRepo := newTestSeeder(t)
	ctx := context.Background()

	require.NoError(t, s.seed(ctx, ""))
	require.NoError(t, s.seed(ctx, ""))

	posts, err := postRepo.List(ctx, entity.PostFilter{SortKey: entity.SortByUpvotes, Order: entity.OrderDesc})
	require.NoError(t, err)
	require.Len(t, posts, len(seedPosts))
	assert.Equal(t, 3, posts[0].Upvotes)

	comments, err := s.comments.ListComments(ctx, posts[0].ID)
	require.NoError(t, err)
	assert.Len(t, comments, 3)
}

func TestSeed_AttachesImageToDiscussions(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	images := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	}))
	defer images.Close()

	s, storage, postRepo := newTestSeeder(t)
	require.NoError(t, s.seed(context.Background(), images.URL+"/sample.png"))

	assert.Len(t, storage.keys, 1)
	posts, err := postRepo.List(context.Background(), entity.PostFilter{
		Type: string(entity.PostTypeDiscussion), SortKey: entity.SortByCreatedAt, Order: entity.OrderDesc,
	})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.NotNil(t, posts[0].ImageURL)
	assert.True(t, strings.HasSuffix(*posts[0].ImageURL, ".png"))
}

func TestSeed_ImageFetchFailureStillSeeds(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	s, storage, postRepo := newTestSeeder(t)
	require.NoError(t, s.seed(context.Background(), broken.URL+"/sample.png"))

	assert.Empty(t, storage.keys)
	posts, err := postRepo.List(context.Background(), entity.PostFilter{SortKey: entity.SortByCreatedAt, Order: entity.OrderDesc})
	require.NoError(t, err)
	assert.Len(t, posts, len(seedPosts))
}
