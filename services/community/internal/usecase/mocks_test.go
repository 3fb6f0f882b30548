package usecase

import (
	"context"
	"io"
	"sync"

	"hobbyhub/pkg/logger"
	"hobbyhub/pkg/optimistic"
	"hobbyhub/pkg/queue"
	"hobbyhub/services/community/internal/entity"

	"github.com/stretchr/testify/mock"
)

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) List(ctx context.Context, filter entity.PostFilter) ([]*entity.Post, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) Create(ctx context.Context, post *entity.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) Update(ctx context.Context, id string, patch entity.PostPatch) (*entity.Post, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostRepository) SetUpvotes(ctx context.Context, id string, upvotes int) error {
	args := m.Called(ctx, id, upvotes)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) ListByPost(ctx context.Context, postID string) ([]*entity.Comment, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Comment), args.Error(1)
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

type MockPostCache struct {
	mock.Mock
	view *recordingView
}

func (m *MockPostCache) Get(ctx context.Context, id string) (*entity.Post, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entity.Post), args.Bool(1), args.Error(2)
}

func (m *MockPostCache) Set(ctx context.Context, post *entity.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostCache) Invalidate(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostCache) UpvoteView(id string) optimistic.View[int] {
	if m.view == nil {
		m.view = &recordingView{}
	}
	return m.view
}

// recordingView keeps every value shown, in order.
type recordingView struct {
	mu    sync.Mutex
	shown []int
}

func (v *recordingView) Show(_ context.Context, value int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.shown = append(v.shown, value)
	return nil
}

func (v *recordingView) Shown() []int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]int(nil), v.shown...)
}

func (v *recordingView) Current() int {
	shown := v.Shown()
	if len(shown) == 0 {
		return -1
	}
	return shown[len(shown)-1]
}

type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	args := m.Called(ctx, key, body, contentType)
	return args.Error(0)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockObjectStorage) PublicURL(key string) string {
	return "http://storage.test/storage/v1/object/public/post-images/" + key
}

func (m *MockObjectStorage) KeyFromURL(url string) (string, bool) {
	const prefix = "http://storage.test/storage/v1/object/public/post-images/"
	if len(url) > len(prefix) && url[:len(prefix)] == prefix {
		return url[len(prefix):], true
	}
	return "", false
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event queue.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, io.Discard)
}
