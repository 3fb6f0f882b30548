package http

import (
	"context"
	"io"

	"hobbyhub/pkg/logger"
	"hobbyhub/pkg/session"
	"hobbyhub/services/community/internal/entity"
	"hobbyhub/services/community/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

// MockPostUseCase is a mock implementation of PostUseCase
type MockPostUseCase struct {
	mock.Mock
}

func (m *MockPostUseCase) ListPosts(ctx context.Context, filter entity.PostFilter) ([]*entity.Post, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) GetPost(ctx context.Context, postID string) (*entity.Post, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) CreatePost(ctx context.Context, input entity.CreatePostInput) (*entity.Post, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) SubmitDraft(ctx context.Context, draft *usecase.Draft) (*entity.Post, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) UpdatePost(ctx context.Context, postID string, patch entity.PostPatch) (*entity.Post, error) {
	args := m.Called(ctx, postID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) IncrementUpvote(ctx context.Context, postID string, currentCount int) (int, error) {
	args := m.Called(ctx, postID, currentCount)
	return args.Int(0), args.Error(1)
}

func (m *MockPostUseCase) DeletePost(ctx context.Context, postID string) error {
	args := m.Called(ctx, postID)
	return args.Error(0)
}

var _ usecase.PostUseCase = (*MockPostUseCase)(nil)

type MockCommentUseCase struct {
	mock.Mock
}

func (m *MockCommentUseCase) ListComments(ctx context.Context, postID string) ([]*entity.Comment, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Comment), args.Error(1)
}

func (m *MockCommentUseCase) AddComment(ctx context.Context, postID, content string) ([]*entity.Comment, error) {
	args := m.Called(ctx, postID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Comment), args.Error(1)
}

var _ usecase.CommentUseCase = (*MockCommentUseCase)(nil)

func setupTestRouter(userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
			c.Request = c.Request.WithContext(session.WithSession(c.Request.Context(), session.Session{
				UserID: userID,
				Theme:  session.ThemeDark,
			}))
		}
		c.Next()
	})
	return router
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, io.Discard)
}
