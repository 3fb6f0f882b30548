package usecase

import (
	"context"
	"fmt"
	"strings"

	"hobbyhub/pkg/logger"
	"hobbyhub/pkg/queue"
	"hobbyhub/pkg/session"
	"hobbyhub/services/community/internal/entity"
	"hobbyhub/services/community/internal/repo/persistent"
)

type CommentUseCase interface {
	ListComments(ctx context.Context, postID string) ([]*entity.Comment, error)
	// AddComment returns the post's refreshed comment list.
	AddComment(ctx context.Context, postID, content string) ([]*entity.Comment, error)
}

type commentUseCase struct {
	postRepo    persistent.PostRepository
	commentRepo persistent.CommentRepository
	publisher   EventPublisher
	logger      *logger.Logger
}

func NewCommentUseCase(
	postRepo persistent.PostRepository,
	commentRepo persistent.CommentRepository,
	publisher EventPublisher,
	logger *logger.Logger,
) CommentUseCase {
	return &commentUseCase{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

func (uc *commentUseCase) ListComments(ctx context.Context, postID string) ([]*entity.Comment, error) {
	comments, err := uc.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		uc.logger.Error("[COMMENTS] Failed to list comments for post %s: %v", postID, err)
		return nil, backendError("list comments", err)
	}
	return comments, nil
}

func (uc *commentUseCase) AddComment(ctx context.Context, postID, content string) ([]*entity.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, validationError("comment cannot be empty")
	}
	userID := session.UserID(ctx)
	if userID == "" {
		return nil, validationError("user id is required")
	}

	exists, err := uc.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, backendError("check post", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: post %s", entity.ErrNotFound, postID)
	}

	comment := &entity.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: content,
	}
	if err := uc.commentRepo.Create(ctx, comment); err != nil {
		uc.logger.Error("[COMMENTS] Failed to add comment to post %s: %v", postID, err)
		return nil, backendError("add comment", err)
	}

	publish(uc.publisher, uc.logger, queue.Event{
		Type:      queue.RoutingCommentAdded,
		PostID:    postID,
		CommentID: comment.ID,
		UserID:    userID,
	})

	return uc.ListComments(ctx, postID)
}
