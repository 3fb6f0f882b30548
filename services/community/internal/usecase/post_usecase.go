package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hobbyhub/pkg/logger"
	"hobbyhub/pkg/optimistic"
	"hobbyhub/pkg/queue"
	"hobbyhub/pkg/session"
	"hobbyhub/services/community/internal/entity"
	"hobbyhub/services/community/internal/repo/cache"
	"hobbyhub/services/community/internal/repo/persistent"
)

type PostUseCase interface {
	ListPosts(ctx context.Context, filter entity.PostFilter) ([]*entity.Post, error)
	GetPost(ctx context.Context, postID string) (*entity.Post, error)
	CreatePost(ctx context.Context, input entity.CreatePostInput) (*entity.Post, error)
	SubmitDraft(ctx context.Context, draft *Draft) (*entity.Post, error)
	UpdatePost(ctx context.Context, postID string, patch entity.PostPatch) (*entity.Post, error)
	IncrementUpvote(ctx context.Context, postID string, currentCount int) (int, error)
	DeletePost(ctx context.Context, postID string) error
}

type postUseCase struct {
	postRepo  persistent.PostRepository
	postCache cache.PostCache
	images    *ImageStager
	publisher EventPublisher
	logger    *logger.Logger
}

func NewPostUseCase(
	postRepo persistent.PostRepository,
	postCache cache.PostCache,
	images *ImageStager,
	publisher EventPublisher,
	logger *logger.Logger,
) PostUseCase {
	return &postUseCase{
		postRepo:  postRepo,
		postCache: postCache,
		images:    images,
		publisher: publisher,
		logger:    logger,
	}
}

func (uc *postUseCase) ListPosts(ctx context.Context, filter entity.PostFilter) ([]*entity.Post, error) {
	filter, err := filter.Normalize()
	if err != nil {
		return nil, err
	}

	posts, err := uc.postRepo.List(ctx, filter)
	if err != nil {
		uc.logger.Error("[POSTS] Failed to list posts: %v", err)
		return nil, backendError("list posts", err)
	}
	return posts, nil
}

// GetPost reads through the cache. Cache failures fall back to the database.
func (uc *postUseCase) GetPost(ctx context.Context, postID string) (*entity.Post, error) {
	cached, ok, err := uc.postCache.Get(ctx, postID)
	if err != nil {
		uc.logger.Warn("[POSTS] Cache read failed for post %s: %v", postID, err)
	} else if ok {
		return cached, nil
	}

	post, err := uc.postRepo.GetByID(ctx, postID)
	if err != nil {
		if !errors.Is(err, entity.ErrNotFound) {
			uc.logger.Error("[POSTS] Failed to load post %s: %v", postID, err)
		}
		return nil, backendError("get post", err)
	}

	if err := uc.postCache.Set(ctx, post); err != nil {
		uc.logger.Warn("[POSTS] Failed to cache post %s: %v", postID, err)
	}
	return post, nil
}

func (uc *postUseCase) CreatePost(ctx context.Context, input entity.CreatePostInput) (*entity.Post, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, validationError("title is required")
	}
	postType, err := entity.ParsePostType(input.Type)
	if err != nil {
		return nil, err
	}
	userID := input.UserID
	if userID == "" {
		userID = session.UserID(ctx)
	}
	if userID == "" {
		return nil, validationError("user id is required")
	}

	var imageURL *string
	if input.ImageURL != nil && *input.ImageURL != "" {
		url := *input.ImageURL
		imageURL = &url
	}

	post := &entity.Post{
		UserID:   userID,
		Title:    title,
		Content:  strings.TrimSpace(input.Content),
		ImageURL: imageURL,
		Type:     postType,
	}
	if err := uc.postRepo.Create(ctx, post); err != nil {
		uc.logger.Error("[POSTS] Failed to create post: %v", err)
		return nil, backendError("create post", err)
	}

	uc.logger.Info("[POSTS] Post %s created by %s", post.ID, post.UserID)
	publish(uc.publisher, uc.logger, queue.Event{Type: queue.RoutingPostCreated, PostID: post.ID, UserID: post.UserID})
	return post, nil
}

// SubmitDraft validates the draft, uploads its staged image if any and
// creates the post. The post is only created after the upload succeeds.
func (uc *postUseCase) SubmitDraft(ctx context.Context, draft *Draft) (*entity.Post, error) {
	if draft.State() == DraftSucceeded {
		return nil, validationError("draft was already submitted")
	}
	if strings.TrimSpace(draft.Input.Title) == "" {
		return nil, draft.fail(validationError("title is required"))
	}
	if _, err := entity.ParsePostType(draft.Input.Type); err != nil {
		return nil, draft.fail(err)
	}

	input := draft.Input
	var uploadedURL string
	if draft.Image != nil {
		draft.transition(DraftUploading)
		url, err := uc.images.Upload(ctx, draft.Image)
		if err != nil {
			uc.logger.Error("[POSTS] Image upload failed: %v", err)
			return nil, draft.fail(err)
		}
		uploadedURL = url
		input.ImageURL = &uploadedURL
	}

	draft.transition(DraftSubmitting)
	post, err := uc.CreatePost(ctx, input)
	if err != nil {
		if uploadedURL != "" {
			if derr := uc.images.Discard(context.WithoutCancel(ctx), uploadedURL); derr != nil {
				uc.logger.Warn("[POSTS] Failed to remove orphaned image %s: %v", uploadedURL, derr)
			}
		}
		return nil, draft.fail(err)
	}

	draft.succeed(post.ID)
	return post, nil
}

func (uc *postUseCase) UpdatePost(ctx context.Context, postID string, patch entity.PostPatch) (*entity.Post, error) {
	if patch.Empty() {
		return nil, validationError("nothing to update")
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, validationError("title is required")
		}
		patch.Title = &title
	}
	if patch.Content != nil {
		content := strings.TrimSpace(*patch.Content)
		patch.Content = &content
	}

	if _, err := uc.authorize(ctx, postID); err != nil {
		return nil, err
	}

	post, err := uc.postRepo.Update(ctx, postID, patch)
	if err != nil {
		uc.logger.Error("[POSTS] Failed to update post %s: %v", postID, err)
		return nil, backendError("update post", err)
	}
	uc.invalidate(ctx, postID)

	return post, nil
}

// IncrementUpvote shows currentCount+1 in the cached view before the write
// and puts currentCount back if the write fails. A failed write also drops
// the cached post.
func (uc *postUseCase) IncrementUpvote(ctx context.Context, postID string, currentCount int) (int, error) {
	if currentCount < 0 {
		return 0, validationError("current upvote count cannot be negative")
	}
	if _, err := uc.GetPost(ctx, postID); err != nil {
		return 0, err
	}

	count, err := optimistic.Do(ctx, uc.postCache.UpvoteView(postID), currentCount, currentCount+1,
		func(ctx context.Context, upvotes int) error {
			return uc.postRepo.SetUpvotes(ctx, postID, upvotes)
		})
	if err != nil {
		uc.logger.Error("[POSTS] Upvote failed for post %s: %v", postID, err)
		// The reverted count came from the client; the next read reloads the stored one.
		uc.invalidate(context.WithoutCancel(ctx), postID)
		return count, backendError("upvote post", err)
	}
	return count, nil
}

func (uc *postUseCase) DeletePost(ctx context.Context, postID string) error {
	post, err := uc.authorize(ctx, postID)
	if err != nil {
		return err
	}

	if err := uc.postRepo.Delete(ctx, postID); err != nil {
		uc.logger.Error("[POSTS] Failed to delete post %s: %v", postID, err)
		return backendError("delete post", err)
	}
	uc.invalidate(ctx, postID)

	if post.ImageURL != nil {
		if err := uc.images.Discard(context.WithoutCancel(ctx), *post.ImageURL); err != nil {
			uc.logger.Warn("[POSTS] Failed to delete image of post %s: %v", postID, err)
		}
	}

	uc.logger.Info("[POSTS] Post %s deleted", postID)
	publish(uc.publisher, uc.logger, queue.Event{Type: queue.RoutingPostDeleted, PostID: postID, UserID: post.UserID})
	return nil
}

// authorize checks that the post exists and belongs to the session user.
func (uc *postUseCase) authorize(ctx context.Context, postID string) (*entity.Post, error) {
	post, err := uc.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, backendError("get post", err)
	}
	if userID := session.UserID(ctx); userID == "" || post.UserID != userID {
		return nil, fmt.Errorf("%w: post %s belongs to another user", entity.ErrForbidden, postID)
	}
	return post, nil
}

func (uc *postUseCase) invalidate(ctx context.Context, postID string) {
	if err := uc.postCache.Invalidate(ctx, postID); err != nil {
		uc.logger.Warn("[POSTS] Failed to invalidate cached post %s: %v", postID, err)
	}
}
