package persistent

import (
	"context"

	"hobbyhub/services/community/internal/entity"
	"hobbyhub/services/community/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentRepository interface {
	ListByPost(ctx context.Context, postID string) ([]*entity.Comment, error)
	Create(ctx context.Context, comment *entity.Comment) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// ListByPost returns comments oldest first; equal timestamps fall back to id.
func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]*entity.Comment, error) {
	if !validID(postID) {
		return []*entity.Comment{}, nil
	}
	var commentModels []model.CommentModel
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&commentModels).Error
	if err != nil {
		return nil, err
	}

	comments := make([]*entity.Comment, len(commentModels))
	for i := range commentModels {
		comments[i] = ToCommentEntity(&commentModels[i])
	}
	return comments, nil
}

func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	commentModel := ToCommentModel(comment)
	if commentModel.ID == "" {
		commentModel.ID = uuid.New().String()
	}

	if err := r.db.WithContext(ctx).Create(commentModel).Error; err != nil {
		return err
	}

	*comment = *ToCommentEntity(commentModel)
	return nil
}
