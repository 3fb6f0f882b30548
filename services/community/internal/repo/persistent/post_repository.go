package persistent

import (
	"context"
	"errors"
	"strings"

	"hobbyhub/services/community/internal/entity"
	"hobbyhub/services/community/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostRepository interface {
	List(ctx context.Context, filter entity.PostFilter) ([]*entity.Post, error)
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, post *entity.Post) error
	Update(ctx context.Context, id string, patch entity.PostPatch) (*entity.Post, error)
	SetUpvotes(ctx context.Context, id string, upvotes int) error
	Delete(ctx context.Context, id string) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List expects a normalized filter.
func (r *postRepository) List(ctx context.Context, filter entity.PostFilter) ([]*entity.Post, error) {
	var postModels []model.PostModel
	query := r.db.WithContext(ctx).Model(&model.PostModel{})

	if filter.Search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(filter.Search)) + "%"
		query = query.Where(`LOWER(title) LIKE ? ESCAPE '\'`, pattern)
	}
	if filter.Type != "" && filter.Type != entity.TypeAll {
		query = query.Where("type = ?", filter.Type)
	}

	desc := filter.Order == entity.OrderDesc
	query = query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: string(filter.SortKey)}, Desc: desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc})

	if err := query.Find(&postModels).Error; err != nil {
		return nil, err
	}

	posts := make([]*entity.Post, len(postModels))
	for i := range postModels {
		posts[i] = ToPostEntity(&postModels[i])
	}
	return posts, nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	if !validID(id) {
		return nil, entity.ErrNotFound
	}
	var postModel model.PostModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&postModel).Error; err != nil {
		return nil, notFound(err)
	}
	return ToPostEntity(&postModel), nil
}

func (r *postRepository) Exists(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&model.PostModel{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	postModel := ToPostModel(post)
	if postModel.ID == "" {
		postModel.ID = uuid.New().String()
	}
	postModel.Upvotes = 0

	if err := r.db.WithContext(ctx).Create(postModel).Error; err != nil {
		return err
	}

	*post = *ToPostEntity(postModel)
	return nil
}

func (r *postRepository) Update(ctx context.Context, id string, patch entity.PostPatch) (*entity.Post, error) {
	updates := map[string]interface{}{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Content != nil {
		updates["content"] = *patch.Content
	}
	if patch.ImageURL != nil {
		if *patch.ImageURL == "" {
			updates["image_url"] = nil
		} else {
			updates["image_url"] = *patch.ImageURL
		}
	}

	if !validID(id) {
		return nil, entity.ErrNotFound
	}

	var updated *entity.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			res := tx.Model(&model.PostModel{}).Where("id = ?", id).Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return entity.ErrNotFound
			}
		}

		var postModel model.PostModel
		if err := tx.Where("id = ?", id).First(&postModel).Error; err != nil {
			return notFound(err)
		}
		updated = ToPostEntity(&postModel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetUpvotes writes an absolute count. Concurrent writers race; the last one wins.
func (r *postRepository) SetUpvotes(ctx context.Context, id string, upvotes int) error {
	if !validID(id) {
		return entity.ErrNotFound
	}
	res := r.db.WithContext(ctx).Model(&model.PostModel{}).Where("id = ?", id).UpdateColumn("upvotes", upvotes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return entity.ErrNotFound
	}
	return nil
}

// Delete removes the post together with its comments.
func (r *postRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return entity.ErrNotFound
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.CommentModel{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.PostModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return entity.ErrNotFound
		}
		return nil
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.ErrNotFound
	}
	return err
}

// validID reports whether id can name a row; ids are UUIDs.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
