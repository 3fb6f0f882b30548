package entity

import (
	"fmt"
	"time"
)

type PostType string

const (
	PostTypeDiscussion PostType = "discussion"
	PostTypeQuestion   PostType = "question"
	PostTypeOpinion    PostType = "opinion"
)

// TypeAll disables the type filter when listing posts.
const TypeAll = "all"

// ParsePostType validates a submitted type. Empty defaults to discussion.
func ParsePostType(value string) (PostType, error) {
	switch PostType(value) {
	case "":
		return PostTypeDiscussion, nil
	case PostTypeDiscussion, PostTypeQuestion, PostTypeOpinion:
		return PostType(value), nil
	default:
		return "", fmt.Errorf("%w: unknown post type %q", ErrValidation, value)
	}
}

// Label is the badge text shown next to a post.
func (t PostType) Label() string {
	switch t {
	case PostTypeQuestion:
		return "❓ Question"
	case PostTypeOpinion:
		return "💬 Opinion"
	case PostTypeDiscussion:
		return "💡 Discussion"
	default:
		return ""
	}
}

type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ImageURL  *string   `json:"image_url"`
	Type      PostType  `json:"type"`
	Upvotes   int       `json:"upvotes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SortKey string

const (
	SortByCreatedAt SortKey = "created_at"
	SortByUpvotes   SortKey = "upvotes"
)

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// PostFilter selects posts for listing. Type "" or TypeAll means any type.
// Order "" picks the key's default: newest first for created_at, ascending
// for upvotes.
type PostFilter struct {
	Search  string
	Type    string
	SortKey SortKey
	Order   SortOrder
}

// Normalize fills defaults and rejects unknown keys.
func (f PostFilter) Normalize() (PostFilter, error) {
	switch f.SortKey {
	case "":
		f.SortKey = SortByCreatedAt
	case SortByCreatedAt, SortByUpvotes:
	default:
		return f, fmt.Errorf("%w: unknown sort key %q", ErrValidation, f.SortKey)
	}

	switch f.Order {
	case "":
		if f.SortKey == SortByCreatedAt {
			f.Order = OrderDesc
		} else {
			f.Order = OrderAsc
		}
	case OrderAsc, OrderDesc:
	default:
		return f, fmt.Errorf("%w: unknown sort order %q", ErrValidation, f.Order)
	}

	if f.Type == TypeAll {
		f.Type = ""
	}
	if f.Type != "" {
		if _, err := ParsePostType(f.Type); err != nil {
			return f, err
		}
	}
	return f, nil
}

type CreatePostInput struct {
	Title    string
	Content  string
	ImageURL *string
	Type     string
	UserID   string
}

// PostPatch carries the fields an edit may change; nil leaves a field as is.
type PostPatch struct {
	Title    *string
	Content  *string
	ImageURL *string
}

func (p PostPatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.ImageURL == nil
}
