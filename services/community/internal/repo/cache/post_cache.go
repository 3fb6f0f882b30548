package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"hobbyhub/pkg/optimistic"
	"hobbyhub/services/community/internal/entity"

	"github.com/redis/go-redis/v9"
)

const PostTTL = 24 * time.Hour

// PostCache keeps a read copy of posts. Its upvotes field is the count the
// API displays, so it doubles as the view for optimistic upvotes.
type PostCache interface {
	Get(ctx context.Context, id string) (*entity.Post, bool, error)
	Set(ctx context.Context, post *entity.Post) error
	Invalidate(ctx context.Context, id string) error
	UpvoteView(id string) optimistic.View[int]
}

type redisPostCache struct {
	client *redis.Client
}

func NewPostCache(client *redis.Client) PostCache {
	return &redisPostCache{client: client}
}

func PostKey(id string) string {
	return fmt.Sprintf("post:%s", id)
}

func (c *redisPostCache) Get(ctx context.Context, id string) (*entity.Post, bool, error) {
	fields, err := c.client.HGetAll(ctx, PostKey(id)).Result()
	if err != nil {
		return nil, false, err
	}
	if fields["id"] == "" {
		return nil, false, nil
	}

	post, err := decodePost(fields)
	if err != nil {
		// A damaged entry is treated as a miss and dropped.
		c.client.Del(ctx, PostKey(id))
		return nil, false, nil
	}
	return post, true, nil
}

func (c *redisPostCache) Set(ctx context.Context, post *entity.Post) error {
	key := PostKey(post.ID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, encodePost(post))
		pipe.Expire(ctx, key, PostTTL)
		return nil
	})
	return err
}

func (c *redisPostCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, PostKey(id)).Err()
}

func (c *redisPostCache) UpvoteView(id string) optimistic.View[int] {
	return &upvoteView{client: c.client, key: PostKey(id)}
}

// setIfCached only touches entries that exist so a partial hash is never
// created for an uncached post.
var setIfCached = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	redis.call('HSET', KEYS[1], 'upvotes', ARGV[1])
	return 1
end
return 0
`)

type upvoteView struct {
	client *redis.Client
	key    string
}

func (v *upvoteView) Show(ctx context.Context, upvotes int) error {
	return setIfCached.Run(ctx, v.client, []string{v.key}, upvotes).Err()
}

func encodePost(post *entity.Post) map[string]interface{} {
	fields := map[string]interface{}{
		"id":         post.ID,
		"user_id":    post.UserID,
		"title":      post.Title,
		"content":    post.Content,
		"type":       string(post.Type),
		"upvotes":    post.Upvotes,
		"created_at": post.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at": post.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if post.ImageURL != nil {
		fields["image_url"] = *post.ImageURL
	}
	return fields
}

func decodePost(fields map[string]string) (*entity.Post, error) {
	upvotes, err := strconv.Atoi(fields["upvotes"])
	if err != nil {
		return nil, errors.New("bad upvotes field")
	}
	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return nil, errors.New("bad created_at field")
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, fields["updated_at"])
	if err != nil {
		return nil, errors.New("bad updated_at field")
	}

	post := &entity.Post{
		ID:        fields["id"],
		UserID:    fields["user_id"],
		Title:     fields["title"],
		Content:   fields["content"],
		Type:      entity.PostType(fields["type"]),
		Upvotes:   upvotes,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if image, ok := fields["image_url"]; ok {
		post.ImageURL = &image
	}
	return post, nil
}
