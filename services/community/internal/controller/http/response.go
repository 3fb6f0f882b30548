package http

import (
	"errors"
	"net/http"

	"hobbyhub/pkg/logger"
	"hobbyhub/services/community/internal/entity"

	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrUpload):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": ...} with the status matching err's kind.
// Internal failures are logged and not echoed verbatim.
func respondError(c *gin.Context, log *logger.Logger, action string, err error, extra gin.H) {
	status := statusFor(err)
	body := gin.H{}
	for k, v := range extra {
		body[k] = v
	}

	if status == http.StatusInternalServerError {
		log.Error("Failed to %s: %v", action, err)
		body["error"] = "Failed to " + action
	} else {
		body["error"] = err.Error()
	}
	c.JSON(status, body)
}

func formatPost(post *entity.Post) gin.H {
	return gin.H{
		"id":         post.ID,
		"user_id":    post.UserID,
		"title":      post.Title,
		"content":    post.Content,
		"image_url":  post.ImageURL,
		"type":       post.Type,
		"type_label": post.Type.Label(),
		"upvotes":    post.Upvotes,
		"created_at": post.CreatedAt,
		"updated_at": post.UpdatedAt,
	}
}

func formatPosts(posts []*entity.Post) []gin.H {
	formatted := make([]gin.H, len(posts))
	for i, post := range posts {
		formatted[i] = formatPost(post)
	}
	return formatted
}

func formatComments(comments []*entity.Comment) []*entity.Comment {
	if comments == nil {
		return []*entity.Comment{}
	}
	return comments
}
