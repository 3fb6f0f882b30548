package http

import (
	"net/http"

	"hobbyhub/pkg/logger"
	"hobbyhub/services/community/internal/usecase"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentUseCase usecase.CommentUseCase
	logger         *logger.Logger
}

func NewCommentHandler(commentUseCase usecase.CommentUseCase, logger *logger.Logger) *CommentHandler {
	return &CommentHandler{
		commentUseCase: commentUseCase,
		logger:         logger,
	}
}

// ListComments godoc
// @Summary      List comments
// @Description  Comments of a post, oldest first.
// @Tags         comments
// @Produce      json
// @Param        id path string true "Post ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /posts/{id}/comments [get]
func (h *CommentHandler) ListComments(c *gin.Context) {
	comments, err := h.commentUseCase.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "fetch comments", err, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": formatComments(comments), "count": len(comments)})
}

type AddCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// AddComment godoc
// @Summary      Add a comment
// @Description  Add a comment to a post and return the post's refreshed comment list.
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        id path string true "Post ID"
// @Param        request body AddCommentRequest true "Comment"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /posts/{id}/comments [post]
func (h *CommentHandler) AddComment(c *gin.Context) {
	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comments, err := h.commentUseCase.AddComment(c.Request.Context(), c.Param("id"), req.Content)
	if err != nil {
		respondError(c, h.logger, "add comment", err, nil)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comments": formatComments(comments), "count": len(comments)})
}
