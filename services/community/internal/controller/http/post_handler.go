package http

import (
	"errors"
	"io"
	"net/http"

	"hobbyhub/pkg/logger"
	"hobbyhub/services/community/internal/entity"
	"hobbyhub/services/community/internal/usecase"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postUseCase usecase.PostUseCase
	images      *usecase.ImageStager
	logger      *logger.Logger
}

func NewPostHandler(postUseCase usecase.PostUseCase, images *usecase.ImageStager, logger *logger.Logger) *PostHandler {
	return &PostHandler{
		postUseCase: postUseCase,
		images:      images,
		logger:      logger,
	}
}

// ListPosts godoc
// @Summary      List posts
// @Description  List posts filtered by a case-insensitive title search and post type, sorted by creation time (newest first) or upvotes (ascending).
// @Tags         posts
// @Produce      json
// @Param        search query string false "Title substring"
// @Param        type query string false "Post type" Enums(all, question, opinion, discussion)
// @Param        sort query string false "Sort key" Enums(created_at, upvotes)
// @Param        order query string false "Sort direction, defaults depend on the key" Enums(asc, desc)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /posts [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	filter := entity.PostFilter{
		Search:  c.Query("search"),
		Type:    c.Query("type"),
		SortKey: entity.SortKey(c.Query("sort")),
		Order:   entity.SortOrder(c.Query("order")),
	}

	posts, err := h.postUseCase.ListPosts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, "fetch posts", err, gin.H{"posts": []gin.H{}, "count": 0})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": formatPosts(posts), "count": len(posts)})
}

// CreatePost godoc
// @Summary      Create a post
// @Description  Create a post. An attached image is uploaded first and the post is only created if the upload succeeds.
// @Tags         posts
// @Accept       multipart/form-data
// @Produce      json
// @Param        title formData string true "Post title"
// @Param        content formData string false "Post body"
// @Param        type formData string false "Post type" Enums(question, opinion, discussion)
// @Param        image formData file false "Image (jpg/jpeg/png/gif)"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	input := entity.CreatePostInput{
		Title:   c.PostForm("title"),
		Content: c.PostForm("content"),
		Type:    c.PostForm("type"),
		UserID:  c.GetString("user_id"),
	}

	var staged *usecase.StagedFile
	if form, err := c.MultipartForm(); err == nil {
		staged, err = h.images.StageMultipart(form.File["image"])
		if err != nil {
			respondError(c, h.logger, "stage image", err, nil)
			return
		}
	}

	post, err := h.postUseCase.SubmitDraft(c.Request.Context(), usecase.NewDraft(input, staged))
	if err != nil {
		respondError(c, h.logger, "create post", err, nil)
		return
	}

	c.JSON(http.StatusCreated, formatPost(post))
}

// GetPost godoc
// @Summary      Get post by ID
// @Tags         posts
// @Produce      json
// @Param        id path string true "Post ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /posts/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.postUseCase.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "fetch post", err, nil)
		return
	}

	c.JSON(http.StatusOK, formatPost(post))
}

type UpdatePostRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	ImageURL *string `json:"image_url"`
}

// UpdatePost godoc
// @Summary      Update post
// @Description  Update title, content or image URL. An empty image_url removes the image. Only the author can update a post.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        id path string true "Post ID"
// @Param        request body UpdatePostRequest true "Fields to change"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /posts/{id} [put]
func (h *PostHandler) UpdatePost(c *gin.Context) {
	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.postUseCase.UpdatePost(c.Request.Context(), c.Param("id"), entity.PostPatch{
		Title:    req.Title,
		Content:  req.Content,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		respondError(c, h.logger, "update post", err, nil)
		return
	}

	c.JSON(http.StatusOK, formatPost(post))
}

// DeletePost godoc
// @Summary      Delete post
// @Description  Delete a post with all its comments. Only the author can delete a post.
// @Tags         posts
// @Produce      json
// @Param        id path string true "Post ID"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /posts/{id} [delete]
func (h *PostHandler) DeletePost(c *gin.Context) {
	if err := h.postUseCase.DeletePost(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, "delete post", err, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

type UpvoteRequest struct {
	Current *int `json:"current"`
}

// UpvotePost godoc
// @Summary      Upvote a post
// @Description  Set the upvote count to current+1. Without current, the stored count is used. On failure the previous count is returned alongside the error.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        id path string true "Post ID"
// @Param        request body UpvoteRequest false "Count the client is displaying"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /posts/{id}/upvote [post]
func (h *PostHandler) UpvotePost(c *gin.Context) {
	postID := c.Param("id")

	var req UpvoteRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	current := 0
	if req.Current != nil {
		current = *req.Current
	} else {
		post, err := h.postUseCase.GetPost(c.Request.Context(), postID)
		if err != nil {
			respondError(c, h.logger, "upvote post", err, nil)
			return
		}
		current = post.Upvotes
	}

	upvotes, err := h.postUseCase.IncrementUpvote(c.Request.Context(), postID, current)
	if err != nil {
		var reverted gin.H
		if errors.Is(err, entity.ErrBackend) {
			reverted = gin.H{"id": postID, "upvotes": upvotes}
		}
		respondError(c, h.logger, "upvote post", err, reverted)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": postID, "upvotes": upvotes})
}
