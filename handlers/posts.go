package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chorus/social-service/models"
	"chorus/social-service/services"
	"chorus/social-service/utils"
)

type PostHandler struct {
	service *services.PostService
	logger  *utils.Logger
}

func NewPostHandler(service *services.PostService, logger *utils.Logger) *PostHandler {
	return &PostHandler{
		service: service,
		logger:  logger,
	}
}

// Create handles POST /api/posts/create
func (h *PostHandler) Create(c *gin.Context) {
	current, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	post, err := h.service.Create(c.Request.Context(), current, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// Get handles GET /api/posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Delete handles DELETE /api/posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	current, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), current, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post deleted successfully"})
}

// LikeUnlike handles PUT /api/posts/like/:id
func (h *PostHandler) LikeUnlike(c *gin.Context) {
	current, ok := requireUser(c)
	if !ok {
		return
	}

	liked, err := h.service.ToggleLike(c.Request.Context(), current, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	message := "unliked post"
	if liked {
		message = "liked post"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "liked": liked})
}

// Reply handles PUT /api/posts/reply/:id
func (h *PostHandler) Reply(c *gin.Context) {
	current, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	reply, err := h.service.Reply(c.Request.Context(), current, c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// UserPosts handles GET /api/posts/user/:username
func (h *PostHandler) UserPosts(c *gin.Context) {
	posts, err := h.service.ByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// Feed handles GET /api/posts/feed
func (h *PostHandler) Feed(c *gin.Context) {
	current, ok := requireUser(c)
	if !ok {
		return
	}

	posts, err := h.service.Feed(c.Request.Context(), current)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}
