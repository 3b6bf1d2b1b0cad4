package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chorus/social-service/models"
	"chorus/social-service/services"
	"chorus/social-service/utils"
)

// CookieSettings controls the token cookie written on signup and login.
type CookieSettings struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

type UserHandler struct {
	service *services.UserService
	cookie  CookieSettings
	logger  *utils.Logger
}

func NewUserHandler(service *services.UserService, cookie CookieSettings, logger *utils.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		cookie:  cookie,
		logger:  logger,
	}
}

// Signup handles POST /api/users/signup
func (h *UserHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, email, username and password are required"})
		return
	}

	user, token, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.setTokenCookie(c, token, int(h.cookie.MaxAge.Seconds()))
	c.JSON(http.StatusCreated, gin.H{
		"message":    "user created successfully",
		"_id":        user.ID,
		"name":       user.Name,
		"email":      user.Email,
		"username":   user.Username,
		"bio":        user.Bio,
		"profilePic": user.ProfilePic,
	})
}

// Login handles POST /api/users/login
func (h *UserHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.setTokenCookie(c, token, int(h.cookie.MaxAge.Seconds()))
	c.JSON(http.StatusOK, gin.H{
		"message":    "user logged in successfully",
		"_id":        user.ID,
		"name":       user.Name,
		"email":      user.Email,
		"username":   user.Username,
		"bio":        user.Bio,
		"profilePic": user.ProfilePic,
	})
}

// Logout handles POST /api/users/logout. Tokens are stateless; clearing the
// cookie is the whole logout.
func (h *UserHandler) Logout(c *gin.Context) {
	h.setTokenCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "logged out successfully"})
}

// GetProfile handles GET /api/users/profile/:query
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.service.GetProfile(c.Request.Context(), c.Param("query"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Follow handles POST /api/users/follow/:id
func (h *UserHandler) Follow(c *gin.Context) {
	current, ok := requireUser(c)
	if !ok {
		return
	}

	followed, err := h.service.ToggleFollow(c.Request.Context(), current, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	message := "user unfollowed successfully"
	if followed {
		message = "user followed successfully"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "following": followed})
}

// Update handles PUT /api/users/update/:id
func (h *UserHandler) Update(c *gin.Context) {
	current, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	user, err := h.service.Update(c.Request.Context(), current, c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile details updated", "user": user})
}

func (h *UserHandler) setTokenCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}
