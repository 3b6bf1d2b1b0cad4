package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chorus/social-service/middleware"
	"chorus/social-service/models"
	"chorus/social-service/utils"
)

// respondError writes err as {"error": message}. Unexpected failures are
// logged and their detail withheld from the client.
func respondError(c *gin.Context, logger *utils.Logger, err error) {
	appErr := utils.AsAppError(err)
	if appErr.Kind == utils.KindUnexpected {
		logger.Error(appErr.Message, "error", err, "path", c.Request.URL.Path)
	}
	_ = c.Error(err)
	c.JSON(appErr.Status(), gin.H{"error": appErr.Message})
}

// requireUser returns the guard's user or writes 401. Routes are always
// mounted behind the guard, so a miss means the wiring is wrong.
func requireUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	return user, true
}
