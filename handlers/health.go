package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
	Online    int       `json:"online"`
}

// HealthCheck reports liveness and the number of locally connected users.
func HealthCheck(online func() int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:    "healthy",
			Service:   "social-service",
			Timestamp: time.Now(),
			Online:    online(),
		})
	}
}
