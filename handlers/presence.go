package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chorus/social-service/models"
	"chorus/social-service/services"
	"chorus/social-service/utils"
)

// ClusterPresence is the shared presence view across instances.
type ClusterPresence interface {
	GetPresence(ctx context.Context, userID string) (*models.UserPresence, error)
	GetOnlineUsers(ctx context.Context) ([]models.UserPresence, error)
}

type PresenceHandler struct {
	gateway *services.Gateway
	cluster ClusterPresence
	logger  *utils.Logger
}

// NewPresenceHandler creates the handler. cluster may be nil when no shared
// store is configured.
func NewPresenceHandler(gateway *services.Gateway, cluster ClusterPresence, logger *utils.Logger) *PresenceHandler {
	return &PresenceHandler{
		gateway: gateway,
		cluster: cluster,
		logger:  logger,
	}
}

// GetOnlineUsers handles GET /api/presence/online
func (ph *PresenceHandler) GetOnlineUsers(c *gin.Context) {
	users := ph.gateway.OnlineUserIDs()
	response := models.OnlineUsersResponse{
		Count: len(users),
		Users: users,
	}

	if ph.cluster != nil {
		cluster, err := ph.cluster.GetOnlineUsers(c.Request.Context())
		if err != nil {
			ph.logger.Warn("Failed to get cluster presence", "error", err)
		} else {
			response.Cluster = cluster
		}
	}

	c.JSON(http.StatusOK, response)
}

// GetStatus handles GET /api/presence/status/:userId
func (ph *PresenceHandler) GetStatus(c *gin.Context) {
	userID, err := services.ParseUserID(c.Param("userId"))
	if err != nil || userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid userId"})
		return
	}

	_, local := ph.gateway.Registry().Lookup(userID)
	response := models.StatusResponse{
		UserID:   userID,
		Status:   "offline",
		IsOnline: local,
		IsLocal:  local,
	}
	if local {
		response.Status = "online"
		response.LastSeen = time.Now()
	}

	if ph.cluster != nil && !local {
		presence, err := ph.cluster.GetPresence(c.Request.Context(), userID)
		if err != nil {
			respondError(c, ph.logger, utils.Unexpected("failed to get presence", err))
			return
		}
		response.Status = presence.Status
		response.LastSeen = presence.LastSeen
		response.IsOnline = presence.Status == "online"
	}

	c.JSON(http.StatusOK, response)
}
