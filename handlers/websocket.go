package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"chorus/social-service/services"
	"chorus/social-service/utils"
)

// HandshakeVerifier checks a websocket handshake's identity token and
// returns its user id.
type HandshakeVerifier interface {
	VerifyHandshake(r *http.Request) (string, error)
}

// WebSocketOptions configures the realtime endpoint.
type WebSocketOptions struct {
	AllowedOrigin string
	SendBuffer    int
	// Verifier, when set, requires a valid token whose user matches the
	// userId query parameter.
	Verifier HandshakeVerifier
}

type WebSocketHandler struct {
	gateway  *services.Gateway
	upgrader websocket.Upgrader
	opts     WebSocketOptions
	logger   *utils.Logger
}

func NewWebSocketHandler(gateway *services.Gateway, opts WebSocketOptions, logger *utils.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		gateway: gateway,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == opts.AllowedOrigin
			},
		},
		opts:   opts,
		logger: logger.With("component", "WebSocketHandler"),
	}
}

// Connect handles GET /ws?userId=<id>. It upgrades the request and blocks
// for the connection's lifetime.
func (h *WebSocketHandler) Connect(c *gin.Context) {
	userID, err := services.ParseUserID(c.Query("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid userId"})
		return
	}

	if h.opts.Verifier != nil {
		tokenUser, err := h.opts.Verifier.VerifyHandshake(c.Request)
		if err != nil {
			appErr := utils.AsAppError(err)
			c.JSON(appErr.Status(), gin.H{"error": appErr.Message})
			return
		}
		if userID != "" && tokenUser != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "userId does not match token"})
			return
		}
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Failed to upgrade connection", "error", err)
		return
	}

	client := services.NewClient(ws, h.opts.SendBuffer, h.logger)
	conn, err := h.gateway.Accept(client, userID)
	if err != nil {
		if errors.Is(err, services.ErrGatewayClosed) {
			_ = ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		}
		_ = client.Close()
		return
	}

	go client.WritePump()
	client.ReadPump()

	h.gateway.Close(conn)
	if err := client.Close(); err != nil {
		h.logger.Debug("Error closing connection", "error", err)
	}
}
