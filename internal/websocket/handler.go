package websocket

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/commentsapp/backend/internal/dto"
	"github.com/commentsapp/backend/internal/logger"
)

// Handler handles WebSocket HTTP upgrade requests and exposes the
// hub to the rest of the application.
type Handler struct {
	hub *Hub
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// HandleWebSocket upgrades the HTTP connection. No authentication:
// anyone reading the board may subscribe to new comments.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		// Origin policy is enforced by the CORS layer in front
		InsecureSkipVerify: true,
		CompressionMode:    websocket.CompressionContextTakeover,
	})
	if err != nil {
		logger.WarnWithFields("WebSocket upgrade failed", err)
		return
	}

	client := NewClient(h.hub, conn, uuid.NewString())
	client.RemoteAddr = c.ClientIP()
	client.UserAgent = c.GetHeader("User-Agent")

	h.hub.Register(client)

	_ = client.Send(NewMessage(MessageTypeSystem, SystemPayload{
		Event: "connected",
		Data: map[string]interface{}{
			"session_id":  client.ID,
			"server_time": time.Now().UTC().UnixMilli(),
		},
	}))

	go client.WritePump()
	client.ReadPump() // blocks until the client disconnects
}

// HandleStats reports hub metrics as JSON
func (h *Handler) HandleStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.hub.GetMetrics())
}

// BroadcastNewComment pushes a freshly created comment to every
// connected client as a ReceiveComment event.
func (h *Handler) BroadcastNewComment(comment *dto.CommentDto) {
	h.hub.Broadcast(NewMessage(MessageTypeReceiveComment, comment))
}

// Shutdown gracefully stops the hub
func (h *Handler) Shutdown(ctx context.Context) error {
	return h.hub.Shutdown(ctx)
}
