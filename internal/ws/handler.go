package ws

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// TokenValidator resolves a bearer token to a user UUID.
type TokenValidator func(token string) (string, error)

// EventsHandler upgrades authenticated clients and registers them for
// lifecycle event notifications.
type EventsHandler struct {
	hub      *Hub
	validate TokenValidator
}

// NewEventsHandler builds an EventsHandler.
func NewEventsHandler(hub *Hub, validate TokenValidator) *EventsHandler {
	return &EventsHandler{hub: hub, validate: validate}
}

// Handle upgrades the connection and keeps it registered until the client
// disconnects. Clients only listen; inbound frames are discarded.
func (h *EventsHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("messenger-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.Query("token")
	if token == "" {
		token = c.GetHeader("Authorization")
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	userUUID, err := h.validate(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	h.hub.AddClient(userUUID, conn)
	defer func() {
		h.hub.RemoveClient(userUUID, conn)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
