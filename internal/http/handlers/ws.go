package handlers

import (
	"fmt"
	"net/http"

	"campurent/internal/http/middleware"
	"campurent/internal/realtime"
	"campurent/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	Registry *realtime.ConnectionRegistry
	upgrader websocket.Upgrader
}

func NewWSHandler(registry *realtime.ConnectionRegistry) *WSHandler {
	return &WSHandler{
		Registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// origin policy is enforced by the CORS layer in front
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// GET /api/ws/:user_id — upgrades the connection and registers it as the
// user's single live push channel.
func (h *WSHandler) Serve(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		userID = middleware.CurrentUserID(c)
	}
	if userID == "" {
		respondError(c, http.StatusBadRequest, "invalid_user", "user id required")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the handshake error
		utils.LogEvent(middleware.GetRequestID(c), "ws", "upgrade", fmt.Sprintf("user=%s: %v", userID, err))
		return
	}

	ch := realtime.NewWSChannel(conn)
	h.Registry.Connect(userID, ch)
	utils.LogEvent(middleware.GetRequestID(c), "ws", "connect", "user="+userID)

	// Inbound frames are drained only to detect the close; clients talk to
	// the REST API, the socket is push-only.
	go func() {
		defer func() {
			h.Registry.Disconnect(userID, ch)
			_ = ch.Close()
			utils.LogEvent("", "ws", "disconnect", "user="+userID)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
