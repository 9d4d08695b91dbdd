package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/campushub/portal-api/internal/realtime"
	appErrors "github.com/campushub/portal-api/pkg/errors"
	"github.com/campushub/portal-api/pkg/response"
)

// RealtimeHandler upgrades authenticated requests to websocket clients owned
// by the hub. The JWT middleware runs before the upgrade, so only valid
// tokens reach this point; browsers pass the token as a query parameter.
type RealtimeHandler struct {
	hub      *realtime.Hub
	enabled  bool
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewRealtimeHandler constructs handler.
func NewRealtimeHandler(hub *realtime.Hub, enabled bool, logger *zap.Logger) *RealtimeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RealtimeHandler{
		hub:     hub,
		enabled: enabled,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin policy is enforced by the CORS middleware on the
			// rest of the API; the websocket endpoint accepts any origin and
			// relies on token auth instead.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Connect upgrades the request and registers the client with the hub.
func (h *RealtimeHandler) Connect(c *gin.Context) {
	if !h.enabled || h.hub == nil {
		response.Error(c, appErrors.ErrRealtimeDisabled)
		return
	}

	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.hub.Acquire(claims.UserID, c.Query("token"), conn)
}
