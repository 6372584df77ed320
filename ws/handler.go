package ws

import (
	"context"
	"net/http"
	"strings"

	"microblog/internal/logger"
	"microblog/internal/middleware"
	"microblog/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type WebSocketHandler struct {
	Manager  *FeedManager
	auth     Authenticator
	upgrader websocket.Upgrader
}

// NewWebSocketHandler accepts connections from allowedOrigins; "*" allows any.
func NewWebSocketHandler(manager *FeedManager, auth Authenticator, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		Manager: manager,
		auth:    auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func (h *WebSocketHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws/feed", h.ServeWS)
}

// ServeWS upgrades the request. A token (query "token" or bearer header) is
// optional; an invalid one connects the client anonymously.
func (h *WebSocketHandler) ServeWS(c *gin.Context) {
	ctx := c.Request.Context()
	userID := h.resolveUser(ctx, c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.CtxWarn(ctx, "websocket upgrade failed", "error", err)
		return
	}

	client := newClient(uuid.NewString(), userID, conn, h.Manager)
	if !h.Manager.join(client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	logger.CtxInfo(ctx, "feed client connected", "client_id", client.ID)

	go client.writePump()
	go client.readPump()
}

func (h *WebSocketHandler) resolveUser(ctx context.Context, c *gin.Context) string {
	token := c.Query("token")
	if token == "" {
		token, _ = middleware.BearerToken(c)
	}
	if token == "" || h.auth == nil {
		return ""
	}

	user, err := h.auth.Authenticate(ctx, token)
	if err != nil {
		logger.CtxDebug(ctx, "feed token rejected, connecting anonymously")
		return ""
	}
	return user.ID
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.TrimRight(o, "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// Non-browser clients send no Origin.
		return origin == "" || set[origin]
	}
}
