package routes

import (
	"net/http"
	"strings"

	"microblog/internal/handlers"
	"microblog/internal/logger"
	"microblog/ws"

	"github.com/gin-gonic/gin"
)

// StaticMount serves a local directory under a URL prefix.
type StaticMount struct {
	URLPrefix string
	Dir       string
}

// RegisterRoutes mounts every HTTP and websocket route at the router root.
// wsHandler and static are optional.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	wsHandler *ws.WebSocketHandler,
	static *StaticMount,
) {
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	root := &ginRouter.RouterGroup
	appHandlers.AuthHandler.RegisterRoutes(root)
	appHandlers.UserHandler.RegisterRoutes(root)
	appHandlers.PostHandler.RegisterRoutes(root)
	appHandlers.CommentHandler.RegisterRoutes(root)
	appHandlers.FavoriteHandler.RegisterRoutes(root)
	appHandlers.SearchHandler.RegisterRoutes(root)
	appHandlers.UploadHandler.RegisterRoutes(root)

	if wsHandler != nil {
		wsHandler.RegisterRoutes(root)
		logger.Info("WebSocket route /ws/feed registered")
	}

	// Only relative prefixes can be served by this process.
	if static != nil && strings.HasPrefix(static.URLPrefix, "/") {
		ginRouter.Static(strings.TrimRight(static.URLPrefix, "/"), static.Dir)
		logger.Info("static uploads served", "prefix", static.URLPrefix, "dir", static.Dir)
	}
}
