package handlers

import (
	"net/http"

	"microblog/internal/services"
	"microblog/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	*BaseHandler
	postService services.PostService
	userService services.UserService
}

func NewSearchHandler(base *BaseHandler, postService services.PostService, userService services.UserService) *SearchHandler {
	return &SearchHandler{
		BaseHandler: base,
		postService: postService,
		userService: userService,
	}
}

func (h *SearchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	search := rg.Group("/search")
	{
		search.GET("/posts", h.OptionalAuth, h.SearchPosts)
		search.GET("/users", h.SearchUsers)
	}
}

func (h *SearchHandler) SearchPosts(c *gin.Context) {
	var query dto.SearchQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	posts, err := h.postService.Search(c.Request.Context(), query.Q, h.ViewerID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *SearchHandler) SearchUsers(c *gin.Context) {
	var query dto.SearchQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	users, err := h.userService.Search(c.Request.Context(), query.Q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
