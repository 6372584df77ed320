package handlers

import (
	"net/http"

	"microblog/internal/services"
	"microblog/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type FavoriteHandler struct {
	*BaseHandler
	favoriteService services.FavoriteService
}

func NewFavoriteHandler(base *BaseHandler, favoriteService services.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{
		BaseHandler:     base,
		favoriteService: favoriteService,
	}
}

func (h *FavoriteHandler) RegisterRoutes(rg *gin.RouterGroup) {
	favorites := rg.Group("/favorites")
	favorites.Use(h.RequireAuth)
	{
		favorites.GET("", h.List)
		favorites.POST("/:id", h.Add)
		favorites.DELETE("/:id", h.Remove)
	}
}

func (h *FavoriteHandler) List(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	posts, err := h.favoriteService.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *FavoriteHandler) Add(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.favoriteService.Add(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StatusResponse{Status: dto.StatusAdded})
}

func (h *FavoriteHandler) Remove(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.favoriteService.Remove(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StatusResponse{Status: dto.StatusRemoved})
}
