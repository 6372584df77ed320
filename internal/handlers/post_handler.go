package handlers

import (
	"net/http"

	"microblog/internal/services"
	"microblog/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	*BaseHandler
	postService   services.PostService
	ratingService services.RatingService
}

func NewPostHandler(base *BaseHandler, postService services.PostService, ratingService services.RatingService) *PostHandler {
	return &PostHandler{
		BaseHandler:   base,
		postService:   postService,
		ratingService: ratingService,
	}
}

func (h *PostHandler) RegisterRoutes(rg *gin.RouterGroup) {
	posts := rg.Group("/posts")
	{
		posts.GET("", h.OptionalAuth, h.List)
		posts.POST("", h.RequireAuth, h.Create)
		posts.GET("/my", h.RequireAuth, h.ListMy)

		posts.GET("/:id", h.OptionalAuth, h.Get)
		posts.PUT("/:id", h.RequireAuth, h.Update)
		posts.DELETE("/:id", h.RequireAuth, h.Delete)
		posts.POST("/:id/rate", h.RequireAuth, h.Rate)
	}
}

func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.postService.GetAll(c.Request.Context(), h.ViewerID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) ListMy(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	posts, err := h.postService.GetMy(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// Create godoc
// @Summary      Publish a post
// @Tags         posts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.PostResponse
// @Router       /posts [post]
func (h *PostHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreatePostRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	post, err := h.postService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.postService.Get(c.Request.Context(), c.Param("id"), h.ViewerID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Update(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdatePostRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.postService.Update(c.Request.Context(), c.Param("id"), &req, userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StatusResponse{Status: dto.StatusUpdated})
}

func (h *PostHandler) Delete(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.postService.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StatusResponse{Status: dto.StatusDeleted})
}

// Rate godoc
// @Summary      Rate a post with -1, 0 (clear) or 1
// @Tags         posts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.RateResponse
// @Router       /posts/{id}/rate [post]
func (h *PostHandler) Rate(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.RateRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.ratingService.Rate(c.Request.Context(), userID, c.Param("id"), *req.Value)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
