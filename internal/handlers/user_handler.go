package handlers

import (
	"net/http"

	"microblog/internal/services"
	"microblog/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	*BaseHandler
	userService services.UserService
	postService services.PostService
}

func NewUserHandler(base *BaseHandler, userService services.UserService, postService services.PostService) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		userService: userService,
		postService: postService,
	}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	{
		users.POST("", h.Create)

		// /me is registered before /:id so it is not taken as an id.
		users.GET("/me", h.RequireAuth, h.GetMe)
		users.PUT("/me", h.RequireAuth, h.UpdateMe)

		users.GET("/:id", h.Get)
		users.GET("/:id/posts", h.OptionalAuth, h.GetPosts)
		users.DELETE("/:id", h.RequireAuth, h.Delete)
	}
}

// Create godoc
// @Summary      Register a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Success      201 {object} dto.UserResponse
// @Failure      409 {object} apperrors.ErrorResponse
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.Create(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.userService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetPosts(c *gin.Context) {
	posts, err := h.postService.GetByAuthor(c.Request.Context(), c.Param("id"), h.ViewerID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

func (h *UserHandler) Delete(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.StatusResponse{Status: dto.StatusDeleted})
}
