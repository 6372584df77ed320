package handlers

import (
	"net/http"

	"microblog/internal/services"
	"microblog/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	*BaseHandler
	authService services.AuthService
}

func NewAuthHandler(base *BaseHandler, authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		authService: authService,
	}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/token", h.Login)
}

// Login godoc
// @Summary      Exchange login and password for a bearer token
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Success      200 {object} dto.TokenResponse
// @Failure      401 {object} apperrors.ErrorResponse
// @Router       /auth/token [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
