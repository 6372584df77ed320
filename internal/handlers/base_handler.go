package handlers

import (
	"microblog/internal/logger"
	"microblog/internal/middleware"
	"microblog/internal/validator"
	"microblog/pkg/apperrors"
	"microblog/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

type BaseHandler struct {
	validator *validator.Validator

	// RequireAuth and OptionalAuth are the route middlewares handlers attach
	// to their groups.
	RequireAuth  gin.HandlerFunc
	OptionalAuth gin.HandlerFunc
}

func NewBaseHandler(v *validator.Validator, auth middleware.Authenticator) *BaseHandler {
	return &BaseHandler{
		validator:    v,
		RequireAuth:  middleware.AuthMiddleware(auth),
		OptionalAuth: middleware.OptionalAuthMiddleware(auth),
	}
}

// BindAndValidate_JSON binds the body (JSON, or form data for form content
// types) and runs struct validation. It writes the error response itself.
func (h *BaseHandler) BindAndValidate_JSON(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBind(obj); err != nil {
		logger.CtxWithError(ctx, "Failed to bind request body", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body: "+err.Error()))
		return false
	}
	return h.validate(c, obj)
}

func (h *BaseHandler) BindAndValidate_Query(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBindQuery(obj); err != nil {
		logger.CtxWithError(ctx, "Failed to bind query params", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid query parameters: "+err.Error()))
		return false
	}
	return h.validate(c, obj)
}

func (h *BaseHandler) validate(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := h.validator.Validate(obj); err != nil {
		if vErr, ok := err.(*validator.ValidationError); ok {
			logger.CtxWarn(ctx, "Validation failed", "errors", vErr.Errors, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.ValidationError(vErr.Errors))
		} else {
			logger.CtxWithError(ctx, "Internal validator error", err, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.InternalError(err))
		}
		return false
	}
	return true
}

func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) {
		if appErr.HTTPCode < 500 {
			logger.CtxWarn(ctx, "Service error",
				"error", appErr.Message,
				"details", appErr.Details,
				"path", c.Request.URL.Path,
			)
		}
		apperrors.HandleError(c, appErr)
	} else {
		logger.CtxWithError(ctx, "Internal server error", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.InternalError(err))
	}
}

// GetAndAuthorizeUserID returns the caller set by RequireAuth, writing a 401
// when there is none.
func (h *BaseHandler) GetAndAuthorizeUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(contextkeys.UserIDKey)
	if userID == "" {
		logger.CtxWarn(c.Request.Context(), "Unauthorized access: userID not found in context",
			"path", c.Request.URL.Path,
			"ip", c.ClientIP(),
		)
		c.Header("WWW-Authenticate", "Bearer")
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("Not authenticated"))
		return "", false
	}
	return userID, true
}

// ViewerID returns the caller on optional-auth routes, "" for anonymous.
func (h *BaseHandler) ViewerID(c *gin.Context) string {
	return c.GetString(contextkeys.UserIDKey)
}
