package apperrors

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the envelope of every error body.
type ErrorResponse struct {
	Error *AppError `json:"error"`
}

// GinErrorHandler writes errors to a gin response.
type GinErrorHandler struct {
	Debug bool
}

func (h *GinErrorHandler) HandleGinError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
	}

	if appErr.HTTPCode >= 500 {
		slog.ErrorContext(c.Request.Context(), "server error", "error", appErr.Unwrap())
		if !h.Debug {
			appErr = New(appErr.Code, appErr.Domain, "Internal server error", appErr.HTTPCode)
		}
	}

	c.AbortWithStatusJSON(appErr.HTTPCode, ErrorResponse{Error: appErr})
}

var defaultHandler = &GinErrorHandler{}

// SetDebug toggles exposure of internal error details; set once at start-up.
func SetDebug(debug bool) {
	defaultHandler = &GinErrorHandler{Debug: debug}
}

// HandleError writes err with the process-wide handler.
func HandleError(c *gin.Context, err error) {
	defaultHandler.HandleGinError(c, err)
}

// AsAppError unwraps err to an *AppError if it contains one.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
