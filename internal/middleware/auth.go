package middleware

import (
	"context"
	"strings"

	"microblog/internal/logger"
	"microblog/internal/models"
	"microblog/pkg/apperrors"
	"microblog/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			c.Header("WWW-Authenticate", "Bearer")
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Not authenticated"))
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			apperrors.HandleError(c, err)
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the user when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := BearerToken(c); ok {
			if user, err := auth.Authenticate(c.Request.Context(), token); err == nil {
				setUser(c, user)
			} else {
				logger.CtxDebug(c.Request.Context(), "ignoring invalid token on optional route")
			}
		}
		c.Next()
	}
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header;
// the scheme is matched case-insensitively.
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func setUser(c *gin.Context, user *models.User) {
	c.Set(contextkeys.UserIDKey, user.ID)
	c.Set(contextkeys.UserKey, user)
	c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), user.ID))
}

// GetUserID returns the authenticated user's id, or "" for anonymous requests.
func GetUserID(c *gin.Context) string {
	return c.GetString(contextkeys.UserIDKey)
}
