package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"microblog/internal/models"
	"microblog/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubAuth struct{}

func (stubAuth) Authenticate(_ context.Context, token string) (*models.User, error) {
	if token != "good" {
		return nil, apperrors.ErrInvalidToken.WithError(errors.New("bad signature"))
	}
	u := &models.User{Login: "alice"}
	u.ID = "u1"
	return u, nil
}

func newRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware(), mw)
	r.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, "user=%s", GetUserID(c))
	})
	return r
}

func do(r http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(AuthMiddleware(stubAuth{}))

	w := do(r, "Bearer good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user=u1", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = do(r, "bearer good")
	assert.Equal(t, http.StatusOK, w.Code)

	for _, header := range []string{"", "Bearer ", "Basic abc", "Bearer bad"} {
		w = do(r, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"), header)
	}

	w = do(r, "Bearer bad")
	assert.Contains(t, w.Body.String(), "Could not validate credentials")
}

func TestOptionalAuthMiddleware(t *testing.T) {
	r := newRouter(OptionalAuthMiddleware(stubAuth{}))

	assert.Equal(t, "user=u1", do(r, "Bearer good").Body.String())
	assert.Equal(t, "user=", do(r, "").Body.String())

	w := do(r, "Bearer bad")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user=", w.Body.String())
}

func TestRequestIDMiddleware_KeepsIncomingID(t *testing.T) {
	r := newRouter(func(c *gin.Context) { c.Next() })
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://app.example.com"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://other.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := map[string]struct {
		token string
		ok    bool
	}{
		"Bearer abc":   {"abc", true},
		"BEARER  abc ": {"abc", true},
		"Bearer ":      {"", false},
		"Basic abc":    {"", false},
		"":             {"", false},
	}
	for header, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			c.Request.Header.Set("Authorization", header)
		}
		token, ok := BearerToken(c)
		assert.Equal(t, want.ok, ok, header)
		assert.Equal(t, want.token, token, header)
	}
}
