package apperrors_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"microblog/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_IsSurvivesCopies(t *testing.T) {
	wrapped := apperrors.ErrPostNotFound.WithError(errors.New("record not found"))

	assert.True(t, errors.Is(wrapped, apperrors.ErrPostNotFound))
	assert.False(t, errors.Is(wrapped, apperrors.ErrCommentNotFound))
	assert.Nil(t, apperrors.ErrPostNotFound.Err, "predefined error must stay untouched")
}

func TestErrFileTooLarge_Message(t *testing.T) {
	err := apperrors.ErrFileTooLarge(5 * 1024 * 1024)
	assert.Equal(t, "File too large (max 5MB)", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.HTTPCode)
}

func TestHandleError_HidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	apperrors.HandleError(c, errors.New("pq: connection refused"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestHandleError_RendersAppError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	apperrors.HandleError(c, apperrors.ErrLoginAlreadyTaken)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":{"code":"ALREADY_EXISTS","domain":"user","message":"Login already taken"}}`, w.Body.String())
}
