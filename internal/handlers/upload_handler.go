package handlers

import (
	"context"
	"errors"
	"net/http"

	"microblog/internal/services"
	"microblog/internal/services/dto"
	"microblog/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// multipartOverhead is allowed on top of the file size limit for the form
// boundary and headers.
const multipartOverhead = 1 << 20

type UploadHandler struct {
	*BaseHandler
	uploadService services.UploadService
	maxSize       int64
}

func NewUploadHandler(base *BaseHandler, uploadService services.UploadService, maxSize int64) *UploadHandler {
	return &UploadHandler{
		BaseHandler:   base,
		uploadService: uploadService,
		maxSize:       maxSize,
	}
}

func (h *UploadHandler) RegisterRoutes(rg *gin.RouterGroup) {
	uploads := rg.Group("/uploads")
	uploads.Use(h.RequireAuth)
	{
		uploads.POST("/avatar", h.UploadAvatar)
		uploads.POST("/image", h.UploadImage)
	}
}

// UploadAvatar godoc
// @Summary      Upload and set the caller's avatar
// @Tags         uploads
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Success      200 {object} dto.UploadResponse
// @Router       /uploads/avatar [post]
func (h *UploadHandler) UploadAvatar(c *gin.Context) {
	h.upload(c, h.uploadService.UploadAvatar)
}

func (h *UploadHandler) UploadImage(c *gin.Context) {
	h.upload(c, h.uploadService.UploadImage)
}

type uploadFunc func(ctx context.Context, userID string, file *dto.UploadFile) (*dto.UploadResponse, error)

func (h *UploadHandler) upload(c *gin.Context, fn uploadFunc) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if h.maxSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxSize+multipartOverhead)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.HandleServiceError(c, apperrors.ErrFileTooLarge(h.maxSize))
			return
		}
		h.HandleServiceError(c, apperrors.ErrMissingFile.WithError(err))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.HandleServiceError(c, apperrors.InternalError(err))
		return
	}
	defer file.Close()

	resp, err := fn(c.Request.Context(), userID, &dto.UploadFile{
		Filename:    fileHeader.Filename,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Reader:      file,
	})
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
