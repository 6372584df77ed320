package handlers

import (
	"net/http"

	"microblog/internal/services"
	"microblog/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	*BaseHandler
	commentService services.CommentService
}

func NewCommentHandler(base *BaseHandler, commentService services.CommentService) *CommentHandler {
	return &CommentHandler{
		BaseHandler:    base,
		commentService: commentService,
	}
}

func (h *CommentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	comments := rg.Group("/posts/:id/comments")
	{
		comments.GET("", h.List)
		comments.POST("", h.RequireAuth, h.Create)
		comments.DELETE("/:cid", h.RequireAuth, h.Delete)
	}
}

func (h *CommentHandler) List(c *gin.Context) {
	comments, err := h.commentService.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), c.Param("id"), userID, req.Content)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), c.Param("id"), c.Param("cid"), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StatusResponse{Status: dto.StatusDeleted})
}
