package dto

import (
	"time"

	"microblog/internal/models"
)

// CreateCommentRequest is only checked for presence here; blank content is
// rejected by the service after trimming.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

type CommentResponse struct {
	ID           string    `json:"id"`
	PostID       string    `json:"postId"`
	AuthorID     string    `json:"authorId"`
	AuthorLogin  string    `json:"authorLogin"`
	AuthorAvatar *string   `json:"authorAvatar"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"createdAt"`
}

func NewCommentResponse(v *models.CommentView) *CommentResponse {
	return &CommentResponse{
		ID:           v.ID,
		PostID:       v.PostID,
		AuthorID:     v.AuthorID,
		AuthorLogin:  v.AuthorLogin,
		AuthorAvatar: v.AuthorAvatar,
		Content:      v.Content,
		CreatedAt:    v.CreatedAt,
	}
}

func NewCommentListResponse(views []models.CommentView) []*CommentResponse {
	out := make([]*CommentResponse, 0, len(views))
	for i := range views {
		out = append(out, NewCommentResponse(&views[i]))
	}
	return out
}
