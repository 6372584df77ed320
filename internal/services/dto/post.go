package dto

import (
	"time"

	"microblog/internal/models"
)

type CreatePostRequest struct {
	Title    string  `json:"title" validate:"required,notblank,max=255"`
	Content  string  `json:"content" validate:"required,notblank"`
	ImageURL *string `json:"image_url" validate:"omitempty,max=512"`
}

type UpdatePostRequest struct {
	Title   string `json:"title" validate:"required,notblank,max=255"`
	Content string `json:"content" validate:"required,notblank"`
}

type SearchQuery struct {
	Q string `form:"q" validate:"required,min=1"`
}

type PostResponse struct {
	ID            string    `json:"id"`
	AuthorID      string    `json:"authorId"`
	AuthorLogin   string    `json:"authorLogin"`
	AuthorAvatar  *string   `json:"authorAvatar"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	ImageURL      *string   `json:"image_url"`
	Rating        int       `json:"rating"`
	UserRating    *int      `json:"user_rating"`
	CommentsCount int       `json:"comments_count"`
	IsFavorited   bool      `json:"is_favorited"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func NewPostResponse(v *models.PostView) *PostResponse {
	return &PostResponse{
		ID:            v.ID,
		AuthorID:      v.AuthorID,
		AuthorLogin:   v.AuthorLogin,
		AuthorAvatar:  v.AuthorAvatar,
		Title:         v.Title,
		Content:       v.Content,
		ImageURL:      v.ImageURL,
		Rating:        v.Rating,
		UserRating:    v.UserRating,
		CommentsCount: v.CommentsCount,
		IsFavorited:   v.IsFavorited,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

func NewPostListResponse(views []models.PostView) []*PostResponse {
	out := make([]*PostResponse, 0, len(views))
	for i := range views {
		out = append(out, NewPostResponse(&views[i]))
	}
	return out
}

// StatusResponse is returned by mutations that have nothing else to report.
type StatusResponse struct {
	Status string `json:"status"`
}

const (
	StatusUpdated = "updated"
	StatusDeleted = "deleted"
	StatusAdded   = "added"
	StatusRemoved = "removed"
	StatusRated   = "rated"
)
