package dto

import (
	"time"

	"microblog/internal/models"
)

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Login    string `json:"login" validate:"required,notblank,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

// UpdateProfileRequest is partial: omitted fields are not changed.
type UpdateProfileRequest struct {
	Email *string `json:"email" validate:"omitempty,email,max=255"`
	Login *string `json:"login" validate:"omitempty,notblank,max=64"`
	Bio   *string `json:"bio" validate:"omitempty,max=2000"`
}

func (r *UpdateProfileRequest) ToModel() models.UserProfileUpdate {
	return models.UserProfileUpdate{Email: r.Email, Login: r.Login, Bio: r.Bio}
}

// UserResponse is the public projection of a user; it never carries the hash.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Login     string    `json:"login"`
	AvatarURL *string   `json:"avatar_url"`
	Bio       *string   `json:"bio"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewUserResponse(u *models.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Login:     u.Login,
		AvatarURL: u.AvatarURL,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func NewUserListResponse(users []models.User) []*UserResponse {
	out := make([]*UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}
