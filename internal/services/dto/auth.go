package dto

// LoginRequest is the OAuth2 password-grant form posted to /auth/token.
type LoginRequest struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

const TokenTypeBearer = "bearer"
