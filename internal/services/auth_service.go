package services

import (
	"context"
	"errors"

	"microblog/internal/auth"
	"microblog/internal/logger"
	"microblog/internal/models"
	"microblog/internal/repositories"
	"microblog/internal/services/dto"
	"microblog/pkg/apperrors"
)

type AuthService interface {
	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Authenticate resolves a bearer token to its user.
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type AuthServiceImpl struct {
	userRepo repositories.UserRepository
	hasher   auth.PasswordHasher
	tokens   *auth.TokenIssuer
}

func NewAuthService(
	userRepo repositories.UserRepository,
	hasher auth.PasswordHasher,
	tokens *auth.TokenIssuer,
) AuthService {
	return &AuthServiceImpl{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
	}
}

func (s *AuthServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.FindByLogin(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			logger.CtxInfo(ctx, "login rejected", "reason", "unknown login")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		logger.CtxInfo(ctx, "login rejected", "reason", "password mismatch", "user_id", user.ID)
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "user logged in", "user_id", user.ID)
	return &dto.TokenResponse{AccessToken: token, TokenType: dto.TokenTypeBearer}, nil
}

func (s *AuthServiceImpl) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperrors.ErrInvalidToken.WithError(err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken.WithError(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return user, nil
}
