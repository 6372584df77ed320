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

type UserService interface {
	Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	Get(ctx context.Context, id string) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, id string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	// Delete removes a user; only the user themself may do it.
	Delete(ctx context.Context, id, callerID string) error
	Search(ctx context.Context, query string) ([]*dto.UserResponse, error)
}

type UserServiceImpl struct {
	userRepo repositories.UserRepository
	hasher   auth.PasswordHasher
}

func NewUserService(userRepo repositories.UserRepository, hasher auth.PasswordHasher) UserService {
	return &UserServiceImpl{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

func (s *UserServiceImpl) Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	// Email is checked before login so the reported conflict is deterministic.
	if err := s.ensureEmailFree(ctx, req.Email, ""); err != nil {
		return nil, err
	}
	if err := s.ensureLoginFree(ctx, req.Login, ""); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:        req.Email,
		Login:        req.Login,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			// Lost a race with a concurrent registration.
			return nil, s.conflictFor(ctx, &req.Email, &req.Login, "")
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "user created", "user_id", user.ID, "login", user.Login)
	return dto.NewUserResponse(user), nil
}

func (s *UserServiceImpl) Get(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapUserError(err)
	}
	return dto.NewUserResponse(user), nil
}

func (s *UserServiceImpl) UpdateProfile(ctx context.Context, id string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	current, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapUserError(err)
	}

	upd := req.ToModel()
	if upd.IsEmpty() {
		return dto.NewUserResponse(current), nil
	}
	if upd.Email != nil {
		if err := s.ensureEmailFree(ctx, *upd.Email, id); err != nil {
			return nil, err
		}
	}
	if upd.Login != nil {
		if err := s.ensureLoginFree(ctx, *upd.Login, id); err != nil {
			return nil, err
		}
	}

	user, err := s.userRepo.UpdateProfile(ctx, id, upd)
	if err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, s.conflictFor(ctx, upd.Email, upd.Login, id)
		}
		return nil, mapUserError(err)
	}

	logger.CtxInfo(ctx, "profile updated", "user_id", id)
	return dto.NewUserResponse(user), nil
}

func (s *UserServiceImpl) Delete(ctx context.Context, id, callerID string) error {
	if id != callerID {
		return apperrors.ErrNotEnoughPermissions
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return mapUserError(err)
	}
	logger.CtxInfo(ctx, "user deleted", "user_id", id)
	return nil
}

func (s *UserServiceImpl) Search(ctx context.Context, query string) ([]*dto.UserResponse, error) {
	users, err := s.userRepo.Search(ctx, query)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewUserListResponse(users), nil
}

// ensureEmailFree fails if the email belongs to anyone other than selfID.
func (s *UserServiceImpl) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, repositories.ErrUserNotFound):
		return nil
	case err != nil:
		return apperrors.InternalError(err)
	case existing.ID != selfID:
		return apperrors.ErrEmailAlreadyRegistered
	}
	return nil
}

func (s *UserServiceImpl) ensureLoginFree(ctx context.Context, login, selfID string) error {
	existing, err := s.userRepo.FindByLogin(ctx, login)
	switch {
	case errors.Is(err, repositories.ErrUserNotFound):
		return nil
	case err != nil:
		return apperrors.InternalError(err)
	case existing.ID != selfID:
		return apperrors.ErrLoginAlreadyTaken
	}
	return nil
}

// conflictFor re-reads storage after a unique violation to name the field.
func (s *UserServiceImpl) conflictFor(ctx context.Context, email, login *string, selfID string) error {
	if email != nil {
		if err := s.ensureEmailFree(ctx, *email, selfID); err != nil {
			return err
		}
	}
	if login != nil {
		if err := s.ensureLoginFree(ctx, *login, selfID); err != nil {
			return err
		}
	}
	return apperrors.ErrAlreadyExists(repositories.ErrUserAlreadyExists)
}

func mapUserError(err error) error {
	if errors.Is(err, repositories.ErrUserNotFound) {
		return apperrors.ErrUserNotFound
	}
	return apperrors.InternalError(err)
}
