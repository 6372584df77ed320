package services

import (
	"context"
	"errors"

	"microblog/internal/logger"
	"microblog/internal/repositories"
	"microblog/internal/services/dto"
	"microblog/pkg/apperrors"
)

type FavoriteService interface {
	Add(ctx context.Context, userID, postID string) error
	Remove(ctx context.Context, userID, postID string) error
	// List returns the user's favorite posts, newest post first.
	List(ctx context.Context, userID string) ([]*dto.PostResponse, error)
}

type FavoriteServiceImpl struct {
	favoriteRepo repositories.FavoriteRepository
	postRepo     repositories.PostRepository
}

func NewFavoriteService(favoriteRepo repositories.FavoriteRepository, postRepo repositories.PostRepository) FavoriteService {
	return &FavoriteServiceImpl{
		favoriteRepo: favoriteRepo,
		postRepo:     postRepo,
	}
}

func (s *FavoriteServiceImpl) Add(ctx context.Context, userID, postID string) error {
	if err := ensurePostExists(ctx, s.postRepo, postID); err != nil {
		return err
	}

	err := s.favoriteRepo.Add(ctx, userID, postID)
	switch {
	case err == nil:
	case errors.Is(err, repositories.ErrFavoriteAlreadyExists):
		return apperrors.ErrAlreadyFavorited
	case errors.Is(err, repositories.ErrPostNotFound):
		return apperrors.ErrPostNotFound
	default:
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "favorite added", "post_id", postID)
	return nil
}

func (s *FavoriteServiceImpl) Remove(ctx context.Context, userID, postID string) error {
	if err := s.favoriteRepo.Remove(ctx, userID, postID); err != nil {
		if errors.Is(err, repositories.ErrFavoriteNotFound) {
			return apperrors.ErrNotInFavorites
		}
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "favorite removed", "post_id", postID)
	return nil
}

func (s *FavoriteServiceImpl) List(ctx context.Context, userID string) ([]*dto.PostResponse, error) {
	views, err := s.postRepo.ListViews(ctx, repositories.PostFilter{FavoritedBy: userID, ViewerID: userID})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewPostListResponse(views), nil
}
