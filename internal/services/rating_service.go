package services

import (
	"context"
	"errors"

	"microblog/internal/events"
	"microblog/internal/logger"
	"microblog/internal/models"
	"microblog/internal/repositories"
	"microblog/internal/services/dto"
	"microblog/pkg/apperrors"
)

type RatingService interface {
	// Rate sets the caller's rating of a post; value 0 clears it.
	Rate(ctx context.Context, userID, postID string, value int) (*dto.RateResponse, error)
}

type RatingServiceImpl struct {
	ratingRepo repositories.RatingRepository
	postRepo   repositories.PostRepository
	publisher  events.Publisher
}

func NewRatingService(
	ratingRepo repositories.RatingRepository,
	postRepo repositories.PostRepository,
	publisher events.Publisher,
) RatingService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &RatingServiceImpl{
		ratingRepo: ratingRepo,
		postRepo:   postRepo,
		publisher:  publisher,
	}
}

func (s *RatingServiceImpl) Rate(ctx context.Context, userID, postID string, value int) (*dto.RateResponse, error) {
	if !models.IsValidRating(value) {
		return nil, apperrors.ErrInvalidRating
	}
	if err := ensurePostExists(ctx, s.postRepo, postID); err != nil {
		return nil, err
	}

	status := dto.StatusRated
	var err error
	if value == models.RatingClear {
		status = dto.StatusRemoved
		err = s.ratingRepo.Remove(ctx, userID, postID)
	} else {
		err = s.ratingRepo.Set(ctx, userID, postID, value)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	sum, err := s.ratingRepo.Sum(ctx, postID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.RateResponse{Status: status, Value: value, Rating: sum}
	logger.CtxInfo(ctx, "post rated", "post_id", postID, "value", value, "rating", sum)
	s.publisher.Publish(events.New(events.PostRated, postID, userID, map[string]int{"rating": sum}))
	return resp, nil
}
