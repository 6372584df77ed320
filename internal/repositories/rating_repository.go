package repositories

import (
	"context"
	"errors"
	"time"

	"microblog/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingRepository interface {
	// Set inserts or overwrites the (user, post) rating; value is -1 or +1.
	Set(ctx context.Context, userID, postID string, value int) error
	// Remove deletes the rating if present; removing nothing is not an error.
	Remove(ctx context.Context, userID, postID string) error
	Sum(ctx context.Context, postID string) (int, error)
	// Get returns nil when the user has not rated the post.
	Get(ctx context.Context, userID, postID string) (*int, error)
}

type RatingRepositoryImpl struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &RatingRepositoryImpl{db: db}
}

func (r *RatingRepositoryImpl) Set(ctx context.Context, userID, postID string, value int) error {
	now := time.Now()
	rating := &models.PostRating{
		UserID:    userID,
		PostID:    postID,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(rating).Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ErrPostNotFound
	}
	return err
}

func (r *RatingRepositoryImpl) Remove(ctx context.Context, userID, postID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.PostRating{}).Error
}

func (r *RatingRepositoryImpl) Sum(ctx context.Context, postID string) (int, error) {
	var sum int
	err := r.db.WithContext(ctx).Model(&models.PostRating{}).
		Select("COALESCE(SUM(value), 0)").
		Where("post_id = ?", postID).
		Scan(&sum).Error
	return sum, err
}

func (r *RatingRepositoryImpl) Get(ctx context.Context, userID, postID string) (*int, error) {
	var rating models.PostRating
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Take(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rating.Value, nil
}
