package repositories

import (
	"context"
	"errors"
	"time"

	"microblog/internal/models"

	"gorm.io/gorm"
)

type FavoriteRepository interface {
	// Add fails with ErrFavoriteAlreadyExists when the pair is already stored.
	Add(ctx context.Context, userID, postID string) error
	// Remove fails with ErrFavoriteNotFound when there is nothing to remove.
	Remove(ctx context.Context, userID, postID string) error
	Exists(ctx context.Context, userID, postID string) (bool, error)
}

type FavoriteRepositoryImpl struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &FavoriteRepositoryImpl{db: db}
}

func (r *FavoriteRepositoryImpl) Add(ctx context.Context, userID, postID string) error {
	fav := &models.Favorite{UserID: userID, PostID: postID, CreatedAt: time.Now()}
	err := r.db.WithContext(ctx).Create(fav).Error
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrFavoriteAlreadyExists
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrPostNotFound
	}
	return err
}

func (r *FavoriteRepositoryImpl) Remove(ctx context.Context, userID, postID string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

func (r *FavoriteRepositoryImpl) Exists(ctx context.Context, userID, postID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}
