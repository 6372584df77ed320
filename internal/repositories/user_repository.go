package repositories

import (
	"context"
	"errors"
	"time"

	"microblog/internal/models"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	// UpdateProfile applies the non-nil fields and returns the updated user.
	UpdateProfile(ctx context.Context, id string, upd models.UserProfileUpdate) (*models.User, error)
	UpdateAvatar(ctx context.Context, id, avatarURL string) error
	// Delete removes the user together with their posts, comments, favorites and ratings.
	Delete(ctx context.Context, id string) error
	// Search matches login or email case-insensitively, ordered by login.
	Search(ctx context.Context, query string) ([]models.User, error)
}

type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUserAlreadyExists
	}
	return err
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *UserRepositoryImpl) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	return r.findOne(ctx, "login = ?", login)
}

func (r *UserRepositoryImpl) findOne(ctx context.Context, cond string, arg string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, cond, arg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) UpdateProfile(ctx context.Context, id string, upd models.UserProfileUpdate) (*models.User, error) {
	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if upd.Email != nil {
		updates["email"] = *upd.Email
	}
	if upd.Login != nil {
		updates["login"] = *upd.Login
	}
	if upd.Bio != nil {
		updates["bio"] = *upd.Bio
	}

	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrUserAlreadyExists
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepositoryImpl) UpdateAvatar(ctx context.Context, id, avatarURL string) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"avatar_url": avatarURL,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		postIDs := tx.Model(&models.Post{}).Select("id").Where("author_id = ?", id)

		// Rows attached to the user's posts go first, then the user's own activity.
		if err := deletePostDependents(tx, postIDs); err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.PostRating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("follower_id = ? OR following_id = ?", id, id).Delete(&models.Subscription{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&models.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

func (r *UserRepositoryImpl) Search(ctx context.Context, query string) ([]models.User, error) {
	pattern := likePattern(query)
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("LOWER(login) LIKE ? ESCAPE '!' OR LOWER(email) LIKE ? ESCAPE '!'", pattern, pattern).
		Order("login ASC").
		Find(&users).Error
	return users, err
}

// deletePostDependents removes comments, favorites, ratings and tag links of
// the posts selected by postIDs (a subquery or a slice of ids).
func deletePostDependents(tx *gorm.DB, postIDs interface{}) error {
	for _, model := range []interface{}{&models.Comment{}, &models.Favorite{}, &models.PostRating{}, &models.PostTag{}} {
		if err := tx.Where("post_id IN (?)", postIDs).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
