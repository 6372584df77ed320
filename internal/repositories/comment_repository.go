package repositories

import (
	"context"
	"errors"

	"microblog/internal/models"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id string) (*models.Comment, error)
	GetView(ctx context.Context, id string) (*models.CommentView, error)
	// ListByPost returns the post's comments newest first.
	ListByPost(ctx context.Context, postID string) ([]models.CommentView, error)
	Delete(ctx context.Context, id string) error
}

type CommentRepositoryImpl struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &CommentRepositoryImpl{db: db}
}

func (r *CommentRepositoryImpl) Create(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Create(comment).Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ErrPostNotFound
	}
	return err
}

func (r *CommentRepositoryImpl) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepositoryImpl) viewQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table("comments").
		Select(`comments.id, comments.post_id, comments.author_id, comments.content, comments.created_at,
			users.login AS author_login, users.avatar_url AS author_avatar`).
		Joins("LEFT JOIN users ON users.id = comments.author_id")
}

func (r *CommentRepositoryImpl) GetView(ctx context.Context, id string) (*models.CommentView, error) {
	var views []models.CommentView
	if err := r.viewQuery(ctx).Where("comments.id = ?", id).Limit(1).Scan(&views).Error; err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, ErrCommentNotFound
	}
	fillUnknownAuthor(&views[0])
	return &views[0], nil
}

func (r *CommentRepositoryImpl) ListByPost(ctx context.Context, postID string) ([]models.CommentView, error) {
	views := []models.CommentView{}
	err := r.viewQuery(ctx).
		Where("comments.post_id = ?", postID).
		Order("comments.created_at DESC").
		Order("comments.id DESC").
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	for i := range views {
		fillUnknownAuthor(&views[i])
	}
	return views, nil
}

func (r *CommentRepositoryImpl) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Comment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func fillUnknownAuthor(v *models.CommentView) {
	if v.AuthorLogin == "" {
		v.AuthorLogin = models.UnknownAuthor
	}
}
