package repositories

import (
	"context"
	"errors"
	"time"

	"microblog/internal/models"

	"gorm.io/gorm"
)

// PostFilter narrows ListViews. Empty fields are ignored. ViewerID only
// controls the viewer-specific columns, not which posts are returned.
type PostFilter struct {
	AuthorID    string
	FavoritedBy string
	Query       string
	ViewerID    string
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id string) (*models.Post, error)
	Exists(ctx context.Context, id string) (bool, error)
	// GetView returns the post with author and aggregates; viewerID may be empty.
	GetView(ctx context.Context, id, viewerID string) (*models.PostView, error)
	// ListViews returns matching posts newest first.
	ListViews(ctx context.Context, filter PostFilter) ([]models.PostView, error)
	Update(ctx context.Context, id, title, content string) error
	// Delete removes the post with its comments, favorites and ratings.
	Delete(ctx context.Context, id string) error
}

type PostRepositoryImpl struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &PostRepositoryImpl{db: db}
}

func (r *PostRepositoryImpl) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Create(post).Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ErrUserNotFound
	}
	return err
}

func (r *PostRepositoryImpl) FindByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *PostRepositoryImpl) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

const postViewColumns = `posts.id, posts.author_id, posts.title, posts.content, posts.image_url,
	posts.created_at, posts.updated_at,
	users.login AS author_login, users.avatar_url AS author_avatar,
	COALESCE((SELECT SUM(pr.value) FROM post_ratings pr WHERE pr.post_id = posts.id), 0) AS rating,
	(SELECT COUNT(*) FROM comments c WHERE c.post_id = posts.id) AS comments_count`

const postViewerColumns = `,
	EXISTS (SELECT 1 FROM favorites f WHERE f.post_id = posts.id AND f.user_id = ?) AS is_favorited,
	(SELECT vr.value FROM post_ratings vr WHERE vr.post_id = posts.id AND vr.user_id = ?) AS user_rating`

// viewQuery aggregates with correlated subqueries so that ratings and
// comments never multiply each other.
func (r *PostRepositoryImpl) viewQuery(ctx context.Context, viewerID string) *gorm.DB {
	q := r.db.WithContext(ctx).Table("posts").
		Joins("LEFT JOIN users ON users.id = posts.author_id")
	if viewerID == "" {
		return q.Select(postViewColumns)
	}
	return q.Select(postViewColumns+postViewerColumns, viewerID, viewerID)
}

func (r *PostRepositoryImpl) GetView(ctx context.Context, id, viewerID string) (*models.PostView, error) {
	var views []models.PostView
	err := r.viewQuery(ctx, viewerID).Where("posts.id = ?", id).Limit(1).Scan(&views).Error
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, ErrPostNotFound
	}
	return &views[0], nil
}

func (r *PostRepositoryImpl) ListViews(ctx context.Context, filter PostFilter) ([]models.PostView, error) {
	q := r.viewQuery(ctx, filter.ViewerID)
	if filter.AuthorID != "" {
		q = q.Where("posts.author_id = ?", filter.AuthorID)
	}
	if filter.FavoritedBy != "" {
		q = q.Where("EXISTS (SELECT 1 FROM favorites ff WHERE ff.post_id = posts.id AND ff.user_id = ?)", filter.FavoritedBy)
	}
	if filter.Query != "" {
		pattern := likePattern(filter.Query)
		q = q.Where("(LOWER(posts.title) LIKE ? ESCAPE '!' OR LOWER(posts.content) LIKE ? ESCAPE '!')", pattern, pattern)
	}

	views := []models.PostView{}
	err := q.Order("posts.created_at DESC").Order("posts.id DESC").Scan(&views).Error
	return views, err
}

func (r *PostRepositoryImpl) Update(ctx context.Context, id, title, content string) error {
	result := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Updates(map[string]interface{}{
		"title":      title,
		"content":    content,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *PostRepositoryImpl) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deletePostDependents(tx, []string{id}); err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Post{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return nil
	})
}
