package repositories

import "gorm.io/gorm"

// Repositories bundles one implementation of every capability interface.
type Repositories struct {
	Users     UserRepository
	Posts     PostRepository
	Comments  CommentRepository
	Favorites FavoriteRepository
	Ratings   RatingRepository
}

// NewGormRepositories wires the relational implementations over db.
func NewGormRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:     NewUserRepository(db),
		Posts:     NewPostRepository(db),
		Comments:  NewCommentRepository(db),
		Favorites: NewFavoriteRepository(db),
		Ratings:   NewRatingRepository(db),
	}
}
