package memory

import (
	"context"

	"microblog/internal/models"
	"microblog/internal/repositories"
)

type favoriteRepository struct {
	s *Store
}

func (r *favoriteRepository) Add(ctx context.Context, userID, postID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[postID]; !ok {
		return repositories.ErrPostNotFound
	}
	key := pairKey{userID: userID, postID: postID}
	if _, ok := r.s.favorites[key]; ok {
		return repositories.ErrFavoriteAlreadyExists
	}
	r.s.favorites[key] = models.Favorite{UserID: userID, PostID: postID, CreatedAt: r.s.now()}
	return nil
}

func (r *favoriteRepository) Remove(ctx context.Context, userID, postID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := pairKey{userID: userID, postID: postID}
	if _, ok := r.s.favorites[key]; !ok {
		return repositories.ErrFavoriteNotFound
	}
	delete(r.s.favorites, key)
	return nil
}

func (r *favoriteRepository) Exists(ctx context.Context, userID, postID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.favorites[pairKey{userID: userID, postID: postID}]
	return ok, nil
}
