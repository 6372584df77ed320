package memory

import (
	"context"

	"microblog/internal/models"
	"microblog/internal/repositories"
)

type ratingRepository struct {
	s *Store
}

func (r *ratingRepository) Set(ctx context.Context, userID, postID string, value int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[postID]; !ok {
		return repositories.ErrPostNotFound
	}
	key := pairKey{userID: userID, postID: postID}
	now := r.s.now()
	rating, ok := r.s.ratings[key]
	if !ok {
		rating = models.PostRating{UserID: userID, PostID: postID, CreatedAt: now}
	}
	rating.Value = value
	rating.UpdatedAt = now
	r.s.ratings[key] = rating
	return nil
}

func (r *ratingRepository) Remove(ctx context.Context, userID, postID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.ratings, pairKey{userID: userID, postID: postID})
	return nil
}

func (r *ratingRepository) Sum(ctx context.Context, postID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sum := 0
	for key, rating := range r.s.ratings {
		if key.postID == postID {
			sum += rating.Value
		}
	}
	return sum, nil
}

func (r *ratingRepository) Get(ctx context.Context, userID, postID string) (*int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rating, ok := r.s.ratings[pairKey{userID: userID, postID: postID}]
	if !ok {
		return nil, nil
	}
	value := rating.Value
	return &value, nil
}
