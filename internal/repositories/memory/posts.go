package memory

import (
	"context"
	"strings"
	"time"

	"microblog/internal/models"
	"microblog/internal/repositories"

	"github.com/google/uuid"
)

type postRepository struct {
	s *Store
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[post.AuthorID]; !ok {
		return repositories.ErrUserNotFound
	}
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = r.s.now()
	}
	post.UpdatedAt = post.CreatedAt

	cp := *post
	cp.ImageURL = copyString(post.ImageURL)
	r.s.posts[post.ID] = &cp
	return nil
}

func (r *postRepository) FindByID(ctx context.Context, id string) (*models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	cp := *p
	cp.ImageURL = copyString(p.ImageURL)
	return &cp, nil
}

func (r *postRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.posts[id]
	return ok, nil
}

func (r *postRepository) GetView(ctx context.Context, id, viewerID string) (*models.PostView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	v := r.s.postView(p, viewerID)
	return &v, nil
}

func (r *postRepository) ListViews(ctx context.Context, filter repositories.PostFilter) ([]models.PostView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	q := strings.ToLower(filter.Query)
	var ids []string
	for id, p := range r.s.posts {
		if filter.AuthorID != "" && p.AuthorID != filter.AuthorID {
			continue
		}
		if filter.FavoritedBy != "" {
			if _, ok := r.s.favorites[pairKey{userID: filter.FavoritedBy, postID: id}]; !ok {
				continue
			}
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Title), q) && !strings.Contains(strings.ToLower(p.Content), q) {
			continue
		}
		ids = append(ids, id)
	}

	r.s.newestFirst(ids, func(id string) time.Time { return r.s.posts[id].CreatedAt })

	views := make([]models.PostView, 0, len(ids))
	for _, id := range ids {
		views = append(views, r.s.postView(r.s.posts[id], filter.ViewerID))
	}
	return views, nil
}

func (r *postRepository) Update(ctx context.Context, id, title, content string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[id]
	if !ok {
		return repositories.ErrPostNotFound
	}
	p.Title = title
	p.Content = content
	p.UpdatedAt = r.s.now()
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[id]; !ok {
		return repositories.ErrPostNotFound
	}
	r.s.deletePostLocked(id)
	return nil
}
