package memory

import (
	"context"
	"time"

	"microblog/internal/models"
	"microblog/internal/repositories"

	"github.com/google/uuid"
)

type commentRepository struct {
	s *Store
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[comment.PostID]; !ok {
		return repositories.ErrPostNotFound
	}
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = r.s.now()
	}

	cp := *comment
	cp.Author = nil
	r.s.comments[comment.ID] = &cp
	return nil
}

func (r *commentRepository) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.comments[id]
	if !ok {
		return nil, repositories.ErrCommentNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *commentRepository) GetView(ctx context.Context, id string) (*models.CommentView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.comments[id]
	if !ok {
		return nil, repositories.ErrCommentNotFound
	}
	v := r.commentView(c)
	return &v, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]models.CommentView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var ids []string
	for id, c := range r.s.comments {
		if c.PostID == postID {
			ids = append(ids, id)
		}
	}
	r.s.newestFirst(ids, func(id string) time.Time { return r.s.comments[id].CreatedAt })

	views := make([]models.CommentView, 0, len(ids))
	for _, id := range ids {
		views = append(views, r.commentView(r.s.comments[id]))
	}
	return views, nil
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.comments[id]; !ok {
		return repositories.ErrCommentNotFound
	}
	delete(r.s.comments, id)
	return nil
}

func (r *commentRepository) commentView(c *models.Comment) models.CommentView {
	v := models.CommentView{
		ID:          c.ID,
		PostID:      c.PostID,
		AuthorID:    c.AuthorID,
		AuthorLogin: models.UnknownAuthor,
		Content:     c.Content,
		CreatedAt:   c.CreatedAt,
	}
	if author, ok := r.s.users[c.AuthorID]; ok {
		v.AuthorLogin = author.Login
		v.AuthorAvatar = copyString(author.AvatarURL)
	}
	return v
}
