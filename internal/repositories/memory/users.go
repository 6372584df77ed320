package memory

import (
	"context"
	"sort"
	"strings"

	"microblog/internal/models"
	"microblog/internal/repositories"

	"github.com/google/uuid"
)

type userRepository struct {
	s *Store
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email || u.Login == user.Login {
			return repositories.ErrUserAlreadyExists
		}
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := r.s.now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = user.CreatedAt

	stored := cloneUser(user)
	r.s.users[user.ID] = stored
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if u, ok := r.s.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, repositories.ErrUserNotFound
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findBy(func(u *models.User) bool { return u.Email == email })
}

func (r *userRepository) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	return r.findBy(func(u *models.User) bool { return u.Login == login })
}

func (r *userRepository) findBy(match func(*models.User) bool) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, upd models.UserProfileUpdate) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	for otherID, other := range r.s.users {
		if otherID == id {
			continue
		}
		if (upd.Email != nil && other.Email == *upd.Email) || (upd.Login != nil && other.Login == *upd.Login) {
			return nil, repositories.ErrUserAlreadyExists
		}
	}

	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Login != nil {
		u.Login = *upd.Login
	}
	if upd.Bio != nil {
		u.Bio = copyString(upd.Bio)
	}
	u.UpdatedAt = r.s.now()
	return cloneUser(u), nil
}

func (r *userRepository) UpdateAvatar(ctx context.Context, id, avatarURL string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.AvatarURL = &avatarURL
	u.UpdatedAt = r.s.now()
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return repositories.ErrUserNotFound
	}

	for postID, p := range r.s.posts {
		if p.AuthorID == id {
			r.s.deletePostLocked(postID)
		}
	}
	for commentID, c := range r.s.comments {
		if c.AuthorID == id {
			delete(r.s.comments, commentID)
		}
	}
	for key := range r.s.favorites {
		if key.userID == id {
			delete(r.s.favorites, key)
		}
	}
	for key := range r.s.ratings {
		if key.userID == id {
			delete(r.s.ratings, key)
		}
	}
	delete(r.s.users, id)
	return nil
}

func (r *userRepository) Search(ctx context.Context, query string) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	q := strings.ToLower(query)
	users := []models.User{}
	for _, u := range r.s.users {
		if strings.Contains(strings.ToLower(u.Login), q) || strings.Contains(strings.ToLower(u.Email), q) {
			users = append(users, *cloneUser(u))
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Login < users[j].Login })
	return users, nil
}

func cloneUser(u *models.User) *models.User {
	cp := *u
	cp.AvatarURL = copyString(u.AvatarURL)
	cp.Bio = copyString(u.Bio)
	cp.Posts = nil
	return &cp
}
