// Package memory keeps every entity in process memory behind one lock. It
// implements the same repository interfaces as the relational store.
package memory

import (
	"sort"
	"sync"
	"time"

	"microblog/internal/models"
	"microblog/internal/repositories"
)

type pairKey struct {
	userID string
	postID string
}

// Store owns all in-memory state. Create one per process (or per test) and
// pass it to NewRepositories.
type Store struct {
	mu sync.RWMutex

	users     map[string]*models.User
	posts     map[string]*models.Post
	comments  map[string]*models.Comment
	favorites map[pairKey]models.Favorite
	ratings   map[pairKey]models.PostRating

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:     make(map[string]*models.User),
		posts:     make(map[string]*models.Post),
		comments:  make(map[string]*models.Comment),
		favorites: make(map[pairKey]models.Favorite),
		ratings:   make(map[pairKey]models.PostRating),
		now:       time.Now,
	}
}

// NewRepositories returns the in-memory implementation of every repository.
func NewRepositories(s *Store) *repositories.Repositories {
	return &repositories.Repositories{
		Users:     &userRepository{s: s},
		Posts:     &postRepository{s: s},
		Comments:  &commentRepository{s: s},
		Favorites: &favoriteRepository{s: s},
		Ratings:   &ratingRepository{s: s},
	}
}

// postView builds the read model; caller holds at least the read lock.
func (s *Store) postView(p *models.Post, viewerID string) models.PostView {
	v := models.PostView{
		ID:        p.ID,
		AuthorID:  p.AuthorID,
		Title:     p.Title,
		Content:   p.Content,
		ImageURL:  copyString(p.ImageURL),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if author, ok := s.users[p.AuthorID]; ok {
		v.AuthorLogin = author.Login
		v.AuthorAvatar = copyString(author.AvatarURL)
	}
	for key, r := range s.ratings {
		if key.postID == p.ID {
			v.Rating += r.Value
		}
	}
	for _, c := range s.comments {
		if c.PostID == p.ID {
			v.CommentsCount++
		}
	}
	if viewerID != "" {
		key := pairKey{userID: viewerID, postID: p.ID}
		_, v.IsFavorited = s.favorites[key]
		if r, ok := s.ratings[key]; ok {
			value := r.Value
			v.UserRating = &value
		}
	}
	return v
}

// newestFirst sorts by creation time then id, both descending, matching the
// relational ORDER BY.
func (s *Store) newestFirst(ids []string, createdAt func(id string) time.Time) {
	sort.Slice(ids, func(i, j int) bool {
		ti, tj := createdAt(ids[i]), createdAt(ids[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return ids[i] > ids[j]
	})
}

// deletePostLocked removes a post and everything attached to it.
func (s *Store) deletePostLocked(postID string) {
	for id, c := range s.comments {
		if c.PostID == postID {
			delete(s.comments, id)
		}
	}
	for key := range s.favorites {
		if key.postID == postID {
			delete(s.favorites, key)
		}
	}
	for key := range s.ratings {
		if key.postID == postID {
			delete(s.ratings, key)
		}
	}
	delete(s.posts, postID)
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
