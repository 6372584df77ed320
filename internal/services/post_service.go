package services

import (
	"context"
	"errors"
	"time"

	"microblog/internal/events"
	"microblog/internal/logger"
	"microblog/internal/models"
	"microblog/internal/repositories"
	"microblog/internal/services/dto"
	"microblog/pkg/apperrors"
)

type PostService interface {
	Create(ctx context.Context, req *dto.CreatePostRequest, authorID string) (*dto.PostResponse, error)
	// Get returns a single post; viewerID may be empty for anonymous callers.
	Get(ctx context.Context, id, viewerID string) (*dto.PostResponse, error)
	GetAll(ctx context.Context, viewerID string) ([]*dto.PostResponse, error)
	GetByAuthor(ctx context.Context, authorID, viewerID string) ([]*dto.PostResponse, error)
	GetMy(ctx context.Context, callerID string) ([]*dto.PostResponse, error)
	Search(ctx context.Context, query, viewerID string) ([]*dto.PostResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdatePostRequest, callerID string) error
	Delete(ctx context.Context, id, callerID string) error
}

type PostServiceImpl struct {
	postRepo  repositories.PostRepository
	publisher events.Publisher
}

func NewPostService(postRepo repositories.PostRepository, publisher events.Publisher) PostService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &PostServiceImpl{
		postRepo:  postRepo,
		publisher: publisher,
	}
}

func (s *PostServiceImpl) Create(ctx context.Context, req *dto.CreatePostRequest, authorID string) (*dto.PostResponse, error) {
	post := &models.Post{
		AuthorID: authorID,
		Title:    req.Title,
		Content:  req.Content,
		ImageURL: req.ImageURL,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	view, err := s.postRepo.GetView(ctx, post.ID, authorID)
	if err != nil {
		return nil, mapPostError(err)
	}

	logger.CtxInfo(ctx, "post created", "post_id", post.ID, "author_id", authorID)
	s.publisher.Publish(events.New(events.PostCreated, post.ID, authorID, dto.NewPostResponse(view)))
	return dto.NewPostResponse(view), nil
}

func (s *PostServiceImpl) Get(ctx context.Context, id, viewerID string) (*dto.PostResponse, error) {
	view, err := s.postRepo.GetView(ctx, id, viewerID)
	if err != nil {
		return nil, mapPostError(err)
	}
	return dto.NewPostResponse(view), nil
}

func (s *PostServiceImpl) GetAll(ctx context.Context, viewerID string) ([]*dto.PostResponse, error) {
	return s.list(ctx, repositories.PostFilter{ViewerID: viewerID})
}

func (s *PostServiceImpl) GetByAuthor(ctx context.Context, authorID, viewerID string) ([]*dto.PostResponse, error) {
	return s.list(ctx, repositories.PostFilter{AuthorID: authorID, ViewerID: viewerID})
}

func (s *PostServiceImpl) GetMy(ctx context.Context, callerID string) ([]*dto.PostResponse, error) {
	return s.GetByAuthor(ctx, callerID, callerID)
}

func (s *PostServiceImpl) Search(ctx context.Context, query, viewerID string) ([]*dto.PostResponse, error) {
	return s.list(ctx, repositories.PostFilter{Query: query, ViewerID: viewerID})
}

func (s *PostServiceImpl) list(ctx context.Context, filter repositories.PostFilter) ([]*dto.PostResponse, error) {
	views, err := s.postRepo.ListViews(ctx, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewPostListResponse(views), nil
}

func (s *PostServiceImpl) Update(ctx context.Context, id string, req *dto.UpdatePostRequest, callerID string) error {
	if err := s.authorize(ctx, id, callerID); err != nil {
		return err
	}
	if err := s.postRepo.Update(ctx, id, req.Title, req.Content); err != nil {
		return mapPostError(err)
	}

	logger.CtxInfo(ctx, "post updated", "post_id", id)
	s.publisher.Publish(events.New(events.PostUpdated, id, callerID, map[string]any{
		"title":      req.Title,
		"content":    req.Content,
		"updated_at": time.Now().UTC(),
	}))
	return nil
}

func (s *PostServiceImpl) Delete(ctx context.Context, id, callerID string) error {
	if err := s.authorize(ctx, id, callerID); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return mapPostError(err)
	}

	logger.CtxInfo(ctx, "post deleted", "post_id", id)
	s.publisher.Publish(events.New(events.PostDeleted, id, callerID, nil))
	return nil
}

// authorize loads the post and checks that callerID wrote it.
func (s *PostServiceImpl) authorize(ctx context.Context, id, callerID string) error {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return mapPostError(err)
	}
	if post.AuthorID != callerID {
		logger.CtxWarn(ctx, "post ownership check failed", "post_id", id)
		return apperrors.ErrNotEnoughPermissions
	}
	return nil
}

func mapPostError(err error) error {
	if errors.Is(err, repositories.ErrPostNotFound) {
		return apperrors.ErrPostNotFound
	}
	return apperrors.InternalError(err)
}

// ensurePostExists is shared by the services that hang data off a post.
func ensurePostExists(ctx context.Context, postRepo repositories.PostRepository, postID string) error {
	ok, err := postRepo.Exists(ctx, postID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if !ok {
		return apperrors.ErrPostNotFound
	}
	return nil
}
