package services

import (
	"context"
	"errors"
	"strings"

	"microblog/internal/events"
	"microblog/internal/logger"
	"microblog/internal/models"
	"microblog/internal/repositories"
	"microblog/internal/services/dto"
	"microblog/pkg/apperrors"
)

type CommentService interface {
	Create(ctx context.Context, postID, authorID, content string) (*dto.CommentResponse, error)
	List(ctx context.Context, postID string) ([]*dto.CommentResponse, error)
	// Delete removes a comment of postID written by callerID.
	Delete(ctx context.Context, postID, commentID, callerID string) error
}

type CommentServiceImpl struct {
	commentRepo repositories.CommentRepository
	postRepo    repositories.PostRepository
	publisher   events.Publisher
}

func NewCommentService(
	commentRepo repositories.CommentRepository,
	postRepo repositories.PostRepository,
	publisher events.Publisher,
) CommentService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &CommentServiceImpl{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		publisher:   publisher,
	}
}

func (s *CommentServiceImpl) Create(ctx context.Context, postID, authorID, content string) (*dto.CommentResponse, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.ErrEmptyComment
	}
	if err := ensurePostExists(ctx, s.postRepo, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Content:  content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	view, err := s.commentRepo.GetView(ctx, comment.ID)
	if err != nil {
		return nil, mapCommentError(err)
	}

	resp := dto.NewCommentResponse(view)
	logger.CtxInfo(ctx, "comment created", "comment_id", comment.ID, "post_id", postID)
	s.publisher.Publish(events.New(events.CommentCreated, postID, authorID, resp))
	return resp, nil
}

// List does not require the post to exist; an unknown post has no comments.
func (s *CommentServiceImpl) List(ctx context.Context, postID string) ([]*dto.CommentResponse, error) {
	views, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewCommentListResponse(views), nil
}

func (s *CommentServiceImpl) Delete(ctx context.Context, postID, commentID, callerID string) error {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return mapCommentError(err)
	}
	if comment.PostID != postID {
		return apperrors.ErrCommentNotFound
	}
	if comment.AuthorID != callerID {
		logger.CtxWarn(ctx, "comment ownership check failed", "comment_id", commentID)
		return apperrors.ErrNotEnoughPermissions
	}
	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return mapCommentError(err)
	}

	logger.CtxInfo(ctx, "comment deleted", "comment_id", commentID, "post_id", postID)
	s.publisher.Publish(events.New(events.CommentDeleted, postID, callerID, map[string]string{"comment_id": commentID}))
	return nil
}

func mapCommentError(err error) error {
	if errors.Is(err, repositories.ErrCommentNotFound) {
		return apperrors.ErrCommentNotFound
	}
	return apperrors.InternalError(err)
}
