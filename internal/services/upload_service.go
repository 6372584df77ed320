package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"microblog/internal/imageprocessor"
	"microblog/internal/logger"
	"microblog/internal/repositories"
	"microblog/internal/services/dto"
	"microblog/internal/storage"
	"microblog/pkg/apperrors"

	"github.com/google/uuid"
)

const (
	avatarDir = "avatars"
	imageDir  = "images"
)

type UploadService interface {
	// UploadAvatar stores the file and makes it the user's avatar.
	UploadAvatar(ctx context.Context, userID string, file *dto.UploadFile) (*dto.UploadResponse, error)
	// UploadImage stores a post image and returns its URL.
	UploadImage(ctx context.Context, userID string, file *dto.UploadFile) (*dto.UploadResponse, error)
}

type UploadOptions struct {
	MaxSize            int64
	AllowedExtensions  []string
	AvatarMaxDimension int
}

type UploadServiceImpl struct {
	userRepo  repositories.UserRepository
	storage   storage.Storage
	processor *imageprocessor.Processor
	opts      UploadOptions
	allowed   map[string]bool
}

func NewUploadService(
	userRepo repositories.UserRepository,
	store storage.Storage,
	processor *imageprocessor.Processor,
	opts UploadOptions,
) UploadService {
	allowed := make(map[string]bool, len(opts.AllowedExtensions))
	for _, ext := range opts.AllowedExtensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = true
	}
	return &UploadServiceImpl{
		userRepo:  userRepo,
		storage:   store,
		processor: processor,
		opts:      opts,
		allowed:   allowed,
	}
}

func (s *UploadServiceImpl) UploadAvatar(ctx context.Context, userID string, file *dto.UploadFile) (*dto.UploadResponse, error) {
	ext, data, err := s.read(file)
	if err != nil {
		return nil, err
	}

	var body io.Reader = bytes.NewReader(data)
	if s.processor != nil && (ext == ".jpg" || ext == ".jpeg" || ext == ".png") {
		out, resized, err := s.processor.FitWithin(bytes.NewReader(data), s.opts.AvatarMaxDimension)
		switch {
		case err != nil:
			// Undecodable content is stored as received.
			logger.CtxWarn(ctx, "avatar not resized", "error", err)
		case resized:
			body = out
		}
	}

	key := fmt.Sprintf("%s/avatar_%s_%s%s", avatarDir, userID, randomHex(), ext)
	url, err := s.store(ctx, key, ext, body)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateAvatar(ctx, userID, url); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			logger.CtxWithError(ctx, "failed to remove orphaned avatar", delErr, "key", key)
		}
		return nil, mapUserError(err)
	}

	logger.CtxInfo(ctx, "avatar uploaded", "user_id", userID, "key", key)
	return &dto.UploadResponse{URL: url}, nil
}

func (s *UploadServiceImpl) UploadImage(ctx context.Context, userID string, file *dto.UploadFile) (*dto.UploadResponse, error) {
	ext, data, err := s.read(file)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/post_%s%s", imageDir, randomHex(), ext)
	url, err := s.store(ctx, key, ext, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "image uploaded", "user_id", userID, "key", key)
	return &dto.UploadResponse{URL: url}, nil
}

// read validates the extension and size and returns the whole content.
func (s *UploadServiceImpl) read(file *dto.UploadFile) (string, []byte, error) {
	if file == nil || file.Reader == nil {
		return "", nil, apperrors.ErrMissingFile
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !s.allowed[ext] {
		return "", nil, apperrors.ErrInvalidFileType
	}
	if s.opts.MaxSize > 0 && file.Size > s.opts.MaxSize {
		return "", nil, apperrors.ErrFileTooLarge(s.opts.MaxSize)
	}

	// The declared size can lie, so the limit is enforced on the bytes too.
	src := file.Reader
	if s.opts.MaxSize > 0 {
		src = io.LimitReader(src, s.opts.MaxSize+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return "", nil, apperrors.NewBadRequestError("Failed to read file").WithError(err)
	}
	if s.opts.MaxSize > 0 && int64(len(data)) > s.opts.MaxSize {
		return "", nil, apperrors.ErrFileTooLarge(s.opts.MaxSize)
	}
	return ext, data, nil
}

func (s *UploadServiceImpl) store(ctx context.Context, key, ext string, body io.Reader) (string, error) {
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := s.storage.Save(ctx, key, body, contentType); err != nil {
		return "", apperrors.InternalError(err)
	}
	url, err := s.storage.GetURL(ctx, key)
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	return url, nil
}

func randomHex() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

