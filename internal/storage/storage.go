package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

var ErrNotFound = errors.New("file not found")

// Storage stores uploaded files under slash-separated keys such as
// "avatars/avatar_<id>_<hex>.png".
type Storage interface {
	// Save stores the content at the given key, replacing any previous file.
	Save(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Get opens a stored file. It returns ErrNotFound for unknown keys.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a file; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns the public URL under which the file is served.
	GetURL(ctx context.Context, key string) (string, error)

	// GetSignedURL returns a temporary URL for private buckets.
	GetSignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

const (
	TypeLocal        = "local"
	TypeS3           = "s3"
	TypeCloudflareR2 = "cloudflare_r2"
)

// Config holds storage configuration
type Config struct {
	Type       string // local, s3, cloudflare_r2
	BasePath   string // For local storage
	BaseURL    string // Public URL base
	Bucket     string // For S3/R2
	Region     string // For S3
	AccessKey  string // For S3/R2
	SecretKey  string // For S3/R2
	Endpoint   string // For R2 or custom S3
	UseSSL     bool   // For S3/R2
	PublicRead bool   // Upload objects with a public-read ACL
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case TypeLocal, "":
		return NewLocalStorage(cfg)
	case TypeS3:
		return NewS3Storage(cfg)
	case TypeCloudflareR2:
		return NewCloudflareR2Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

func joinURL(base, key string) string {
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + "/" + key
}
