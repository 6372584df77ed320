package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// CloudflareR2Storage talks to R2 through its S3-compatible API.
type CloudflareR2Storage struct {
	client   *s3.S3
	uploader *s3manager.Uploader
	bucket   string
	baseURL  string
}

func NewCloudflareR2Storage(cfg Config) (*CloudflareR2Storage, error) {
	// Endpoint format: https://<account_id>.r2.cloudflarestorage.com
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required for Cloudflare R2")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required for Cloudflare R2")
	}

	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String("auto"),
		Endpoint:         aws.String(cfg.Endpoint),
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create R2 session: %w", err)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.r2.dev", cfg.Bucket)
	}

	return &CloudflareR2Storage{
		client:   s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		bucket:   cfg.Bucket,
		baseURL:  baseURL,
	}, nil
}

// Save uploads without an ACL; R2 does not support object ACLs.
func (s *CloudflareR2Storage) Save(ctx context.Context, key string, reader io.Reader, contentType string) error {
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        reader,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to R2: %w", err)
	}
	return nil
}

func (s *CloudflareR2Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return getObject(ctx, s.client, s.bucket, key)
}

func (s *CloudflareR2Storage) Delete(ctx context.Context, key string) error {
	return deleteObject(ctx, s.client, s.bucket, key)
}

func (s *CloudflareR2Storage) Exists(ctx context.Context, key string) (bool, error) {
	return objectExists(ctx, s.client, s.bucket, key)
}

func (s *CloudflareR2Storage) GetURL(ctx context.Context, key string) (string, error) {
	return joinURL(s.baseURL, key), nil
}

func (s *CloudflareR2Storage) GetSignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return presign(s.client, s.bucket, key, expiry)
}
