package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3Storage stores files in an S3 bucket or any S3-compatible service.
type S3Storage struct {
	client     *s3.S3
	uploader   *s3manager.Uploader
	bucket     string
	baseURL    string
	publicRead bool
}

func NewS3Storage(cfg Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required for S3 storage")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsConfig := &aws.Config{
		Region:     aws.String(region),
		DisableSSL: aws.Bool(cfg.Endpoint != "" && !cfg.UseSSL),
	}
	if cfg.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		if cfg.Endpoint != "" {
			baseURL = joinURL(cfg.Endpoint, cfg.Bucket)
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, region)
		}
	}

	return &S3Storage{
		client:     s3.New(sess),
		uploader:   s3manager.NewUploader(sess),
		bucket:     cfg.Bucket,
		baseURL:    baseURL,
		publicRead: cfg.PublicRead,
	}, nil
}

func (s *S3Storage) Save(ctx context.Context, key string, reader io.Reader, contentType string) error {
	input := &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        reader,
		ContentType: aws.String(contentType),
	}
	if s.publicRead {
		input.ACL = aws.String(s3.ObjectCannedACLPublicRead)
	}

	if _, err := s.uploader.UploadWithContext(ctx, input); err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

func (s *S3Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return getObject(ctx, s.client, s.bucket, key)
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	return deleteObject(ctx, s.client, s.bucket, key)
}

func (s *S3Storage) Exists(ctx context.Context, key string) (bool, error) {
	return objectExists(ctx, s.client, s.bucket, key)
}

func (s *S3Storage) GetURL(ctx context.Context, key string) (string, error) {
	return joinURL(s.baseURL, key), nil
}

func (s *S3Storage) GetSignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return presign(s.client, s.bucket, key, expiry)
}

// Helpers shared by the S3 and R2 backends.

func getObject(ctx context.Context, client *s3.S3, bucket, key string) (io.ReadCloser, error) {
	result, err := client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	return result.Body, nil
}

func deleteObject(ctx context.Context, client *s3.S3, bucket, key string) error {
	_, err := client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func objectExists(ctx context.Context, client *s3.S3, bucket, key string) (bool, error) {
	_, err := client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object: %w", err)
	}
	return true, nil
}

func presign(client *s3.S3, bucket, key string, expiry time.Duration) (string, error) {
	req, _ := client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	url, err := req.Presign(expiry)
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return url, nil
}

func isNotFound(err error) bool {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return false
	}
	switch aerr.Code() {
	case s3.ErrCodeNoSuchKey, "NotFound":
		return true
	}
	return false
}
