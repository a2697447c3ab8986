package storage

import (
	"bytes"
	"context"
	"fmt"

	"slotswap-api/core/config"
	"slotswap-api/core/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStorage uploads public assets (user avatars).
type ObjectStorage interface {
	Upload(ctx context.Context, key string, contentType string, body []byte) (string, error)
}

type S3Storage struct {
	client *s3.Client
	bucket string
	public string
}

func NewS3(cfg config.S3Config) *S3Storage {
	opts := s3.Options{
		Region: cfg.Region,
		Credentials: aws.NewCredentialsCache(
			awscreds.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}

	return &S3Storage{
		client: s3.New(opts),
		bucket: cfg.Bucket,
		public: cfg.PublicBaseURL,
	}
}

func (s *S3Storage) Upload(ctx context.Context, key string, contentType string, body []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		logger.Error("S3Storage:Upload:Error:", "key", key, "error", err)
		return "", err
	}

	if s.public != "" {
		return fmt.Sprintf("%s/%s", s.public, key), nil
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key), nil
}
