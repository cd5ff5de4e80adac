package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Storage keeps uploads as objects in an S3-compatible bucket, using the
// derived filename as the object key.
type S3Storage struct {
	client *minio.Client
	bucket string
}

func NewS3Storage(config *BackendConfig) (*S3Storage, error) {
	client, err := minio.New(config.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.S3AccessKey, config.S3SecretKey, ""),
		Secure: config.S3UseSSL,
		Region: config.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, config.S3Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", config.S3Bucket, err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, config.S3Bucket, minio.MakeBucketOptions{Region: config.S3Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", config.S3Bucket, err)
		}
	}

	return &S3Storage{
		client: client,
		bucket: config.S3Bucket,
	}, nil
}

func (s *S3Storage) Store(ctx context.Context, name string, reader io.Reader) error {
	_, err := s.client.PutObject(ctx, s.bucket, name, reader, -1, minio.PutObjectOptions{
		ContentType: "text/csv",
	})
	return err
}

func (s *S3Storage) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
