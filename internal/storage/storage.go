package storage

import (
	"context"
	"io"
)

type Backend interface {
	Store(ctx context.Context, name string, reader io.Reader) error
	Exists(ctx context.Context, name string) (bool, error)
}

type BackendType string

const (
	BackendTypeLocal BackendType = "local"
	BackendTypeS3    BackendType = "s3"
)

type BackendConfig struct {
	Type        BackendType `mapstructure:"type"`
	LocalPath   string      `mapstructure:"localPath"`
	S3Endpoint  string      `mapstructure:"s3Endpoint"`
	S3Bucket    string      `mapstructure:"s3Bucket"`
	S3AccessKey string      `mapstructure:"s3AccessKey"`
	S3SecretKey string      `mapstructure:"s3SecretKey"`
	S3Region    string      `mapstructure:"s3Region"`
	S3UseSSL    bool        `mapstructure:"s3UseSSL"`
}

func NewBackend(config *BackendConfig) (Backend, error) {
	switch config.Type {
	case BackendTypeS3:
		return NewS3Storage(config)
	default:
		return NewLocalStorage(config), nil
	}
}
