package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const defaultLocalPath = "uploads"

// LocalStorage writes uploads beneath a directory relative to the process
// working directory. The directory is created on demand by every Store.
type LocalStorage struct {
	basePath string
}

func NewLocalStorage(config *BackendConfig) *LocalStorage {
	basePath := config.LocalPath
	if basePath == "" {
		basePath = defaultLocalPath
	}
	return &LocalStorage{basePath: basePath}
}

func (s *LocalStorage) BasePath() string {
	return s.basePath
}

func (s *LocalStorage) Store(ctx context.Context, name string, reader io.Reader) error {
	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	fullPath := filepath.Join(s.basePath, name)
	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(file, reader); err != nil {
		file.Close()
		os.Remove(fullPath)
		return fmt.Errorf("failed to write file: %w", err)
	}

	return file.Close()
}

func (s *LocalStorage) Exists(ctx context.Context, name string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.basePath, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
