package utils

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes objects below Dir.
type LocalStore struct {
	Dir string
}

func (s *LocalStore) Path(objectKey string) (string, error) {
	clean := filepath.Clean("/" + objectKey)
	if strings.Contains(objectKey, "..") || clean == "/" {
		return "", errors.New("invalid object key")
	}
	return filepath.Join(s.Dir, clean), nil
}

func (s *LocalStore) Put(ctx context.Context, objectKey string, data []byte, contentType string) error {
	path, err := s.Path(objectKey)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *LocalStore) Delete(ctx context.Context, objectKey string) error {
	path, err := s.Path(objectKey)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
