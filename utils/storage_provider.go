package utils

import (
	"context"
	"os"
	"strings"
)

const (
	StorageProviderGCS   = "gcs"
	StorageProviderLocal = "local"
)

func GetStorageProvider() string {
	provider := strings.TrimSpace(strings.ToLower(os.Getenv("STORAGE_PROVIDER")))
	if provider == "" {
		return StorageProviderLocal
	}
	return provider
}

// ObjectStore persists uploaded attachments.
type ObjectStore interface {
	Put(ctx context.Context, objectKey string, data []byte, contentType string) error
	Delete(ctx context.Context, objectKey string) error
}

// NewObjectStore picks the backend named by STORAGE_PROVIDER.
func NewObjectStore(localDir string) ObjectStore {
	if GetStorageProvider() == StorageProviderGCS {
		return &GCSStore{Bucket: os.Getenv("GCS_BUCKET")}
	}
	return &LocalStore{Dir: localDir}
}
