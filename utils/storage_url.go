package utils

import (
	"net/url"
	"os"
	"strings"
)

// BuildObjectAccessURL returns the client-facing location of a stored attachment.
// Local storage is served by the API itself under /api/upload/files/.
func BuildObjectAccessURL(objectKey string) string {
	base := strings.TrimSpace(os.Getenv("STORAGE_ACCESS_BASE_URL"))
	if base != "" {
		if strings.Contains(base, "{objectKey}") {
			escaped := objectKey
			if strings.Contains(base, "?") {
				escaped = url.QueryEscape(objectKey)
			}
			return strings.ReplaceAll(base, "{objectKey}", escaped)
		}
		if strings.Contains(base, "?") {
			return base + url.QueryEscape(objectKey)
		}
		return strings.TrimRight(base, "/") + "/" + objectKey
	}

	if GetStorageProvider() == StorageProviderGCS {
		if bucket := strings.TrimSpace(os.Getenv("GCS_BUCKET")); bucket != "" {
			return "https://storage.googleapis.com/" + bucket + "/" + objectKey
		}
	}
	return "/api/upload/files/" + objectKey
}
