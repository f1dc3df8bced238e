package config

import (
	"os"
	"strings"
	"time"
)

func Environment() string {
	if v := strings.TrimSpace(os.Getenv("GO_ENV")); v != "" {
		return v
	}
	return "development"
}

func IsProduction() bool {
	return strings.EqualFold(os.Getenv("GO_ENV"), "production")
}

func AppVersion() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "1.0.0"
}

// JwtSecret falls back to API_SECRET for older deployments.
func JwtSecret() string {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		return v
	}
	return os.Getenv("API_SECRET")
}

func JwtTTL() time.Duration {
	return time.Duration(IntFromEnv("JWT_EXPIRES_HOURS", 24*7)) * time.Hour
}

func UploadDir() string {
	if v := strings.TrimSpace(os.Getenv("UPLOAD_DIR")); v != "" {
		return v
	}
	return "uploads"
}
