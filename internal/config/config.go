package config

import (
	"os"
	"strings"
	"time"
)

// Config holds all service configuration loaded from environment variables.
// The JWT secret and asset-host credentials live here and are handed to the
// components that need them at construction time; nothing reads them from
// package globals.
type Config struct {
	Port            string
	MongoURI        string
	MongoDB         string
	PostgresDSN     string
	RedisAddr       string
	RedisPassword   string
	MinioEndpoint   string
	MinioAccessKey  string
	MinioSecretKey  string
	MinioBucket     string
	MinioUseSSL     bool
	PublicAssetBase string
	JWTSecret       string
	TokenTTL        time.Duration
	UploadDir       string
	AllowedOrigins  []string
}

func Load() *Config {
	return &Config{
		Port:            getenv("PORT", "8080"),
		MongoURI:        getenv("MONGO_URI", ""),
		MongoDB:         getenv("MONGO_DB", "userhub"),
		PostgresDSN:     getenv("POSTGRES_DSN", ""),
		RedisAddr:       getenv("REDIS_ADDR", "redis:6379"),
		RedisPassword:   getenv("REDIS_PASSWORD", ""),
		MinioEndpoint:   getenv("MINIO_ENDPOINT", "minio:9000"),
		MinioAccessKey:  getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:  getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:     getenv("MINIO_BUCKET", "avatars"),
		MinioUseSSL:     getenv("MINIO_USE_SSL", "false") == "true",
		PublicAssetBase: getenv("PUBLIC_ASSET_BASE", "http://localhost:9000"),
		JWTSecret:       getenv("JWT_SECRET", ""),
		TokenTTL:        getduration("TOKEN_TTL", 24*time.Hour),
		UploadDir:       getenv("UPLOAD_DIR", "uploads"),
		AllowedOrigins:  strings.Split(getenv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000"), ","),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
