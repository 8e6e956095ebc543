package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "userhub", cfg.MongoDB)
	require.Equal(t, "avatars", cfg.MinioBucket)
	require.Equal(t, 24*time.Hour, cfg.TokenTTL)
	require.Equal(t, "uploads", cfg.UploadDir)
	require.Len(t, cfg.AllowedOrigins, 2)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com")

	cfg := Load()

	require.Equal(t, "9999", cfg.Port)
	require.Equal(t, 2*time.Hour, cfg.TokenTTL)
	require.True(t, cfg.MinioUseSSL)
	require.Equal(t, []string{"https://app.example.com"}, cfg.AllowedOrigins)
}

func TestLoad_BadDurationFallsBack(t *testing.T) {
	t.Setenv("TOKEN_TTL", "not-a-duration")

	require.Equal(t, 24*time.Hour, Load().TokenTTL)
}
