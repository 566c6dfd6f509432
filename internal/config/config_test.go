package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("EDUWORLD_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, StorageDriverLocal, cfg.StorageDriver)
	require.Equal(t, "/uploads", cfg.UploadPublicPath)
	require.Equal(t, int64(100<<20), cfg.UploadMaxBytes)
	require.Equal(t, time.Minute, cfg.StatsCacheTTL)
	require.Equal(t, 60, cfg.RateLimitMax)
	require.False(t, cfg.ProgressDebug)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("EDUWORLD_JWT_SECRET", "secret")
	t.Setenv("EDUWORLD_APP_PORT", ":9090")
	t.Setenv("EDUWORLD_PROGRESS_DEBUG", "true")
	t.Setenv("EDUWORLD_UPLOAD_PUBLIC_PATH", "media/")
	t.Setenv("EDUWORLD_UPLOAD_MAX_MB", "5")
	t.Setenv("EDUWORLD_STATS_CACHE_TTL", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.True(t, cfg.ProgressDebug)
	require.Equal(t, "/media", cfg.UploadPublicPath)
	require.Equal(t, int64(5<<20), cfg.UploadMaxBytes)
	require.Equal(t, 30*time.Second, cfg.StatsCacheTTL)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("EDUWORLD_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRequiresCloudinaryCredentials(t *testing.T) {
	t.Setenv("EDUWORLD_JWT_SECRET", "secret")
	t.Setenv("EDUWORLD_STORAGE_DRIVER", "cloudinary")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("EDUWORLD_STORAGE_DRIVER", "ftp")
	_, err = Load()
	require.Error(t, err)
}
