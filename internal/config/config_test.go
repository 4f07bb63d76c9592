package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	require.Equal(t, "guestbook", cfg.MongoDB.Database)
	require.Equal(t, "greetings", cfg.MongoDB.Collection)
	require.Equal(t, 10*time.Second, cfg.MongoDB.Timeout)
	require.Equal(t, "guestbook:tasks", cfg.Tasks.QueueKey)
	require.Equal(t, 5, cfg.Tasks.MaxAttempts)
	require.Equal(t, time.Second, cfg.Tasks.Poll)
	require.False(t, cfg.RateLimit.Enabled)
	require.Equal(t, 1.0, cfg.RateLimit.SignRPS)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	t.Setenv("MONGODB_DATABASE", "guestbook_test")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("TASKS_MAX_ATTEMPTS", "2")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("SIGN_LIMIT_ENABLED", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "9000", cfg.Server.Port)
	require.Equal(t, "mongodb://localhost:27017/testdb", cfg.MongoDB.URI)
	require.Equal(t, "guestbook_test", cfg.MongoDB.Database)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr())
	require.Equal(t, 2, cfg.Tasks.MaxAttempts)
	require.True(t, cfg.RateLimit.Enabled)
	require.True(t, cfg.RateLimit.SignEnabled)
}
