package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_PASSWORD", "pw")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, 7*24*time.Hour, cfg.JWT.AccessTokenTTL)
	require.Equal(t, int32(5), cfg.Database.MaxConns)
	require.False(t, cfg.IsLLMConfigured())
	require.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
}

func TestLoadRequiresDBPassword(t *testing.T) {
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "DB_PASSWORD")
}

func TestGetDSN(t *testing.T) {
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_NAME", "tutoring")
	t.Setenv("DB_SSLMODE", "require")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "postgres://postgres:pw@db.internal:6543/tutoring?sslmode=require&connect_timeout=10", cfg.GetDSN())
}

func TestLLMConfigured(t *testing.T) {
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("LLM_MODEL", "gpt-4.1")

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.IsLLMConfigured())
	require.Equal(t, "gpt-4.1", cfg.LLM.Model)
}

func TestCORSListParsing(t *testing.T) {
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []string{"https://app.example.com", "https://staging.example.com"}, cfg.CORS.AllowedOrigins)
}
