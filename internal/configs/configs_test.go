package configs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("PORT", "")
	t.Setenv("ALLOWED_ORIGINS", "")
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, 3000, cfg.Port)
	require.Empty(t, cfg.AllowedOrigins)
}

func TestLoadConfig_PortFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 8081, cfg.Port)
}

func TestLoadConfig_InvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-port")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfig_PortOutOfRange(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "70000")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfig_AllowedOriginsParsing(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example.com , https://b.example.com ,, ")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "production", cfg.Environment)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
}
