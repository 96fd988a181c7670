package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/payroll")
	t.Setenv("JWT_ACCESS_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, 7091, cfg.HTTP.Port)
	assert.Equal(t, "http://localhost:4000", cfg.Deel.BaseURL)
	assert.Empty(t, cfg.Deel.APIToken)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/payroll")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("DEEL_API_BASE_URL", "https://api.letsdeel.com")
	t.Setenv("DEEL_API_TOKEN", "env-token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.Equal(t, "https://api.letsdeel.com", cfg.Deel.BaseURL)
	assert.Equal(t, "env-token", cfg.Deel.APIToken)
}

func TestLoadMissingRequired(t *testing.T) {
	t.Run("missing dsn", func(t *testing.T) {
		t.Setenv("DB_DSN", "")
		t.Setenv("JWT_ACCESS_SECRET", "secret")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DB_DSN")
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		t.Setenv("DB_DSN", "postgres://localhost/payroll")
		t.Setenv("JWT_ACCESS_SECRET", "")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_ACCESS_SECRET")
	})
}
