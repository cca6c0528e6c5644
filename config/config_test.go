package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("ENV", "test")
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ACCESS_TOKEN_TTL", "")
	t.Setenv("REFRESH_TOKEN_TTL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
}

func TestLoadConfig(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.Env)
	assert.Equal(t, "db", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.Contains(t, cfg.DSN(), "host=db")
	assert.False(t, cfg.RedisEnabled())
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestGetEnvironment(t *testing.T) {
	tests := []struct {
		ci, env string
		want    Environment
	}{
		{"", "", Development},
		{"", "PRODUCTION", Production},
		{"", " test ", Test},
		{"", "staging", Development},
		{"true", "production", CI},
	}
	for _, tt := range tests {
		t.Run(tt.ci+"/"+tt.env, func(t *testing.T) {
			t.Setenv("CI", tt.ci)
			t.Setenv("ENV", tt.env)
			assert.Equal(t, tt.want, GetEnvironment())
		})
	}

	assert.True(t, CI.IsStrict())
	assert.True(t, Production.IsStrict())
	assert.False(t, Test.IsStrict())
	assert.Equal(t, "console", Development.DefaultLogFormat())
	assert.Equal(t, "json", Production.DefaultLogFormat())
}

func TestLoadConfigDevelopmentLogsToConsole(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ENV", "")
	t.Setenv("JWT_SECRET", "dev")
	t.Setenv("LOG_FORMAT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, Development, cfg.Env)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoadConfigReadsSecrets(t *testing.T) {
	setBaseEnv(t)
	dir := os.Getenv("SECRETS_DIR")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("from-secret-file\n"), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-secret-file", cfg.JWTSecret)
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	setBaseEnv(t)

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("ACCESS_TOKEN_TTL", "soon")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidateConfigProduction(t *testing.T) {
	cfg := &Config{
		Env:             Production,
		ServerPort:      "8080",
		DBDriver:        "sqlite",
		JWTSecret:       "short",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	}

	err := ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite is not allowed in production")
	assert.Contains(t, err.Error(), "at least 32 characters")
}
