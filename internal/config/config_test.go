package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, EnvDevelopment, cfg.Server.Env)
	assert.Equal(t, int64(13_500_000), cfg.Limits.NegotiationDailyTokens)
	assert.Equal(t, int64(400_000), cfg.Limits.SalaryDailyTokens)
	assert.Equal(t, 12, cfg.Limits.NegotiationWindowHours)
	assert.Equal(t, 24, cfg.Limits.SalaryWindowHours)
	assert.False(t, cfg.Limits.QuotaEnabled)
	assert.Equal(t, ":3000", cfg.Addr())
}

func TestLoad_FileValues(t *testing.T) {
	path := writeFile(t, `
server:
  port: 8080
  env: production
  allowedOrigins: ["https://app.example.com"]
auth:
  sessionTTL: 2h
ai:
  provider: anthropic
  model: claude-sonnet-4-6
storage:
  driver: postgres
  host: db
  port: 5432
  user: tp
  password: secret
  name: teampulse
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "anthropic", cfg.AI.Provider)
	assert.Equal(t, "postgres://tp:secret@db:5432/teampulse?sslmode=disable", cfg.PostgresDSN())
	// untouched sections keep their defaults
	assert.Equal(t, 25, cfg.Server.UploadLimitMB)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeFile(t, "server: [oops"))
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Run("overrides", func(t *testing.T) {
		t.Setenv("PORT", "4000")
		t.Setenv("NODE_ENV", "test")
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("OPENAI_API_KEY", "sk-test-0123456789abcdef")
		t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, b.example.com ,")
		t.Setenv("DAILY_TOKENS_LIMIT", "1000")
		t.Setenv("SALARY_TIMEOUT_HOURS", "6")
		t.Setenv("REDIS_ADDR", "redis:6379")

		cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
		require.NoError(t, err)

		assert.Equal(t, 4000, cfg.Server.Port)
		assert.Equal(t, EnvTest, cfg.Server.Env)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "sk-test-0123456789abcdef", cfg.AI.APIKey)
		assert.Equal(t, []string{"https://a.example.com", "b.example.com"}, cfg.Server.AllowedOrigins)
		assert.Equal(t, int64(1000), cfg.Limits.NegotiationDailyTokens)
		assert.Equal(t, 6, cfg.Limits.SalaryWindowHours)
		assert.True(t, cfg.Redis.Enabled)
		assert.True(t, cfg.HasAICredential())
	})

	t.Run("anthropic key follows provider", func(t *testing.T) {
		t.Setenv("AI_PROVIDER", "anthropic")
		t.Setenv("OPENAI_API_KEY", "sk-ignored-0123456789")
		t.Setenv("ANTHROPIC_API_KEY", "ant-key")

		cfg := Default()
		require.NoError(t, cfg.ApplyEnv())
		assert.Equal(t, "ant-key", cfg.AI.APIKey)
	})

	t.Run("bad number", func(t *testing.T) {
		t.Setenv("PORT", "abc")
		cfg := Default()
		require.Error(t, cfg.ApplyEnv())
	})
}

func TestValidate(t *testing.T) {
	t.Run("defaults are valid in demo mode", func(t *testing.T) {
		v := Default().Validate()
		assert.True(t, v.OK(), v.Errors)
		assert.Contains(t, v.Warnings, "no AI credential configured, running in demo mode")
	})

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too big", func(c *Config) { c.Server.Port = 70000 }},
		{"unknown env", func(c *Config) { c.Server.Env = "staging" }},
		{"unknown log level", func(c *Config) { c.Log.Level = "trace" }},
		{"bad openai key", func(c *Config) { c.AI.APIKey = "pk-short" }},
		{"bad origin", func(c *Config) { c.Server.AllowedOrigins = []string{"ftp://x"} }},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "sqlite" }},
		{"empty secret", func(c *Config) { c.Auth.SessionSecret = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			assert.False(t, c.Validate().OK())
		})
	}

	t.Run("production warnings", func(t *testing.T) {
		c := Default()
		c.Server.Env = EnvProduction
		v := c.Validate()
		assert.True(t, v.OK())
		assert.Len(t, v.Warnings, 4)
	})

	t.Run("origins", func(t *testing.T) {
		assert.True(t, validOrigin("*"))
		assert.True(t, validOrigin("https://app.example.com"))
		assert.True(t, validOrigin("localhost:3000"))
		assert.False(t, validOrigin("http://"))
		assert.False(t, validOrigin("not a domain"))
	})
}
