package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithMemoryBackend(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_BACKEND", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, "aidoctor", cfg.Store.Namespace)
	assert.Equal(t, "openai", cfg.Provider.Name)
	assert.Equal(t, 60*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, uint32(5), cfg.Provider.BreakerFailures)
	assert.Equal(t, 6, cfg.Auth.MinPasswordLength)
	assert.Equal(t, 50, cfg.Session.MaxConsultations)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LLM_TIMEOUT", "15s")
	t.Setenv("MIN_PASSWORD_LENGTH", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Store.RedisURL)
	assert.Equal(t, "sk-test", cfg.Provider.APIKey)
	assert.Equal(t, 15*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, 10, cfg.Auth.MinPasswordLength)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STORE_BACKEND=sqlite\nSQLITE_PATH=/tmp/x.db\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("SQLITE_PATH=/tmp/local.db\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("STORE_BACKEND")
		os.Unsetenv("SQLITE_PATH")
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "/tmp/local.db", cfg.Store.SQLitePath, ".env.local wins over .env")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Environment: "development"},
			Store:    StoreConfig{Backend: "memory", Namespace: "aidoctor"},
			Provider: ProviderConfig{Name: "openai"},
			Auth:     AuthConfig{MinPasswordLength: 6},
			Session:  SessionConfig{MaxConsultations: 50, RateLimit: 5, RateBurst: 10},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"postgres without url", func(c *Config) { c.Store.Backend = "postgres" }, "postgresurl"},
		{"redis without url", func(c *Config) { c.Store.Backend = "redis" }, "redisurl"},
		{"mongo without uri", func(c *Config) { c.Store.Backend = "mongo" }, "mongouri"},
		{"azblob without credentials", func(c *Config) { c.Store.Backend = "azblob" }, "azure storage credentials"},
		{"unknown backend", func(c *Config) { c.Store.Backend = "etcd" }, "unknown store backend"},
		{"azure key without endpoint", func(c *Config) {
			c.Provider.Name = "azure"
			c.Provider.APIKey = "k"
		}, "endpoint"},
		{"unknown provider", func(c *Config) { c.Provider.Name = "gemini" }, "unknown provider"},
		{"production without secret", func(c *Config) { c.Server.Environment = "production" }, "jwtsecret"},
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "jwtsecret"},
		{"zero cap", func(c *Config) { c.Session.MaxConsultations = 0 }, "maxconsultations"},
		{"no rate", func(c *Config) { c.Session.RateLimit = 0 }, "rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
