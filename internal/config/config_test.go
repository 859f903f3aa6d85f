package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSQLiteDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://staplewise.com,https://admin.staplewise.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, time.Hour, cfg.Auth.ResetTTL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "staplewise-images", cfg.Storage.ImagesBucket)
	assert.Equal(t, "staplewise-documents", cfg.Storage.DocumentsBucket)
	assert.Equal(t, []string{"https://staplewise.com", "https://admin.staplewise.com"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.Mail.SMTPEnabled())
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			DB:      DBConfig{Driver: "mysql", User: "app", Name: "marketplace", Host: "db"},
			Auth:    AuthConfig{JWTSecret: "s", SessionTTL: time.Hour, ResetTTL: time.Hour},
			Storage: StorageConfig{Backend: "minio", AccessKey: "a", SecretKey: "b", ImagesBucket: "i", DocumentsBucket: "d"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing secret", mutate: func(c *Config) { c.Auth.JWTSecret = " " }, wantErr: "JWT_SECRET"},
		{name: "mysql without host", mutate: func(c *Config) { c.DB.Host = "" }, wantErr: "DB_HOST"},
		{name: "cloud sql socket", mutate: func(c *Config) { c.DB.Host = ""; c.DB.InstanceConnectionName = "p:r:i" }},
		{name: "unknown driver", mutate: func(c *Config) { c.DB.Driver = "postgres" }, wantErr: "DB_DRIVER"},
		{name: "minio without keys", mutate: func(c *Config) { c.Storage.SecretKey = "" }, wantErr: "MINIO_ACCESS_KEY"},
		{name: "unknown backend", mutate: func(c *Config) { c.Storage.Backend = "ftp" }, wantErr: "STORAGE_BACKEND"},
		{name: "zero ttl", mutate: func(c *Config) { c.Auth.ResetTTL = 0 }, wantErr: "AUTH_RESET_TTL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
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
