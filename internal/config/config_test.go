package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"APP_ENV", "PORT", "SHUTDOWN_TIMEOUT", "STORE_DRIVER", "DB_USER", "DB_PASSWORD",
	"DB_HOST", "DB_NAME", "JWT_SECRET", "TOKEN_TTL", "RESET_TOKEN_TTL", "RESET_URL",
	"ALLOWED_ORIGINS", "OBJECT_BACKEND", "S3_BUCKET", "S3_REGION", "S3_ENDPOINT",
	"S3_ACCESS_KEY", "S3_SECRET_KEY", "PUBLIC_BASE_URL", "UPLOAD_DIR", "MAX_UPLOAD_MB",
}

// clearEnv blanks every key FromEnv reads; empty values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", DriverMemory)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, EnvLocal, cfg.Env)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 72*time.Hour, cfg.TokenTTL)
	assert.Equal(t, time.Hour, cfg.ResetTokenTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes())
	assert.Equal(t, "http://localhost:8080/uploads", cfg.ObjectStoreConfig().PublicBaseURL)
	assert.Equal(t, "dir", cfg.ObjectStoreConfig().Backend)
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PORT", "9000")
	t.Setenv("DB_USER", "notes")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "db:3306")
	t.Setenv("DB_NAME", "notes")
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("OBJECT_BACKEND", "s3")
	t.Setenv("S3_BUCKET", "avatars")
	t.Setenv("S3_ENDPOINT", "http://minio:9000")
	t.Setenv("MAX_UPLOAD_MB", "2")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, StorageConfig{
		Driver:   DriverMySQL,
		User:     "notes",
		Password: "secret",
		Host:     "db:3306",
		Name:     "notes",
	}, cfg.StorageConfig())
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)

	obj := cfg.ObjectStoreConfig()
	assert.Equal(t, "avatars", obj.Bucket)
	assert.Equal(t, "http://minio:9000", obj.Endpoint)
	assert.Empty(t, obj.PublicBaseURL)
	assert.Equal(t, int64(2<<20), cfg.MaxUploadBytes())
}

func TestFromEnvErrors(t *testing.T) {
	tests := map[string]map[string]string{
		"bad duration":     {"STORE_DRIVER": DriverMemory, "TOKEN_TTL": "soon"},
		"bad upload size":  {"STORE_DRIVER": DriverMemory, "MAX_UPLOAD_MB": "big"},
		"mysql without db": {"STORE_DRIVER": DriverMySQL},
		"unknown driver":   {"STORE_DRIVER": "mongo"},
		"unknown env":      {"STORE_DRIVER": DriverMemory, "APP_ENV": "staging"},
		"prod no secret":   {"STORE_DRIVER": DriverMySQL, "APP_ENV": EnvProd, "DB_USER": "u", "DB_NAME": "n"},
		"prod memory":      {"STORE_DRIVER": DriverMemory, "APP_ENV": EnvProd, "JWT_SECRET": "x"},
		"s3 no bucket":     {"STORE_DRIVER": DriverMemory, "OBJECT_BACKEND": "s3"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
