package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigMethods(t *testing.T) {
	t.Run("Addr returns formatted port", func(t *testing.T) {
		cfg := &Config{Port: 3000}
		assert.Equal(t, ":3000", cfg.Addr())
	})

	t.Run("LinkSessionTTL converts seconds to duration", func(t *testing.T) {
		cfg := &Config{LinkSessionTTLSeconds: 300}
		assert.Equal(t, 5*time.Minute, cfg.LinkSessionTTL())
	})

	t.Run("PhoneCredentialTTL converts seconds to duration", func(t *testing.T) {
		cfg := &Config{PhoneCredentialTTLSeconds: 2592000}
		assert.Equal(t, 30*24*time.Hour, cfg.PhoneCredentialTTL())
	})
}

func TestValidate(t *testing.T) {
	t.Run("rejects short JWT secret in production", func(t *testing.T) {
		cfg := &Config{JWTSecret: "short"}
		assert.Error(t, cfg.Validate(true))
	})

	t.Run("rejects known weak secret in production", func(t *testing.T) {
		cfg := &Config{JWTSecret: "change-me"}
		assert.Error(t, cfg.Validate(true))
	})

	t.Run("allows short secret outside production", func(t *testing.T) {
		cfg := &Config{JWTSecret: "dev"}
		assert.NoError(t, cfg.Validate(false))
	})

	t.Run("requires redirect URI when Google is configured", func(t *testing.T) {
		cfg := &Config{GoogleClientID: "client-id"}
		assert.Error(t, cfg.Validate(false))

		cfg.GoogleRedirectURI = "http://localhost:8080/auth/google/callback"
		assert.NoError(t, cfg.Validate(false))
	})
}

func TestLoad(t *testing.T) {
	originalEnv := map[string]string{
		"PORT":                         os.Getenv("PORT"),
		"DATABASE_URL":                 os.Getenv("DATABASE_URL"),
		"REDIS_URL":                    os.Getenv("REDIS_URL"),
		"JWT_SECRET":                   os.Getenv("JWT_SECRET"),
		"LINK_SESSION_TTL_SECONDS":     os.Getenv("LINK_SESSION_TTL_SECONDS"),
		"PHONE_CREDENTIAL_TTL_SECONDS": os.Getenv("PHONE_CREDENTIAL_TTL_SECONDS"),
		"LOG_LEVEL":                    os.Getenv("LOG_LEVEL"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	t.Run("loads config with defaults", func(t *testing.T) {
		os.Setenv("DATABASE_URL", "postgres://localhost/test")
		os.Setenv("REDIS_URL", "redis://localhost:6379")
		os.Setenv("JWT_SECRET", "test-secret")
		os.Unsetenv("PORT")
		os.Unsetenv("LINK_SESSION_TTL_SECONDS")
		os.Unsetenv("PHONE_CREDENTIAL_TTL_SECONDS")
		os.Unsetenv("LOG_LEVEL")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "postgres://localhost/test", cfg.DatabaseURL)
		assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
		assert.Equal(t, 300, cfg.LinkSessionTTLSeconds)
		assert.Equal(t, 2592000, cfg.PhoneCredentialTTLSeconds)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("loads custom values", func(t *testing.T) {
		os.Setenv("DATABASE_URL", "postgres://localhost/test")
		os.Setenv("REDIS_URL", "redis://localhost:6379")
		os.Setenv("JWT_SECRET", "test-secret")
		os.Setenv("PORT", "3000")
		os.Setenv("LINK_SESSION_TTL_SECONDS", "600")
		os.Setenv("LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 3000, cfg.Port)
		assert.Equal(t, 600, cfg.LinkSessionTTLSeconds)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("fails without required DATABASE_URL", func(t *testing.T) {
		os.Unsetenv("DATABASE_URL")
		os.Setenv("REDIS_URL", "redis://localhost:6379")
		os.Setenv("JWT_SECRET", "test-secret")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("fails without required JWT_SECRET", func(t *testing.T) {
		os.Setenv("DATABASE_URL", "postgres://localhost/test")
		os.Setenv("REDIS_URL", "redis://localhost:6379")
		os.Unsetenv("JWT_SECRET")

		_, err := Load()
		assert.Error(t, err)
	})
}
