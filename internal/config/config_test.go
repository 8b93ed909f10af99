package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpiry(t *testing.T) {
	d, err := ParseExpiry("30d")
	require.NoError(t, err)
	assert.Equal(t, 30*24*time.Hour, d)

	d, err = ParseExpiry("90m")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, d)

	for _, bad := range []string{"", "xd", "-1h", "0d", "soon"} {
		_, err := ParseExpiry(bad)
		assert.Error(t, err, bad)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_EXPIRE", "")
	t.Setenv("PORT", "")
	t.Setenv("FRONTEND_URL", "https://lk.example.com")
	t.Setenv("RATE_LIMIT_MAX", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, 30*24*time.Hour, cfg.JWTExpire)
	assert.Equal(t, 100, cfg.RateLimitMax)
	assert.Equal(t, 10*time.Minute, cfg.RateLimitWindow)
	assert.Contains(t, cfg.AllowedOrigins, "https://lk.example.com")
	assert.Contains(t, cfg.AllowedOrigins, "http://localhost:5173")
}

func TestValidate(t *testing.T) {
	cfg := &Config{StoreDriver: StoreMongo, JWTSecret: "s"}
	assert.Error(t, cfg.Validate(), "mongo without URI")

	cfg.MongoURI = "mongodb://localhost:27017"
	assert.NoError(t, cfg.Validate())

	cfg.JWTSecret = ""
	assert.Error(t, cfg.Validate())

	cfg = &Config{StoreDriver: "sqlite", JWTSecret: "s"}
	assert.Error(t, cfg.Validate())
}
