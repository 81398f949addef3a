package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("FRONTEND_URL", "")
	t.Setenv("DIGEST_TIME", "")
	t.Setenv("JWT_TTL_HOURS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"*"}, cfg.FrontendOrigins)
	assert.Equal(t, "08:00", cfg.DigestTime)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("FRONTEND_URL", "https://a.example, https://b.example")
	t.Setenv("ALLOW_ADMIN_SIGNUP", "true")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.FrontendOrigins)
	assert.True(t, cfg.AllowAdminSignup)
	assert.True(t, cfg.IsProduction())
}

func TestLoadRejectsBadSettings(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s")
		t.Setenv("DB_DRIVER", "mongo")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("bad digest time", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s")
		t.Setenv("DB_DRIVER", "sqlite")
		t.Setenv("DIGEST_TIME", "25:00")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("07:45")
	require.NoError(t, err)
	assert.Equal(t, 7, h)
	assert.Equal(t, 45, m)

	for _, bad := range []string{"", "7", "07:60", "aa:10"} {
		_, _, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}
