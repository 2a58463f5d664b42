package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"STORE_DRIVER", "MONGO_URI", "MONGO_DB", "FRONTEND_ORIGINS", "TZ", "CACHE_TTL_SECONDS", "ADMIN_PASSWORD_HASH", "JWT_SECRET"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, "content", cfg.MongoDB)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.FrontendOrigins)
	assert.Equal(t, "UTC", cfg.Timezone.String())
	assert.Equal(t, 60, cfg.CacheTTLSeconds)
	assert.False(t, cfg.AdminAuthEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("MONGO_URI", "mongodb://db:27017/site/extra")
	t.Setenv("MONGO_DB", "")
	t.Setenv("FRONTEND_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("TZ", "UTC")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, "site", cfg.MongoDB)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.FrontendOrigins)
	assert.True(t, cfg.CookieSecure)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("TZ", "UTC")

	_, err := Load()
	assert.Error(t, err)
}
