package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAPIDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://crm@localhost/crm")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")

	cfg := LoadAPI()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sync", cfg.DispatchMode)
	assert.Equal(t, 2*time.Second, cfg.DispatchPacing)
	assert.Equal(t, "91", cfg.GatewayCountryCode)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, uint32(10), cfg.BreakerMaxFailures)
	assert.False(t, cfg.AutoMigrate)
}

func TestLoadAPIOverrides(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://crm@localhost/crm")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("DISPATCH_MODE", "async")
	t.Setenv("DISPATCH_PACING", "500ms")
	t.Setenv("GATEWAY_BASE_URL", "http://gw.local")

	cfg := LoadAPI()
	assert.Equal(t, "async", cfg.DispatchMode)
	assert.Equal(t, 500*time.Millisecond, cfg.DispatchPacing)
	assert.Equal(t, "http://gw.local", cfg.GatewayBaseURL)
}

func TestLoadAPIMissingRequired(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("DB_DSN")
	os.Unsetenv("JWT_SECRET")
	require.Panics(t, func() { LoadAPI() })
}
