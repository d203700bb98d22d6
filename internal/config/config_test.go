package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "SESSION_TTL", "ADMIN_PASSWORD", "CATALOG_CACHE_TTL", "AUTH_RATE_BURST"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig()
	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "Password123", cfg.AdminPassword)
	assert.Equal(t, 60*time.Second, cfg.CatalogCacheTTL)
	assert.Equal(t, 10, cfg.AuthRateBurst)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "8081")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("SESSION_SECURE", "true")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg := LoadConfig()
	assert.Equal(t, "8081", cfg.AppPort)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.SessionSecure)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins())
}

func TestMySQLDSN(t *testing.T) {
	cfg := &Config{DBUser: "shop", DBPassword: "pw", DBHost: "db", DBPort: "3306", DBName: "storefront"}
	assert.Equal(t, "shop:pw@tcp(db:3306)/storefront?parseTime=true&charset=utf8mb4", cfg.MySQLDSN())
}
