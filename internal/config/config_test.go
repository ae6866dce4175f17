package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "IPORT", "DB_HOST", "PGHOST", "PRICE_UNIT_POLICY", "AUTO_MIGRATE", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, PriceUnitPolicyExtended, cfg.PriceUnitPolicy)
	assert.False(t, cfg.AutoMigrate)
	assert.Nil(t, cfg.CORSAllowedOrigins)
	assert.Equal(t, 30*time.Minute, cfg.DBConnMaxLifetime)
}

func TestLoadConfig_Fallbacks(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("IPORT", "4100")
	t.Setenv("DB_HOST", "")
	t.Setenv("PGHOST", "db.internal")

	cfg := LoadConfig()

	assert.Equal(t, "4100", cfg.Port)
	assert.Equal(t, "db.internal", cfg.DBHost)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("IPORT", "4100")
	t.Setenv("PRICE_UNIT_POLICY", "BASIC")
	t.Setenv("AUDIT_WORKERS", "4")
	t.Setenv("AUTO_MIGRATE", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("DB_CONN_MAX_LIFETIME", "90s")

	cfg := LoadConfig()

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, PriceUnitPolicyBasic, cfg.PriceUnitPolicy)
	assert.Equal(t, 4, cfg.AuditWorkers)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 90*time.Second, cfg.DBConnMaxLifetime)
}

func TestLoadConfig_UnknownPolicyFallsBackToExtended(t *testing.T) {
	t.Setenv("PRICE_UNIT_POLICY", "weekly-only")

	assert.Equal(t, PriceUnitPolicyExtended, LoadConfig().PriceUnitPolicy)
}

func TestGetDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPass: "p", DBHost: "h", DBPort: "5433", DBName: "n", DBSSLMode: "require"}

	assert.Equal(t, "postgres://u:p@h:5433/n?sslmode=require", cfg.GetDSN())
}
