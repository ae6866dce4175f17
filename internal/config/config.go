package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Price unit policies. The basic policy is the older revision that only
// accepted hourly and daily pricing.
const (
	PriceUnitPolicyExtended = "extended"
	PriceUnitPolicyBasic    = "basic"
)

// Config holds the environment driven settings of the service
type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	DBHost            string
	DBPort            string
	DBUser            string
	DBPass            string
	DBName            string
	DBSSLMode         string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	PriceUnitPolicy string
	PublicDir       string

	AuditWorkers int
	AuditBuffer  int

	RateLimitRPM       int
	CORSAllowedOrigins []string

	AutoMigrate    bool
	MigrationsPath string
}

// getEnv returns the first non-empty value among keys, or defaultVal
func getEnv(defaultVal string, keys ...string) string {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func splitList(val string) []string {
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoadConfig loads the whole configuration. The PG* names used by libpq
// tooling are accepted as fallbacks for the DB_* keys.
func LoadConfig() *Config {
	policy := strings.ToLower(getEnv(PriceUnitPolicyExtended, "PRICE_UNIT_POLICY"))
	if policy != PriceUnitPolicyBasic {
		policy = PriceUnitPolicyExtended
	}

	return &Config{
		AppEnv:   getEnv("development", "APP_ENV"),
		Port:     getEnv("3000", "PORT", "IPORT"),
		LogLevel: getEnv("info", "LOG_LEVEL"),

		DBHost:            getEnv("localhost", "DB_HOST", "PGHOST"),
		DBPort:            getEnv("5432", "DB_PORT", "PGPORT"),
		DBUser:            getEnv("postgres", "DB_USER", "PGUSER"),
		DBPass:            getEnv("postgres", "DB_PASS", "PGPASSWORD"),
		DBName:            getEnv("bookingdb", "DB_NAME", "PGDATABASE"),
		DBSSLMode:         getEnv("disable", "DB_SSLMODE"),
		DBMaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),

		PriceUnitPolicy: policy,
		PublicDir:       getEnv("./public", "PUBLIC_DIR"),

		AuditWorkers: getEnvInt("AUDIT_WORKERS", 2),
		AuditBuffer:  getEnvInt("AUDIT_BUFFER", 100),

		RateLimitRPM:       getEnvInt("RATE_LIMIT_RPM", 120),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),

		AutoMigrate:    getEnvBool("AUTO_MIGRATE", false),
		MigrationsPath: getEnv("./migrations", "MIGRATIONS_PATH"),
	}
}

// GetDSN returns the postgres connection URL
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// IsDevelopment reports whether the service runs with development defaults
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
