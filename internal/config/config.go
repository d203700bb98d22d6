package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For splitting list values
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
	"github.com/sirupsen/logrus"
)

// Config holds the application configuration
type Config struct {
	AppPort    string // Application port
	DBUser     string // Database user
	DBPassword string // Database password
	DBHost     string // Database host
	DBPort     string // Database port
	DBName     string // Database name
	RedisAddr  string // Redis server address
	RedisPass  string // Redis password
	RedisDB    int    // Redis database number
	IsProd     bool   // Is production environment

	SessionSecret string        // Key used to sign session cookies
	SessionTTL    time.Duration // Session lifetime
	SessionSecure bool          // Send the session cookie over HTTPS only
	CookieDomain  string        // Session cookie domain, empty for host-only

	AdminPassword string // Password of the built-in administrative account

	CORSAllowedOrigins string // Comma-separated list, empty allows the request origin

	RabbitMQURL      string // Broker for order events, empty disables publishing
	OrderEventsQueue string // Queue receiving order.placed events

	CatalogCacheTTL time.Duration // TTL of cached catalog reads
	AuthRateLimit   float64       // Allowed auth requests per second per client IP
	AuthRateBurst   int           // Burst size for auth requests
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return &Config{
		AppPort:    getenv("APP_PORT", "3000"),
		DBUser:     getenv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBHost:     getenv("DB_HOST", "127.0.0.1"),
		DBPort:     getenv("DB_PORT", "3306"),
		DBName:     getenv("DB_NAME", "storefront"),
		RedisAddr:  getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPass:  os.Getenv("REDIS_PASS"),
		RedisDB:    getint("REDIS_DB", 0),
		IsProd:     os.Getenv("IS_PROD") == "true",

		SessionSecret: getenv("SESSION_SECRET", "storefront-dev-session-secret"),
		SessionTTL:    getdur("SESSION_TTL", 24*time.Hour),
		SessionSecure: os.Getenv("SESSION_SECURE") == "true",
		CookieDomain:  os.Getenv("COOKIE_DOMAIN"),

		AdminPassword: getenv("ADMIN_PASSWORD", "Password123"),

		CORSAllowedOrigins: os.Getenv("CORS_ALLOWED_ORIGINS"),

		RabbitMQURL:      os.Getenv("RABBITMQ_URL"),
		OrderEventsQueue: getenv("ORDER_EVENTS_QUEUE", "order.placed"),

		CatalogCacheTTL: getdur("CATALOG_CACHE_TTL", 60*time.Second),
		AuthRateLimit:   getfloat("AUTH_RATE_LIMIT", 5),
		AuthRateBurst:   getint("AUTH_RATE_BURST", 10),
	}
}

// MySQLDSN returns the Data Source Name used by the MySQL driver
func (c *Config) MySQLDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true&charset=utf8mb4"
}

// CORSOrigins returns the allowed origins as a slice
func (c *Config) CORSOrigins() []string {
	var res []string
	for _, p := range strings.Split(c.CORSAllowedOrigins, ",") {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}
	return res
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			logrus.Warnf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getfloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			logrus.Warnf("invalid float for %s: %v, using default %v", key, err, def)
			return def
		}
		return f
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			logrus.Warnf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}
