package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	JWT      JWTConfig
	Cookie   CookieConfig
	Redis    RedisConfig
	Cron     CronConfig
	Metrics  MetricsConfig
	Limits   RateLimitConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	Timezone string

	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnectRetries  int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
	ResetTokenMins   int
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// RedisConfig holds the optional plafond cache configuration
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Timeout  time.Duration
}

// CronConfig holds housekeeping schedules (robfig cron spec strings)
type CronConfig struct {
	Enabled                bool
	TokenCleanupSpec       string
	NotificationPurgeSpec  string
	NotificationRetainDays int
}

// MetricsConfig holds Prometheus exposure settings
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// RateLimitConfig holds per-IP request budgets per minute
type RateLimitConfig struct {
	General int
	Auth    int
	Strict  int
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "8080"),
		Database: loadDatabaseConfig(appMode),
		JWT:      loadJWTConfig(appMode),
		Cookie:   loadCookieConfig(appMode),
		Redis:    loadRedisConfig(appMode),
		Cron:     loadCronConfig(),
		Metrics:  loadMetricsConfig(),
		Limits:   loadRateLimitConfig(),
	}

	if config.IsProd() && strings.HasPrefix(config.JWT.Secret, "default_") {
		return nil, fmt.Errorf("PROD_JWT_SECRET must be set in prod mode")
	}

	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "eloan_must"),
		Timezone: getEnv("DB_TIMEZONE", "Asia/Jakarta"),

		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 50),
		ConnMaxLifetime: time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 60)) * time.Minute,
		ConnectRetries:  getEnvInt("DB_CONNECT_RETRIES", 5),
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", "default_secret"),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", "default_refresh_secret"),
		AccessTokenMins:  getEnvInt("ACCESS_TOKEN_MINUTES", 60),
		RefreshTokenDays: getEnvInt("REFRESH_TOKEN_DAYS", 7),
		ResetTokenMins:   getEnvInt("RESET_TOKEN_MINUTES", 30),
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	secure, _ := strconv.ParseBool(getEnv(modePrefix(mode)+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

// loadRedisConfig loads the cache config based on mode
func loadRedisConfig(mode string) RedisConfig {
	prefix := modePrefix(mode)
	enabled, _ := strconv.ParseBool(getEnv("REDIS_ENABLED", "false"))

	return RedisConfig{
		Enabled:  enabled,
		Addr:     getEnv(prefix+"REDIS_ADDR", "localhost:6379"),
		Password: getEnv(prefix+"REDIS_PASS", ""),
		DB:       getEnvInt(prefix+"REDIS_DB", 0),
		TTL:      time.Duration(getEnvInt("REDIS_TTL_SECONDS", 300)) * time.Second,
		Timeout:  3 * time.Second,
	}
}

// loadCronConfig loads housekeeping schedules
func loadCronConfig() CronConfig {
	enabled, _ := strconv.ParseBool(getEnv("CRON_ENABLED", "true"))

	return CronConfig{
		Enabled:                enabled,
		TokenCleanupSpec:       getEnv("CRON_TOKEN_CLEANUP", "0 3 * * *"),
		NotificationPurgeSpec:  getEnv("CRON_NOTIFICATION_PURGE", "30 3 * * *"),
		NotificationRetainDays: getEnvInt("NOTIFICATION_RETAIN_DAYS", 90),
	}
}

// loadMetricsConfig loads Prometheus settings
func loadMetricsConfig() MetricsConfig {
	enabled, _ := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))

	return MetricsConfig{
		Enabled: enabled,
		Path:    getEnv("METRICS_PATH", "/metrics"),
	}
}

// loadRateLimitConfig loads request budgets
func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		General: getEnvInt("RATE_LIMIT_GENERAL", 100),
		Auth:    getEnvInt("RATE_LIMIT_AUTH", 5),
		Strict:  getEnvInt("RATE_LIMIT_STRICT", 3),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with default value
func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://admin.eloanmust.id"
	}
	return origins
}
