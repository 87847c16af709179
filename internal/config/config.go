package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"creditoya-web/internal/pkg/logger"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	LogLevel string
	Gateway  GatewayConfig
	Cookie   CookieConfig
	Pending  PendingConfig
	Database DatabaseConfig
	Redis    RedisConfig
}

// GatewayConfig describes the backend the proxy routes forward to
type GatewayConfig struct {
	BaseURL string
	Timeout time.Duration
}

// CookieConfig holds session cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
	MaxAge   time.Duration
}

// PendingConfig selects and sizes the pending-loan registry
type PendingConfig struct {
	Store    string // "mysql", "redis" or "memory"
	Lifetime time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// RedisConfig holds redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Log.Warn(".env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	gateway, err := loadGatewayConfig()
	if err != nil {
		return nil, err
	}

	pending, err := loadPendingConfig()
	if err != nil {
		return nil, err
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Gateway:  gateway,
		Cookie:   loadCookieConfig(appMode),
		Pending:  pending,
		Database: loadDatabaseConfig(appMode),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
	}

	return config, nil
}

func loadGatewayConfig() (GatewayConfig, error) {
	base := strings.TrimRight(strings.TrimSpace(os.Getenv("GATEWAY_API")), "/")
	if base == "" {
		return GatewayConfig{}, fmt.Errorf("GATEWAY_API is required")
	}

	secs, err := strconv.Atoi(getEnv("GATEWAY_TIMEOUT_SECONDS", "30"))
	if err != nil || secs <= 0 {
		return GatewayConfig{}, fmt.Errorf("invalid GATEWAY_TIMEOUT_SECONDS")
	}

	return GatewayConfig{BaseURL: base, Timeout: time.Duration(secs) * time.Second}, nil
}

func loadPendingConfig() (PendingConfig, error) {
	store := strings.ToLower(getEnv("PENDING_STORE", "memory"))
	switch store {
	case "mysql", "redis", "memory":
	default:
		return PendingConfig{}, fmt.Errorf("invalid PENDING_STORE: '%s' (must be 'mysql', 'redis' or 'memory')", store)
	}

	mins, err := strconv.Atoi(getEnv("PENDING_LOAN_MINUTES", "15"))
	if err != nil || mins <= 0 {
		return PendingConfig{}, fmt.Errorf("invalid PENDING_LOAN_MINUTES")
	}

	return PendingConfig{Store: store, Lifetime: time.Duration(mins) * time.Minute}, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "creditoya_web"),
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	secure, err := strconv.ParseBool(getEnv("COOKIE_SECURE", strconv.FormatBool(mode == "prod")))
	if err != nil {
		secure = mode == "prod"
	}

	hours, err := strconv.Atoi(getEnv("COOKIE_MAX_AGE_HOURS", "24"))
	if err != nil || hours <= 0 {
		hours = 24
	}

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "Lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
		MaxAge:   time.Duration(hours) * time.Hour,
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
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
		return "https://creditoya.space"
	}
	return origins
}
