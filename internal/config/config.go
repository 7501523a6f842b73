package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	TokenStrategyJWT    = "jwt"
	TokenStrategyPaseto = "paseto"

	minJWTSecretLen = 32
	pasetoKeyLen    = 32
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port            string
	Env             string // dev or prod
	LogLevel        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TrustedOrigins  []string // CORS allowed origins
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	ChannelBinding string // "require" for Neon DB, empty for local
	MaxOpenConns   int
	MaxIdleConns   int
	AutoMigrate    bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	// TokenStrategy selects the bearer token format: "jwt" (HS256) or "paseto" (v4.local).
	TokenStrategy string
	JWTSecret     []byte
	// PASETO symmetric key (must be 32 bytes for v4.local)
	PasetoKey     []byte
	TokenDuration time.Duration
}

type RateLimitConfig struct {
	Enabled     bool
	MaxRequests int
	Window      time.Duration
}

// Load reads configuration from environment variables, loading a .env file
// first when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "3000"),
			Env:             getEnv("APP_ENV", "dev"),
			LogLevel:        getEnv("LOG_LEVEL", "info"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			TrustedOrigins:  getSliceEnv("TRUSTED_ORIGINS", []string{"http://localhost:5500"}),
		},
		Database: databaseFromEnv(),
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			TokenStrategy: strings.ToLower(getEnv("AUTH_TOKEN_STRATEGY", TokenStrategyJWT)),
			JWTSecret:     []byte(getEnv("JWT_SECRET", "")),
			TokenDuration: getDurationEnv("TOKEN_DURATION", 24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			Enabled:     getBoolEnv("RATE_LIMIT_ENABLED", true),
			MaxRequests: getIntEnv("RATE_LIMIT_MAX_REQUESTS", 10),
			Window:      getDurationEnv("RATE_LIMIT_WINDOW", 15*time.Minute),
		},
	}

	pasetoKey, err := decodeKey(getEnv("PASETO_KEY", ""))
	if err != nil {
		return nil, fmt.Errorf("PASETO_KEY: %w", err)
	}
	cfg.Auth.PasetoKey = pasetoKey

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDatabase reads only the database settings. Tools that never serve
// requests use it so they do not need auth secrets.
func LoadDatabase() DatabaseConfig {
	_ = godotenv.Load()
	return databaseFromEnv()
}

func databaseFromEnv() DatabaseConfig {
	return DatabaseConfig{
		Host:           getEnv("DB_HOST", "localhost"),
		Port:           getEnv("DB_PORT", "5432"),
		User:           getEnv("DB_USER", "postgres"),
		Password:       getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "neonkeys"),
		SSLMode:        getEnv("DB_SSLMODE", "disable"),
		ChannelBinding: getEnv("DB_CHANNEL_BINDING", ""),
		MaxOpenConns:   getIntEnv("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:   getIntEnv("DB_MAX_IDLE_CONNS", 5),
		AutoMigrate:    getBoolEnv("DB_AUTO_MIGRATE", false),
	}
}

// Validate checks the settings that have no safe default.
func (c *Config) Validate() error {
	switch c.Auth.TokenStrategy {
	case TokenStrategyJWT:
		if len(c.Auth.JWTSecret) < minJWTSecretLen {
			return fmt.Errorf("JWT_SECRET must be at least %d bytes, got %d", minJWTSecretLen, len(c.Auth.JWTSecret))
		}
	case TokenStrategyPaseto:
		if len(c.Auth.PasetoKey) != pasetoKeyLen {
			return fmt.Errorf("PASETO_KEY must be exactly %d bytes, got %d", pasetoKeyLen, len(c.Auth.PasetoKey))
		}
	default:
		return fmt.Errorf("AUTH_TOKEN_STRATEGY must be %q or %q, got %q", TokenStrategyJWT, TokenStrategyPaseto, c.Auth.TokenStrategy)
	}

	if c.Auth.TokenDuration <= 0 {
		return fmt.Errorf("TOKEN_DURATION must be positive")
	}

	if c.RateLimit.Enabled && (c.RateLimit.MaxRequests <= 0 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("RATE_LIMIT_MAX_REQUESTS and RATE_LIMIT_WINDOW must be positive when rate limiting is enabled")
	}

	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)

	// Add channel_binding if configured (required for Neon DB)
	if c.ChannelBinding != "" {
		connStr += fmt.Sprintf(" channel_binding=%s", c.ChannelBinding)
	}

	return connStr
}

// Address returns Redis connection address (host:port)
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}

// decodeKey accepts a raw 32-character key or a "base64:"-prefixed one.
func decodeKey(value string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	if encoded, ok := strings.CutPrefix(value, "base64:"); ok {
		key, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid base64: %w", err)
		}
		return key, nil
	}
	return []byte(value), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolValue
}

// getDurationEnv reads a number of seconds, or a Go duration string such as "24h".
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return d
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Split by comma and trim whitespace
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
