package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// Recognised secret sources for the JWT signing key
const (
	SecretSourceInline = "inline"
	SecretSourceEnv    = "env"
)

// Recognised response renderer modes
const (
	RendererJSON   = "json"
	RendererPretty = "pretty"
)

const developmentSigningKey = "storefront-dev-secret-key"

// DBConfig holds database configuration
type DBConfig struct {
	Driver          string
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	Path            string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// GetDSN returns the PostgreSQL connection string
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         string
	Env          string
	AllowedHosts []string
	RendererMode string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SecretSource string
	SigningKey   string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string
}

// Config holds all configuration
type Config struct {
	DB      DBConfig
	Server  ServerConfig
	JWT     JWTConfig
	Log     LogConfig
	Metrics MetricsConfig
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not returning error as .env file is optional
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	config := &Config{
		DB: DBConfig{
			Driver:          getEnv("DB_DRIVER", "postgres"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "storefront"),
			Password:        getEnv("DB_PASSWORD", "password"),
			DBName:          getEnv("DB_NAME", "storefront"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			Path:            getEnv("DB_PATH", "storefront.db"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		},
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Env:          getEnv("APP_ENV", "development"),
			AllowedHosts: getEnvAsList("ALLOWED_HOSTS", []string{"*"}),
			RendererMode: getEnv("RENDERER_MODE", RendererJSON),
		},
		JWT: JWTConfig{
			SecretSource: getEnv("JWT_SECRET_SOURCE", SecretSourceInline),
			SigningKey:   getEnv("JWT_SIGNING_KEY", ""),
			AccessTTL:    getEnvAsDuration("JWT_ACCESS_TTL", 15*time.Minute),
			RefreshTTL:   getEnvAsDuration("JWT_REFRESH_TTL", 24*time.Hour),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", "storefront"),
		},
	}

	if err := config.resolveSecret(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// resolveSecret applies the secret source: env requires JWT_SIGNING_KEY, inline falls back to a dev key
func (c *Config) resolveSecret() error {
	switch c.JWT.SecretSource {
	case SecretSourceEnv:
		if c.JWT.SigningKey == "" {
			return fmt.Errorf("JWT_SIGNING_KEY must be set when JWT_SECRET_SOURCE=%s", SecretSourceEnv)
		}
	case SecretSourceInline:
		if c.JWT.SigningKey == "" {
			c.JWT.SigningKey = developmentSigningKey
		}
	default:
		return fmt.Errorf("unknown JWT_SECRET_SOURCE %q", c.JWT.SecretSource)
	}
	return nil
}

// Validate rejects unknown option values
func (c *Config) Validate() error {
	switch c.Server.RendererMode {
	case RendererJSON, RendererPretty:
	default:
		return fmt.Errorf("unknown RENDERER_MODE %q", c.Server.RendererMode)
	}
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DB.Driver)
	}
	if len(c.Server.AllowedHosts) == 0 {
		return fmt.Errorf("ALLOWED_HOSTS must not be empty")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	if c.Server.Env == "production" && c.JWT.SecretSource != SecretSourceEnv {
		return fmt.Errorf("production requires JWT_SECRET_SOURCE=%s", SecretSourceEnv)
	}
	return nil
}

// LogConfig returns the configuration as a zap logger-friendly format
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("environment", c.Server.Env),
		zap.String("db_driver", c.DB.Driver),
		zap.String("db_host", c.DB.Host),
		zap.String("db_port", c.DB.Port),
		zap.String("db_user", c.DB.User),
		zap.String("db_name", c.DB.DBName),
		zap.String("server_port", c.Server.Port),
		zap.Strings("allowed_hosts", c.Server.AllowedHosts),
		zap.String("renderer_mode", c.Server.RendererMode),
		zap.String("secret_source", c.JWT.SecretSource),
	}
}

// Helper function to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as integers
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as durations
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get comma separated environment variables
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// Helper function to get environment variables as log levels
func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	valueStr := getEnv(key, "")
	switch valueStr {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
