package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Logging    LoggingConfig
	OpenAI     OpenAIConfig
	Retry      RetryConfig
	Evaluation EvaluationConfig
	Pricing    PricingConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // 完整的数据库连接字符串（优先使用）
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level         string
	Format        string // "text" (tint) or "json"
	FluentEnabled bool
	FluentHost    string
	FluentPort    int
	FluentTag     string
}

// OpenAIConfig holds the scoring oracle (OpenAI-compatible endpoint) configuration
type OpenAIConfig struct {
	APIKey          string
	APIBase         string
	ChatModel       string
	ChatTemperature float64
	ChatMaxTokens   int
	JSONMode        bool // Send response_format=json_object
	SiteURL         string
	SiteName        string
	Timeout         int // seconds, per HTTP attempt
}

// RetryConfig holds the rate-limit retry policy
type RetryConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	Multiplier     float64
}

// EvaluationConfig holds per-evaluation limits
type EvaluationConfig struct {
	Timeout       time.Duration // Deadline around the whole retry sequence
	MaxConcurrent int           // Concurrent oracle calls across requests
	StrictRubric  bool          // Reject replies that break the rubric
}

// PricingConfig holds base price lookup configuration
type PricingConfig struct {
	Source           string // "static" or "postgres"
	DefaultBasePrice float64
}

const (
	maxRetryAttempts   = 10
	maxRetryMultiplier = 10.0
)

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", ""))),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "home_valuation"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 2),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Logging: LoggingConfig{
			Level:         getEnv("LOG_LEVEL", "info"),
			Format:        getEnv("LOG_FORMAT", "text"),
			FluentEnabled: getEnvAsBool("FLUENT_ENABLED", false),
			FluentHost:    getEnv("FLUENT_HOST", "127.0.0.1"),
			FluentPort:    getEnvAsInt("FLUENT_PORT", 24224),
			FluentTag:     getEnv("FLUENT_TAG_PREFIX", "home-valuation"),
		},
		OpenAI: OpenAIConfig{
			APIKey:          getEnv("OPENAI_API_KEY", ""),
			APIBase:         getEnv("OPENAI_API_URL", getEnv("OPENAI_API_BASE", "https://openrouter.ai/api/v1")),
			ChatModel:       getEnv("OPENAI_MODEL", getEnv("OPENAI_CHAT_MODEL", "deepseek/deepseek-r1-0528:free")),
			ChatTemperature: getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0.2),
			ChatMaxTokens:   getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", 8192),
			JSONMode:        getEnvAsBool("OPENAI_JSON_MODE", false),
			SiteURL:         getEnv("SITE_URL", "http://localhost:3000"),
			SiteName:        getEnv("SITE_NAME", "Home Buying Assistant"),
			Timeout:         getEnvAsInt("OPENAI_TIMEOUT", 60),
		},
		Retry: RetryConfig{
			MaxAttempts:    getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
			InitialBackoff: getEnvAsDuration("RETRY_INITIAL_BACKOFF", time.Second),
			Multiplier:     getEnvAsFloat("RETRY_MULTIPLIER", 2),
		},
		Evaluation: EvaluationConfig{
			Timeout:       getEnvAsDuration("EVALUATION_TIMEOUT", 90*time.Second),
			MaxConcurrent: getEnvAsInt("EVALUATION_MAX_CONCURRENT", 4),
			StrictRubric:  getEnvAsBool("SCORING_STRICT_RUBRIC", false),
		},
		Pricing: PricingConfig{
			Source:           getEnv("PRICING_SOURCE", "static"),
			DefaultBasePrice: getEnvAsFloat("PRICING_DEFAULT_BASE_PRICE", 20000),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Retry.MaxAttempts < 1 || c.Retry.MaxAttempts > maxRetryAttempts {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be between 1 and %d, got %d", maxRetryAttempts, c.Retry.MaxAttempts)
	}
	if c.Retry.Multiplier < 1 || c.Retry.Multiplier > maxRetryMultiplier {
		return fmt.Errorf("RETRY_MULTIPLIER must be between 1 and %g, got %g", maxRetryMultiplier, c.Retry.Multiplier)
	}
	if c.Evaluation.MaxConcurrent < 1 {
		return fmt.Errorf("EVALUATION_MAX_CONCURRENT must be at least 1, got %d", c.Evaluation.MaxConcurrent)
	}
	if c.Pricing.Source != "static" && c.Pricing.Source != "postgres" {
		return fmt.Errorf("PRICING_SOURCE must be static or postgres, got %q", c.Pricing.Source)
	}
	if c.Pricing.DefaultBasePrice <= 0 {
		return fmt.Errorf("PRICING_DEFAULT_BASE_PRICE must be positive")
	}
	return nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	// 优先使用完整的 DSN
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid bool value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration value for %s, using default %s", key, defaultValue)
		return defaultValue
	}
	return value
}
