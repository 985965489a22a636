package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	Search     SearchConfig
	Logging    LoggingConfig
	LLM        LLMConfig
	Cache      CacheConfig
	Vocabulary VocabularyConfig
}

// DatabaseConfig holds listing store configuration
type DatabaseConfig struct {
	Driver             string // postgres or sqlite
	DSN                string // 完整的数据库连接字符串（优先使用）
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	SQLitePath         string
	MaxConnections     int
	MaxIdleConnections int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// SearchConfig holds search-related configuration
type SearchConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LLMConfig holds the OpenAI-compatible chat endpoint configuration
type LLMConfig struct {
	APIKey          string
	APIBase         string
	ChatModel       string
	ChatTemperature float64
	ChatTopP        float64
	ChatMaxTokens   int
	ChatExtraBody   string // JSON object merged into the request body (e.g., {"chat_template_kwargs":{"thinking":true}})
	NoMatchReply    string
	Timeout         int
	MaxRetries      int
	Enabled         bool
}

// CacheConfig holds the Redis search cache configuration
type CacheConfig struct {
	Addr       string
	Password   string
	DB         int
	PoolSize   int
	Prefix     string
	TTLSeconds int
	Enabled    bool
}

// VocabularyConfig points at an optional YAML override of the built-in tables
type VocabularyConfig struct {
	File string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	apiKey := getEnv("OPENAI_API_KEY", getEnv("DEEPSEEK_API_KEY", ""))
	redisAddr := getEnv("REDIS_ADDR", "")

	cfg := &Config{
		Database: DatabaseConfig{
			Driver: strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			// 优先使用完整的 DSN (DATABASE_URL, POSTGRESQL_URI, PG_DSN)
			DSN:                getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", ""))),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "housing"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			SQLitePath:         getEnv("SQLITE_PATH", "housing.db"),
			MaxConnections:     getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("DB_MAX_IDLE_CONNECTIONS", 5),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 5000),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization,X-Request-ID"),
		},
		Search: SearchConfig{
			DefaultLimit: getEnvAsInt("SEARCH_DEFAULT_LIMIT", 5),
			MaxLimit:     getEnvAsInt("SEARCH_MAX_LIMIT", 50),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		LLM: LLMConfig{
			APIKey:          apiKey,
			APIBase:         getEnv("OPENAI_API_BASE", getEnv("DEEPSEEK_API_BASE", "https://api.deepseek.com/v1")),
			ChatModel:       getEnv("OPENAI_CHAT_MODEL", "deepseek-chat"),
			ChatTemperature: getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0.3),
			ChatTopP:        getEnvAsFloat("OPENAI_CHAT_TOP_P", 0),
			ChatMaxTokens:   getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", 2048),
			ChatExtraBody:   getEnv("OPENAI_CHAT_EXTRA_BODY", ""),
			NoMatchReply:    getEnv("LLM_NO_MATCH_REPLY", "No matching listings were found."),
			Timeout:         getEnvAsInt("OPENAI_TIMEOUT", 30),
			MaxRetries:      getEnvAsInt("OPENAI_MAX_RETRIES", 2),
			Enabled:         apiKey != "",
		},
		Cache: CacheConfig{
			Addr:       redisAddr,
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvAsInt("REDIS_DB", 0),
			PoolSize:   getEnvAsInt("REDIS_POOL_SIZE", 10),
			Prefix:     getEnv("CACHE_PREFIX", "housing:"),
			TTLSeconds: getEnvAsInt("CACHE_TTL_SECONDS", 60),
			Enabled:    redisAddr != "" && getEnvAsBool("CACHE_ENABLED", true),
		},
		Vocabulary: VocabularyConfig{
			File: getEnv("VOCABULARY_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail later at runtime
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite)", c.Database.Driver)
	}
	if c.Search.DefaultLimit <= 0 {
		return fmt.Errorf("SEARCH_DEFAULT_LIMIT must be positive, got %d", c.Search.DefaultLimit)
	}
	if c.Search.MaxLimit < c.Search.DefaultLimit {
		return fmt.Errorf("SEARCH_MAX_LIMIT (%d) must not be below SEARCH_DEFAULT_LIMIT (%d)", c.Search.MaxLimit, c.Search.DefaultLimit)
	}
	if len(c.Server.Origins()) == 0 {
		return fmt.Errorf("CORS_ALLOWED_ORIGINS lists no origins (use * to allow all)")
	}
	return nil
}

// Origins returns the allowed CORS origins
func (s ServerConfig) Origins() []string { return splitList(s.AllowedOrigins) }

// Methods returns the allowed CORS methods
func (s ServerConfig) Methods() []string { return splitList(s.AllowedMethods) }

// Headers returns the allowed CORS request headers
func (s ServerConfig) Headers() []string { return splitList(s.AllowedHeaders) }

// GetDatabaseDSN returns the connection string for the configured driver
func (c *Config) GetDatabaseDSN() string {
	if c.Database.Driver == "sqlite" {
		return c.Database.SQLitePath
	}

	// 优先使用完整的 DSN
	if c.Database.DSN != "" {
		return c.Database.DSN
	}

	// 否则从各个字段组装 DSN
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// Helper functions

// splitList parses a comma separated setting, ignoring blanks
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

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
		slog.Warn("invalid integer value, using default", "key", key, "default", defaultValue)
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
		slog.Warn("invalid float value, using default", "key", key, "default", defaultValue)
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
		slog.Warn("invalid boolean value, using default", "key", key, "default", defaultValue)
		return defaultValue
	}
	return value
}
