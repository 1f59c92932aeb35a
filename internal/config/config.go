package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Provider ProviderConfig
	Auth     AuthConfig
	Session  SessionConfig
	Logging  LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string
	Environment     string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// StoreConfig selects and configures the key-value backend
type StoreConfig struct {
	Backend         string // memory, postgres, sqlite, redis, mongo or azblob
	Namespace       string
	PostgresURL     string
	SQLitePath      string
	RedisURL        string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	EncryptionKey   string // base64, 32 bytes; empty disables at-rest encryption
	Blob            BlobConfig
}

// BlobConfig holds Azure Blob Storage configuration
type BlobConfig struct {
	AccountName      string
	AccountKey       string
	ConnectionString string
	Container        string
}

// ProviderConfig holds the advisory model provider configuration
type ProviderConfig struct {
	Name            string // openai or azure
	APIKey          string
	BaseURL         string
	Endpoint        string
	APIVersion      string
	Model           string
	Timeout         time.Duration
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// AuthConfig holds credential and token configuration
type AuthConfig struct {
	JWTSecret         string
	TokenTTL          time.Duration
	MinPasswordLength int
}

// SessionConfig holds per-client controller and rate limit configuration
type SessionConfig struct {
	MaxClients       int
	IdleTTL          time.Duration
	MaxConsultations int
	RateLimit        float64 // requests per second per client
	RateBurst        int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// Load reads configuration from .env files, environment variables and defaults
func Load() (*Config, error) {
	if err := loadDotEnv(".env.local", ".env"); err != nil {
		return nil, err
	}

	v := viper.New()

	// Set default values
	setDefaults(v)

	// Read from environment variables
	v.AutomaticEnv()

	// Bind specific environment variables
	bindEnvVars(v)

	// Unmarshal into config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv loads each file that exists. Earlier files win because godotenv
// never overrides variables that are already set.
func loadDotEnv(files ...string) error {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.shutdowntimeout", 30*time.Second)
	v.SetDefault("server.allowedorigins", []string{"*"})

	// Store defaults
	v.SetDefault("store.backend", "postgres")
	v.SetDefault("store.namespace", "aidoctor")
	v.SetDefault("store.sqlitepath", "data/aidoctor.db")
	v.SetDefault("store.mongodatabase", "aidoctor")
	v.SetDefault("store.mongocollection", "records")
	v.SetDefault("store.blob.container", "aidoctor-records")

	// Provider defaults
	v.SetDefault("provider.name", "openai")
	v.SetDefault("provider.model", "gpt-4o-mini")
	v.SetDefault("provider.apiversion", "2024-08-01-preview")
	v.SetDefault("provider.timeout", 60*time.Second)
	v.SetDefault("provider.breakerfailures", 5)
	v.SetDefault("provider.breakercooldown", 30*time.Second)

	// Auth defaults
	v.SetDefault("auth.tokenttl", 7*24*time.Hour)
	v.SetDefault("auth.minpasswordlength", 6)

	// Session defaults
	v.SetDefault("session.maxclients", 10000)
	v.SetDefault("session.idlettl", 2*time.Hour)
	v.SetDefault("session.maxconsultations", 50)
	v.SetDefault("session.ratelimit", 5.0)
	v.SetDefault("session.rateburst", 20)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.environment", "ENV", "ENVIRONMENT")
	v.BindEnv("server.allowedorigins", "CORS_ALLOWED_ORIGINS")

	// Store
	v.BindEnv("store.backend", "STORE_BACKEND")
	v.BindEnv("store.namespace", "STORE_NAMESPACE")
	v.BindEnv("store.postgresurl", "DATABASE_URL")
	v.BindEnv("store.sqlitepath", "SQLITE_PATH")
	v.BindEnv("store.redisurl", "REDIS_URL")
	v.BindEnv("store.mongouri", "MONGO_URI")
	v.BindEnv("store.mongodatabase", "MONGO_DATABASE")
	v.BindEnv("store.mongocollection", "MONGO_COLLECTION")
	v.BindEnv("store.encryptionkey", "STORE_ENCRYPTION_KEY")

	// Azure Storage
	v.BindEnv("store.blob.accountname", "AZURE_STORAGE_ACCOUNT_NAME")
	v.BindEnv("store.blob.accountkey", "AZURE_STORAGE_ACCOUNT_KEY")
	v.BindEnv("store.blob.connectionstring", "AZURE_STORAGE_CONNECTION_STRING")
	v.BindEnv("store.blob.container", "AZURE_STORAGE_CONTAINER")

	// Advisory provider
	v.BindEnv("provider.name", "LLM_PROVIDER")
	v.BindEnv("provider.apikey", "OPENAI_API_KEY", "AZURE_OPENAI_API_KEY")
	v.BindEnv("provider.baseurl", "OPENAI_BASE_URL")
	v.BindEnv("provider.endpoint", "AZURE_OPENAI_ENDPOINT")
	v.BindEnv("provider.apiversion", "AZURE_OPENAI_API_VERSION")
	v.BindEnv("provider.model", "OPENAI_MODEL", "AZURE_OPENAI_DEPLOYMENT")
	v.BindEnv("provider.timeout", "LLM_TIMEOUT")

	// Auth
	v.BindEnv("auth.jwtsecret", "JWT_SECRET")
	v.BindEnv("auth.tokenttl", "TOKEN_TTL")
	v.BindEnv("auth.minpasswordlength", "MIN_PASSWORD_LENGTH")

	// Session
	v.BindEnv("session.maxclients", "SESSION_MAX_CLIENTS")
	v.BindEnv("session.idlettl", "SESSION_IDLE_TTL")
	v.BindEnv("session.maxconsultations", "SESSION_MAX_CONSULTATIONS")
	v.BindEnv("session.ratelimit", "RATE_LIMIT_RPS")
	v.BindEnv("session.rateburst", "RATE_LIMIT_BURST")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.format", "LOG_FORMAT")
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "sqlite":
	case "postgres":
		if c.Store.PostgresURL == "" {
			return fmt.Errorf("store.postgresurl is required for the postgres backend")
		}
	case "redis":
		if c.Store.RedisURL == "" {
			return fmt.Errorf("store.redisurl is required for the redis backend")
		}
	case "mongo":
		if c.Store.MongoURI == "" {
			return fmt.Errorf("store.mongouri is required for the mongo backend")
		}
	case "azblob":
		if c.Store.Blob.ConnectionString == "" && (c.Store.Blob.AccountName == "" || c.Store.Blob.AccountKey == "") {
			return fmt.Errorf("azure storage credentials are required (either connection string or account name + key)")
		}
	default:
		return fmt.Errorf("unknown store backend: %s", c.Store.Backend)
	}

	if c.Store.Namespace == "" {
		return fmt.Errorf("store.namespace is required")
	}

	switch c.Provider.Name {
	case "openai":
	case "azure":
		if c.Provider.APIKey != "" && c.Provider.Endpoint == "" {
			return fmt.Errorf("provider.endpoint is required for the azure provider")
		}
	default:
		return fmt.Errorf("unknown provider: %s", c.Provider.Name)
	}

	if c.IsProduction() && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwtsecret must be at least 32 characters in production")
	}
	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwtsecret must be at least 32 characters")
	}

	if c.Auth.MinPasswordLength < 1 {
		return fmt.Errorf("auth.minpasswordlength must be positive")
	}

	if c.Session.MaxConsultations < 1 {
		return fmt.Errorf("session.maxconsultations must be positive")
	}

	if c.Session.RateLimit <= 0 || c.Session.RateBurst < 1 {
		return fmt.Errorf("session rate limit must be positive")
	}

	return nil
}
