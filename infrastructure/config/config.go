package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress   string `validate:"required"`
	Environment     string `validate:"oneof=development staging production"`
	ShutdownTimeout int    `validate:"min=1"` // seconds

	// AWS configuration
	AWSRegion     string `validate:"required"`
	DynamoDBTable string
	IndexName     string // GSI for entity-type listing queries

	// Lambda configuration
	IsLambda bool

	// Runtime tunables file (optional, hot-reloaded when set)
	TunablesPath string

	// Logging and observability
	LogLevel         string `validate:"oneof=debug info warn error"`
	MetricsNamespace string
	EnableMetrics    bool
	EnableTracing    bool
	EnableCORS       bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress:   getEnv("SERVER_ADDRESS", ":8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		ShutdownTimeout: getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 30),
		AWSRegion:       getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable:   getEnv("TABLE_NAME", "clubgraph"),
		IndexName:       getEnv("INDEX_NAME", "EntityTypeIndex"),

		IsLambda: getEnvBool("IS_LAMBDA", false),

		TunablesPath: getEnv("TUNABLES_PATH", ""),

		LogLevel:         getEnv("LOG_LEVEL", "info"),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "ClubGraph"),
		EnableMetrics:    getEnvBool("ENABLE_METRICS", true),
		EnableTracing:    getEnvBool("ENABLE_TRACING", false),
		EnableCORS:       getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.IsProduction() && c.DynamoDBTable == "" {
		return fmt.Errorf("TABLE_NAME is required in production")
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
