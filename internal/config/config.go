// Package config resolves the service configuration from the environment once at startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jacentio/catalog/store"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion        string
	DynamoDBEndpoint string // optional, e.g. DynamoDB Local
	AccessKeyID      string
	SecretAccessKey  string

	// Table layout
	TableName     string
	IndexName     string
	MissingParent store.MissingParentPolicy

	// DynamoDB client behavior
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	MaxAttempts    int

	// Circuit breaker around DynamoDB calls
	BreakerEnabled bool
	BreakerTimeout time.Duration

	// Prometheus metrics on /metrics
	MetricsEnabled bool

	// Lambda configuration
	IsLambda bool

	// Logging
	LogLevel string
}

// Load reads the configuration from environment variables and validates it.
func Load() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	env := environment(getenv)

	connectTimeout, err := env.getEnvDuration("DYNAMODB_CONNECT_TIMEOUT", 2*time.Second)
	if err != nil {
		return nil, err
	}
	readTimeout, err := env.getEnvDuration("DYNAMODB_READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	maxAttempts, err := env.getEnvInt("DYNAMODB_MAX_ATTEMPTS", 2)
	if err != nil {
		return nil, err
	}
	breakerTimeout, err := env.getEnvDuration("DYNAMODB_BREAKER_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerAddress: env.getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   env.getEnv("ENVIRONMENT", "development"),

		AWSRegion:        env.getEnv("AWS_REGION", env.getEnv("AWS_DEFAULT_REGION", "us-east-1")),
		DynamoDBEndpoint: env.getEnv("DYNAMODB_ENDPOINT", ""),
		AccessKeyID:      env.getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey:  env.getEnv("AWS_SECRET_ACCESS_KEY", ""),

		TableName:     env.getEnv("TABLE_NAME", "api_data_nube"),
		IndexName:     env.getEnv("INDEX_NAME", "GSI1"),
		MissingParent: store.MissingParentPolicy(env.getEnv("MISSING_PARENT_POLICY", string(store.MissingParentReject))),

		ConnectTimeout: connectTimeout,
		ReadTimeout:    readTimeout,
		MaxAttempts:    maxAttempts,

		BreakerEnabled: env.getEnvBool("DYNAMODB_CIRCUIT_BREAKER", true),
		BreakerTimeout: breakerTimeout,
		MetricsEnabled: env.getEnvBool("METRICS_ENABLED", true),

		IsLambda: env.getEnvBool("IS_LAMBDA", false),
		LogLevel: env.getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error

	if c.TableName == "" {
		errs = append(errs, errors.New("TABLE_NAME is required"))
	}
	if c.IndexName == "" {
		errs = append(errs, errors.New("INDEX_NAME is required"))
	}
	if !c.MissingParent.Valid() {
		errs = append(errs, fmt.Errorf("MISSING_PARENT_POLICY must be %q or %q, got %q",
			store.MissingParentReject, store.MissingParentScan, c.MissingParent))
	}
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		errs = append(errs, errors.New("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set together"))
	}
	if c.ConnectTimeout <= 0 {
		errs = append(errs, errors.New("DYNAMODB_CONNECT_TIMEOUT must be positive"))
	}
	if c.ReadTimeout <= 0 {
		errs = append(errs, errors.New("DYNAMODB_READ_TIMEOUT must be positive"))
	}
	if c.MaxAttempts < 1 {
		errs = append(errs, errors.New("DYNAMODB_MAX_ATTEMPTS must be at least 1"))
	}
	if c.BreakerEnabled && c.BreakerTimeout <= 0 {
		errs = append(errs, errors.New("DYNAMODB_BREAKER_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

// StoreConfig returns the table layout for store.New.
func (c *Config) StoreConfig() store.Config {
	return store.Config{
		TableName:     c.TableName,
		IndexName:     c.IndexName,
		MissingParent: c.MissingParent,
	}
}

// HasStaticCredentials reports whether an explicit key pair was configured.
func (c *Config) HasStaticCredentials() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

type environment func(string) string

// getEnv gets an environment variable with a default value
func (e environment) getEnv(key, defaultValue string) string {
	if value := e(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func (e environment) getEnvBool(key string, defaultValue bool) bool {
	value := e(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func (e environment) getEnvInt(key string, defaultValue int) (int, error) {
	value := e(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// getEnvDuration accepts a Go duration ("1500ms") or a bare number of seconds ("2").
func (e environment) getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := e(key)
	if value == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
