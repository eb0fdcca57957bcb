// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Search backends selectable through SEARCH_BACKEND.
const (
	SearchBackendRedis = "redis"
	SearchBackendDB    = "db"
)

// Database drivers selectable through DB_DRIVER.
const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port               string  `mapstructure:"PORT"`
	Env                string  `mapstructure:"APP_ENV"`
	PostsPerPage       int     `mapstructure:"POSTS_PER_PAGE"`
	JWTSecret          string  `mapstructure:"JWT_SECRET"`
	DBDriver           string  `mapstructure:"DB_DRIVER"`
	DBHost             string  `mapstructure:"DB_HOST"`
	DBPort             string  `mapstructure:"DB_PORT"`
	DBUser             string  `mapstructure:"DB_USER"`
	DBPassword         string  `mapstructure:"DB_PASSWORD"`
	DBName             string  `mapstructure:"DB_NAME"`
	DBSSLMode          string  `mapstructure:"DB_SSLMODE"`
	RedisURL           string  `mapstructure:"REDIS_URL"`
	AllowedOrigins     string  `mapstructure:"ALLOWED_ORIGINS"`
	SearchBackend      string  `mapstructure:"SEARCH_BACKEND"`
	TracingEnabled     bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter    string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint       string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampleRatio float64 `mapstructure:"TRACING_SAMPLE_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional; env vars and defaults cover a bare checkout.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	viper.SetDefault("PORT", "5000")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("POSTS_PER_PAGE", 25)
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("DB_DRIVER", DBDriverPostgres)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "microblog")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("SEARCH_BACKEND", SearchBackendRedis)
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLE_RATIO", 1.0)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.DBSSLMode = strings.ToLower(strings.TrimSpace(config.DBSSLMode))
	config.SearchBackend = strings.ToLower(strings.TrimSpace(config.SearchBackend))
	config.DBDriver = strings.ToLower(strings.TrimSpace(config.DBDriver))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// IsProduction reports whether the service runs with production hardening.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.PostsPerPage < 1 {
		return fmt.Errorf("POSTS_PER_PAGE must be at least 1, got %d", c.PostsPerPage)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.SearchBackend {
	case SearchBackendRedis, SearchBackendDB:
	default:
		return fmt.Errorf("SEARCH_BACKEND must be %q or %q, got %q", SearchBackendRedis, SearchBackendDB, c.SearchBackend)
	}

	switch c.DBDriver {
	case DBDriverPostgres, DBDriverSQLite:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DBDriverPostgres, DBDriverSQLite, c.DBDriver)
	}

	if c.IsProduction() {
		if c.DBDriver == DBDriverSQLite {
			return errors.New("DB_DRIVER=sqlite is not supported in production")
		}
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must not be 'disable' in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
