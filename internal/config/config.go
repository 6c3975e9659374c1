package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultMaxMenteesPerBuddy is the ceiling on simultaneous ACTIVE matches per buddy
const DefaultMaxMenteesPerBuddy = 5

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" env:"SERVER_MODE"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Matching struct {
		MaxMenteesPerBuddy int    `yaml:"max_mentees_per_buddy" env:"MATCHING_MAX_MENTEES_PER_BUDDY"`
		RunTimeout         string `yaml:"run_timeout" env:"MATCHING_RUN_TIMEOUT"`
		LockTimeout        string `yaml:"lock_timeout" env:"MATCHING_LOCK_TIMEOUT"`
	} `yaml:"matching"`

	Breaker struct {
		MaxRequests  int     `yaml:"max_requests" env:"BREAKER_MAX_REQUESTS"`
		Interval     string  `yaml:"interval" env:"BREAKER_INTERVAL"`
		Timeout      string  `yaml:"timeout" env:"BREAKER_TIMEOUT"`
		MinRequests  int     `yaml:"min_requests" env:"BREAKER_MIN_REQUESTS"`
		FailureRatio float64 `yaml:"failure_ratio" env:"BREAKER_FAILURE_RATIO"`
	} `yaml:"breaker"`

	Metrics struct {
		Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED"`
		Path    string `yaml:"path" env:"METRICS_PATH"`
	} `yaml:"metrics"`

	Seed struct {
		Enabled bool `yaml:"enabled" env:"SEED_ENABLED"`
	} `yaml:"seed"`
}

// LoadConfig loads configuration from a file and environment variables.
// A missing file is not an error; defaults and environment still apply.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := applyEnvOverrides(config, os.LookupEnv); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "campusbuddy"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Matching.MaxMenteesPerBuddy = DefaultMaxMenteesPerBuddy
	config.Matching.RunTimeout = "2m"
	config.Matching.LockTimeout = "30s"

	config.Breaker.MaxRequests = 3
	config.Breaker.Interval = "1m"
	config.Breaker.Timeout = "30s"
	config.Breaker.MinRequests = 10
	config.Breaker.FailureRatio = 0.6

	config.Metrics.Enabled = true
	config.Metrics.Path = "/metrics"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	// A matching run holds one connection for the campus lock and needs
	// another for its queries
	if config.Database.MaxOpenConns < 2 {
		return fmt.Errorf("database.max_open_conns must be at least 2, got %d", config.Database.MaxOpenConns)
	}
	if config.Database.MaxIdleConns < 0 || config.Database.MaxIdleConns > config.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns must be between 0 and max_open_conns (%d), got %d",
			config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	}

	if config.Matching.MaxMenteesPerBuddy <= 0 {
		return fmt.Errorf("matching.max_mentees_per_buddy must be positive, got %d", config.Matching.MaxMenteesPerBuddy)
	}

	durations := map[string]string{
		"database.conn_max_lifetime": config.Database.ConnMaxLifetime,
		"matching.run_timeout":       config.Matching.RunTimeout,
		"matching.lock_timeout":      config.Matching.LockTimeout,
		"breaker.interval":           config.Breaker.Interval,
		"breaker.timeout":            config.Breaker.Timeout,
	}
	for key, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", key, err)
		}
	}

	if config.Breaker.FailureRatio <= 0 || config.Breaker.FailureRatio > 1 {
		return fmt.Errorf("breaker.failure_ratio must be in (0,1], got %v", config.Breaker.FailureRatio)
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// RunTimeout returns the parsed matching run timeout
func (c *Config) RunTimeout() time.Duration {
	return mustDuration(c.Matching.RunTimeout)
}

// LockTimeout returns how long a run waits for the campus lock
func (c *Config) LockTimeout() time.Duration {
	return mustDuration(c.Matching.LockTimeout)
}

// BreakerInterval returns the closed-state window of the store circuit breaker
func (c *Config) BreakerInterval() time.Duration {
	return mustDuration(c.Breaker.Interval)
}

// BreakerTimeout returns how long the store circuit stays open
func (c *Config) BreakerTimeout() time.Duration {
	return mustDuration(c.Breaker.Timeout)
}

// mustDuration parses a duration already checked by validateConfig
func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}
