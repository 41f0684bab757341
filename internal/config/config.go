package config

import (
	"os"
	"runtime"
	"strconv"
	"time"

	"gomonte/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Sim      SimConfig
	Scenario ScenarioConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port           string
	RequestTimeout time.Duration
}

// SimConfig holds estimation run defaults and guards
type SimConfig struct {
	DefaultTrials int64
	DefaultSeed   int64
	MaxTrials     int64
	MaxWorkers    int
	CodeVersion   string
}

// ScenarioConfig holds the scenario catalog location
type ScenarioConfig struct {
	Dir string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:   loadServerConfig(),
		Sim:      loadSimConfig(),
		Scenario: loadScenarioConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:           getEnvOrDefault("PORT", "8080"),
		RequestTimeout: getEnvDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
	}
}

func loadSimConfig() SimConfig {
	return SimConfig{
		DefaultTrials: getEnvInt64OrDefault("SIM_DEFAULT_TRIALS", 1000000),
		DefaultSeed:   getEnvInt64OrDefault("SIM_DEFAULT_SEED", 42),
		MaxTrials:     getEnvInt64OrDefault("SIM_MAX_TRIALS", 1000000000),
		MaxWorkers:    getEnvIntOrDefault("SIM_MAX_WORKERS", runtime.NumCPU()),
		CodeVersion:   getEnvOrDefault("CODE_VERSION", "dev"),
	}
}

func loadScenarioConfig() ScenarioConfig {
	return ScenarioConfig{
		Dir: getEnvOrDefault("SCENARIO_DIR", "./scenarios"),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Sim.DefaultTrials <= 0 {
		return errors.ConfigInvalid("SIM_DEFAULT_TRIALS must be positive")
	}
	if config.Sim.MaxTrials < config.Sim.DefaultTrials {
		return errors.ConfigInvalid("SIM_MAX_TRIALS must be at least SIM_DEFAULT_TRIALS")
	}
	if config.Sim.MaxWorkers < 1 {
		return errors.ConfigInvalid("SIM_MAX_WORKERS must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
