package config

import (
	"fmt"
	"os"
	"strconv"

	"insightflow/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Engine EngineConfig
	Server ServerConfig
}

// EngineConfig holds the analysis knobs applied to every engine build
type EngineConfig struct {
	BinSize       int
	FreqRange     int
	NoiseMode     string
	Neighbors     int
	Threshold     float64
	EdgeThreshold float64
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port                string
	MaxConcurrentBuilds int
	MaxUploadRows       int
}

// Default returns the configuration used when no environment is set
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			BinSize:       16,
			FreqRange:     16,
			NoiseMode:     "noise",
			Neighbors:     10,
			Threshold:     0.3,
			EdgeThreshold: 0.01,
		},
		Server: ServerConfig{
			Port:                "8080",
			MaxConcurrentBuilds: 2,
			MaxUploadRows:       200000,
		},
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	def := Default()
	config := &Config{
		Engine: EngineConfig{
			BinSize:       getEnvIntOrDefault("INSIGHT_BIN_SIZE", def.Engine.BinSize),
			FreqRange:     getEnvIntOrDefault("INSIGHT_FREQ_RANGE", def.Engine.FreqRange),
			NoiseMode:     getEnvOrDefault("INSIGHT_NOISE_MODE", def.Engine.NoiseMode),
			Neighbors:     getEnvIntOrDefault("INSIGHT_NEIGHBORS", def.Engine.Neighbors),
			Threshold:     getEnvFloatOrDefault("INSIGHT_THRESHOLD", def.Engine.Threshold),
			EdgeThreshold: getEnvFloatOrDefault("INSIGHT_EDGE_THRESHOLD", def.Engine.EdgeThreshold),
		},
		Server: ServerConfig{
			Port:                getEnvOrDefault("PORT", def.Server.Port),
			MaxConcurrentBuilds: getEnvIntOrDefault("MAX_CONCURRENT_BUILDS", def.Server.MaxConcurrentBuilds),
			MaxUploadRows:       getEnvIntOrDefault("MAX_UPLOAD_ROWS", def.Server.MaxUploadRows),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	e := c.Engine
	if e.BinSize < 2 {
		return errors.ConfigInvalid(fmt.Sprintf("INSIGHT_BIN_SIZE must be at least 2, got %d", e.BinSize))
	}
	if e.FreqRange < 2 {
		return errors.ConfigInvalid(fmt.Sprintf("INSIGHT_FREQ_RANGE must be at least 2, got %d", e.FreqRange))
	}
	if e.NoiseMode != "noise" && e.NoiseMode != "pure" {
		return errors.ConfigInvalid(fmt.Sprintf("INSIGHT_NOISE_MODE must be noise or pure, got %q", e.NoiseMode))
	}
	if e.Neighbors < 1 {
		return errors.ConfigInvalid("INSIGHT_NEIGHBORS must be positive")
	}
	if e.Threshold < 0 || e.EdgeThreshold < 0 {
		return errors.ConfigInvalid("thresholds must not be negative")
	}
	if c.Server.MaxConcurrentBuilds < 1 {
		return errors.ConfigInvalid("MAX_CONCURRENT_BUILDS must be positive")
	}
	if c.Server.MaxUploadRows < 1 {
		return errors.ConfigInvalid("MAX_UPLOAD_ROWS must be positive")
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

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
