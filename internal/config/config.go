package config

import (
	stderrors "errors"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"

	"gosample/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Sampling SamplingConfig
	Input    InputConfig
}

// SamplingConfig holds defaults for the sampling engine
type SamplingConfig struct {
	ConfidenceLevel         float64 `validate:"gt=0,lt=1"`
	RoundingTolerance       float64 `validate:"gte=0"`
	DefaultRandomSampleSize int     `validate:"gte=1"`
}

// InputConfig holds file ingestion settings
type InputConfig struct {
	MaxParallelSheets  int    `validate:"gte=1,lte=64"`
	ColumnPatternsFile string `validate:"omitempty,file"`
}

var validate = validator.New()

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Sampling: *loadSamplingConfig(),
		Input:    *loadInputConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadSamplingConfig() *SamplingConfig {
	return &SamplingConfig{
		ConfidenceLevel:         getEnvFloatOrDefault("SAMPLER_CONFIDENCE_LEVEL", 0.95),
		RoundingTolerance:       getEnvFloatOrDefault("SAMPLER_ROUNDING_TOLERANCE", 0.005),
		DefaultRandomSampleSize: getEnvIntOrDefault("SAMPLER_DEFAULT_RANDOM_SAMPLE_SIZE", 25),
	}
}

func loadInputConfig() *InputConfig {
	return &InputConfig{
		MaxParallelSheets:  getEnvIntOrDefault("SAMPLER_MAX_PARALLEL_SHEETS", 4),
		ColumnPatternsFile: getEnvOrDefault("SAMPLER_COLUMN_PATTERNS_FILE", ""),
	}
}

func validateConfig(config *Config) error {
	if err := validate.Struct(config); err != nil {
		var invalid validator.ValidationErrors
		if stderrors.As(err, &invalid) && len(invalid) > 0 {
			first := invalid[0]
			return errors.ConfigInvalidf("%s failed %q validation (got %v)", first.Namespace(), first.Tag(), first.Value())
		}
		return errors.ConfigInvalid(err.Error())
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
