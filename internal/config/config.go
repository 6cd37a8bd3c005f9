package config

import (
	"os"
	"strconv"
	"strings"

	"repsig/internal/errors"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Log    LogConfig
	Report ReportConfig
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// ReportConfig holds defaults for report generation; CLI flags override them
type ReportConfig struct {
	Profile      string
	ProfilesFile string
	Format       string // empty means "use the profile's format"
	Replicates   int    // 0 means "use the profile's count"
	Strict       bool
}

// Load reads configuration from environment variables and validates it.
// Any given env files are loaded first; missing files are ignored.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, errors.Wrapf(err, "failed to load %s", f)
		}
	}

	config := &Config{
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "INFO"),
		},
		Report: ReportConfig{
			Profile:      getEnvOrDefault("REPSIG_PROFILE", "consensus"),
			ProfilesFile: getEnvOrDefault("REPSIG_PROFILES_FILE", ""),
			Format:       strings.ToLower(getEnvOrDefault("REPSIG_FORMAT", "")),
			Replicates:   getEnvIntOrDefault("REPSIG_REPLICATES", 0),
			Strict:       getEnvBoolOrDefault("REPSIG_STRICT", false),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	switch config.Report.Format {
	case "", "text", "csv":
	default:
		return errors.ConfigInvalid("REPSIG_FORMAT must be text or csv, got " + config.Report.Format)
	}
	if config.Report.Replicates < 0 {
		return errors.ConfigInvalid("REPSIG_REPLICATES must not be negative")
	}
	if config.Report.Profile == "" {
		return errors.ConfigInvalid("REPSIG_PROFILE must not be empty")
	}
	return nil
}

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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
