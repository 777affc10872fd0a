// Package config loads the nomen server configuration from YAML files with
// environment variable expansion.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the nomen server configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Storage  StorageConfig  `yaml:"storage"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// StorageConfig selects and configures the domain context backend.
type StorageConfig struct {
	Driver           string   `yaml:"driver"`   // file, redis (default: file)
	DataDir          string   `yaml:"data_dir"` // file driver: dataset directory
	Addrs            []string `yaml:"addrs"`    // redis driver
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// AnalysisConfig holds the statistics engine settings.
type AnalysisConfig struct {
	BootstrapResamples int   `yaml:"bootstrap_resamples"`
	BootstrapSeed      int64 `yaml:"bootstrap_seed"`
	CVFolds            int   `yaml:"cv_folds"`
	StrictMode         bool  `yaml:"strict_mode"`
	Parallelism        int   `yaml:"parallelism"`
	Regression         bool  `yaml:"regression"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Load reads configuration from a YAML file by environment name
// (local, dev, prod).
func Load(env string) (Config, error) {
	path := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting
// to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values. Statistical
// defaults match the engine's own (1000 resamples, fixed seed, 5 folds).
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Bootstrap over a large batch can outlive the usual 10s budget.
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "file"
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "datasets"
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "nomen:"
	}
	if c.Storage.ReadinessTimeout <= 0 {
		c.Storage.ReadinessTimeout = 10
	}
	if c.Analysis.BootstrapResamples <= 0 {
		c.Analysis.BootstrapResamples = 1000
	}
	if c.Analysis.BootstrapSeed == 0 {
		c.Analysis.BootstrapSeed = 271828
	}
	if c.Analysis.CVFolds <= 1 {
		c.Analysis.CVFolds = 5
	}
	if c.Analysis.Parallelism <= 0 {
		c.Analysis.Parallelism = 1
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Storage.Driver {
	case "file":
		// data_dir has a default
	case "redis":
		if len(c.Storage.Addrs) == 0 {
			return fmt.Errorf("storage.addrs is required for the redis driver")
		}
	default:
		return fmt.Errorf("storage.driver must be \"file\" or \"redis\", got %q", c.Storage.Driver)
	}
	return nil
}

// findConfigPath locates the config file under ./config/.
func findConfigPath(env string) string {
	return filepath.Join("config", fmt.Sprintf("%s.yaml", env))
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment
// variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
