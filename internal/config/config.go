package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the catalogqa service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Provider  ProviderConfig  `yaml:"provider"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds the product store connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// ProviderConfig holds model provider settings (OpenAI-compatible endpoint).
type ProviderConfig struct {
	APIKey             string `yaml:"api_key"`
	BaseURL            string `yaml:"base_url"`
	EmbeddingModel     string `yaml:"embedding_model"`
	Dimensions         int    `yaml:"dimensions"`
	ChatModel          string `yaml:"chat_model"`
	EmbedTimeoutSec    int    `yaml:"embed_timeout_sec"`
	ClassifyTimeoutSec int    `yaml:"classify_timeout_sec"`
	GenerateTimeoutSec int    `yaml:"generate_timeout_sec"`
}

// RetrievalConfig holds the retrieval tunables. The floor and the filter
// combinator are deliberately configuration, not constants: the shipped
// defaults are empirical values, not requirements.
type RetrievalConfig struct {
	SimilarityFloor  float64 `yaml:"similarity_floor"`  // rerank cut-off
	StrictThreshold  float64 `yaml:"strict_threshold"`  // HIGH-confidence bar
	CandidateCap     int     `yaml:"candidate_cap"`     // stage-1 bound
	ResultLimit      int     `yaml:"result_limit"`      // final truncation
	FilterCombinator string  `yaml:"filter_combinator"` // "and" | "or"
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
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

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Provider.EmbedTimeoutSec <= 0 {
		c.Provider.EmbedTimeoutSec = 15
	}
	if c.Provider.ClassifyTimeoutSec <= 0 {
		c.Provider.ClassifyTimeoutSec = 10
	}
	if c.Provider.GenerateTimeoutSec <= 0 {
		c.Provider.GenerateTimeoutSec = 30
	}
	if c.Retrieval.SimilarityFloor <= 0 {
		c.Retrieval.SimilarityFloor = 0.5
	}
	if c.Retrieval.StrictThreshold <= 0 {
		c.Retrieval.StrictThreshold = 0.75
	}
	if c.Retrieval.CandidateCap <= 0 {
		c.Retrieval.CandidateCap = 50
	}
	if c.Retrieval.ResultLimit <= 0 {
		c.Retrieval.ResultLimit = 10
	}
	if c.Retrieval.FilterCombinator == "" {
		c.Retrieval.FilterCombinator = "and"
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "catalogqa:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Retrieval.SimilarityFloor > 1 {
		return fmt.Errorf("retrieval.similarity_floor must be <= 1, got %g", c.Retrieval.SimilarityFloor)
	}
	if c.Retrieval.StrictThreshold > 1 {
		return fmt.Errorf("retrieval.strict_threshold must be <= 1, got %g", c.Retrieval.StrictThreshold)
	}
	switch c.Retrieval.FilterCombinator {
	case "and", "or":
	default:
		return fmt.Errorf(
			"retrieval.filter_combinator must be \"and\" or \"or\", got %q",
			c.Retrieval.FilterCombinator,
		)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
