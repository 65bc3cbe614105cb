package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// Config holds the veritas configuration.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	Database     DatabaseConfig     `yaml:"database"`
	Auth         AuthConfig         `yaml:"auth"`
	Logging      LoggingConfig      `yaml:"logging"`
	Model        ModelConfig        `yaml:"model"`
	Search       SearchConfig       `yaml:"search"`
	Fetch        FetchConfig        `yaml:"fetch"`
	Summarizer   SummarizerConfig   `yaml:"summarizer"`
	Pipeline     PipelineConfig     `yaml:"pipeline"`
	Verification VerificationConfig `yaml:"verification"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds key/value store connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// ModelConfig points at the vectorizer/classifier artifact pair.
type ModelConfig struct {
	VectorizerPath string `yaml:"vectorizer_path"`
	ClassifierPath string `yaml:"classifier_path"`
}

// SearchConfig holds search provider settings. An empty api_key selects mock hits.
type SearchConfig struct {
	Provider      string `yaml:"provider"` // google, serpapi, mock
	Endpoint      string `yaml:"endpoint"`
	APIKey        string `yaml:"api_key"`
	EngineID      string `yaml:"engine_id"`
	TimeoutSec    int    `yaml:"timeout_sec"`
	RetryAttempts int    `yaml:"retry_attempts"`
}

// FetchConfig holds document fetcher settings.
type FetchConfig struct {
	TimeoutSec    int    `yaml:"timeout_sec"`
	UserAgent     string `yaml:"user_agent"`
	MaxBodyBytes  int64  `yaml:"max_body_bytes"`
	MaxParagraphs int    `yaml:"max_paragraphs"`
	CacheTTLSec   int    `yaml:"cache_ttl_sec"` // 0 disables the cache
}

// SummarizerConfig holds LLM summarizer settings.
type SummarizerConfig struct {
	Enabled         bool    `yaml:"enabled"`
	Provider        string  `yaml:"provider"`
	BaseURL         string  `yaml:"base_url"`
	APIKey          string  `yaml:"api_key"`
	Model           string  `yaml:"model"`
	TimeoutSec      int     `yaml:"timeout_sec"`
	TopN            int     `yaml:"top_n"`
	MaxTokens       int     `yaml:"max_tokens"`
	Temperature     float32 `yaml:"temperature"`
	DailyTokenLimit int64   `yaml:"daily_token_limit"` // 0 = unlimited
}

// PipelineConfig tunes the query pipeline.
type PipelineConfig struct {
	Workers           int              `yaml:"workers"`
	MaxResults        int              `yaml:"max_results"`
	BodyPrefixChars   int              `yaml:"body_prefix_chars"`
	ExplainTopK       int              `yaml:"explain_top_k"`
	RequestTimeoutSec int              `yaml:"request_timeout_sec"` // whole-query deadline, below http.write_timeout_sec
	Clustering        ClusteringConfig `yaml:"clustering"`
}

// ClusteringConfig gates and tunes the batch clustering stage.
type ClusteringConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Seed          uint64 `yaml:"seed"`
	MaxComponents int    `yaml:"max_components"`
	MaxClusters   int    `yaml:"max_clusters"`
}

// VerificationConfig holds e-mail verification settings.
type VerificationConfig struct {
	Enabled          bool       `yaml:"enabled"`
	AllowedDomain    string     `yaml:"allowed_domain"`
	CodeTTLSec       int        `yaml:"code_ttl_sec"`
	SendLimitPerHour int        `yaml:"send_limit_per_hour"`
	SMTP             SMTPConfig `yaml:"smtp"`
}

// SMTPConfig holds the outgoing mail relay.
type SMTPConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	From       string `yaml:"from"`
	Subject    string `yaml:"subject"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
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

// SummarizerEnabled reports whether summarization is both switched on and has credentials.
func (c *Config) SummarizerEnabled() bool {
	return c.Summarizer.Enabled && c.Summarizer.APIKey != ""
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Search.Provider == "" {
		c.Search.Provider = "mock"
	}
	if c.Search.TimeoutSec <= 0 {
		c.Search.TimeoutSec = 10
	}
	if c.Search.RetryAttempts <= 0 {
		c.Search.RetryAttempts = 2
	}
	if c.Fetch.TimeoutSec <= 0 {
		c.Fetch.TimeoutSec = 8
	}
	if c.Fetch.MaxParagraphs <= 0 {
		c.Fetch.MaxParagraphs = 10
	}
	if c.Fetch.MaxBodyBytes <= 0 {
		c.Fetch.MaxBodyBytes = 2 << 20
	}
	if c.Summarizer.Provider == "" {
		c.Summarizer.Provider = "openai"
	}
	if c.Summarizer.TimeoutSec <= 0 {
		c.Summarizer.TimeoutSec = 30
	}
	if c.Summarizer.TopN <= 0 {
		c.Summarizer.TopN = 3
	}
	if c.Pipeline.Workers <= 0 {
		c.Pipeline.Workers = 4
	}
	if c.Pipeline.MaxResults <= 0 {
		c.Pipeline.MaxResults = 20
	}
	if c.Pipeline.BodyPrefixChars <= 0 {
		c.Pipeline.BodyPrefixChars = 2000
	}
	if c.Pipeline.ExplainTopK <= 0 {
		c.Pipeline.ExplainTopK = 3
	}
	if c.Pipeline.RequestTimeoutSec <= 0 {
		c.Pipeline.RequestTimeoutSec = 45
	}
	if c.Pipeline.Clustering.MaxComponents <= 0 {
		c.Pipeline.Clustering.MaxComponents = 50
	}
	if c.Pipeline.Clustering.MaxClusters <= 0 {
		c.Pipeline.Clustering.MaxClusters = 3
	}
	if c.Verification.CodeTTLSec <= 0 {
		c.Verification.CodeTTLSec = 600
	}
	if c.Verification.SendLimitPerHour <= 0 {
		c.Verification.SendLimitPerHour = 5
	}
	if c.Verification.SMTP.Port <= 0 {
		c.Verification.SMTP.Port = 587
	}
	if c.Verification.SMTP.TimeoutSec <= 0 {
		c.Verification.SMTP.TimeoutSec = 10
	}
}

// Validate checks the configuration for correctness and reports every problem at once.
func (c *Config) Validate() error {
	var errs *multierror.Error

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = multierror.Append(errs, fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port))
	}
	if len(c.Database.Addrs) == 0 {
		errs = multierror.Append(errs, fmt.Errorf("database.addrs is required"))
	}

	switch c.Search.Provider {
	case "google", "serpapi", "mock":
	default:
		errs = multierror.Append(errs, fmt.Errorf(
			"search.provider must be \"google\", \"serpapi\" or \"mock\", got %q", c.Search.Provider))
	}

	if c.Summarizer.Enabled && c.Summarizer.Model == "" {
		errs = multierror.Append(errs, fmt.Errorf("summarizer.model is required when summarizer is enabled"))
	}
	if c.Summarizer.DailyTokenLimit < 0 {
		errs = multierror.Append(errs, fmt.Errorf("summarizer.daily_token_limit must not be negative"))
	}

	if c.Pipeline.RequestTimeoutSec >= c.HTTP.WriteTimeoutSec {
		errs = multierror.Append(errs, fmt.Errorf(
			"pipeline.request_timeout_sec (%d) must be below http.write_timeout_sec (%d)",
			c.Pipeline.RequestTimeoutSec, c.HTTP.WriteTimeoutSec))
	}
	if c.Pipeline.Clustering.MaxComponents < 2 {
		errs = multierror.Append(errs, fmt.Errorf(
			"pipeline.clustering.max_components must be at least 2, got %d", c.Pipeline.Clustering.MaxComponents))
	}

	if c.Verification.Enabled {
		if c.Verification.AllowedDomain == "" {
			errs = multierror.Append(errs, fmt.Errorf("verification.allowed_domain is required"))
		}
		if c.Verification.SMTP.Host == "" {
			errs = multierror.Append(errs, fmt.Errorf("verification.smtp.host is required"))
		}
		if c.Verification.SMTP.From == "" {
			errs = multierror.Append(errs, fmt.Errorf("verification.smtp.from is required"))
		}
	}

	return errs.ErrorOrNil()
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
