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

// Config holds the newsdex API configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	MCP     MCPConfig     `yaml:"mcp"`
	Auth    AuthConfig    `yaml:"auth"`
	Source  SourceConfig  `yaml:"source"`
	Cache   CacheConfig   `yaml:"cache"`
	Search  SearchConfig  `yaml:"search"`
	Logging LoggingConfig `yaml:"logging"`
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

// MCPConfig holds the tool-calling transport settings.
type MCPConfig struct {
	Transport string `yaml:"transport"` // off, stdio, http (default: off)
	Port      int    `yaml:"port"`      // http transport only
}

// SourceConfig holds object-store connection settings for the article
// metadata snapshot.
type SourceConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Bucket    string `yaml:"bucket"`
	Object    string `yaml:"object"`
}

// CacheConfig holds snapshot cache settings.
type CacheConfig struct {
	TTLSec int         `yaml:"ttl_sec"`
	Redis  RedisConfig `yaml:"redis"`
}

// RedisConfig holds the optional spill store connection. Empty addrs
// disables the spill store.
type RedisConfig struct {
	Addrs     []string `yaml:"addrs"`
	Password  string   `yaml:"password"`
	KeyPrefix string   `yaml:"key_prefix"`
	TTLSec    int      `yaml:"ttl_sec"`
}

// SearchConfig holds search behavior settings.
type SearchConfig struct {
	SampleSize        int      `yaml:"sample_size"`
	MaxExamples       int      `yaml:"max_examples"`
	BadDateValues     []string `yaml:"bad_date_values"`
	BadDateSubstrings []string `yaml:"bad_date_substrings"`
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
	if c.MCP.Transport == "" {
		c.MCP.Transport = "off"
	}
	if c.Source.Object == "" {
		c.Source.Object = "search_metadata.json"
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 60
	}
	if c.Cache.Redis.KeyPrefix == "" {
		c.Cache.Redis.KeyPrefix = "newsdex:"
	}
	if c.Cache.Redis.TTLSec <= 0 {
		c.Cache.Redis.TTLSec = 3600
	}
	if c.Search.SampleSize <= 0 {
		c.Search.SampleSize = 100
	}
	if c.Search.MaxExamples <= 0 {
		c.Search.MaxExamples = 3
	}
	if c.Search.BadDateValues == nil {
		c.Search.BadDateValues = []string{"YYYYMMDD"}
	}
	if c.Search.BadDateSubstrings == nil {
		c.Search.BadDateSubstrings = []string{"২০"}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.MCP.Transport {
	case "off", "stdio":
	case "http":
		if c.MCP.Port <= 0 || c.MCP.Port > 65535 {
			return fmt.Errorf("mcp.port must be between 1 and 65535, got %d", c.MCP.Port)
		}
	default:
		return fmt.Errorf("mcp.transport must be \"off\", \"stdio\" or \"http\", got %q", c.MCP.Transport)
	}
	if c.Source.Endpoint == "" {
		return fmt.Errorf("source.endpoint is required")
	}
	if c.Source.Bucket == "" {
		return fmt.Errorf("source.bucket is required")
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
