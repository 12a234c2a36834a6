package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/homegrid-io/comps/internal/domain/search/mode"
)

// Config holds the comps API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Store    StoreConfig    `yaml:"store"`
	Encoding EncodingConfig `yaml:"encoding"`
	Search   SearchConfig   `yaml:"search"`
	Index    IndexConfig    `yaml:"index"`
	Logging  LoggingConfig  `yaml:"logging"`
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

// StoreConfig holds vector store connection settings.
type StoreConfig struct {
	Driver           string       `yaml:"driver"` // qdrant, redis (default: qdrant)
	Qdrant           QdrantConfig `yaml:"qdrant"`
	Redis            RedisConfig  `yaml:"redis"`
	ReadinessTimeout int          `yaml:"readiness_timeout_sec"`
}

// QdrantConfig holds qdrant driver settings.
type QdrantConfig struct {
	Addr   string `yaml:"addr"`
	APIKey string `yaml:"api_key"`
}

// RedisConfig holds redis driver settings.
type RedisConfig struct {
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
}

// EncodingConfig holds encoder settings.
type EncodingConfig struct {
	Text       TextEncoderConfig  `yaml:"text"`
	Image      ImageEncoderConfig `yaml:"image"`
	PhotoFetch PhotoFetchConfig   `yaml:"photo_fetch"`
	Cache      CacheConfig        `yaml:"cache"`
}

// TextEncoderConfig holds the OpenAI-compatible text encoder settings.
type TextEncoderConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// ImageEncoderConfig holds the CLIP image encoder settings.
type ImageEncoderConfig struct {
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// PhotoFetchConfig holds listing photo download settings.
type PhotoFetchConfig struct {
	TimeoutSec int `yaml:"timeout_sec"`
	Workers    int `yaml:"workers"`
}

// CacheConfig holds embedding cache settings. The cache lives in the redis
// store and is only available with the redis driver.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
}

// SearchConfig holds similarity search settings.
type SearchConfig struct {
	DefaultMode string `yaml:"default_mode"`
	DefaultTopK int    `yaml:"default_top_k"`
	UseVisual   bool   `yaml:"use_visual"`
}

// IndexConfig holds batch indexing settings.
type IndexConfig struct {
	Workers      int `yaml:"workers"`
	MaxBatchSize int `yaml:"max_batch_size"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// ${VAR} and ${VAR:-default} references in the file are substituted from the
// process environment before parsing.
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(expandEnvVars(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", configPath, err)
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
	if c.Store.Driver == "" {
		c.Store.Driver = "qdrant"
	}
	if c.Store.ReadinessTimeout <= 0 {
		c.Store.ReadinessTimeout = 10
	}
	if c.Encoding.Text.Model == "" {
		c.Encoding.Text.Model = "all-MiniLM-L6-v2"
	}
	if c.Encoding.Text.Dimensions <= 0 {
		c.Encoding.Text.Dimensions = 384
	}
	if c.Encoding.Image.Model == "" {
		c.Encoding.Image.Model = "clip-ViT-B-32"
	}
	if c.Encoding.Image.TimeoutSec <= 0 {
		c.Encoding.Image.TimeoutSec = 30
	}
	if c.Encoding.PhotoFetch.TimeoutSec <= 0 {
		c.Encoding.PhotoFetch.TimeoutSec = 10
	}
	if c.Encoding.PhotoFetch.Workers <= 0 {
		c.Encoding.PhotoFetch.Workers = 5
	}
	if c.Search.DefaultMode == "" {
		c.Search.DefaultMode = string(mode.Balanced)
	}
	if c.Search.DefaultTopK <= 0 {
		c.Search.DefaultTopK = 10
	}
	if c.Index.Workers <= 0 {
		c.Index.Workers = 4
	}
	if c.Index.MaxBatchSize <= 0 {
		c.Index.MaxBatchSize = 100
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Store.Driver {
	case "qdrant":
		if c.Store.Qdrant.Addr == "" {
			return fmt.Errorf("store.qdrant.addr is required with the qdrant driver")
		}
	case "redis":
		if len(c.Store.Redis.Addrs) == 0 {
			return fmt.Errorf("store.redis.addrs is required with the redis driver")
		}
	default:
		return fmt.Errorf("store.driver must be \"qdrant\" or \"redis\", got %q", c.Store.Driver)
	}

	if c.Encoding.Cache.Enabled && c.Store.Driver != "redis" {
		return fmt.Errorf("encoding.cache requires the redis store driver")
	}
	if c.Encoding.Image.BaseURL == "" {
		return fmt.Errorf("encoding.image.base_url is required")
	}

	if !mode.Mode(c.Search.DefaultMode).IsValid() {
		return fmt.Errorf("search.default_mode %q is not a known search mode", c.Search.DefaultMode)
	}

	return nil
}

// findConfigPath resolves the config file for the given environment. The
// COMPS_CONFIG variable overrides discovery entirely; otherwise ./config/ is
// tried first, then config/ relative to this source file so that tests and
// tools run from package directories still find it.
func findConfigPath(env string) string {
	if override := os.Getenv("COMPS_CONFIG"); override != "" {
		return override
	}

	filename := env + ".yaml"

	local := filepath.Join("config", filename)
	if fileExists(local) {
		return local
	}

	_, src, _, _ := runtime.Caller(0)
	root := filepath.Dir(filepath.Dir(filepath.Dir(src))) // internal/config -> project root
	if path := filepath.Join(root, "config", filename); fileExists(path) {
		return path
	}

	return local
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars substitutes ${VAR} and ${VAR:-default} references with values
// from the process environment. Unset variables without a default expand to
// the empty string.
func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		name, fallback, hasFallback := strings.Cut(string(match[2:len(match)-1]), ":-")
		if val := os.Getenv(name); val != "" {
			return []byte(val)
		}
		if hasFallback {
			return []byte(fallback)
		}
		return nil
	})
}
