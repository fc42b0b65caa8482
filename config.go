package fainder

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when a setting is absent.
const (
	DefaultEndpoint  = "http://127.0.0.1:8000"
	DefaultIndexType = IndexRebinning
	DefaultPerPage   = 10
	DefaultTimeout   = 30 * time.Second
	// DefaultCacheSize matches the backend's query cache.
	DefaultCacheSize = 128
	DefaultLogLevel  = "info"
)

// Config represents the .fainder.yaml configuration file.
type Config struct {
	Search SearchConfig `yaml:"search,omitempty"`
	Eval   EvalConfig   `yaml:"eval,omitempty"`
	Log    LogConfig    `yaml:"log,omitempty"`
}

// SearchConfig holds settings for talking to the search backend.
type SearchConfig struct {
	// Endpoint is the base URL of the backend, e.g. http://localhost:8000.
	Endpoint  string        `yaml:"endpoint,omitempty"`
	IndexType string        `yaml:"index_type,omitempty"`
	PerPage   int           `yaml:"per_page,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	// CacheSize is the number of responses kept client side. Zero uses the
	// default; a negative value disables caching.
	CacheSize int `yaml:"cache_size,omitempty"`
}

// EvalConfig holds settings for local evaluation.
type EvalConfig struct {
	// Profiles is the path to a column profile file. Relative paths are
	// resolved against the directory of the config file.
	Profiles string `yaml:"profiles,omitempty"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string `yaml:"level,omitempty"`
	Development bool   `yaml:"development,omitempty"`
}

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()

	return cfg
}

func (c *Config) applyDefaults() {
	if c.Search.Endpoint == "" {
		c.Search.Endpoint = DefaultEndpoint
	}

	if c.Search.IndexType == "" {
		c.Search.IndexType = DefaultIndexType
	}

	if c.Search.PerPage <= 0 {
		c.Search.PerPage = DefaultPerPage
	}

	if c.Search.Timeout <= 0 {
		c.Search.Timeout = DefaultTimeout
	}

	if c.Search.CacheSize == 0 {
		c.Search.CacheSize = DefaultCacheSize
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	if !ValidIndexType(c.Search.IndexType) {
		return fmt.Errorf("%w: %s", ErrUnknownIndexType, c.Search.IndexType)
	}

	return nil
}

// DefaultConfigNames are the filenames we search for.
var DefaultConfigNames = []string{".fainder.yaml", ".fainder.yml", "fainder.yaml", "fainder.yml"}

// LoadConfig finds and loads the nearest .fainder.yaml walking up from dir.
func LoadConfig(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}

	return LoadConfigFile(path)
}

// FindConfig searches for a config file starting from dir and walking up.
func FindConfig(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for dir := absDir; ; {
		for _, name := range DefaultConfigNames {
			path := filepath.Join(dir, name)

			_, err := os.Stat(path)
			if err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}

		dir = parent
	}
}

// LoadConfigFile loads a config from a specific path and fills in defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var cfg Config

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyDefaults()

	if cfg.Eval.Profiles != "" && !filepath.IsAbs(cfg.Eval.Profiles) {
		cfg.Eval.Profiles = filepath.Join(filepath.Dir(path), cfg.Eval.Profiles)
	}

	return &cfg, nil
}
