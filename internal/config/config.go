// Package config loads the vectrend YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/objones25/vectrend/internal/labeling"
	"github.com/objones25/vectrend/internal/labeling/cache"
	"github.com/objones25/vectrend/internal/trends"
)

const defaultCacheSize = 1000

// Cache types
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// ClusteringConfig configures the clustering pipeline.
type ClusteringConfig struct {
	Dimension     int    `yaml:"dimension"`
	PCADimensions int    `yaml:"pca_dimensions"`
	Algorithm     string `yaml:"algorithm"`
	MaxIterations int    `yaml:"max_iterations"`
	Seed          int64  `yaml:"seed"`
}

// LabelingConfig configures topic naming through an OpenAI-compatible endpoint.
type LabelingConfig struct {
	Enabled          bool    `yaml:"enabled"`
	BaseURL          string  `yaml:"base_url"`
	APIKeyEnv        string  `yaml:"api_key_env"`
	Model            string  `yaml:"model"`
	Temperature      float64 `yaml:"temperature"`
	MaxTokens        int     `yaml:"max_tokens"`
	TimeoutSecs      int     `yaml:"timeout_secs"`
	MaxRetries       int     `yaml:"max_retries"`
	RequestsPerSec   float64 `yaml:"requests_per_sec"`
	// NTopics left at 0 labels up to labeling.DefaultTopics clusters, fewer
	// when the run produced fewer clusters. A positive value is a hard request.
	NTopics          int     `yaml:"n_topics"`
	ElementsPerGroup int     `yaml:"elements_per_group"`
}

// RedisConfig contains connection details for the Redis label cache.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTLSecs  int    `yaml:"ttl_secs"`
}

// CacheConfig selects and configures the label cache.
type CacheConfig struct {
	Type  string       `yaml:"type"`
	Size  int          `yaml:"size"`
	Redis *RedisConfig `yaml:"redis,omitempty"`
}

// LogConfig configures the CLI logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// MetricsConfig configures the Prometheus exporter. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Clustering ClusteringConfig `yaml:"clustering"`
	Labeling   LabelingConfig   `yaml:"labeling"`
	Cache      CacheConfig      `yaml:"cache"`
	Log        LogConfig        `yaml:"log"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// Load reads a config from path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	// Fields absent from the file keep their defaults; explicit zeros such as
	// seed: 0 or max_retries: 0 are kept as written.
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	applyConfigDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects settings the CLI cannot act on.
func (c *AppConfig) Validate() error {
	switch c.Cache.Type {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Cache.Redis == nil || c.Cache.Redis.Addr == "" {
			return errors.New("redis cache requires cache.redis.addr")
		}
	default:
		return fmt.Errorf("unknown cache type: %s", c.Cache.Type)
	}
	if c.Labeling.MaxRetries < 0 {
		return fmt.Errorf("labeling.max_retries must not be negative, got %d", c.Labeling.MaxRetries)
	}
	if c.Labeling.NTopics < 0 {
		return fmt.Errorf("labeling.n_topics must not be negative, got %d", c.Labeling.NTopics)
	}
	if c.Clustering.PCADimensions < 1 {
		return fmt.Errorf("clustering.pca_dimensions must be positive, got %d", c.Clustering.PCADimensions)
	}
	return nil
}

// Trends converts the clustering section to a pipeline config.
func (c *AppConfig) Trends() trends.Config {
	return trends.Config{
		Dimension:     c.Clustering.Dimension,
		PCADimensions: c.Clustering.PCADimensions,
		Algorithm:     trends.Algorithm(c.Clustering.Algorithm),
		MaxIterations: c.Clustering.MaxIterations,
		Seed:          c.Clustering.Seed,
	}
}

// Chat converts the labeling section to a chat labeler config.
func (c *AppConfig) Chat() labeling.ChatConfig {
	return labeling.ChatConfig{
		BaseURL:     c.Labeling.BaseURL,
		APIKeyEnv:   c.Labeling.APIKeyEnv,
		Model:       c.Labeling.Model,
		Temperature: c.Labeling.Temperature,
		MaxTokens:   c.Labeling.MaxTokens,
		Timeout:     time.Duration(c.Labeling.TimeoutSecs) * time.Second,
		MaxRetries:  c.Labeling.MaxRetries,

		RequestsPerSecond: c.Labeling.RequestsPerSec,
	}
}

// ClassifyOptions converts the labeling section to classifier options.
func (c *AppConfig) ClassifyOptions() labeling.Options {
	return labeling.Options{
		NTopics:          c.Labeling.NTopics,
		ElementsPerGroup: c.Labeling.ElementsPerGroup,
	}
}

// RedisCache converts the redis section to a cache config. It returns the
// zero value when no redis section is set.
func (c *AppConfig) RedisCache() cache.RedisConfig {
	if c.Cache.Redis == nil {
		return cache.RedisConfig{}
	}
	return cache.RedisConfig{
		Addr:     c.Cache.Redis.Addr,
		Password: c.Cache.Redis.Password,
		DB:       c.Cache.Redis.DB,
		TTL:      time.Duration(c.Cache.Redis.TTLSecs) * time.Second,
	}
}

func defaultConfig() *AppConfig {
	tc := trends.DefaultConfig()
	chat := labeling.DefaultChatConfig()
	return &AppConfig{
		Clustering: ClusteringConfig{
			Dimension:     tc.Dimension,
			PCADimensions: tc.PCADimensions,
			Algorithm:     string(tc.Algorithm),
			MaxIterations: tc.MaxIterations,
			Seed:          tc.Seed,
		},
		Labeling: LabelingConfig{
			BaseURL:          chat.BaseURL,
			APIKeyEnv:        chat.APIKeyEnv,
			Model:            chat.Model,
			Temperature:      chat.Temperature,
			MaxTokens:        chat.MaxTokens,
			TimeoutSecs:      int(chat.Timeout / time.Second),
			MaxRetries:       chat.MaxRetries,
			ElementsPerGroup: labeling.DefaultElementsPerGroup,
		},
		Cache: CacheConfig{Type: CacheNone, Size: defaultCacheSize},
		Log:   LogConfig{Level: "info"},
	}
}

// applyConfigDefaults restores defaults only where a zero value cannot be
// meant literally: empty names, a zero-sized cache, a zero timeout.
func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Clustering.Algorithm == "" {
		cfg.Clustering.Algorithm = def.Clustering.Algorithm
	}
	if cfg.Labeling.BaseURL == "" {
		cfg.Labeling.BaseURL = def.Labeling.BaseURL
	}
	if cfg.Labeling.APIKeyEnv == "" {
		cfg.Labeling.APIKeyEnv = def.Labeling.APIKeyEnv
	}
	if cfg.Labeling.Model == "" {
		cfg.Labeling.Model = def.Labeling.Model
	}
	if cfg.Labeling.MaxTokens <= 0 {
		cfg.Labeling.MaxTokens = def.Labeling.MaxTokens
	}
	if cfg.Labeling.TimeoutSecs <= 0 {
		cfg.Labeling.TimeoutSecs = def.Labeling.TimeoutSecs
	}
	if cfg.Cache.Type == "" {
		cfg.Cache.Type = CacheNone
	}
	if cfg.Cache.Size <= 0 {
		cfg.Cache.Size = defaultCacheSize
	}
	if cfg.Cache.Redis != nil && cfg.Cache.Redis.TTLSecs <= 0 {
		cfg.Cache.Redis.TTLSecs = int((24 * time.Hour) / time.Second)
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
}
