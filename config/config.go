// Package config holds the registry settings loaded from YAML.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// KindGraph selects the layered small-world graph builder.
	KindGraph = "graph"
	// KindCover selects the cover tree builder.
	KindCover = "cover"
	// KindBruteforce selects the exact scan builder.
	KindBruteforce = "bruteforce"

	// LockPerIndex guards each index with its own lock.
	LockPerIndex = "per_index"
	// LockGlobal serializes every registry operation.
	LockGlobal = "global"

	// DefaultSearchWidth is the candidate width used by Search.
	DefaultSearchWidth = 100
)

// Config configures a registry.
type Config struct {
	Kind        string       `yaml:"kind"`
	Metric      string       `yaml:"metric"`
	SearchWidth int          `yaml:"search_width"`
	Graph       GraphConfig  `yaml:"graph"`
	Cover       CoverConfig  `yaml:"cover"`
	Lock        string       `yaml:"lock"`
	Log         LogConfig    `yaml:"log"`
	Stores      StoresConfig `yaml:"stores"`
}

// GraphConfig tunes the graph builder.
type GraphConfig struct {
	MaxNeighbors      int    `yaml:"max_neighbors"`
	ConstructionWidth int    `yaml:"construction_width"`
	Seed              uint64 `yaml:"seed"`
}

// CoverConfig tunes the cover tree builder.
type CoverConfig struct {
	Base float64 `yaml:"base"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StoresConfig enables remote stream locations.
type StoresConfig struct {
	S3    S3Config    `yaml:"s3"`
	MinIO MinIOConfig `yaml:"minio"`
}

// S3Config enables s3:// locations using the default AWS credential chain.
type S3Config struct {
	Enabled bool   `yaml:"enabled"`
	Region  string `yaml:"region"`
}

// MinIOConfig enables minio:// locations when Endpoint is set.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Default returns the settings used when no file is configured.
func Default() *Config {
	return &Config{
		Kind:        KindGraph,
		Metric:      "angular",
		SearchWidth: DefaultSearchWidth,
		Graph: GraphConfig{
			MaxNeighbors:      16,
			ConstructionWidth: 100,
			Seed:              1,
		},
		Cover: CoverConfig{Base: 1.3},
		Lock:  LockPerIndex,
		Log:   LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field, normalizing case.
func (c *Config) Validate() error {
	c.Kind = strings.ToLower(strings.TrimSpace(c.Kind))
	switch c.Kind {
	case KindGraph, KindCover, KindBruteforce:
	default:
		return fmt.Errorf("config: unsupported kind %q", c.Kind)
	}
	switch strings.ToLower(strings.TrimSpace(c.Metric)) {
	case "", "angular", "cos", "cosine", "euclidean", "l2":
	default:
		return fmt.Errorf("config: unsupported metric %q", c.Metric)
	}
	if c.SearchWidth <= 0 {
		return fmt.Errorf("config: search_width must be positive, got %d", c.SearchWidth)
	}
	if c.Graph.MaxNeighbors < 2 {
		return fmt.Errorf("config: graph.max_neighbors must be at least 2, got %d", c.Graph.MaxNeighbors)
	}
	if c.Graph.ConstructionWidth <= 0 {
		return fmt.Errorf("config: graph.construction_width must be positive, got %d", c.Graph.ConstructionWidth)
	}
	if c.Cover.Base <= 1 {
		return fmt.Errorf("config: cover.base must be greater than 1, got %v", c.Cover.Base)
	}
	c.Lock = strings.ToLower(strings.TrimSpace(c.Lock))
	switch c.Lock {
	case LockPerIndex, LockGlobal:
	default:
		return fmt.Errorf("config: unsupported lock mode %q", c.Lock)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: unsupported log format %q", c.Log.Format)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unsupported log level %q", c.Log.Level)
	}
	return nil
}
