package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".crawlmd"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the on-disk YAML configuration. Every field is optional; unset
// fields keep their defaults.
type File struct {
	// MaxDepth overrides the default crawl depth.
	MaxDepth *int `yaml:"max_depth"`

	// IncludeExternal overrides the external-link policy.
	IncludeExternal *bool `yaml:"include_external"`

	// MaxPages overrides the per-crawl page cap.
	MaxPages *int `yaml:"max_pages"`

	// RequestsPerSecond overrides the politeness rate limit.
	RequestsPerSecond *float64 `yaml:"requests_per_second"`

	// TimeoutSeconds overrides the per-request HTTP timeout.
	TimeoutSeconds *int `yaml:"timeout_seconds"`

	// UserAgent overrides the engine's User-Agent header.
	UserAgent *string `yaml:"user_agent"`

	// RespectRobots overrides robots.txt enforcement.
	RespectRobots *bool `yaml:"respect_robots"`

	// Strategy overrides the extraction strategy.
	Strategy *string `yaml:"strategy"`

	// ResultsDir overrides the report artifact directory.
	ResultsDir *string `yaml:"results_dir"`

	// History overrides crawl-history persistence.
	History *bool `yaml:"history"`
}

// LoadConfigFile loads overrides from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound; callers decide
// whether that matters based on whether the path was explicit.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// FindConfigFile searches for the configuration file:
// 1. If configPath is specified, use it directly
// 2. Look for .crawlmd in the current directory
// 3. Look for .crawlmd in the user's home directory
//
// Returns the path if found, or empty string.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// Apply overlays the file's set fields onto the config.
func (c *Config) Apply(f *File) {
	if f == nil {
		return
	}
	if f.MaxDepth != nil {
		c.MaxDepth = *f.MaxDepth
	}
	if f.IncludeExternal != nil {
		c.IncludeExternal = *f.IncludeExternal
	}
	if f.MaxPages != nil {
		c.MaxPages = *f.MaxPages
	}
	if f.RequestsPerSecond != nil {
		c.RequestsPerSecond = *f.RequestsPerSecond
	}
	if f.TimeoutSeconds != nil {
		c.Timeout = time.Duration(*f.TimeoutSeconds) * time.Second
	}
	if f.UserAgent != nil {
		c.UserAgent = *f.UserAgent
	}
	if f.RespectRobots != nil {
		c.RespectRobots = *f.RespectRobots
	}
	if f.Strategy != nil {
		c.Strategy = *f.Strategy
	}
	if f.ResultsDir != nil {
		c.ResultsDir = *f.ResultsDir
	}
	if f.History != nil {
		c.History = *f.History
	}
}
