// Package config loads the owning process configuration from a YAML file
// with environment variable overrides. Library packages stay configured
// through functional options; this package serves cmd/seeker.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Search  SearchConfig  `yaml:"search"`
	Homing  HomingConfig  `yaml:"homing"`
	Guard   GuardConfig   `yaml:"guard"`
	Vision  VisionConfig  `yaml:"vision"`
	Logging LoggingConfig `yaml:"logging"`
}

type StoreConfig struct {
	Path           string `yaml:"path" env:"SEEKER_STORE_PATH"`
	RetentionHours int    `yaml:"retention_hours" env:"SEEKER_STORE_RETENTION_HOURS"`
}

type SearchConfig struct {
	MaxTotalSeconds int  `yaml:"max_total_seconds" env:"SEEKER_SEARCH_MAX_TOTAL_SECONDS"`
	MaxDetections   int  `yaml:"max_detections" env:"SEEKER_SEARCH_MAX_DETECTIONS"`
	UseLearning     bool `yaml:"use_learning" env:"SEEKER_SEARCH_USE_LEARNING"`
}

type HomingConfig struct {
	MinDistanceCM      float64 `yaml:"min_distance_cm" env:"SEEKER_HOMING_MIN_DISTANCE_CM"`
	MaxApproachSeconds int     `yaml:"max_approach_seconds" env:"SEEKER_HOMING_MAX_APPROACH_SECONDS"`
	MaxIterations      int     `yaml:"max_iterations" env:"SEEKER_HOMING_MAX_ITERATIONS"`
}

type GuardConfig struct {
	DangerDistanceCM float64 `yaml:"danger_distance_cm" env:"SEEKER_GUARD_DANGER_DISTANCE_CM"`
	ClearDistanceCM  float64 `yaml:"clear_distance_cm" env:"SEEKER_GUARD_CLEAR_DISTANCE_CM"`
}

type VisionConfig struct {
	// Provider selects the detection backend: "openai", "anthropic" or "sim".
	Provider string `yaml:"provider" env:"SEEKER_VISION_PROVIDER"`
	APIKey   string `yaml:"api_key" env:"SEEKER_VISION_API_KEY"`
	Model    string `yaml:"model" env:"SEEKER_VISION_MODEL"`
	// RatePerSecond limits detection calls toward the backend.
	RatePerSecond float64 `yaml:"rate_per_second" env:"SEEKER_VISION_RATE_PER_SECOND"`
	MaxFailures   int     `yaml:"max_failures" env:"SEEKER_VISION_MAX_FAILURES"`
}

type LoggingConfig struct {
	Level string `yaml:"level" env:"SEEKER_LOG_LEVEL"`
	// Format is "text" or "json".
	Format    string `yaml:"format" env:"SEEKER_LOG_FORMAT"`
	AddSource bool   `yaml:"add_source" env:"SEEKER_LOG_ADD_SOURCE"`
}

// Default returns the configuration used when no file or overrides exist.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Path:           "seeker_map.json",
			RetentionHours: 24,
		},
		Search: SearchConfig{
			MaxTotalSeconds: 300,
			MaxDetections:   0,
			UseLearning:     true,
		},
		Homing: HomingConfig{
			MinDistanceCM:      15,
			MaxApproachSeconds: 30,
			MaxIterations:      8,
		},
		Guard: GuardConfig{
			DangerDistanceCM: 20,
			ClearDistanceCM:  30,
		},
		Vision: VisionConfig{
			Provider:      "sim",
			RatePerSecond: 2,
			MaxFailures:   3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path on top of the defaults and then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}
	return cfg, nil
}

// Retention returns the store retention window.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.Store.RetentionHours) * time.Hour
}

// MaxTotalTime returns the overall search budget.
func (c *Config) MaxTotalTime() time.Duration {
	return time.Duration(c.Search.MaxTotalSeconds) * time.Second
}

// MaxApproachTime returns the homing time budget.
func (c *Config) MaxApproachTime() time.Duration {
	return time.Duration(c.Homing.MaxApproachSeconds) * time.Second
}
