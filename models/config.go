// Package models defines data structures for configuration, pipeline input and results.
package models

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration. Values come from defaults, an optional
// YAML file, MAILPARSE_* environment variables and finally CLI flags.
type Config struct {
	IncludeSignature bool          `yaml:"include_signature"`
	FullThread       bool          `yaml:"full_thread"`
	DetectLanguage   bool          `yaml:"detect_language"`
	Languages        []string      `yaml:"languages"`
	ExtractTimeout   time.Duration `yaml:"extract_timeout"`
	WorkerCount      int           `yaml:"workers"`
	OutputDir        string        `yaml:"output_dir"`
	DBPath           string        `yaml:"db_path"`
	CacheDir         string        `yaml:"cache_dir"`
	CacheTTL         time.Duration `yaml:"cache_ttl"`
	LogLevel         string        `yaml:"log_level"`
}

// DefaultConfig returns the configuration used when nothing else is supplied.
func DefaultConfig() *Config {
	return &Config{
		IncludeSignature: true,
		Languages:        []string{"en", "nl", "de", "fr", "es", "it", "pt"},
		ExtractTimeout:   5 * time.Second,
		WorkerCount:      4,
		OutputDir:        "mailparse-results",
		DBPath:           "mailparse.db",
		CacheTTL:         24 * time.Hour,
		LogLevel:         "info",
	}
}

// LoadConfig reads a YAML file over the defaults and applies environment overrides.
// An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvVars()

	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	return cfg, nil
}

// ExtractOptions returns the per-request options implied by the configuration.
func (c *Config) ExtractOptions() ExtractOptions {
	return ExtractOptions{
		IncludeSignature: c.IncludeSignature,
		FullThread:       c.FullThread,
	}
}

// applyEnvVars overrides configuration with non-empty environment variables.
func (c *Config) applyEnvVars() {
	if v := os.Getenv("MAILPARSE_INCLUDE_SIGNATURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.IncludeSignature = b
		}
	}
	if v := os.Getenv("MAILPARSE_FULL_THREAD"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.FullThread = b
		}
	}
	if v := os.Getenv("MAILPARSE_DETECT_LANGUAGE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.DetectLanguage = b
		}
	}
	if v := os.Getenv("MAILPARSE_LANGUAGES"); v != "" {
		var langs []string
		for _, l := range strings.Split(v, ",") {
			if l = strings.TrimSpace(l); l != "" {
				langs = append(langs, strings.ToLower(l))
			}
		}
		c.Languages = langs
	}
	if v := os.Getenv("MAILPARSE_EXTRACT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.ExtractTimeout = d
		}
	}
	if v := os.Getenv("MAILPARSE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.WorkerCount = n
		}
	}
	if v := os.Getenv("MAILPARSE_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("MAILPARSE_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("MAILPARSE_CACHE_DIR"); v != "" {
		c.CacheDir = v
	}
	if v := os.Getenv("MAILPARSE_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.CacheTTL = d
		}
	}
	if v := os.Getenv("MAILPARSE_LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
}
