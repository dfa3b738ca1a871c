package common

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dtnitsch/email-reply-parser/models"
	"github.com/dtnitsch/email-reply-parser/pkg/metadata"
	"github.com/dtnitsch/email-reply-parser/pkg/mimeload"
	"github.com/dtnitsch/email-reply-parser/pkg/pipeline"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads the --config file and environment, then applies any
// flags the user set explicitly.
func LoadConfig(c *cli.Context) (*models.Config, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("include-signature") {
		cfg.IncludeSignature = c.Bool("include-signature")
	}
	if c.IsSet("full-thread") {
		cfg.FullThread = c.Bool("full-thread")
	}
	if c.IsSet("detect-language") {
		cfg.DetectLanguage = c.Bool("detect-language")
	}
	if c.IsSet("timeout") {
		cfg.ExtractTimeout = c.Duration("timeout")
	}
	if c.IsSet("workers") && c.Int("workers") > 0 {
		cfg.WorkerCount = c.Int("workers")
	}
	if c.IsSet("output-dir") {
		cfg.OutputDir = c.String("output-dir")
	}
	if c.IsSet("db-path") {
		cfg.DBPath = c.String("db-path")
	}
	if c.IsSet("cache-dir") {
		cfg.CacheDir = c.String("cache-dir")
	}
	if c.IsSet("cache-ttl") {
		cfg.CacheTTL = c.Duration("cache-ttl")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = strings.ToLower(c.String("log-level"))
	}
	return cfg, nil
}

// NewLogger builds the JSON stderr logger. --quiet wins over the configured level.
func NewLogger(c *cli.Context, cfg *models.Config) *slog.Logger {
	logLevel := ParseLevel(cfg.LogLevel)
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// ParseLevel maps debug|info|warn|error to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewPipeline constructs the pipeline the configuration describes.
func NewPipeline(cfg *models.Config, logger *slog.Logger) (*pipeline.Pipeline, error) {
	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithTimeout(cfg.ExtractTimeout),
	}
	if cfg.DetectLanguage {
		detector, err := metadata.NewLanguageDetector(cfg.Languages)
		if err != nil {
			return nil, fmt.Errorf("failed to build language detector: %w", err)
		}
		opts = append(opts, pipeline.WithLanguageDetector(detector))
	}
	return pipeline.New(opts...), nil
}

// LoadInput reads one input file. .eml files are parsed as MIME messages;
// anything else is taken as the raw body. The returned size is the file size.
func LoadInput(path string) (models.RawEmail, int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.RawEmail{}, 0, fmt.Errorf("failed to stat input: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".eml") {
		email, err := mimeload.LoadFile(path)
		if err != nil {
			return email, info.Size(), fmt.Errorf("failed to load %s: %w", path, err)
		}
		return email, info.Size(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return models.RawEmail{}, info.Size(), fmt.Errorf("failed to read input: %w", err)
	}
	return models.RawEmail{HTML: string(data)}, info.Size(), nil
}

// Marshal renders v as yaml or indented json.
func Marshal(v interface{}, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return yaml.Marshal(v)
	case "json", "":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
}

// FilterResultFields keeps only the requested top-level fields of result.
// An empty field list keeps everything.
func FilterResultFields(result interface{}, fieldsStr string) map[string]interface{} {
	fullMap := structToMap(result)
	if fieldsStr == "" {
		return fullMap
	}

	filtered := make(map[string]interface{})
	for _, field := range strings.Split(fieldsStr, ",") {
		field = strings.TrimSpace(field)
		if value, ok := fullMap[field]; ok {
			filtered[field] = value
		}
	}
	return filtered
}

// structToMap converts a struct to map[string]interface{} using JSON marshaling.
func structToMap(obj interface{}) map[string]interface{} {
	data, _ := json.Marshal(obj)
	var result map[string]interface{}
	_ = json.Unmarshal(data, &result)
	return result
}
