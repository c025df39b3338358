// Package config loads settings for the steganography tools.
//
// Settings are resolved in three layers, later layers winning:
//   - built-in defaults (see Default)
//   - an optional YAML file, named by the --config flag or the
//     STEGO_MCP_CONFIG environment variable
//   - STEGO_MCP_* environment variables
//
// A missing file named explicitly is an error; no file is searched for
// implicitly.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/stego-tools-mcp/internal/imaging"
	"github.com/ironsheep/stego-tools-mcp/internal/lsb"
)

// Environment variable names.
const (
	EnvConfig       = "STEGO_MCP_CONFIG"
	EnvLogLevel     = "STEGO_MCP_LOG_LEVEL"
	EnvBits         = "STEGO_MCP_BITS"
	EnvScale        = "STEGO_MCP_SCALE"
	EnvFilter       = "STEGO_MCP_FILTER"
	EnvOutputFormat = "STEGO_MCP_OUTPUT_FORMAT"
	EnvOutputDir    = "STEGO_MCP_OUTPUT_DIR"
)

// Config holds defaults applied when a request leaves a parameter unset.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// BitsPerChannel is the default k for encode and decode.
	BitsPerChannel int `yaml:"bits_per_channel"`

	// Scale is the default enlargement applied to covers before embedding.
	Scale float64 `yaml:"scale"`

	// Filter is the default resampling filter.
	Filter string `yaml:"filter"`

	// OutputFormat is the default lossless format for stego images.
	OutputFormat string `yaml:"output_format"`

	// OutputDir receives stego images when a request names no output path.
	// Empty means next to the cover image.
	OutputDir string `yaml:"output_dir"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:       "info",
		BitsPerChannel: 1,
		Scale:          1,
		Filter:         imaging.DefaultFilter,
		OutputFormat:   imaging.DefaultFormat,
	}
}

// Load resolves the configuration. path overrides STEGO_MCP_CONFIG; when
// both are empty only defaults and environment variables apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvBits); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvBits, err)
		}
		c.BitsPerChannel = k
	}
	if v := os.Getenv(EnvScale); v != "" {
		s, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvScale, err)
		}
		c.Scale = s
	}
	if v := os.Getenv(EnvFilter); v != "" {
		c.Filter = v
	}
	if v := os.Getenv(EnvOutputFormat); v != "" {
		c.OutputFormat = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.OutputDir = v
	}
	return nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.BitsPerChannel < lsb.MinBitsPerChannel || c.BitsPerChannel > lsb.MaxBitsPerChannel {
		errs = append(errs, fmt.Errorf("bits_per_channel must be between %d and %d, got %d",
			lsb.MinBitsPerChannel, lsb.MaxBitsPerChannel, c.BitsPerChannel))
	}
	if !(c.Scale >= 1) {
		errs = append(errs, fmt.Errorf("scale must be >= 1, got %v", c.Scale))
	}
	if !imaging.ValidFilter(c.Filter) {
		errs = append(errs, fmt.Errorf("unknown filter %q (available: %s)", c.Filter, strings.Join(imaging.Filters(), ", ")))
	}
	if !imaging.IsLossless(c.OutputFormat) {
		errs = append(errs, fmt.Errorf("output_format %q is not lossless (use png, bmp or tiff)", c.OutputFormat))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// Logger returns a text logger on stderr at the configured level. Stdout is
// reserved for protocol traffic.
func (c *Config) Logger() *slog.Logger {
	level, _ := ParseLevel(c.LogLevel)
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
