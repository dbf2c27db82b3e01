// Package config defines the service configuration: listen address, temp
// root, chunk size, render limits, and logging. All process-lifetime state
// lives here and is passed explicitly to the components that need it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"pdfserve/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
)

// Chunk size bounds for streaming I/O.
const (
	MinChunkSize     = 4 << 10  // below this, flush overhead dominates
	MaxChunkSize     = 8 << 20  // above this, "bounded memory" stops meaning much
	DefaultChunkSize = 64 << 10 // matches the ingest copy buffer
)

// MaxWorkers caps the configurable browser pool size.
const MaxWorkers = 64

// Duration wraps time.Duration so YAML values like "30s" parse strictly.
type Duration time.Duration

// UnmarshalYAML implements yaml.BytesUnmarshaler.
func (d *Duration) UnmarshalYAML(b []byte) error {
	s := strings.Trim(string(b), `"'`)
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.BytesMarshaler.
func (d Duration) MarshalYAML() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config holds all service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Render  RenderConfig  `yaml:"render"`
	Storage StorageConfig `yaml:"storage"`
	Stream  StreamConfig  `yaml:"stream"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Addr              string   `yaml:"addr"`              // listen address, e.g. ":8080"
	ReadHeaderTimeout Duration `yaml:"readHeaderTimeout"` // slowloris protection
}

// RenderConfig bounds the rendering engine.
type RenderConfig struct {
	Timeout Duration `yaml:"timeout"` // per-render deadline
	Workers int      `yaml:"workers"` // browser pool size, 0 = auto
}

// StorageConfig locates request workspaces.
type StorageConfig struct {
	TempRoot string `yaml:"tempRoot"` // empty = OS temp directory
}

// StreamConfig tunes response streaming.
type StreamConfig struct {
	ChunkSize int `yaml:"chunkSize"` // bytes per read/write/flush cycle
}

// LogConfig defines logging output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: Duration(10 * time.Second),
		},
		Render: RenderConfig{
			Timeout: Duration(30 * time.Second),
			Workers: 0,
		},
		Storage: StorageConfig{TempRoot: ""},
		Stream:  StreamConfig{ChunkSize: DefaultChunkSize},
		Log:     LogConfig{Level: "info", Format: "json"},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr: cannot be empty")
	}
	if c.Server.ReadHeaderTimeout <= 0 {
		return fmt.Errorf("server.readHeaderTimeout: must be positive")
	}
	if c.Render.Timeout <= 0 {
		return fmt.Errorf("render.timeout: must be positive")
	}
	if c.Render.Workers < 0 || c.Render.Workers > MaxWorkers {
		return fmt.Errorf("render.workers: must be between 0 and %d, got %d", MaxWorkers, c.Render.Workers)
	}
	if c.Stream.ChunkSize < MinChunkSize || c.Stream.ChunkSize > MaxChunkSize {
		return fmt.Errorf("stream.chunkSize: must be between %d and %d, got %d", MinChunkSize, MaxChunkSize, c.Stream.ChunkSize)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: invalid value %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format: invalid value %q", c.Log.Format)
	}
	return nil
}

// LoadConfig reads a YAML config file over the defaults, so a partial file
// only overrides what it names. Unknown fields are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- config path is operator-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
