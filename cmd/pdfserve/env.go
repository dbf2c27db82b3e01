package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"pdfserve/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides container-friendly overrides without requiring a YAML file.
type envConfig struct {
	ConfigPath string        // PDFSERVE_CONFIG: config file path
	Addr       string        // PDFSERVE_ADDR: listen address
	TempRoot   string        // PDFSERVE_TEMP_ROOT: workspace root directory
	Timeout    time.Duration // PDFSERVE_TIMEOUT: per-render timeout
	Workers    int           // PDFSERVE_WORKERS: browser pool size
	ChunkSize  int           // PDFSERVE_CHUNK_SIZE: streaming chunk bytes
	LogLevel   string        // PDFSERVE_LOG_LEVEL: debug, info, warn, error
	LogFormat  string        // PDFSERVE_LOG_FORMAT: json, console
}

// knownEnvVars lists valid PDFSERVE_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"PDFSERVE_CONFIG":     true,
	"PDFSERVE_ADDR":       true,
	"PDFSERVE_TEMP_ROOT":  true,
	"PDFSERVE_TIMEOUT":    true,
	"PDFSERVE_WORKERS":    true,
	"PDFSERVE_CHUNK_SIZE": true,
	"PDFSERVE_LOG_LEVEL":  true,
	"PDFSERVE_LOG_FORMAT": true,
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("PDFSERVE_CONFIG"),
		Addr:       os.Getenv("PDFSERVE_ADDR"),
		TempRoot:   os.Getenv("PDFSERVE_TEMP_ROOT"),
		LogLevel:   os.Getenv("PDFSERVE_LOG_LEVEL"),
		LogFormat:  os.Getenv("PDFSERVE_LOG_FORMAT"),
	}

	if timeout := os.Getenv("PDFSERVE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("PDFSERVE_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	if chunk := os.Getenv("PDFSERVE_CHUNK_SIZE"); chunk != "" {
		if c, err := strconv.Atoi(chunk); err == nil && c > 0 {
			cfg.ChunkSize = c
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized PDFSERVE_* variables.
// Helps catch typos like PDFSERVE_WORKER instead of PDFSERVE_WORKERS.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "PDFSERVE_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies set environment values over the config.
// Precedence: flags > env vars > config file > defaults
// (flags are applied later via mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if env.TempRoot != "" {
		cfg.Storage.TempRoot = env.TempRoot
	}
	if env.Timeout > 0 {
		cfg.Render.Timeout = config.Duration(env.Timeout)
	}
	if env.Workers > 0 {
		cfg.Render.Workers = env.Workers
	}
	if env.ChunkSize > 0 {
		cfg.Stream.ChunkSize = env.ChunkSize
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
}
