package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"pdfserve/internal/config"
)

// cliFlags holds parsed command-line values.
type cliFlags struct {
	config    string
	addr      string
	tempRoot  string
	workers   int
	logLevel  string
	logFormat string
	version   bool
}

// parseFlags parses args and returns the flag values plus the flag set so
// callers can check which flags were explicitly changed.
func parseFlags(args []string) (*cliFlags, *pflag.FlagSet, error) {
	flags := &cliFlags{}
	fs := pflag.NewFlagSet("pdfserve", pflag.ContinueOnError)

	fs.StringVarP(&flags.config, "config", "c", "", "path to YAML config file")
	fs.StringVar(&flags.addr, "addr", ":8080", "HTTP listen address")
	fs.StringVar(&flags.tempRoot, "temp-root", "", "root directory for request workspaces (default: OS temp dir)")
	fs.IntVar(&flags.workers, "workers", 0, "browser pool size (0 = auto)")
	fs.StringVar(&flags.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.StringVar(&flags.logFormat, "log-format", "json", "log format: json, console")
	fs.BoolVarP(&flags.version, "version", "V", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return flags, fs, nil
}

// mergeFlags applies explicitly-set flags over the config.
// Precedence: flags > env vars > config file > defaults.
func mergeFlags(flags *cliFlags, fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("addr") {
		cfg.Server.Addr = flags.addr
	}
	if fs.Changed("temp-root") {
		cfg.Storage.TempRoot = flags.tempRoot
	}
	if fs.Changed("workers") {
		cfg.Render.Workers = flags.workers
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if fs.Changed("log-format") {
		cfg.Log.Format = flags.logFormat
	}
}

// resolveConfig layers file, environment, and flag values into the final
// configuration.
func resolveConfig(flags *cliFlags, fs *pflag.FlagSet) (*config.Config, error) {
	env := loadEnvConfig()

	path := flags.config
	if path == "" {
		path = env.ConfigPath
	}

	var cfg *config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.DefaultConfig()
	}

	applyEnvConfig(env, cfg)
	mergeFlags(flags, fs, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
