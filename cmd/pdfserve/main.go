package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"pdfserve"
	"pdfserve/internal/httpserver"
	"pdfserve/internal/logger"
	"pdfserve/internal/workspace"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags, fs, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if flags.version {
		fmt.Println("pdfserve " + Version)
		return 0
	}

	cfg, err := resolveConfig(flags, fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	warnUnknownEnvVars(os.Stderr)

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		log.Sugar().Infof(format, args...)
	}))

	workspaces, err := workspace.NewManager(cfg.Storage.TempRoot, log)
	if err != nil {
		log.Error("workspace root unavailable", zap.Error(err))
		return 1
	}

	svc, err := pdfserve.NewService(log,
		pdfserve.WithTimeout(time.Duration(cfg.Render.Timeout)),
		pdfserve.WithWorkers(cfg.Render.Workers))
	if err != nil {
		log.Error("service initialization failed", zap.Error(err))
		return 1
	}
	defer func() { _ = svc.Close() }()

	srv := httpserver.New(svc, workspaces, cfg.Stream.ChunkSize, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = srv.ListenAndServe(ctx, cfg.Server.Addr, time.Duration(cfg.Server.ReadHeaderTimeout))
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", zap.Error(err))
		return 1
	}
	return 0
}
