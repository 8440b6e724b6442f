package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	equipeapi "github.com/jumpingaccess/Hippodata2Equipe/internal/adapters/equipe"
	"github.com/jumpingaccess/Hippodata2Equipe/internal/adapters/hippodata"
	"github.com/jumpingaccess/Hippodata2Equipe/internal/adapters/http/api"
	"github.com/jumpingaccess/Hippodata2Equipe/internal/app"
	"github.com/jumpingaccess/Hippodata2Equipe/internal/config"
	"github.com/jumpingaccess/Hippodata2Equipe/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 120 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	source, err := hippodata.New(cfg.HippodataBaseURL, cfg.HippodataBearer,
		hippodata.WithTimeout(time.Duration(cfg.SourceTimeoutSeconds)*time.Second))
	if err != nil {
		os.Stderr.WriteString("failed to build hippodata client: " + err.Error() + "\n")
		return
	}

	target := equipeapi.New(
		equipeapi.WithTimeout(time.Duration(cfg.TargetTimeoutSeconds) * time.Second))

	svc, err := app.New(
		app.WithSource(source),
		app.WithTarget(target),
		app.WithLogger(log.Named("app")),
	)
	if err != nil {
		os.Stderr.WriteString("failed to build service: " + err.Error() + "\n")
		return
	}

	mux := http.NewServeMux()
	api.NewServer(svc).Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(context.Background(), "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(context.Background(), "shutdown failed", logger.Error(err))
	}
}
