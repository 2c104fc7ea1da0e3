// Command environd runs the editor environment core as a daemon: it
// owns the state store, schedules idle saves, and serves the local IPC
// surface that editor invocations and the renderer talk to.
package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nightjar-editor/nightjar/internal/environment"
	"github.com/nightjar-editor/nightjar/internal/headless"
	"github.com/nightjar-editor/nightjar/internal/infrastructure/config"
	"github.com/nightjar-editor/nightjar/internal/infrastructure/monitoring"
	"github.com/nightjar-editor/nightjar/internal/logging"
	"github.com/nightjar-editor/nightjar/internal/project"
	"github.com/nightjar-editor/nightjar/internal/scheduler"
	"github.com/nightjar-editor/nightjar/internal/server"
	"github.com/nightjar-editor/nightjar/internal/statestore"
	"go.uber.org/zap"
)

func main() {
	dbPath := flag.String("state-db", "", "SQLite state database path (overrides NIGHTJAR_STATE_DB)")
	port := flag.String("port", "", "IPC server port (overrides NIGHTJAR_PORT)")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *dbPath != "" {
		cfg.State.DatabasePath = *dbPath
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stdout"},
	})
	if err != nil {
		logger = logging.NewDefault()
	}
	defer logger.Sync()

	logger.Info("starting environment core",
		zap.String("version", cfg.Window.Version),
		zap.String("state_db", cfg.State.DatabasePath))

	metrics, registry := monitoring.NewMetrics()

	store, err := statestore.NewSQLiteStore(cfg.State.DatabasePath)
	if err != nil {
		logger.Fatal("failed to create state store", zap.Error(err))
	}

	env, err := environment.New(environment.Options{
		Store:         store,
		Project:       project.New(),
		Workspace:     headless.NewWorkspace(),
		Windows:       headless.NewWindows(logger),
		Notifications: headless.NewNotifier(logger),
		Version:       cfg.Window.Version,
		DevMode:       cfg.Window.DevMode,
		SafeMode:      cfg.Window.SafeMode,
		SaveDebounce:  cfg.State.SaveDebounce,
		IdleHost:      &scheduler.DelayIdleHost{Delay: 50 * time.Millisecond},
		Logger:        logger,
		Metrics:       metrics,
	})
	if err != nil {
		logger.Fatal("failed to create environment", zap.Error(err))
	}

	ctx := context.Background()
	if err := env.Initialize(ctx); err != nil {
		logger.Fatal("failed to initialize environment", zap.Error(err))
	}
	env.ListenForUpdates()

	srv := server.NewServer(env, server.Options{
		Version:  cfg.Window.Version,
		Logger:   logger,
		Registry: registry,
	})

	uptimeTicker := time.NewTicker(15 * time.Second)
	defer uptimeTicker.Stop()
	go func() {
		for range uptimeTicker.C {
			metrics.UpdateUptime()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
		if err := srv.Run(addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown error", zap.Error(err))
	}
	if err := env.Unload(shutdownCtx); err != nil {
		logger.Warn("unload error", zap.Error(err))
	}
	env.Destroy()
}
