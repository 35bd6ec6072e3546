// Package main provides the entry point for eigenlog-server, the HTTP
// collector and query daemon for eigenlog.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/eigenlog/eigenlog/internal/config"
	"github.com/eigenlog/eigenlog/internal/httpapi"
	"github.com/eigenlog/eigenlog/internal/infra/buildinfo"
	"github.com/eigenlog/eigenlog/internal/infra/shutdown"
	"github.com/eigenlog/eigenlog/internal/metrics"
	"github.com/eigenlog/eigenlog/internal/storage"
	"github.com/eigenlog/eigenlog/internal/storage/badger"
	"github.com/eigenlog/eigenlog/internal/telemetry/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// overrideFlags collects repeated -set key=value flags into a map,
// implementing flag.Value.
type overrideFlags map[string]string

func (o overrideFlags) String() string {
	return fmt.Sprintf("%v", map[string]string(o))
}

func (o overrideFlags) Set(kv string) error {
	key, value, ok := strings.Cut(kv, "=")
	if !ok {
		return fmt.Errorf("expected key=value, got %q", kv)
	}
	o[key] = value
	return nil
}

func run() error {
	overrides := overrideFlags{}
	var (
		configFile  = flag.String("config", "", "path to configuration file")
		showVersion = flag.Bool("version", false, "show version information")
	)
	flag.Var(overrides, "set", "override a config value, dotted-key=value (repeatable)")
	flag.Parse()

	if *showVersion {
		fmt.Println("eigenlog-server " + buildinfo.String())
		return nil
	}

	cfg, err := config.LoadWithOverrides(*configFile, overrides)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, slogLogger, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log.Info("starting eigenlog-server", "version", buildinfo.Version, "commit", buildinfo.Commit, "config", *configFile)

	engine, err := initStorage(cfg, slogLogger)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	allowlist := httpapi.NewAllowlist(cfg.Server.APIKeys)

	var watcher *config.Watcher
	if *configFile != "" {
		watcher, err = config.NewWatcher(*configFile, slogLogger)
		if err != nil {
			log.Warn("config hot-reload disabled", "error", err)
		} else {
			watcher.OnChange(func(reloaded *config.Config) {
				allowlist.Replace(reloaded.Server.APIKeys)
			})
			watcher.StartAsync()
		}
	}

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Engine:          engine,
		Allowlist:       allowlist,
		Logger:          slogLogger,
		SubmitRateLimit: cfg.Server.SubmitRateLimit,
	})
	httpServer := httpapi.New(cfg.Server.BindAddr, router)

	shutdownHandler := shutdown.NewHandler(30*time.Second, slogLogger)
	shutdownHandler.OnShutdown("storage-engine", func(ctx context.Context) error {
		return engine.Close()
	})
	shutdownHandler.OnShutdown("config-watcher", func(ctx context.Context) error {
		if watcher != nil {
			return watcher.Stop()
		}
		return nil
	})
	shutdownHandler.OnShutdown("http-server", func(ctx context.Context) error {
		return httpServer.Shutdown(ctx)
	})

	go func() {
		log.Info("HTTP server listening", "addr", cfg.Server.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

func initLogger(cfg *config.Config) (logger.Logger, *slog.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.SetDefault(log)
	return log, slog.Default(), nil
}

func initStorage(cfg *config.Config, log *slog.Logger) (storage.Engine, error) {
	store, err := badger.Open(badger.Options{Dir: cfg.Storage.DataDir, Logger: log})
	if err != nil {
		return nil, err
	}
	reg := metrics.NewRegistry(nil)
	return storage.New(store, log).WithMetrics(reg), nil
}
