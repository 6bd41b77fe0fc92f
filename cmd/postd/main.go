// ABOUTME: Entry point for the postd posts server
// ABOUTME: Wires config, store, action engine, broker, and HTTP API together

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/tsione/sangria-graphql-subscriptions/internal/api"
	"github.com/tsione/sangria-graphql-subscriptions/internal/config"
	"github.com/tsione/sangria-graphql-subscriptions/internal/post"
	"github.com/tsione/sangria-graphql-subscriptions/internal/pubsub"
	"github.com/tsione/sangria-graphql-subscriptions/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

// getConfigPath returns the path to the postd config file.
// Priority: -config flag > POSTD_CONFIG env var > XDG_CONFIG_HOME/postd/postd.yaml > ~/.config/postd/postd.yaml
func getConfigPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}

	if envPath := os.Getenv("POSTD_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "postd.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "postd", "postd.yaml")
}

// setupLogger configures the default slog logger from config.
func setupLogger(cfg config.LoggingConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}

func main() {
	flagSet := flag.NewFlagSet("postd", flag.ExitOnError)
	configPath := flagSet.String("config", "", "path to config file")
	flagSet.Parse(os.Args[1:])

	if err := run(getConfigPath(*configPath)); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config %s: %w", configPath, err)
	}

	setupLogger(cfg.Logging)
	logger := slog.Default()
	logger.Info("starting postd", "version", version, "config", configPath)

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	// Explicit construction, no implicit resolution: the engine and broker
	// are built once here and handed to the API by reference.
	posts := post.NewService(st, logger)
	broker := pubsub.NewBroker(cfg.Broker.BufferSize, logger)
	defer broker.Close()

	server := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: api.NewServer(posts, broker, logger).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.Server.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	}

	// Close the broker first so live event streams end cleanly, then drain
	// in-flight requests.
	broker.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	logger.Info("postd stopped")
	return nil
}
