package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"
	"github.com/nicholasjackson/env"

	"github.com/kahvecikaan/product-catalog/internal/app"
	"github.com/kahvecikaan/product-catalog/internal/config"
	"github.com/kahvecikaan/product-catalog/internal/repository/postgres"
)

// Environment variables
var (
	bindAddress = env.String("BIND_ADDRESS", false,
		":9090", "Bind address for the server")
	logLevel = env.String("LOG_LEVEL", false,
		"", "Log output level for the server [trace, debug, info, warn, error]; defaults from the profile")
	profileName = env.String("PRODUCT_API_ENV", false,
		string(config.Default), "Configuration profile [dev, test, stage, prod, default]")
	settingsFile = env.String("PRODUCT_API_SETTINGS", false,
		"", "Optional settings file layered over the profile")
	runMigrations = env.Bool("RUN_MIGRATIONS", false,
		false, "Apply database migrations before serving")
	rateLimit = env.String("RATE_LIMIT", false,
		"", "Per-client rate limit, e.g. 100-M; empty disables it")
	corsOrigins = env.String("CORS_ORIGINS", false,
		"*", "Comma separated list of allowed CORS origins")
)

func main() {
	// a missing .env file is fine
	_ = godotenv.Load()

	if err := env.Parse(); err != nil {
		hclog.Default().Error("Unable to parse environment", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*profileName, *settingsFile)
	if err != nil {
		hclog.Default().Error("Unable to load configuration", "profile", *profileName, "error", err)
		os.Exit(1)
	}

	logger := app.NewLogger(cfg, *logLevel)
	logger.Info("Loaded configuration",
		"profile", cfg.Profile,
		"debug", cfg.Debug,
		"testing", cfg.Testing,
		"track_modifications", cfg.TrackModifications,
	)

	if *runMigrations && app.UsesMigrations(cfg.DatabaseURL) {
		if err := postgres.Migrate(cfg.DatabaseURL, logger.Named("migrate")); err != nil {
			logger.Error("Failed to apply migrations", "error", err)
			os.Exit(1)
		}
	}

	startCtx, startCancel := context.WithTimeout(context.Background(), 10*time.Second)
	application, err := app.New(startCtx, cfg, logger, app.Options{
		CORSOrigins: splitList(*corsOrigins),
		RateLimit:   *rateLimit,
	})
	startCancel()
	if err != nil {
		logger.Error("Unable to start application", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	// Create a standard logger for the HTTP server
	standardLogger := logger.StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true})

	server := &http.Server{
		Addr:         *bindAddress,
		Handler:      application.Handler,
		ErrorLog:     standardLogger,
		IdleTimeout:  120 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "bind_address", *bindAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutting down server", "signal", sig)
	case err := <-serverErr:
		logger.Error("Error starting server", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", "error", err)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
