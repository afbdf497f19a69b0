package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/2187Nick/schwab-market-depth/internal/api"
	"github.com/2187Nick/schwab-market-depth/internal/bootstrap"
	"github.com/2187Nick/schwab-market-depth/pkg/config"
	"github.com/2187Nick/schwab-market-depth/pkg/logger"
	"github.com/2187Nick/schwab-market-depth/pkg/questdb"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	lg, err := logger.NewLogger(logger.WithLoggingLevel(logger.Level(cfg.App.LogLevel)))
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer lg.Sync()

	questdbClient, err := questdb.NewClient(ctx, cfg.QuestDB)
	if err != nil {
		lg.Error(err)
		os.Exit(1)
	}
	defer questdbClient.Close()

	lg.Info("QuestDB client connected")

	b := (&bootstrap.Bootstrap{}).Init(bootstrap.Config{
		QuestDB: questdbClient,
		Logger:  lg,
		Role:    bootstrap.RoleQuery,
	})

	server := api.NewServer(b.Usecase.Depth, b.Registry, questdbClient, lg)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: server.Handler(),
	}

	go func() {
		lg.Info("query service started",
			logger.Field{Key: "app", Value: cfg.App.Name},
			logger.Field{Key: "environment", Value: cfg.App.Environment},
			logger.Field{Key: "port", Value: cfg.App.Port})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Error(err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("shutting down query service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error(err)
	}

	lg.Info("query service stopped")
}
