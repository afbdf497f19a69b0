package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/2187Nick/schwab-market-depth/internal/bootstrap"
	"github.com/2187Nick/schwab-market-depth/internal/publisher"
	"github.com/2187Nick/schwab-market-depth/internal/stream"
	"github.com/2187Nick/schwab-market-depth/internal/subscription"
	"github.com/2187Nick/schwab-market-depth/pkg/config"
	"github.com/2187Nick/schwab-market-depth/pkg/logger"
	"github.com/2187Nick/schwab-market-depth/pkg/questdb"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	var fanout bootstrap.Fanout
	if len(cfg.Kafka.Brokers) > 0 {
		eventPublisher := publisher.New(cfg.Kafka.Brokers, cfg.Kafka.Topic, lg)
		defer eventPublisher.Close()
		fanout = eventPublisher
		lg.Info("event fan-out enabled",
			logger.Field{Key: "topic", Value: cfg.Kafka.Topic})
	}

	b := (&bootstrap.Bootstrap{}).Init(bootstrap.Config{
		QuestDB: questdbClient,
		Logger:  lg,
		Role:    bootstrap.RoleIngest,
		Start:   time.Now(),
		Fanout:  fanout,
	})

	transport := stream.NewWebSocketClient(cfg.Stream.URL, cfg.Stream.CustomerID, cfg.Stream.CorrelID, lg)

	synchronizer := subscription.NewSynchronizer(subscription.Config{
		APIURL:       cfg.Sync.APIURL,
		Interval:     time.Duration(cfg.Sync.IntervalMS) * time.Millisecond,
		SeedSymbol:   cfg.Sync.SeedSymbol,
		BookFields:   cfg.Stream.BookFields,
		LevelsFields: cfg.Stream.LevelsFields,
	}, transport, b.Usecase.Ingest, lg)

	go synchronizer.Run(ctx)

	go func() {
		if err := transport.Start(ctx, b.Usecase.Ingest.HandleFrame); err != nil && err != context.Canceled {
			lg.Error(err)
		}
	}()

	lg.Info("ingestion worker started",
		logger.Field{Key: "app", Value: cfg.App.Name},
		logger.Field{Key: "stream_url", Value: cfg.Stream.URL})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("shutting down ingestion worker")

	// Stop the synchronizer and read loop, then tear down the connection.
	cancel()
	if err := transport.Close(); err != nil {
		lg.Error(err)
	}

	lg.Info("ingestion worker stopped")
}
