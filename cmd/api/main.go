package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"go.uber.org/zap"

	"github.com/jacentio/catalog/internal/api"
	"github.com/jacentio/catalog/internal/config"
	"github.com/jacentio/catalog/internal/dynamo"
	"github.com/jacentio/catalog/internal/logging"
	"github.com/jacentio/catalog/internal/metrics"
	"github.com/jacentio/catalog/store"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	awsCfg, err := dynamo.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to load AWS configuration", zap.Error(err))
	}

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.NewCollector("catalog")
	}

	client := dynamo.Guard(dynamo.NewClient(awsCfg, cfg), cfg, collector, logger)
	s := store.New(client, cfg.StoreConfig(), store.WithLogger(logger))

	deps := api.FromStore(s)
	deps.Metrics = collector
	router := api.NewRouter(deps, logger)

	if cfg.IsLambda {
		logger.Info("Starting API Gateway handler", zap.String("table", cfg.TableName))
		lambda.Start(chiadapter.NewV2(router).ProxyWithContextV2)
		return
	}

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
			zap.String("table", cfg.TableName),
			zap.String("missingParentPolicy", string(cfg.MissingParent)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}
	logger.Info("Server stopped")
}
