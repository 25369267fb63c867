// Command cascade is the DynamoDB Streams lambda that disables the programs,
// projects and procedures of an institution when the institution is disabled.
// Deployments opt in by attaching it to the table stream (NEW_AND_OLD_IMAGES).
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/jacentio/catalog/internal/config"
	"github.com/jacentio/catalog/internal/dynamo"
	"github.com/jacentio/catalog/internal/logging"
	"github.com/jacentio/catalog/store"
	"github.com/jacentio/catalog/stream"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	awsCfg, err := dynamo.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to load AWS configuration", zap.Error(err))
	}

	client := dynamo.Guard(dynamo.NewClient(awsCfg, cfg), cfg, nil, logger)
	s := store.New(client, cfg.StoreConfig(), store.WithLogger(logger))
	handler := stream.NewHandler(s, logger)

	lambda.Start(handler.HandleCascadeDisable)
}
