package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"mycity/internal/app"
	"mycity/internal/config"
	"mycity/internal/handlers"
	"mycity/internal/logging"
)

func main() {
	ctx := context.Background()

	logger, err := logging.New(os.Getenv(config.EnvLogLevel))
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	awsCfg, cfg, err := app.LoadConfig(ctx)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	router, err := app.NewRouter(cfg, app.DepsFromAWS(awsCfg, cfg), logger)
	if err != nil {
		logger.Fatal("build router", zap.Error(err))
	}

	lambda.Start(handlers.NewHTTPHandler(router, logger).Handle)
}
