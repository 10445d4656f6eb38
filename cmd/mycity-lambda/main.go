package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"go.uber.org/zap"

	"mycity/internal/alexa"
	"mycity/internal/app"
	"mycity/internal/config"
	"mycity/internal/logging"
)

type skillHandler struct {
	router *alexa.Router
	log    *zap.Logger
}

func (h *skillHandler) handle(ctx context.Context, env alexa.RequestEnvelope) (alexa.ResponseEnvelope, error) {
	l := h.log
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		l = l.With(zap.String("aws_request_id", lc.AwsRequestID))
	}
	l.Info("skill request",
		zap.String("type", env.Request.Type),
		zap.String("request_id", env.Request.RequestID),
		zap.String("session_id", env.Session.SessionID))

	out, err := h.router.ServeEnvelope(ctx, env)
	if err != nil {
		l.Error("skill request failed", zap.Error(err))
		return alexa.ResponseEnvelope{}, err
	}
	return out, nil
}

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

	h := &skillHandler{router: router, log: logger.With(zap.String("function", lambdacontext.FunctionName))}
	lambda.Start(h.handle)
}
