package main

import (
	"context"
	"os"

	"github.com/dmitrymomot/shipconnect/internal/app"
	"github.com/dmitrymomot/shipconnect/pkg/config"
	"github.com/dmitrymomot/shipconnect/pkg/logger"
	"github.com/dmitrymomot/shipconnect/pkg/reqctx"
)

func main() {
	var cfg app.Config
	config.MustLoad(&cfg)

	log := logger.New(
		logger.WithEnvironment(cfg.Env, cfg.ServiceName),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithContextExtractors(reqctx.LoggerExtractors()...),
	)
	logger.SetAsDefault(log)

	if err := app.New(cfg, log).Run(context.Background()); err != nil {
		log.Error("service stopped", logger.Error(err))
		os.Exit(1)
	}
	log.Info("service stopped")
}
