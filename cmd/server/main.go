package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"warplanes-server/internal/config"
	"warplanes-server/internal/engine"
	"warplanes-server/internal/server"
	"warplanes-server/internal/version"
	"warplanes-server/pkg/logger"
)

func main() {
	// 1. Конфигурация: окружение, поверх него флаги
	cfg, err := config.LoadServer()
	if err != nil {
		logger.Log.WithError(err).Fatal("Invalid configuration")
	}
	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP listen port (WP_PORT)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "logrus level (LOG_LEVEL)")
	flag.Parse()
	if err := cfg.Validate(); err != nil {
		logger.Log.WithError(err).Fatal("Invalid flags")
	}

	logger.Init(cfg.LogLevel, cfg.LogFormat)
	logger.Log.Info("Starting Warplanes server...")
	logger.Log.Info(version.String())
	if os.Getenv("WP_SEAT_SECRET") == "" {
		logger.Log.Warn("WP_SEAT_SECRET is not set: seat tokens will not survive a restart")
	}

	// Graceful Shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Реестр матчей и уборщик законченных
	gameService := engine.NewService(engine.ConfigFrom(cfg))
	go gameService.RunReaper(ctx)

	// 3. Запуск сервера
	srv := server.New(gameService, cfg.Addr())
	if err := srv.Run(ctx); err != nil {
		logger.Log.WithError(err).Error("Server stopped with error")
	}

	logger.Log.Info("Shutting down...")
	gameService.Shutdown()
	logger.Log.Info("Done.")
}
