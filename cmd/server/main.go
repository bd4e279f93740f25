package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"kintai/internal/adapters/http/handler"
	"kintai/internal/adapters/repository/postgres"
	"kintai/internal/core/attendance"
	"kintai/internal/core/correction"
	"kintai/internal/core/rule"
	"kintai/internal/platform/config"
	pg "kintai/internal/platform/db/postgres"
	"kintai/internal/platform/httpserver"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to initialize database pool", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	tx := pg.NewTransactionManager(dbPool)

	recordRepo := postgres.NewAttendanceRecordRepository(dbPool)
	correctionRepo := postgres.NewAttendanceCorrectionRepository(dbPool)
	ruleRepo := postgres.NewAttendanceRuleRepository(dbPool)

	recordSvc := attendance.NewService(recordRepo, ruleRepo, nil, tx)
	correctionSvc := correction.NewService(correctionRepo, recordRepo, nil, tx)
	ruleSvc := rule.NewService(ruleRepo, tx)

	router := handler.NewRouter(logger, recordSvc, correctionSvc, ruleSvc)
	srv := httpserver.New(cfg.Server, router)

	logger.Info("HTTP server listening", "addr", cfg.Server.ListenAddr)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}
