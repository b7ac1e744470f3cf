package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/carhive/carhive/internal/app"
	"github.com/carhive/carhive/internal/audit"
	"github.com/carhive/carhive/internal/platform/db"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	writer := audit.NewWriter(pool)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		asynq.Config{
			Concurrency: 4,
			Queues:      map[string]int{"audit": 1},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(audit.TypeRecord, writer.HandleRecord)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down worker")
		srv.Shutdown()
	}()

	logger.Info("starting worker", slog.String("redis", cfg.RedisAddr))
	if err := srv.Run(mux); err != nil {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
