package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carhive/carhive/internal/app"
	"github.com/carhive/carhive/internal/audit"
	"github.com/carhive/carhive/internal/auth"
	"github.com/carhive/carhive/internal/catalog"
	"github.com/carhive/carhive/internal/garage"
	"github.com/carhive/carhive/internal/platform/cache"
	"github.com/carhive/carhive/internal/platform/db"
	"github.com/carhive/carhive/internal/rbac"
	"github.com/carhive/carhive/internal/roles"
	"github.com/carhive/carhive/internal/users"
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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		// Audit enqueues are best effort; the server still comes up.
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditor := audit.NewEnqueuer(redisClient, logger)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	rbacStore := rbac.NewStore(pool)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens)
	authHandler := auth.NewHandler(logger, authService)
	authenticator := auth.Authenticator{Tokens: tokens, Store: rbacStore, Logger: logger}

	catalogRepo := catalog.NewRepository(pool)
	catalogService := catalog.NewService(catalogRepo, auditor, logger)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	garageRepo := garage.NewRepository(pool)
	garageService := garage.NewService(garageRepo, auditor, logger)
	garageHandler := garage.NewHandler(logger, garageService)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, auditor, logger)
	usersHandler := users.NewHandler(logger, usersService)

	rolesRepo := roles.NewRepository(pool)
	rolesService := roles.NewService(rolesRepo, auditor, logger)
	rolesHandler := roles.NewHandler(logger, rolesService)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Authenticator:  authenticator,
		AuthHandler:    authHandler,
		CatalogHandler: catalogHandler,
		GarageHandler:  garageHandler,
		UsersHandler:   usersHandler,
		RolesHandler:   rolesHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
