package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/isurusajith68/stockwise-aiims-server/config"
	"github.com/isurusajith68/stockwise-aiims-server/db"
	"github.com/isurusajith68/stockwise-aiims-server/internal/auth/handler"
	repo "github.com/isurusajith68/stockwise-aiims-server/internal/auth/repository/postgres"
	"github.com/isurusajith68/stockwise-aiims-server/internal/auth/service"
	"github.com/isurusajith68/stockwise-aiims-server/pkg/password"
)

func main() {
	cfg := config.Load()

	logger, err := buildLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.Migrate(cfg.DBURL); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	pool, err := db.NewPostgresPool(ctx, cfg.DBURL)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	repository := repo.NewRepository(pool)
	hasher := password.NewHasher(cfg.BcryptCost)
	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.TokenExpiry)
	twoFactorService := service.NewTwoFactorService(repository, repository, hasher, cfg.TOTPIssuer, logger)
	userService := service.NewUserService(repository, repository, twoFactorService, tokenService, hasher, cfg, logger)

	authHandler := handler.NewAuthHandler(userService, cfg)
	twoFactorHandler := handler.NewTwoFactorHandler(twoFactorService, cfg)
	userHandler := handler.NewUserHandler(userService, cfg)
	middleware := handler.NewAuthMiddleware(repository, repository, tokenService, cfg.RefreshThreshold, logger)

	// The sweep keeps the revocation ledger bounded; it runs for the life of
	// the process and stops with it.
	sweeper := service.NewSweeper(repository, cfg.SweepInterval, logger)
	go sweeper.Run(ctx)

	app := fiber.New()
	handler.RegisterRoutes(app, authHandler, twoFactorHandler, userHandler, middleware)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		_ = app.Shutdown()
	}()

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
