package main

import (
	"context"

	playground "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/truenumber/gameservice/internal/api"
	v1 "github.com/truenumber/gameservice/internal/api/v1"
	"github.com/truenumber/gameservice/internal/api/validator"
	"github.com/truenumber/gameservice/internal/config"
	"github.com/truenumber/gameservice/internal/database"
	apperrors "github.com/truenumber/gameservice/internal/errors"
	"github.com/truenumber/gameservice/internal/metrics"
	"github.com/truenumber/gameservice/internal/repository"
	"github.com/truenumber/gameservice/internal/service"
	"github.com/truenumber/gameservice/internal/settlement"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	fx.New(
		fx.Provide(
			config.Load,
			zap.NewProduction,
			database.NewConnection,
			metrics.NewMetrics,

			repository.NewUserBalanceRepository,
			repository.NewGameRepository,
			repository.NewSettlementEventRepository,
			repository.NewTransactionManager,

			settlement.NewGenerator,

			service.NewSettlementService,
			service.NewHistoryService,
			service.NewUserBalanceService,

			newValidate,
			validator.NewXValidator,
			v1.NewHandler,

			metrics.NewSystemCollector,
			metrics.NewDatabaseMetricsCollector,
			newFiber,
		),
		fx.Invoke(startCollectors, startServer),
	).Run()
}

func newValidate() *playground.Validate {
	return playground.New()
}

func newFiber(logger *zap.Logger) *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler:          apperrors.ErrorHandler(logger),
		DisableStartupMessage: true,
	})
}

func startServer(app *fiber.App, handler *v1.Handler, m *metrics.Metrics, cfg *config.Config,
	logger *zap.Logger, lc fx.Lifecycle) {
	api.SetupRoutes(app, handler, m, logger, cfg.API.ServiceName)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := app.Listen(cfg.API.Port); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
			}()
			logger.Info("game service started", zap.String("port", cfg.API.Port))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping game service")
			return app.ShutdownWithContext(ctx)
		},
	})
}

func startCollectors(system *metrics.SystemCollector, db *metrics.DatabaseMetricsCollector, cfg *config.Config,
	lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			system.Start(cfg.Metrics.SystemInterval, version)
			db.Start(cfg.Metrics.DBInterval)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			system.Stop()
			db.Stop()
			return nil
		},
	})
}
