package main

import (
	"context"

	"github.com/truenumber/gameservice/internal/config"
	"github.com/truenumber/gameservice/internal/consumers"
	"github.com/truenumber/gameservice/internal/database"
	"github.com/truenumber/gameservice/internal/metrics"
	"github.com/truenumber/gameservice/internal/repository"
	"github.com/truenumber/gameservice/internal/service"
	"github.com/truenumber/gameservice/pkg/mq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	fx.New(
		fx.Provide(
			config.Load,
			zap.NewProduction,
			metrics.NewMetrics,

			database.NewConnection,
			NewMQConnection,
			NewMQConsumer,

			repository.NewUserBalanceRepository,
			repository.NewGameRepository,
			repository.NewTransactionManager,

			service.NewAuditService,

			consumers.NewAuditConsumer,
		),
		fx.Invoke(runAuditConsumer),
	).Run()
}

func runAuditConsumer(cfg *config.Config, auditConsumer consumers.AuditConsumer, logger *zap.Logger,
	rabbit *mq.RabbitMQ, lc fx.Lifecycle,
) {
	appCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rabbit.DeclareQueues(cfg.Outbox.Queue); err != nil {
				logger.Error("declare topology failed", zap.Error(err))
				return err
			}
			logger.Info("queue declared", zap.String("queue", cfg.Outbox.Queue))

			go func() {
				if err := auditConsumer.Consume(appCtx); err != nil {
					logger.Error("consumer exited", zap.Error(err))
				}
			}()

			logger.Info("settlement audit consumer started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping settlement audit consumer")
			cancel()
			return rabbit.Close()
		},
	})
}

func NewMQConnection(cfg *config.Config, logger *zap.Logger) (*mq.RabbitMQ, error) {
	return mq.NewConnection(cfg.RabbitMQ, logger)
}

func NewMQConsumer(rabbitMQ *mq.RabbitMQ) (mq.Consumer, error) {
	return rabbitMQ.CreateConsumer()
}
