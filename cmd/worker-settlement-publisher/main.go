package main

import (
	"context"
	"time"

	"github.com/truenumber/gameservice/internal/config"
	"github.com/truenumber/gameservice/internal/database"
	"github.com/truenumber/gameservice/internal/metrics"
	"github.com/truenumber/gameservice/internal/publishers"
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
			NewMQPublisher,

			repository.NewSettlementEventRepository,

			service.NewSettlementQueueService,

			publishers.NewSettlementPublisher,
		),
		fx.Invoke(runSettlementPublisher),
	).Run()
}

func runSettlementPublisher(cfg *config.Config, publisher publishers.SettlementPublisher, logger *zap.Logger,
	rabbit *mq.RabbitMQ, lc fx.Lifecycle) {
	appCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rabbit.DeclareQueues(cfg.Outbox.Queue); err != nil {
				logger.Error("declare topology failed", zap.Error(err))
				return err
			}

			logger.Info("queue declared", zap.String("queue", cfg.Outbox.Queue))

			go func() {
				ticker := time.NewTicker(cfg.Outbox.Interval)
				defer ticker.Stop()

				for {
					select {
					case <-ticker.C:
						drain(appCtx, publisher, cfg.Outbox.BatchSize, logger)
					case <-appCtx.Done():
						logger.Info("publisher context cancelled")
						return
					}
				}
			}()

			logger.Info("settlement publisher started", zap.Duration("interval", cfg.Outbox.Interval))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping settlement publisher")
			cancel()
			return rabbit.Close()
		},
	})
}

// drain keeps publishing while batches come back full.
func drain(ctx context.Context, publisher publishers.SettlementPublisher, batchSize int, logger *zap.Logger) {
	for {
		n, err := publisher.Publish(ctx)
		if err != nil {
			logger.Error("failed to publish settlement events", zap.Error(err))
			return
		}
		if n == 0 || n < batchSize {
			return
		}
	}
}

func NewMQConnection(cfg *config.Config, logger *zap.Logger) (*mq.RabbitMQ, error) {
	return mq.NewConnection(cfg.RabbitMQ, logger)
}

func NewMQPublisher(rabbitMQ *mq.RabbitMQ) (mq.Publisher, error) {
	return rabbitMQ.CreatePublisher()
}
