package publishers

import (
	"context"
	"encoding/json"

	"github.com/truenumber/gameservice/internal/config"
	"github.com/truenumber/gameservice/internal/metrics"
	"github.com/truenumber/gameservice/internal/service"
	"github.com/truenumber/gameservice/pkg/mq"
	"go.uber.org/zap"
)

type SettlementPublisher interface {
	Publish(ctx context.Context) (int, error)
}

type settlementPublisher struct {
	service   service.SettlementQueueService
	publisher mq.Publisher
	batchSize int
	queue     string
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

func NewSettlementPublisher(service service.SettlementQueueService, publisher mq.Publisher, cfg *config.Config,
	logger *zap.Logger, metrics *metrics.Metrics) SettlementPublisher {
	return &settlementPublisher{
		service:   service,
		publisher: publisher,
		batchSize: cfg.Outbox.BatchSize,
		queue:     cfg.Outbox.Queue,
		logger:    logger,
		metrics:   metrics,
	}
}

// Publish drains one batch of unpublished settlement events and returns how
// many were handed to the broker. Delivery is at least once: an event whose
// mark fails is sent again on the next tick.
func (p *settlementPublisher) Publish(ctx context.Context) (int, error) {
	events, err := p.service.FindEventsToQueue(ctx, p.batchSize)
	if err != nil {
		return 0, err
	}

	if len(events) == 0 {
		return 0, nil
	}

	p.logger.Info("Publishing settlement events", zap.Int("count", len(events)))

	successCount := 0
	for _, event := range events {
		if ctx.Err() != nil {
			return successCount, ctx.Err()
		}

		body, err := json.Marshal(event)
		if err != nil {
			p.logger.Error("Failed to encode settlement event", zap.Error(err), zap.String("eventID", event.EventID))
			p.metrics.RecordEventPublished("error")
			continue
		}

		if err := p.publisher.Publish(ctx, "", p.queue, mq.Message{ID: event.EventID, Body: body}); err != nil {
			p.logger.Error("Failed to publish settlement event",
				zap.Error(err),
				zap.String("eventID", event.EventID))
			p.metrics.RecordEventPublished("error")
			continue
		}

		if err := p.service.MarkEventAsQueued(ctx, event.EventID); err != nil {
			p.metrics.RecordEventPublished("unmarked")
			continue
		}

		p.metrics.RecordEventPublished("success")
		successCount++
	}

	if successCount > 0 {
		p.logger.Info("Successfully published settlement events",
			zap.Int("published", successCount),
			zap.Int("total", len(events)))
	}

	return successCount, nil
}
