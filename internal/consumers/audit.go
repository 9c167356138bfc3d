package consumers

import (
	"context"
	"encoding/json"

	"github.com/truenumber/gameservice/internal/config"
	"github.com/truenumber/gameservice/internal/service"
	"github.com/truenumber/gameservice/pkg/mq"
	"go.uber.org/zap"
)

const auditPrefetch = 10

type AuditConsumer interface {
	Consume(ctx context.Context) error
}

type auditConsumer struct {
	service  service.AuditService
	consumer mq.Consumer
	queue    string
	logger   *zap.Logger
}

func NewAuditConsumer(service service.AuditService, consumer mq.Consumer, cfg *config.Config, logger *zap.Logger) AuditConsumer {
	return &auditConsumer{service: service, consumer: consumer, queue: cfg.Outbox.Queue, logger: logger}
}

func (a *auditConsumer) Consume(ctx context.Context) error {
	return a.consumer.Consume(ctx, auditPrefetch, a.queue, a.handleMessage)
}

func (a *auditConsumer) handleMessage(ctx context.Context, body []byte) error {
	var msg service.SettlementEventMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		a.logger.Warn("invalid settlement event", zap.Error(err), zap.ByteString("body", body))
		return err
	}

	result, err := a.service.Audit(ctx, msg)
	if err != nil {
		return err
	}

	if !result.Consistent {
		a.logger.Error("Settlement audit failed",
			zap.String("event_id", msg.EventID),
			zap.String("game_id", msg.GameID),
			zap.String("user_id", msg.UserID),
			zap.Strings("issues", result.Issues))
	}

	return nil
}
