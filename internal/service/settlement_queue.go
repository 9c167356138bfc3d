package service

import (
	"context"
	"time"

	"github.com/truenumber/gameservice/internal/repository"
	"go.uber.org/zap"
)

type SettlementQueueService interface {
	FindEventsToQueue(ctx context.Context, limit int) ([]SettlementEventMessage, error)
	MarkEventAsQueued(ctx context.Context, eventID string) error
}

type settlementQueue struct {
	events repository.SettlementEventRepository
	logger *zap.Logger
}

func NewSettlementQueueService(events repository.SettlementEventRepository, logger *zap.Logger) SettlementQueueService {
	return &settlementQueue{events: events, logger: logger}
}

func (s *settlementQueue) FindEventsToQueue(ctx context.Context, limit int) ([]SettlementEventMessage, error) {
	s.logger.Debug("Finding settlement events to publish", zap.Int("batchSize", limit))

	events, err := s.events.FindUnpublished(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to find unpublished settlement events", zap.Error(err))
		return nil, err
	}

	if len(events) == 0 {
		return nil, nil
	}

	messages := make([]SettlementEventMessage, 0, len(events))
	for _, ev := range events {
		messages = append(messages, SettlementEventMessage{
			EventID:       ev.ID,
			GameID:        ev.GameID,
			UserID:        ev.UserID,
			BalanceChange: ev.BalanceChange,
			NewBalance:    ev.NewBalance,
		})
	}

	return messages, nil
}

func (s *settlementQueue) MarkEventAsQueued(ctx context.Context, eventID string) error {
	if err := s.events.MarkPublished(ctx, eventID, time.Now()); err != nil {
		s.logger.Error("Failed to mark settlement event as published",
			zap.Error(err),
			zap.String("eventID", eventID))
		return err
	}

	s.logger.Debug("Marked settlement event as published", zap.String("eventID", eventID))

	return nil
}
