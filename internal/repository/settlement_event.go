package repository

import (
	"context"
	"time"

	"github.com/truenumber/gameservice/internal/model"
	"gorm.io/gorm"
)

type SettlementEventRepository interface {
	Create(ctx context.Context, event *model.SettlementEvent) error
	FindUnpublished(ctx context.Context, limit int) ([]model.SettlementEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
}

type settlementEvent struct {
	db *gorm.DB
}

func NewSettlementEventRepository(db *gorm.DB) SettlementEventRepository {
	return &settlementEvent{db: db}
}

func (s *settlementEvent) Create(ctx context.Context, event *model.SettlementEvent) error {
	return GetTx(ctx, s.db).Create(event).Error
}

func (s *settlementEvent) FindUnpublished(ctx context.Context, limit int) ([]model.SettlementEvent, error) {
	events := make([]model.SettlementEvent, 0)

	err := GetTx(ctx, s.db).
		Where("published = ?", false).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	return events, nil
}

func (s *settlementEvent) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	result := GetTx(ctx, s.db).Model(&model.SettlementEvent{}).
		Where("id = ? AND published = ?", id, false).
		Updates(map[string]any{
			"published":    true,
			"published_at": publishedAt,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}

	return nil
}
