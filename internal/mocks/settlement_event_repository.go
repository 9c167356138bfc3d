package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/truenumber/gameservice/internal/model"
)

type SettlementEventRepository struct {
	mock.Mock
}

func (m *SettlementEventRepository) Create(ctx context.Context, event *model.SettlementEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *SettlementEventRepository) FindUnpublished(ctx context.Context, limit int) ([]model.SettlementEvent, error) {
	args := m.Called(ctx, limit)
	events, _ := args.Get(0).([]model.SettlementEvent)
	return events, args.Error(1)
}

func (m *SettlementEventRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	args := m.Called(ctx, id, publishedAt)
	return args.Error(0)
}
