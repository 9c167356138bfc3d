package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/truenumber/gameservice/internal/model"
	"github.com/truenumber/gameservice/internal/service"
)

type SettlementService struct {
	mock.Mock
}

func (m *SettlementService) Play(ctx context.Context, cmd service.PlayCommand) (service.PlayResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(service.PlayResult), args.Error(1)
}

type HistoryService struct {
	mock.Mock
}

func (m *HistoryService) GetHistory(ctx context.Context, query service.HistoryQuery) ([]model.Game, error) {
	args := m.Called(ctx, query)
	games, _ := args.Get(0).([]model.Game)
	return games, args.Error(1)
}

func (m *HistoryService) GetAllHistory(ctx context.Context, limit int) ([]model.Game, error) {
	args := m.Called(ctx, limit)
	games, _ := args.Get(0).([]model.Game)
	return games, args.Error(1)
}

func (m *HistoryService) GetStats(ctx context.Context, userID string) (model.GameStats, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.GameStats), args.Error(1)
}

type UserBalanceService struct {
	mock.Mock
}

func (m *UserBalanceService) CreateAccount(ctx context.Context, cmd service.CreateAccountCommand) (model.UserBalance, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(model.UserBalance), args.Error(1)
}

func (m *UserBalanceService) GetBalance(ctx context.Context, userID string) (model.UserBalance, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.UserBalance), args.Error(1)
}

func (m *UserBalanceService) SetBalance(ctx context.Context, cmd service.SetBalanceCommand) (service.SetBalanceResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(service.SetBalanceResult), args.Error(1)
}

type SettlementQueueService struct {
	mock.Mock
}

func (m *SettlementQueueService) FindEventsToQueue(ctx context.Context, limit int) ([]service.SettlementEventMessage, error) {
	args := m.Called(ctx, limit)
	msgs, _ := args.Get(0).([]service.SettlementEventMessage)
	return msgs, args.Error(1)
}

func (m *SettlementQueueService) MarkEventAsQueued(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

type AuditService struct {
	mock.Mock
}

func (m *AuditService) Audit(ctx context.Context, msg service.SettlementEventMessage) (service.AuditResult, error) {
	args := m.Called(ctx, msg)
	return args.Get(0).(service.AuditResult), args.Error(1)
}
