package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/truenumber/gameservice/internal/model"
)

type UserBalanceRepository struct {
	mock.Mock
}

func (m *UserBalanceRepository) Create(ctx context.Context, ub *model.UserBalance) error {
	args := m.Called(ctx, ub)
	return args.Error(0)
}

func (m *UserBalanceRepository) FindByUserID(ctx context.Context, userID string) (model.UserBalance, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.UserBalance), args.Error(1)
}

func (m *UserBalanceRepository) FindByUserIDForUpdate(ctx context.Context, userID string) (model.UserBalance, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.UserBalance), args.Error(1)
}

func (m *UserBalanceRepository) Increment(ctx context.Context, userID string, delta int64) (int64, error) {
	args := m.Called(ctx, userID, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *UserBalanceRepository) SetBalance(ctx context.Context, userID string, balance int64) error {
	args := m.Called(ctx, userID, balance)
	return args.Error(0)
}

func (m *UserBalanceRepository) CreateAdjustment(ctx context.Context, adj *model.BalanceAdjustment) error {
	args := m.Called(ctx, adj)
	return args.Error(0)
}

func (m *UserBalanceRepository) SumAdjustments(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
