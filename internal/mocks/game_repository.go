package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/truenumber/gameservice/internal/model"
)

type GameRepository struct {
	mock.Mock
}

func (m *GameRepository) Append(ctx context.Context, game *model.Game) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *GameRepository) FindByUser(ctx context.Context, userID string, limit int) ([]model.Game, error) {
	args := m.Called(ctx, userID, limit)
	games, _ := args.Get(0).([]model.Game)
	return games, args.Error(1)
}

func (m *GameRepository) FindAll(ctx context.Context, limit int) ([]model.Game, error) {
	args := m.Called(ctx, limit)
	games, _ := args.Get(0).([]model.Game)
	return games, args.Error(1)
}

func (m *GameRepository) GetByID(ctx context.Context, id string) (*model.Game, error) {
	args := m.Called(ctx, id)
	game, _ := args.Get(0).(*model.Game)
	return game, args.Error(1)
}

func (m *GameRepository) GetByIdempotencyKey(ctx context.Context, userID, key string) (*model.Game, error) {
	args := m.Called(ctx, userID, key)
	game, _ := args.Get(0).(*model.Game)
	return game, args.Error(1)
}

func (m *GameRepository) SumChanges(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
