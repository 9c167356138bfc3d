package repository

import (
	"context"
	"errors"

	"github.com/truenumber/gameservice/internal/model"
	"gorm.io/gorm"
)

var (
	ErrGameNotFound = errors.New("GAME_NOT_FOUND")
	ErrGameExisted  = errors.New("GAME_EXISTED")
)

type GameRepository interface {
	Append(ctx context.Context, game *model.Game) error
	FindByUser(ctx context.Context, userID string, limit int) ([]model.Game, error)
	FindAll(ctx context.Context, limit int) ([]model.Game, error)
	GetByID(ctx context.Context, id string) (*model.Game, error)
	GetByIdempotencyKey(ctx context.Context, userID, key string) (*model.Game, error)
	SumChanges(ctx context.Context, userID string) (int64, error)
}

type game struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) GameRepository {
	return &game{db: db}
}

func (g *game) Append(ctx context.Context, record *model.Game) error {
	err := GetTx(ctx, g.db).Create(record).Error
	if err == nil {
		return nil
	}

	if isDuplicateKey(err) {
		return ErrGameExisted
	}

	return err
}

// FindByUser returns the user's games newest first. A limit <= 0 returns all of them.
func (g *game) FindByUser(ctx context.Context, userID string, limit int) ([]model.Game, error) {
	return g.find(GetTx(ctx, g.db).Where("user_id = ?", userID), limit)
}

func (g *game) FindAll(ctx context.Context, limit int) ([]model.Game, error) {
	return g.find(GetTx(ctx, g.db), limit)
}

func (g *game) find(db *gorm.DB, limit int) ([]model.Game, error) {
	games := make([]model.Game, 0)

	// ids are UUIDv7 and break ties between plays sharing a timestamp
	query := db.Order("date DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&games).Error; err != nil {
		return nil, err
	}

	return games, nil
}

func (g *game) GetByID(ctx context.Context, id string) (*model.Game, error) {
	return g.first(GetTx(ctx, g.db).Where("id = ?", id))
}

func (g *game) GetByIdempotencyKey(ctx context.Context, userID, key string) (*model.Game, error) {
	return g.first(GetTx(ctx, g.db).Where("user_id = ? AND idempotency_key = ?", userID, key))
}

func (g *game) first(db *gorm.DB) (*model.Game, error) {
	var record model.Game

	err := db.First(&record).Error
	if err == nil {
		return &record, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGameNotFound
	}

	return nil, err
}

func (g *game) SumChanges(ctx context.Context, userID string) (int64, error) {
	var sum int64

	err := GetTx(ctx, g.db).Model(&model.Game{}).
		Select("COALESCE(SUM(balance_change), 0)").
		Where("user_id = ?", userID).
		Scan(&sum).Error

	return sum, err
}
