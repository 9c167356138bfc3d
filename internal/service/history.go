package service

import (
	"context"
	"math"
	"time"

	"github.com/truenumber/gameservice/internal/constants"
	"github.com/truenumber/gameservice/internal/metrics"
	"github.com/truenumber/gameservice/internal/model"
	"github.com/truenumber/gameservice/internal/repository"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

type HistoryService interface {
	GetHistory(ctx context.Context, query HistoryQuery) ([]model.Game, error)
	GetAllHistory(ctx context.Context, limit int) ([]model.Game, error)
	GetStats(ctx context.Context, userID string) (model.GameStats, error)
}

type historyService struct {
	games   repository.GameRepository
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewHistoryService(games repository.GameRepository, log *zap.Logger, metrics *metrics.Metrics) HistoryService {
	return &historyService{games: games, log: log, metrics: metrics}
}

// GetHistory returns the user's games newest first. Limit <= 0 means all.
func (h *historyService) GetHistory(ctx context.Context, query HistoryQuery) ([]model.Game, error) {
	start := time.Now()

	games, err := h.games.FindByUser(ctx, query.UserID, query.Limit)
	if err != nil {
		h.log.Error("Failed to read game history",
			zap.String("user_id", query.UserID),
			zap.Int("limit", query.Limit),
			zap.Error(err))
		h.metrics.RecordDBQuery("select", "games", "error", time.Since(start))
		return nil, NewServiceError(constants.ErrCodeInternalError, err)
	}

	h.metrics.RecordDBQuery("select", "games", "success", time.Since(start))

	return games, nil
}

func (h *historyService) GetAllHistory(ctx context.Context, limit int) ([]model.Game, error) {
	start := time.Now()

	games, err := h.games.FindAll(ctx, limit)
	if err != nil {
		h.log.Error("Failed to read global game history", zap.Int("limit", limit), zap.Error(err))
		h.metrics.RecordDBQuery("select", "games", "error", time.Since(start))
		return nil, NewServiceError(constants.ErrCodeInternalError, err)
	}

	h.metrics.RecordDBQuery("select", "games", "success", time.Since(start))

	return games, nil
}

func (h *historyService) GetStats(ctx context.Context, userID string) (model.GameStats, error) {
	games, err := h.GetHistory(ctx, HistoryQuery{UserID: userID})
	if err != nil {
		return model.GameStats{}, err
	}

	return ComputeStats(games), nil
}

// ComputeStats summarises a set of games. WinRate is a whole percentage
// rounded half away from zero.
func ComputeStats(games []model.Game) model.GameStats {
	stats := model.GameStats{TotalGames: len(games)}
	if len(games) == 0 {
		return stats
	}

	numbers := make([]float64, 0, len(games))
	changes := make([]float64, 0, len(games))

	for _, g := range games {
		if g.Result {
			stats.WonGames++
		}

		if g.BalanceChange > 0 {
			stats.TotalPointsWon += g.BalanceChange
		} else {
			stats.TotalPointsLost += -g.BalanceChange
		}

		numbers = append(numbers, float64(g.GeneratedNumber))
		changes = append(changes, float64(g.BalanceChange))
	}

	stats.WinRate = int(math.Round(float64(stats.WonGames) / float64(stats.TotalGames) * 100))
	stats.AverageChange = stat.Mean(changes, nil)
	stats.AverageNumber, stats.NumberStdDev = stat.MeanStdDev(numbers, nil)
	if len(numbers) < 2 {
		stats.NumberStdDev = 0
	}

	return stats
}
