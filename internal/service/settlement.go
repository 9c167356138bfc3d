package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/truenumber/gameservice/internal/config"
	"github.com/truenumber/gameservice/internal/constants"
	"github.com/truenumber/gameservice/internal/metrics"
	"github.com/truenumber/gameservice/internal/model"
	"github.com/truenumber/gameservice/internal/repository"
	"github.com/truenumber/gameservice/internal/settlement"
	"go.uber.org/zap"
)

type SettlementService interface {
	Play(ctx context.Context, cmd PlayCommand) (PlayResult, error)
}

type settlementService struct {
	txManager           repository.TxManager
	balances            repository.UserBalanceRepository
	games               repository.GameRepository
	events              repository.SettlementEventRepository
	generator           settlement.Generator
	generatorRetries    int
	compensationRetries int
	now                 func() time.Time
	log                 *zap.Logger
	metrics             *metrics.Metrics
}

func NewSettlementService(txManager repository.TxManager, balances repository.UserBalanceRepository,
	games repository.GameRepository, events repository.SettlementEventRepository, generator settlement.Generator,
	cfg *config.Config, log *zap.Logger, metrics *metrics.Metrics) SettlementService {
	return &settlementService{
		txManager:           txManager,
		balances:            balances,
		games:               games,
		events:              events,
		generator:           generator,
		generatorRetries:    cfg.Settlement.GeneratorRetries,
		compensationRetries: max(cfg.Settlement.CompensationRetries, 1),
		now:                 time.Now,
		log:                 log,
		metrics:             metrics,
	}
}

func (s *settlementService) Play(ctx context.Context, cmd PlayCommand) (PlayResult, error) {
	start := time.Now()

	ub, err := s.balances.FindByUserID(ctx, cmd.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserBalanceNotFound) {
			return PlayResult{}, NewServiceError(constants.ErrCodeUserNotFound, err)
		}

		s.log.Error("Failed to read balance before play", zap.String("user_id", cmd.UserID), zap.Error(err))
		s.metrics.RecordSettlementError("read_balance")
		return PlayResult{}, NewServiceError(constants.ErrCodeSettlementFailed, err)
	}

	if cmd.IdempotencyKey != "" {
		existing, err := s.games.GetByIdempotencyKey(ctx, cmd.UserID, cmd.IdempotencyKey)
		if err == nil {
			return s.replay(*existing, cmd), nil
		}

		if !errors.Is(err, repository.ErrGameNotFound) {
			s.metrics.RecordSettlementError("read_ledger")
			return PlayResult{}, NewServiceError(constants.ErrCodeSettlementFailed, err)
		}
	}

	generatedNumber, err := s.draw(cmd.UserID)
	if err != nil {
		s.metrics.RecordSettlementError("generator")
		return PlayResult{}, NewServiceError(constants.ErrCodeSettlementFailed, err)
	}

	outcome, err := settlement.Settle(generatedNumber, ub.Balance, cmd.UserID, s.now())
	if err != nil {
		s.metrics.RecordSettlementError("generator")
		return PlayResult{}, NewServiceError(constants.ErrCodeSettlementFailed, err)
	}

	game := newGame(outcome, cmd.IdempotencyKey)

	incremented := false
	err = s.txManager.WithTx(ctx, func(ctx context.Context) error {
		newBalance, err := s.balances.Increment(ctx, game.UserID, game.BalanceChange)
		if err != nil {
			return err
		}
		incremented = true

		// the increment is authoritative; the pre-read balance may be stale
		game.NewBalance = newBalance

		if err := s.events.Create(ctx, newSettlementEvent(game)); err != nil {
			return err
		}

		return s.games.Append(ctx, &game)
	})

	if err == nil {
		s.metrics.RecordGamePlayed(game.Result, time.Since(start))
		s.log.Info("Game settled",
			zap.String("user_id", game.UserID),
			zap.String("game_id", game.ID),
			zap.Int("generated_number", game.GeneratedNumber),
			zap.Bool("result", game.Result),
			zap.Int64("balance_change", game.BalanceChange),
			zap.Int64("new_balance", game.NewBalance),
			zap.Duration("duration", time.Since(start)),
		)
		return playResultFromGame(game, false), nil
	}

	if incremented && !s.txManager.Atomic() {
		if compErr := s.compensate(ctx, game); compErr != nil {
			return PlayResult{}, NewServiceError(constants.ErrCodeSettlementInconsistent, errors.Join(err, compErr))
		}
	}

	if errors.Is(err, repository.ErrUserBalanceNotFound) {
		return PlayResult{}, NewServiceError(constants.ErrCodeUserNotFound, err)
	}

	if errors.Is(err, repository.ErrGameExisted) && cmd.IdempotencyKey != "" {
		existing, lookupErr := s.games.GetByIdempotencyKey(ctx, cmd.UserID, cmd.IdempotencyKey)
		if lookupErr == nil {
			return s.replay(*existing, cmd), nil
		}
		err = lookupErr
	}

	s.log.Error("Settlement failed",
		zap.String("user_id", cmd.UserID),
		zap.String("game_id", game.ID),
		zap.Bool("balance_incremented", incremented),
		zap.Error(err),
	)
	s.metrics.RecordSettlementError("persist")

	return PlayResult{}, NewServiceError(constants.ErrCodeSettlementFailed, err)
}

func (s *settlementService) replay(existing model.Game, cmd PlayCommand) PlayResult {
	s.log.Info("Idempotent play already settled",
		zap.String("user_id", cmd.UserID),
		zap.String("idempotency_key", cmd.IdempotencyKey),
		zap.String("game_id", existing.ID))
	s.metrics.RecordGameReplayed()

	return playResultFromGame(existing, true)
}

func (s *settlementService) draw(userID string) (int, error) {
	var lastErr error
	for attempt := 0; attempt <= s.generatorRetries; attempt++ {
		if attempt > 0 {
			s.metrics.RecordGeneratorRetry()
		}

		n, err := s.generator.Draw()
		if err == nil {
			return n, nil
		}

		s.log.Warn("Outcome draw failed",
			zap.String("user_id", userID),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		lastErr = err
	}

	return 0, lastErr
}

// compensate reverses a committed increment whose ledger write failed.
func (s *settlementService) compensate(ctx context.Context, game model.Game) error {
	var lastErr error
	for attempt := 1; attempt <= s.compensationRetries; attempt++ {
		_, err := s.balances.Increment(ctx, game.UserID, -game.BalanceChange)
		if err == nil {
			s.log.Warn("Balance compensated after ledger failure",
				zap.String("user_id", game.UserID),
				zap.String("game_id", game.ID),
				zap.Int64("reverted_change", game.BalanceChange),
				zap.Int("attempt", attempt))
			s.metrics.RecordCompensation("success")
			return nil
		}
		lastErr = err
	}

	s.log.Error("CRITICAL: Balance changed without ledger entry - manual intervention required",
		zap.String("user_id", game.UserID),
		zap.String("game_id", game.ID),
		zap.Int64("balance_change", game.BalanceChange),
		zap.Int("attempts", s.compensationRetries),
		zap.Error(lastErr))
	s.metrics.RecordCompensation("failed")

	return errors.Join(ErrCompensationFailed, lastErr)
}

func newGame(o settlement.Outcome, idempotencyKey string) model.Game {
	g := model.Game{
		ID:              newID(),
		UserID:          o.UserID,
		GeneratedNumber: o.GeneratedNumber,
		Result:          o.Result,
		BalanceChange:   o.BalanceChange,
		NewBalance:      o.NewBalance,
		Date:            o.Date,
	}

	if idempotencyKey != "" {
		g.IdempotencyKey = &idempotencyKey
	}

	return g
}

func newSettlementEvent(g model.Game) *model.SettlementEvent {
	return &model.SettlementEvent{
		ID:            newID(),
		GameID:        g.ID,
		UserID:        g.UserID,
		BalanceChange: g.BalanceChange,
		NewBalance:    g.NewBalance,
	}
}

// newID returns a time-ordered UUIDv7, falling back to v4.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
