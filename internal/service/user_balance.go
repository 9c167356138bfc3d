package service

import (
	"context"
	"errors"
	"time"

	"github.com/truenumber/gameservice/internal/constants"
	"github.com/truenumber/gameservice/internal/metrics"
	"github.com/truenumber/gameservice/internal/model"
	"github.com/truenumber/gameservice/internal/repository"
	"go.uber.org/zap"
)

type UserBalanceService interface {
	CreateAccount(ctx context.Context, cmd CreateAccountCommand) (model.UserBalance, error)
	GetBalance(ctx context.Context, userID string) (model.UserBalance, error)
	SetBalance(ctx context.Context, cmd SetBalanceCommand) (SetBalanceResult, error)
}

type userBalanceService struct {
	txManager repository.TxManager
	userRepo  repository.UserBalanceRepository
	log       *zap.Logger
	metrics   *metrics.Metrics
}

func NewUserBalanceService(txManager repository.TxManager, userRepo repository.UserBalanceRepository,
	log *zap.Logger, metrics *metrics.Metrics) UserBalanceService {
	return &userBalanceService{txManager: txManager, userRepo: userRepo, log: log, metrics: metrics}
}

func (s *userBalanceService) CreateAccount(ctx context.Context, cmd CreateAccountCommand) (model.UserBalance, error) {
	start := time.Now()

	ub := model.UserBalance{UserID: cmd.UserID, Balance: 0}

	if err := s.userRepo.Create(ctx, &ub); err != nil {
		s.metrics.RecordDBQuery("insert", "user_balances", "error", time.Since(start))

		if errors.Is(err, repository.ErrUserBalanceExists) {
			return model.UserBalance{}, NewServiceError(constants.ErrCodeUserExisted, err)
		}

		s.log.Error("error create user balance", zap.String("user_id", cmd.UserID), zap.Error(err))
		return model.UserBalance{}, NewServiceError(constants.ErrCodeInternalError, err)
	}

	s.metrics.RecordDBQuery("insert", "user_balances", "success", time.Since(start))
	s.metrics.RecordUserBalanceCreated()

	s.log.Info("User balance created",
		zap.String("user_id", cmd.UserID),
		zap.Duration("duration", time.Since(start)))

	return ub, nil
}

func (s *userBalanceService) GetBalance(ctx context.Context, userID string) (model.UserBalance, error) {
	start := time.Now()

	ub, err := s.userRepo.FindByUserID(ctx, userID)
	duration := time.Since(start)

	if err != nil {
		s.metrics.RecordBalanceRetrieval("error")
		s.metrics.RecordDBQuery("select", "user_balances", "error", duration)

		if errors.Is(err, repository.ErrUserBalanceNotFound) {
			return model.UserBalance{}, NewServiceError(constants.ErrCodeUserNotFound, err)
		}

		s.log.Error("Failed to get user balance",
			zap.String("user_id", userID),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return model.UserBalance{}, NewServiceError(constants.ErrCodeInternalError, err)
	}

	s.metrics.RecordBalanceRetrieval("success")
	s.metrics.RecordDBQuery("select", "user_balances", "success", duration)

	return ub, nil
}

// SetBalance overwrites the balance and records the edit as an adjustment.
// The row lock serialises the edit with in-flight settlements; whichever
// commits last wins.
func (s *userBalanceService) SetBalance(ctx context.Context, cmd SetBalanceCommand) (SetBalanceResult, error) {
	var result SetBalanceResult

	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		ub, err := s.userRepo.FindByUserIDForUpdate(ctx, cmd.UserID)
		if err != nil {
			return err
		}

		adj := model.BalanceAdjustment{
			ID:              newID(),
			UserID:          cmd.UserID,
			ActorID:         cmd.ActorID,
			PreviousBalance: ub.Balance,
			NewBalance:      cmd.Balance,
			Delta:           cmd.Balance - ub.Balance,
		}

		if err := s.userRepo.SetBalance(ctx, cmd.UserID, cmd.Balance); err != nil {
			return err
		}

		if err := s.userRepo.CreateAdjustment(ctx, &adj); err != nil {
			return err
		}

		ub.Balance = cmd.Balance
		result = SetBalanceResult{UserBalance: ub, Adjustment: adj}
		return nil
	})

	if err != nil {
		if errors.Is(err, repository.ErrUserBalanceNotFound) {
			return SetBalanceResult{}, NewServiceError(constants.ErrCodeUserNotFound, err)
		}

		s.log.Error("Failed to set user balance",
			zap.String("user_id", cmd.UserID),
			zap.String("actor_id", cmd.ActorID),
			zap.Error(err))
		return SetBalanceResult{}, NewServiceError(constants.ErrCodeInternalError, err)
	}

	s.metrics.RecordBalanceAdjustment()
	s.log.Info("User balance adjusted",
		zap.String("user_id", cmd.UserID),
		zap.String("actor_id", cmd.ActorID),
		zap.Int64("previous_balance", result.Adjustment.PreviousBalance),
		zap.Int64("new_balance", cmd.Balance))

	return result, nil
}
