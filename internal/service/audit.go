package service

import (
	"context"
	"errors"

	"github.com/truenumber/gameservice/internal/metrics"
	"github.com/truenumber/gameservice/internal/repository"
	"github.com/truenumber/gameservice/internal/settlement"
	"github.com/truenumber/gameservice/pkg/mq"
	"go.uber.org/zap"
)

const (
	IssueMissingGame      = "missing_game"
	IssueRuleViolation    = "rule_violation"
	IssueSnapshotMismatch = "snapshot_mismatch"
	IssueBalanceMismatch  = "balance_mismatch"
)

type AuditService interface {
	Audit(ctx context.Context, msg SettlementEventMessage) (AuditResult, error)
}

type auditService struct {
	txManager repository.TxManager
	balances  repository.UserBalanceRepository
	games     repository.GameRepository
	log       *zap.Logger
	metrics   *metrics.Metrics
}

func NewAuditService(txManager repository.TxManager, balances repository.UserBalanceRepository,
	games repository.GameRepository, log *zap.Logger, metrics *metrics.Metrics) AuditService {
	return &auditService{txManager: txManager, balances: balances, games: games, log: log, metrics: metrics}
}

// Audit checks a settled game against the ledger and the balance store:
// the stored record must obey the game rule and match the event, and the
// balance must equal the sum of all game changes plus admin adjustments.
// Storage errors are returned as temporary so the delivery is retried.
func (a *auditService) Audit(ctx context.Context, msg SettlementEventMessage) (AuditResult, error) {
	result := AuditResult{GameID: msg.GameID, UserID: msg.UserID, Consistent: true}

	game, err := a.games.GetByID(ctx, msg.GameID)
	if err != nil {
		if errors.Is(err, repository.ErrGameNotFound) {
			a.flag(&result, IssueMissingGame)
			return result, nil
		}
		return result, mq.Temporary(err)
	}

	if game.Result != (game.GeneratedNumber > settlement.WinningThreshold) ||
		game.BalanceChange != settlement.BalanceChange(game.Result) {
		a.flag(&result, IssueRuleViolation)
	}

	if game.NewBalance != msg.NewBalance || game.BalanceChange != msg.BalanceChange {
		a.flag(&result, IssueSnapshotMismatch)
	}

	var balance, changes, adjustments int64
	err = a.txManager.WithTx(ctx, func(ctx context.Context) error {
		ub, err := a.balances.FindByUserIDForUpdate(ctx, msg.UserID)
		if err != nil {
			return err
		}
		balance = ub.Balance

		if changes, err = a.games.SumChanges(ctx, msg.UserID); err != nil {
			return err
		}

		adjustments, err = a.balances.SumAdjustments(ctx, msg.UserID)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserBalanceNotFound) {
			a.flag(&result, IssueBalanceMismatch)
			return result, nil
		}
		return result, mq.Temporary(err)
	}

	if balance != changes+adjustments {
		a.log.Error("Balance diverges from ledger",
			zap.String("user_id", msg.UserID),
			zap.Int64("balance", balance),
			zap.Int64("ledger_sum", changes),
			zap.Int64("adjustments", adjustments))
		a.flag(&result, IssueBalanceMismatch)
	}

	if result.Consistent {
		a.log.Debug("Settlement audited", zap.String("game_id", msg.GameID))
	}

	return result, nil
}

func (a *auditService) flag(result *AuditResult, issue string) {
	result.Consistent = false
	result.Issues = append(result.Issues, issue)
	a.metrics.RecordLedgerDivergence(issue)

	a.log.Warn("Settlement audit issue",
		zap.String("game_id", result.GameID),
		zap.String("user_id", result.UserID),
		zap.String("issue", issue))
}
