package service

import (
	"time"

	"github.com/truenumber/gameservice/internal/model"
)

type PlayCommand struct {
	UserID         string
	IdempotencyKey string
}

type PlayResult struct {
	GameID          string
	UserID          string
	GeneratedNumber int
	Result          bool
	BalanceChange   int64
	NewBalance      int64
	Date            time.Time
	Replayed        bool
}

func playResultFromGame(g model.Game, replayed bool) PlayResult {
	return PlayResult{
		GameID:          g.ID,
		UserID:          g.UserID,
		GeneratedNumber: g.GeneratedNumber,
		Result:          g.Result,
		BalanceChange:   g.BalanceChange,
		NewBalance:      g.NewBalance,
		Date:            g.Date,
		Replayed:        replayed,
	}
}

type HistoryQuery struct {
	UserID string
	Limit  int
}

type CreateAccountCommand struct {
	UserID string
}

type SetBalanceCommand struct {
	UserID  string
	Balance int64
	ActorID string
}

type SetBalanceResult struct {
	UserBalance model.UserBalance
	Adjustment  model.BalanceAdjustment
}

// SettlementEventMessage is the body published on the game.settled queue.
type SettlementEventMessage struct {
	EventID       string `json:"event_id"`
	GameID        string `json:"game_id"`
	UserID        string `json:"user_id"`
	BalanceChange int64  `json:"balance_change"`
	NewBalance    int64  `json:"new_balance"`
}

type AuditResult struct {
	GameID     string
	UserID     string
	Consistent bool
	Issues     []string
}
