package settlement

import (
	"errors"
	"time"
)

const (
	MinOutcome       = 0
	MaxOutcome       = 100
	WinningThreshold = 70
	WinReward        = 50
	LossPenalty      = -35
)

var ErrOutcomeOutOfRange = errors.New("OUTCOME_OUT_OF_RANGE")

// Outcome is the settled result of a single play.
type Outcome struct {
	UserID          string
	GeneratedNumber int
	Result          bool
	BalanceChange   int64
	NewBalance      int64
	Date            time.Time
}

// Settle applies the game rule to a drawn number. Numbers strictly above
// WinningThreshold win; 70 itself loses.
func Settle(generatedNumber int, currentBalance int64, userID string, at time.Time) (Outcome, error) {
	if generatedNumber < MinOutcome || generatedNumber > MaxOutcome {
		return Outcome{}, ErrOutcomeOutOfRange
	}

	won := generatedNumber > WinningThreshold
	change := BalanceChange(won)

	return Outcome{
		UserID:          userID,
		GeneratedNumber: generatedNumber,
		Result:          won,
		BalanceChange:   change,
		NewBalance:      currentBalance + change,
		Date:            at,
	}, nil
}

func BalanceChange(won bool) int64 {
	if won {
		return WinReward
	}
	return LossPenalty
}
