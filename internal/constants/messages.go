package constants

const (
	GamePlayed          = "game settled successfully"
	GameReplayed        = "game already settled for this idempotency key"
	HistoryRetrieved    = "game history retrieved successfully"
	StatsRetrieved      = "game stats retrieved successfully"
	BalanceRetrieved    = "user balance retrieved successfully"
	UserBalanceCreated  = "user balance created successfully"
	UserBalanceUpdated  = "user balance updated successfully"
	ResponseCodeSuccess = "success"
)
