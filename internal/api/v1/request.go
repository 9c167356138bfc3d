package v1

type PlayRequest struct {
	IdempotencyKey string `json:"idempotency_key" validate:"omitempty,idempotency_key"`
}

type CreateAccountRequest struct {
	UserID string `json:"user_id" validate:"required,user_id"`
}

type SetBalanceRequest struct {
	Balance *int64 `json:"balance" validate:"required"`
}

type HistoryRequest struct {
	Limit int `query:"limit"`
}
