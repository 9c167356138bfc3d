package gameclient

import "time"

type Response[T any] struct {
	Successful bool   `json:"successful"`
	Code       string `json:"code"`
	Message    string `json:"message,omitempty"`
	TrackID    string `json:"x_track_id,omitempty"`
	Result     T      `json:"result"`
}

type Game struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	GeneratedNumber int       `json:"generated_number"`
	Result          bool      `json:"result"`
	BalanceChange   int64     `json:"balance_change"`
	NewBalance      int64     `json:"new_balance"`
	Date            time.Time `json:"date"`
	Replayed        bool      `json:"replayed,omitempty"`
}

type Balance struct {
	UserID  string `json:"user_id"`
	Balance int64  `json:"balance"`
}

type History struct {
	Games []Game `json:"games"`
	Total int    `json:"total"`
}
