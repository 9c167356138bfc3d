package v1

import (
	"time"

	"github.com/truenumber/gameservice/internal/model"
	"github.com/truenumber/gameservice/internal/service"
)

type GameResponse struct {
	ID              string `json:"id"`
	UserID          string `json:"user_id"`
	GeneratedNumber int    `json:"generated_number"`
	Result          bool   `json:"result"`
	BalanceChange   int64  `json:"balance_change"`
	NewBalance      int64  `json:"new_balance"`
	Date            string `json:"date"`
}

type PlayResponse struct {
	GameResponse
	Replayed bool `json:"replayed"`
}

type BalanceResponse struct {
	UserID  string `json:"user_id"`
	Balance int64  `json:"balance"`
}

type SetBalanceResponse struct {
	UserID          string `json:"user_id"`
	PreviousBalance int64  `json:"previous_balance"`
	Balance         int64  `json:"balance"`
	AdjustmentID    string `json:"adjustment_id"`
}

type HistoryResponse struct {
	Games []GameResponse `json:"games"`
	Total int            `json:"total"`
}

type StatsResponse struct {
	TotalGames      int     `json:"total_games"`
	WonGames        int     `json:"won_games"`
	WinRate         int     `json:"win_rate"`
	TotalPointsWon  int64   `json:"total_points_won"`
	TotalPointsLost int64   `json:"total_points_lost"`
	AverageChange   float64 `json:"average_change"`
	AverageNumber   float64 `json:"average_number"`
	NumberStdDev    float64 `json:"number_stddev"`
}

func newGameResponse(g model.Game) GameResponse {
	return GameResponse{
		ID:              g.ID,
		UserID:          g.UserID,
		GeneratedNumber: g.GeneratedNumber,
		Result:          g.Result,
		BalanceChange:   g.BalanceChange,
		NewBalance:      g.NewBalance,
		Date:            g.Date.UTC().Format(time.RFC3339Nano),
	}
}

func newPlayResponse(r service.PlayResult) PlayResponse {
	return PlayResponse{
		GameResponse: GameResponse{
			ID:              r.GameID,
			UserID:          r.UserID,
			GeneratedNumber: r.GeneratedNumber,
			Result:          r.Result,
			BalanceChange:   r.BalanceChange,
			NewBalance:      r.NewBalance,
			Date:            r.Date.UTC().Format(time.RFC3339Nano),
		},
		Replayed: r.Replayed,
	}
}

func newHistoryResponse(games []model.Game) HistoryResponse {
	res := HistoryResponse{Games: make([]GameResponse, 0, len(games)), Total: len(games)}
	for _, g := range games {
		res.Games = append(res.Games, newGameResponse(g))
	}
	return res
}

func newStatsResponse(s model.GameStats) StatsResponse {
	return StatsResponse{
		TotalGames:      s.TotalGames,
		WonGames:        s.WonGames,
		WinRate:         s.WinRate,
		TotalPointsWon:  s.TotalPointsWon,
		TotalPointsLost: s.TotalPointsLost,
		AverageChange:   s.AverageChange,
		AverageNumber:   s.AverageNumber,
		NumberStdDev:    s.NumberStdDev,
	}
}
