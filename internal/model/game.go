package model

import "time"

type Game struct {
	ID              string    `gorm:"column:id;primaryKey;type:varchar(36);<-:create"`
	UserID          string    `gorm:"column:user_id;type:varchar(64);not null;index:idx_games_user_date,priority:1;index:idx_games_user_key,unique,priority:1;<-:create"`
	GeneratedNumber int       `gorm:"column:generated_number;not null;<-:create"`
	Result          bool      `gorm:"column:result;not null;<-:create"`
	BalanceChange   int64     `gorm:"column:balance_change;not null;<-:create"`
	NewBalance      int64     `gorm:"column:new_balance;not null;<-:create"`
	IdempotencyKey  *string   `gorm:"column:idempotency_key;type:varchar(64);index:idx_games_user_key,unique,priority:2;<-:create"`
	Date            time.Time `gorm:"column:date;not null;precision:6;index:idx_games_user_date,priority:2,sort:desc;index:idx_games_date,sort:desc;<-:create"`
}

func (Game) TableName() string {
	return "games"
}

type GameStats struct {
	TotalGames      int
	WonGames        int
	WinRate         int
	TotalPointsWon  int64
	TotalPointsLost int64
	AverageChange   float64
	AverageNumber   float64
	NumberStdDev    float64
}
