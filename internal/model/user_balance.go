package model

import "time"

type UserBalance struct {
	UserID    string    `gorm:"column:user_id;primaryKey;type:varchar(64)"`
	Balance   int64     `gorm:"column:balance;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (UserBalance) TableName() string {
	return "user_balances"
}

// BalanceAdjustment records an absolute balance edit made outside of settlement.
type BalanceAdjustment struct {
	ID              string    `gorm:"column:id;primaryKey;type:varchar(36);<-:create"`
	UserID          string    `gorm:"column:user_id;type:varchar(64);not null;index;<-:create"`
	ActorID         string    `gorm:"column:actor_id;type:varchar(64);not null;<-:create"`
	PreviousBalance int64     `gorm:"column:previous_balance;not null;<-:create"`
	NewBalance      int64     `gorm:"column:new_balance;not null;<-:create"`
	Delta           int64     `gorm:"column:delta;not null;<-:create"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (BalanceAdjustment) TableName() string {
	return "balance_adjustments"
}
