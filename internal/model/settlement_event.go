package model

import "time"

type SettlementEvent struct {
	ID            string     `gorm:"column:id;primaryKey;type:varchar(36);<-:create"`
	GameID        string     `gorm:"column:game_id;type:varchar(36);not null;uniqueIndex;<-:create"`
	UserID        string     `gorm:"column:user_id;type:varchar(64);not null;<-:create"`
	BalanceChange int64      `gorm:"column:balance_change;not null;<-:create"`
	NewBalance    int64      `gorm:"column:new_balance;not null;<-:create"`
	Published     bool       `gorm:"column:published;not null;default:false;index:idx_events_published,priority:1"`
	PublishedAt   *time.Time `gorm:"column:published_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime;index:idx_events_published,priority:2"`
}

func (SettlementEvent) TableName() string {
	return "settlement_events"
}

func AllModels() []any {
	return []any{&UserBalance{}, &Game{}, &SettlementEvent{}, &BalanceAdjustment{}}
}
