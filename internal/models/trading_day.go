package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TradingDayStatusActive  = "active"
	TradingDayStatusBlocked = "blocked"
)

type TradingDay struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	AccountID uint64    `gorm:"not null;uniqueIndex:idx_trading_day_account_date"`
	Date      time.Time `gorm:"type:date;not null;uniqueIndex:idx_trading_day_account_date;index"`

	StartCapital decimal.Decimal `gorm:"type:numeric(30,10);not null"`

	Status       string          `gorm:"type:varchar(20);not null;default:'active'"`
	BlockedUntil *time.Time      `gorm:"type:timestamptz"`
	LossCount    int             `gorm:"not null;default:0"`
	Drawdown     decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (TradingDay) TableName() string {
	return "trading_days"
}
