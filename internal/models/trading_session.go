package models

import (
	"time"
)

const (
	TradingSessionStatusActive = "active"
	TradingSessionStatusClosed = "closed"
)

type TradingSession struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	TradingDayID uint64 `gorm:"not null;index"`

	SessionNumber int    `gorm:"not null"`
	Status        string `gorm:"type:varchar(20);not null;default:'active'"`
	LossCount     int    `gorm:"not null;default:0"`

	EndedAt *time.Time `gorm:"type:timestamptz"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (TradingSession) TableName() string {
	return "trading_sessions"
}
