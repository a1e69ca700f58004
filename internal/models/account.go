package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds the single capital scalar everything else mutates.
// Payout is the fraction of stake returned on a winning operation,
// constrained to [0.80, 0.92] at the service layer.
type Account struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	UserID uint64 `gorm:"not null;uniqueIndex"`

	Capital decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	Payout  float64         `gorm:"not null"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Account) TableName() string {
	return "accounts"
}
