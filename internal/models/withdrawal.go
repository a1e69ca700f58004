package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Withdrawal records a capital reduction with before/after snapshots.
// Deleting a withdrawal removes the record only; capital is not restored.
type Withdrawal struct {
	ID        uint64  `gorm:"primaryKey;autoIncrement"`
	AccountID uint64  `gorm:"not null;index"`
	GoalID    *uint64 `gorm:"index"`

	Amount      decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	WithdrawnAt time.Time       `gorm:"type:timestamptz;not null;index"`
	Note        *string         `gorm:"type:text"`

	CapitalBefore decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	CapitalAfter  decimal.Decimal `gorm:"type:numeric(30,10);not null"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (Withdrawal) TableName() string {
	return "withdrawals"
}
