package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OperationResultWin  = "WIN"
	OperationResultLoss = "LOSS"
	OperationResultDraw = "DRAW"
)

// Operation is an immutable settled trade. Profit is the signed net effect
// on capital; Amount is the stake risked.
type Operation struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	SessionID uint64 `gorm:"not null;index"`

	Result      string          `gorm:"type:varchar(10);not null"`
	RiskPercent int             `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	Profit      decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0"`
	Comment     *string         `gorm:"type:text"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (Operation) TableName() string {
	return "operations"
}
