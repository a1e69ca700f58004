package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	PlanFree  = "FREE"
	PlanBasic = "BASIC"
	PlanPro   = "PRO"
)

// Plan is a subscription tier. Features holds the per-tier limits and
// boolean capabilities as JSON, mirroring the seeded tiers.
type Plan struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"type:varchar(50);uniqueIndex;not null"`
	DisplayName string `gorm:"type:varchar(100);not null"`

	PriceUSD decimal.Decimal `gorm:"column:price_usd;type:numeric(20,2);not null"`
	Features datatypes.JSON  `gorm:"type:jsonb;not null"`
	IsActive bool            `gorm:"not null;default:true;index"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (Plan) TableName() string {
	return "plans"
}
