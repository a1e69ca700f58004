package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	GoalStatusActive    = "ACTIVE"
	GoalStatusPaused    = "PAUSED"
	GoalStatusCompleted = "COMPLETED"
	GoalStatusCancelled = "CANCELLED"
)

// Goal is a capital target plus the risk configuration used to project a
// path toward it. The *Snapshot fields are captured once at creation and
// never change afterwards, so historical plan math stays reproducible even
// when the account's live capital or payout drifts.
type Goal struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	AccountID uint64 `gorm:"not null;index"`

	TargetCapital decimal.Decimal `gorm:"type:numeric(30,10);not null"`

	StartCapitalSnapshot decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	PayoutSnapshot       float64         `gorm:"not null"`
	StartDate            time.Time       `gorm:"type:date;not null"`

	RiskPercent     int     `gorm:"not null;default:2"`
	SessionsPerDay  int     `gorm:"not null;default:2"`
	OpsPerSession   int     `gorm:"not null;default:5"`
	WinrateEstimate float64 `gorm:"not null;default:0.60"`

	Status         string     `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	NotRecommended bool       `gorm:"not null;default:false"`
	CompletedAt    *time.Time `gorm:"type:timestamptz"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Goal) TableName() string {
	return "goals"
}

// IsOpen reports whether the goal still owns a live calendar.
func (g *Goal) IsOpen() bool {
	return g.Status == GoalStatusActive || g.Status == GoalStatusPaused
}
