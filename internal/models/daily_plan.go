package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DailyPlanStatusPlanned    = "PLANNED"
	DailyPlanStatusInProgress = "IN_PROGRESS"
	DailyPlanStatusCompleted  = "COMPLETED"
	DailyPlanStatusBlocked    = "BLOCKED"
)

// GoalDailyPlan is one calendar day of a goal: the planned half derived
// from configuration and projected capital, and the actual half derived
// from real operations or a manual close. One row per (goal, date).
type GoalDailyPlan struct {
	ID     uint64    `gorm:"primaryKey;autoIncrement"`
	GoalID uint64    `gorm:"not null;uniqueIndex:idx_goal_plan_date;index"`
	Date   time.Time `gorm:"type:date;not null;uniqueIndex:idx_goal_plan_date;index"`

	CapitalStartOfDay decimal.Decimal `gorm:"type:numeric(30,10);not null"`

	PlannedSessions   int             `gorm:"not null"`
	PlannedOpsTotal   int             `gorm:"not null"`
	PlannedStake      decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	ExpectedWinProfit decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	ExpectedLoss      decimal.Decimal `gorm:"type:numeric(30,10);not null"`

	ActualSessions int             `gorm:"not null;default:0"`
	ActualOps      int             `gorm:"not null;default:0"`
	Wins           int             `gorm:"not null;default:0"`
	Losses         int             `gorm:"not null;default:0"`
	Draws          int             `gorm:"not null;default:0"`
	RealizedPnL    decimal.Decimal `gorm:"column:realized_pnl;type:numeric(30,10);not null;default:0"`

	Status        string  `gorm:"type:varchar(20);not null;default:'PLANNED';index"`
	Notes         *string `gorm:"type:text"`
	BlockedReason *string `gorm:"type:varchar(255)"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (GoalDailyPlan) TableName() string {
	return "goal_daily_plans"
}
