package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"tradegoal/internal/models"
)

// DatedOperation is an operation joined with the calendar date of the
// trading day it was recorded under.
type DatedOperation struct {
	Operation models.Operation
	Date      time.Time
}

type ListWithdrawalsParams struct {
	AccountID uint64
	GoalID    *uint64
	Limit     int
}

// Repository is the persistence boundary. The calendar engine and the
// services depend on this interface; the gorm implementation lives in
// repository/gorm and tests provide in-memory stubs.
type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Users
	CreateUser(ctx context.Context, item *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint64) (*models.User, error)

	// Accounts
	CreateAccount(ctx context.Context, item *models.Account) error
	GetAccountByID(ctx context.Context, id uint64) (*models.Account, error)
	GetAccountByUserID(ctx context.Context, userID uint64) (*models.Account, error)
	SaveAccount(ctx context.Context, item *models.Account) error

	// Trading days & sessions
	GetTradingDay(ctx context.Context, accountID uint64, date time.Time) (*models.TradingDay, error)
	CreateTradingDay(ctx context.Context, item *models.TradingDay) error
	SaveTradingDay(ctx context.Context, item *models.TradingDay) error
	ListTradingDaysInRange(ctx context.Context, accountID uint64, from, to time.Time) ([]models.TradingDay, error)
	CreateSession(ctx context.Context, item *models.TradingSession) error
	GetSessionByID(ctx context.Context, id uint64) (*models.TradingSession, error)
	SaveSession(ctx context.Context, item *models.TradingSession) error
	ListSessionsByDay(ctx context.Context, tradingDayID uint64) ([]models.TradingSession, error)
	CountSessionsByDay(ctx context.Context, tradingDayID uint64) (int64, error)
	GetTradingDayByID(ctx context.Context, id uint64) (*models.TradingDay, error)

	// Operations
	InsertOperation(ctx context.Context, item *models.Operation) error
	ListOperationsBySession(ctx context.Context, sessionID uint64) ([]models.Operation, error)
	CountOperationsBySession(ctx context.Context, sessionID uint64) (int64, error)
	// ListDatedOperations returns every operation of the account recorded
	// on or after since, tagged with its trading-day date.
	ListDatedOperations(ctx context.Context, accountID uint64, since time.Time) ([]DatedOperation, error)

	// Goals
	CreateGoal(ctx context.Context, item *models.Goal) error
	GetGoalByID(ctx context.Context, id uint64) (*models.Goal, error)
	ListGoalsByAccount(ctx context.Context, accountID uint64) ([]models.Goal, error)
	GetOpenGoalByAccount(ctx context.Context, accountID uint64) (*models.Goal, error)
	GetActiveGoalByAccount(ctx context.Context, accountID uint64) (*models.Goal, error)
	ListOpenGoalIDs(ctx context.Context) ([]uint64, error)
	SaveGoal(ctx context.Context, item *models.Goal) error
	DeleteGoal(ctx context.Context, id uint64) error

	// Daily plans
	ListDailyPlansSince(ctx context.Context, goalID uint64, since time.Time) ([]models.GoalDailyPlan, error)
	ListDailyPlansInRange(ctx context.Context, goalID uint64, from, to time.Time) ([]models.GoalDailyPlan, error)
	GetDailyPlanByDate(ctx context.Context, goalID uint64, date time.Time) (*models.GoalDailyPlan, error)
	GetLatestDailyPlanDate(ctx context.Context, goalID uint64) (*time.Time, error)
	SaveDailyPlan(ctx context.Context, item *models.GoalDailyPlan) error
	SaveDailyPlanTx(ctx context.Context, tx *gorm.DB, item *models.GoalDailyPlan) error
	// DeleteStalePlansTx removes plans dated strictly after `after` that
	// have zero actual operations.
	DeleteStalePlansTx(ctx context.Context, tx *gorm.DB, goalID uint64, after time.Time) (int64, error)

	// Withdrawals
	InsertWithdrawal(ctx context.Context, item *models.Withdrawal) error
	ListWithdrawals(ctx context.Context, params ListWithdrawalsParams) ([]models.Withdrawal, error)
	GetWithdrawalByID(ctx context.Context, id uint64) (*models.Withdrawal, error)
	DeleteWithdrawal(ctx context.Context, id uint64) error

	// Plans & subscriptions
	UpsertPlan(ctx context.Context, item *models.Plan) error
	GetPlanByName(ctx context.Context, name string) (*models.Plan, error)
	GetPlanByID(ctx context.Context, id uint64) (*models.Plan, error)
	ListActivePlans(ctx context.Context) ([]models.Plan, error)
	GetActiveSubscription(ctx context.Context, userID uint64) (*models.Subscription, error)
	InsertSubscription(ctx context.Context, item *models.Subscription) error
	SaveSubscription(ctx context.Context, item *models.Subscription) error
	ExpireDueSubscriptions(ctx context.Context, now time.Time) (int64, error)
}
