package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tradegoal/internal/apperr"
	"tradegoal/internal/models"
	"tradegoal/internal/projection"
	"tradegoal/internal/repository"
)

type GoalService struct {
	Repo     repository.Repository
	Calendar *CalendarService
	Logger   *zap.Logger
}

type CreateGoalInput struct {
	TargetCapital   decimal.Decimal
	RiskPercent     int
	SessionsPerDay  int
	OpsPerSession   int
	WinrateEstimate float64
}

type UpdateGoalInput struct {
	TargetCapital   *decimal.Decimal
	RiskPercent     *int
	SessionsPerDay  *int
	OpsPerSession   *int
	WinrateEstimate *float64
	Status          *string
}

func validateGoalConfig(risk, sessions, ops int, winrate float64) error {
	if risk != 2 && risk != 3 {
		return apperr.Validation("risk_percent must be 2 or 3")
	}
	if sessions != 2 && sessions != 3 {
		return apperr.Validation("sessions_per_day must be 2 or 3")
	}
	if ops != 4 && ops != 5 {
		return apperr.Validation("ops_per_session must be 4 or 5")
	}
	if winrate < 0.50 || winrate > 0.80 {
		return apperr.Validation("winrate_estimate must be between 0.50 and 0.80")
	}
	return nil
}

// CreateGoal captures immutable snapshots of the account's capital and
// payout at creation time and builds the initial calendar.
func (s *GoalService) CreateGoal(ctx context.Context, userID uint64, input CreateGoalInput) (*models.Goal, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	account, err := s.Repo.GetAccountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, apperr.NotFound("account not found")
	}
	if err := validateGoalConfig(input.RiskPercent, input.SessionsPerDay, input.OpsPerSession, input.WinrateEstimate); err != nil {
		return nil, err
	}
	if input.TargetCapital.LessThanOrEqual(account.Capital) {
		return nil, apperr.Validation("target capital must exceed current capital")
	}
	open, err := s.Repo.GetOpenGoalByAccount(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, apperr.Conflict("an active or paused goal already exists")
	}

	now := time.Now().UTC()
	goal := &models.Goal{
		AccountID:            account.ID,
		TargetCapital:        input.TargetCapital,
		StartCapitalSnapshot: account.Capital,
		PayoutSnapshot:       account.Payout,
		StartDate:            dateOnly(now),
		RiskPercent:          input.RiskPercent,
		SessionsPerDay:       input.SessionsPerDay,
		OpsPerSession:        input.OpsPerSession,
		WinrateEstimate:      input.WinrateEstimate,
		Status:               models.GoalStatusActive,
		NotRecommended:       account.Payout < minPayout,
	}
	if err := s.Repo.CreateGoal(ctx, goal); err != nil {
		return nil, err
	}
	if err := s.Calendar.Regenerate(ctx, goal.ID); err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *GoalService) ownedGoal(ctx context.Context, userID, goalID uint64) (*models.Goal, *models.Account, error) {
	goal, err := s.Repo.GetGoalByID(ctx, goalID)
	if err != nil {
		return nil, nil, err
	}
	if goal == nil {
		return nil, nil, apperr.NotFound("goal not found")
	}
	account, err := s.Repo.GetAccountByID(ctx, goal.AccountID)
	if err != nil {
		return nil, nil, err
	}
	if account == nil || account.UserID != userID {
		return nil, nil, apperr.NotFound("goal not found")
	}
	return goal, account, nil
}

func (s *GoalService) ListGoals(ctx context.Context, userID uint64) ([]models.Goal, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	account, err := s.Repo.GetAccountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, apperr.NotFound("account not found")
	}
	return s.Repo.ListGoalsByAccount(ctx, account.ID)
}

func (s *GoalService) GetGoal(ctx context.Context, userID, goalID uint64) (*models.Goal, *models.Account, error) {
	if s == nil || s.Repo == nil {
		return nil, nil, nil
	}
	return s.ownedGoal(ctx, userID, goalID)
}

// UpdateGoal applies a partial edit. Any change invalidates the whole
// forward calendar, so regeneration always follows.
func (s *GoalService) UpdateGoal(ctx context.Context, userID, goalID uint64, input UpdateGoalInput) (*models.Goal, error) {
	goal, account, err := s.ownedGoal(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if input.RiskPercent != nil {
		goal.RiskPercent = *input.RiskPercent
	}
	if input.SessionsPerDay != nil {
		goal.SessionsPerDay = *input.SessionsPerDay
	}
	if input.OpsPerSession != nil {
		goal.OpsPerSession = *input.OpsPerSession
	}
	if input.WinrateEstimate != nil {
		goal.WinrateEstimate = *input.WinrateEstimate
	}
	if err := validateGoalConfig(goal.RiskPercent, goal.SessionsPerDay, goal.OpsPerSession, goal.WinrateEstimate); err != nil {
		return nil, err
	}
	if input.TargetCapital != nil {
		if input.TargetCapital.LessThanOrEqual(account.Capital) {
			return nil, apperr.Validation("target capital must exceed current capital")
		}
		goal.TargetCapital = *input.TargetCapital
	}
	if input.Status != nil {
		switch *input.Status {
		case models.GoalStatusActive, models.GoalStatusPaused, models.GoalStatusCompleted, models.GoalStatusCancelled:
			goal.Status = *input.Status
			if *input.Status == models.GoalStatusCompleted && goal.CompletedAt == nil {
				now := time.Now().UTC()
				goal.CompletedAt = &now
			}
		default:
			return nil, apperr.Validation("invalid status %q", *input.Status)
		}
	}
	if err := s.Repo.SaveGoal(ctx, goal); err != nil {
		return nil, err
	}
	if err := s.Calendar.Regenerate(ctx, goal.ID); err != nil {
		return nil, err
	}
	return goal, nil
}

// DeleteGoal removes the goal and its daily plans.
func (s *GoalService) DeleteGoal(ctx context.Context, userID, goalID uint64) error {
	goal, _, err := s.ownedGoal(ctx, userID, goalID)
	if err != nil {
		return err
	}
	return s.Repo.DeleteGoal(ctx, goal.ID)
}

type GoalProgress struct {
	CurrentCapital  decimal.Decimal `json:"current_capital"`
	CapitalGained   decimal.Decimal `json:"capital_gained"`
	ProgressPercent float64         `json:"progress_percent"`
	DaysElapsed     int             `json:"days_elapsed"`
	RealWinrate     *float64        `json:"real_winrate"`
	ETADays         *int            `json:"eta_days"`
}

// Progress reports how far the goal has come and a growth-factor ETA.
// Once real operations exist, the measured winrate replaces the estimate
// in the ETA math.
func (s *GoalService) Progress(ctx context.Context, userID, goalID uint64) (*GoalProgress, error) {
	goal, account, err := s.ownedGoal(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	out := &GoalProgress{
		CurrentCapital: account.Capital.Round(2),
		CapitalGained:  account.Capital.Sub(goal.StartCapitalSnapshot).Round(2),
		DaysElapsed:    int(dateOnly(now).Sub(dateOnly(goal.StartDate)).Hours() / 24),
	}

	span := goal.TargetCapital.Sub(goal.StartCapitalSnapshot)
	if span.IsPositive() {
		pct, _ := out.CapitalGained.Div(span).Mul(decimal.NewFromInt(100)).Round(2).Float64()
		out.ProgressPercent = pct
	}

	winrate := goal.WinrateEstimate
	ops, err := s.Repo.ListDatedOperations(ctx, account.ID, dateOnly(goal.StartDate))
	if err != nil {
		return nil, err
	}
	wins := 0
	for _, op := range ops {
		if op.Operation.Result == models.OperationResultWin {
			wins++
		}
	}
	if rate, ok := projection.RealWinrate(wins, len(ops)); ok {
		out.RealWinrate = &rate
		winrate = rate
	}

	opsPerDay := goal.SessionsPerDay * goal.OpsPerSession
	growth := projection.DailyGrowthFactor(
		float64(goal.RiskPercent)/100,
		opsPerDay,
		projection.ExpectedReturnPerOp(winrate, goal.PayoutSnapshot),
	)
	current, _ := account.Capital.Float64()
	target, _ := goal.TargetCapital.Float64()
	if days, ok := projection.DaysToGoal(current, target, growth); ok {
		out.ETADays = &days
	}
	return out, nil
}
