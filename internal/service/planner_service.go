package service

import (
	"context"

	"github.com/shopspring/decimal"

	"tradegoal/internal/apperr"
	"tradegoal/internal/config"
	"tradegoal/internal/projection"
	"tradegoal/internal/repository"
)

// PlannerService answers "what if I traded with these parameters" without
// touching any goal or calendar state.
type PlannerService struct {
	Repo        repository.Repository
	Projections config.ProjectionsConfig
}

type PlannerInput struct {
	RiskPercent    float64
	SessionsPerDay int
	OpsPerSession  int
	Winrate        float64
}

type PlannerResult struct {
	Stake               decimal.Decimal `json:"stake"`
	WinProfit           decimal.Decimal `json:"win_profit"`
	LossAmount          decimal.Decimal `json:"loss_amount"`
	ExpectedReturnPerOp float64         `json:"expected_return_per_op"`
	DailyGrowthFactor   float64         `json:"daily_growth_factor"`
	Projection15Days    decimal.Decimal `json:"projection_15_days"`
	Projection30Days    decimal.Decimal `json:"projection_30_days"`
	DaysToGoal          *int            `json:"days_to_goal"`
	Warnings            []string        `json:"warnings"`
}

func (s *PlannerService) Calculate(ctx context.Context, userID uint64, input PlannerInput) (*PlannerResult, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	if input.RiskPercent <= 0 || input.RiskPercent > 100 {
		return nil, apperr.Validation("risk_percent must be between 0 and 100")
	}
	if input.SessionsPerDay <= 0 || input.OpsPerSession <= 0 {
		return nil, apperr.Validation("sessions_per_day and ops_per_session must be positive")
	}
	if input.Winrate < 0 || input.Winrate > 1 {
		return nil, apperr.Validation("winrate must be between 0 and 1")
	}
	account, err := s.Repo.GetAccountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, apperr.NotFound("account not found")
	}

	stake := account.Capital.
		Mul(decimal.NewFromFloat(input.RiskPercent)).
		Div(decimal.NewFromInt(100)).
		Round(2)
	opsPerDay := input.SessionsPerDay * input.OpsPerSession
	expectedReturn := projection.ExpectedReturnPerOp(input.Winrate, account.Payout)
	growth := projection.DailyGrowthFactor(input.RiskPercent/100, opsPerDay, expectedReturn)
	capital, _ := account.Capital.Float64()

	out := &PlannerResult{
		Stake:               stake,
		WinProfit:           stake.Mul(decimal.NewFromFloat(account.Payout)).Round(2),
		LossAmount:          stake,
		ExpectedReturnPerOp: expectedReturn,
		DailyGrowthFactor:   growth,
		Projection15Days:    decimal.NewFromFloat(projection.ProjectCapital(capital, growth, 15)).Round(2),
		Projection30Days:    decimal.NewFromFloat(projection.ProjectCapital(capital, growth, 30)).Round(2),
		Warnings:            []string{},
	}

	goal, err := s.Repo.GetActiveGoalByAccount(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	if goal != nil {
		target, _ := goal.TargetCapital.Float64()
		if days, ok := projection.DaysToGoal(capital, target, growth); ok {
			out.DaysToGoal = &days
		}
	}

	if account.Payout < minPayout {
		out.Warnings = append(out.Warnings, "blocked_recommended")
	}
	if growth <= 1 {
		out.Warnings = append(out.Warnings, "no_growth")
	}
	if input.Winrate < 0.55 {
		out.Warnings = append(out.Warnings, "low_winrate")
	}
	return out, nil
}

type DayProjection struct {
	Day     int             `json:"day"`
	Capital decimal.Decimal `json:"capital"`
}

type ProjectionView struct {
	Days         int             `json:"days"`
	Winrate      float64         `json:"winrate"`
	RiskPercent  float64         `json:"risk_percent"`
	OpsPerDay    int             `json:"ops_per_day"`
	GrowthFactor float64         `json:"growth_factor"`
	Path         []DayProjection `json:"path"`
	FinalCapital decimal.Decimal `json:"final_capital"`
}

// Project compounds the account's capital over the requested horizon using
// the fixed conservative assumptions from configuration.
func (s *PlannerService) Project(ctx context.Context, userID uint64, days int) (*ProjectionView, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	if days <= 0 {
		days = 30
	}
	if days > 365 {
		days = 365
	}
	account, err := s.Repo.GetAccountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, apperr.NotFound("account not found")
	}

	winrate := s.Projections.Winrate
	risk := s.Projections.RiskPercent
	opsPerDay := s.Projections.OpsPerDay
	expectedReturn := projection.ExpectedReturnPerOp(winrate, account.Payout)
	growth := projection.DailyGrowthFactor(risk/100, opsPerDay, expectedReturn)
	capital, _ := account.Capital.Float64()

	out := &ProjectionView{
		Days:         days,
		Winrate:      winrate,
		RiskPercent:  risk,
		OpsPerDay:    opsPerDay,
		GrowthFactor: growth,
		Path:         make([]DayProjection, 0, days),
	}
	for d := 1; d <= days; d++ {
		value := decimal.NewFromFloat(projection.ProjectCapital(capital, growth, d)).Round(2)
		out.Path = append(out.Path, DayProjection{Day: d, Capital: value})
	}
	out.FinalCapital = out.Path[len(out.Path)-1].Capital
	return out, nil
}
