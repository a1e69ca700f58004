package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tradegoal/internal/apperr"
	"tradegoal/internal/config"
	"tradegoal/internal/models"
	"tradegoal/internal/repository"
)

// autoProfitPayout is the payout used when profit is not supplied on a
// winning operation. The original product hard-codes 0.92 here regardless
// of the account's configured payout; kept as-is pending a product
// decision on whether the account payout should apply instead.
const autoProfitPayout = "0.92"

type OperationService struct {
	Repo     repository.Repository
	Sessions *SessionService
	Ledger   *Ledger
	Calendar *CalendarService
	Caps     *CapabilityService
	Rules    config.TradingConfig
	Logger   *zap.Logger
}

type RecordOperationInput struct {
	SessionID   uint64
	Result      string
	RiskPercent int
	Amount      *decimal.Decimal
	Profit      *decimal.Decimal
	Comment     *string
}

// RecordOperation settles one trade: derives stake and profit when not
// supplied, applies the result to capital, enforces the consecutive-loss
// block and refreshes the active goal's calendar.
func (s *OperationService) RecordOperation(ctx context.Context, userID uint64, email string, input RecordOperationInput) (*models.Operation, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	switch input.Result {
	case models.OperationResultWin, models.OperationResultLoss, models.OperationResultDraw:
	default:
		return nil, apperr.Validation("result must be WIN, LOSS or DRAW")
	}
	if input.RiskPercent <= 0 || input.RiskPercent > 100 {
		return nil, apperr.Validation("risk_percent must be between 1 and 100")
	}

	session, day, account, err := s.Sessions.ownedSession(ctx, userID, input.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == models.TradingSessionStatusClosed {
		return nil, apperr.Validation("session is closed")
	}
	now := time.Now().UTC()
	if day.Status == models.TradingDayStatusBlocked {
		if day.BlockedUntil != nil && now.After(*day.BlockedUntil) {
			day.Status = models.TradingDayStatusActive
			day.BlockedUntil = nil
			day.LossCount = 0
			day.Drawdown = decimal.Zero
			if err := s.Repo.SaveTradingDay(ctx, day); err != nil {
				return nil, err
			}
		} else {
			return nil, apperr.Authorization("daily loss limit reached")
		}
	}

	if s.Caps != nil {
		caps := s.Caps.Resolve(ctx, userID, email)
		count, err := s.Repo.CountOperationsBySession(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		if caps.MaxOpsPerSession > 0 && int(count) >= caps.MaxOpsPerSession {
			return nil, apperr.Authorization("session operation limit reached")
		}
	}

	amount, err := resolveAmount(input.Amount, account.Capital, input.RiskPercent)
	if err != nil {
		return nil, err
	}
	profit := resolveProfit(input.Profit, input.Result, amount)

	op := &models.Operation{
		SessionID:   session.ID,
		Result:      input.Result,
		RiskPercent: input.RiskPercent,
		Amount:      amount,
		Profit:      profit,
		Comment:     input.Comment,
	}
	if err := s.Repo.InsertOperation(ctx, op); err != nil {
		return nil, err
	}

	switch input.Result {
	case models.OperationResultLoss:
		session.LossCount++
		day.LossCount++
		day.Drawdown = day.Drawdown.Add(amount)
	case models.OperationResultWin:
		session.LossCount = 0
	}
	if err := s.Repo.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	lossLimit := s.Rules.SessionLossLimit
	if lossLimit <= 0 {
		lossLimit = 2
	}
	if session.LossCount >= lossLimit {
		cooldown := s.Rules.BlockCooldown
		if cooldown <= 0 {
			cooldown = 24 * time.Hour
		}
		until := now.Add(cooldown)
		day.Status = models.TradingDayStatusBlocked
		day.BlockedUntil = &until
		if s.Logger != nil {
			s.Logger.Info("trading day blocked",
				zap.Uint64("account_id", account.ID),
				zap.Int("loss_count", session.LossCount),
				zap.Time("blocked_until", until))
		}
	}
	if err := s.Repo.SaveTradingDay(ctx, day); err != nil {
		return nil, err
	}

	if err := s.Ledger.ApplyDelta(ctx, account, profit); err != nil {
		return nil, err
	}
	if err := s.Calendar.RegenerateActive(ctx, account.ID); err != nil {
		return nil, err
	}
	return op, nil
}

func resolveAmount(amount *decimal.Decimal, capital decimal.Decimal, riskPercent int) (decimal.Decimal, error) {
	if amount == nil {
		if capital.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, apperr.Validation("cannot derive stake from non-positive capital")
		}
		derived := capital.
			Mul(decimal.NewFromInt(int64(riskPercent))).
			Div(decimal.NewFromInt(100)).
			Round(2)
		return derived, nil
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, apperr.Validation("amount must be positive")
	}
	return *amount, nil
}

func resolveProfit(profit *decimal.Decimal, result string, amount decimal.Decimal) decimal.Decimal {
	if profit != nil {
		return *profit
	}
	switch result {
	case models.OperationResultWin:
		return amount.Mul(decimal.RequireFromString(autoProfitPayout)).Round(2)
	case models.OperationResultLoss:
		return amount.Neg()
	default:
		return decimal.Zero
	}
}

// ListOperations returns the session's history, ownership-checked.
func (s *OperationService) ListOperations(ctx context.Context, userID, sessionID uint64) ([]models.Operation, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	session, _, _, err := s.Sessions.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListOperationsBySession(ctx, session.ID)
}
