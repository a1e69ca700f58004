package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tradegoal/internal/apperr"
	"tradegoal/internal/models"
	"tradegoal/internal/repository"
)

type WithdrawalService struct {
	Repo     repository.Repository
	Ledger   *Ledger
	Calendar *CalendarService
	Logger   *zap.Logger
}

// CreateWithdrawal reduces capital, records before/after snapshots, links
// the active goal if one exists and refreshes its calendar.
func (s *WithdrawalService) CreateWithdrawal(ctx context.Context, userID uint64, amount decimal.Decimal, note *string) (*models.Withdrawal, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperr.Validation("amount must be positive")
	}
	account, err := s.Repo.GetAccountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, apperr.NotFound("account not found")
	}
	if amount.GreaterThan(account.Capital) {
		return nil, apperr.Validation("insufficient capital")
	}

	before := account.Capital
	if err := s.Ledger.ApplyDelta(ctx, account, amount.Neg()); err != nil {
		return nil, err
	}

	item := &models.Withdrawal{
		AccountID:     account.ID,
		Amount:        amount,
		WithdrawnAt:   time.Now().UTC(),
		Note:          note,
		CapitalBefore: before,
		CapitalAfter:  account.Capital,
	}
	goal, err := s.Repo.GetActiveGoalByAccount(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	if goal != nil {
		item.GoalID = &goal.ID
	}
	if err := s.Repo.InsertWithdrawal(ctx, item); err != nil {
		return nil, err
	}
	if goal != nil {
		if err := s.Calendar.Regenerate(ctx, goal.ID); err != nil {
			return nil, err
		}
	}
	return item, nil
}

type WithdrawalList struct {
	Items []models.Withdrawal `json:"items"`
	Total decimal.Decimal     `json:"total"`
}

func (s *WithdrawalService) ListWithdrawals(ctx context.Context, userID uint64, goalID *uint64, limit int) (*WithdrawalList, error) {
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
	items, err := s.Repo.ListWithdrawals(ctx, repository.ListWithdrawalsParams{
		AccountID: account.ID,
		GoalID:    goalID,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}
	out := &WithdrawalList{Items: items, Total: decimal.Zero}
	for _, w := range items {
		out.Total = out.Total.Add(w.Amount)
	}
	return out, nil
}

func (s *WithdrawalService) ownedWithdrawal(ctx context.Context, userID, id uint64) (*models.Withdrawal, error) {
	item, err := s.Repo.GetWithdrawalByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.NotFound("withdrawal not found")
	}
	account, err := s.Repo.GetAccountByID(ctx, item.AccountID)
	if err != nil {
		return nil, err
	}
	if account == nil || account.UserID != userID {
		return nil, apperr.NotFound("withdrawal not found")
	}
	return item, nil
}

func (s *WithdrawalService) GetWithdrawal(ctx context.Context, userID, id uint64) (*models.Withdrawal, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	return s.ownedWithdrawal(ctx, userID, id)
}

// DeleteWithdrawal removes the record only. Capital stays where it is;
// reversing a withdrawal is a manual capital edit.
func (s *WithdrawalService) DeleteWithdrawal(ctx context.Context, userID, id uint64) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	item, err := s.ownedWithdrawal(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.Repo.DeleteWithdrawal(ctx, item.ID)
}
