package service

import (
	"context"

	"github.com/shopspring/decimal"

	"tradegoal/internal/apperr"
	"tradegoal/internal/models"
	"tradegoal/internal/repository"
)

const (
	minPayout = 0.80
	maxPayout = 0.92
)

type AccountService struct {
	Repo repository.Repository
}

type UpdateAccountInput struct {
	Capital *decimal.Decimal
	Payout  *float64
}

func validPayout(p float64) bool {
	return p >= minPayout && p <= maxPayout
}

func (s *AccountService) CreateAccount(ctx context.Context, userID uint64, capital decimal.Decimal, payout float64) (*models.Account, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	if capital.IsNegative() {
		return nil, apperr.Validation("capital must not be negative")
	}
	if !validPayout(payout) {
		return nil, apperr.Validation("payout must be between %.2f and %.2f", minPayout, maxPayout)
	}
	existing, err := s.Repo.GetAccountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("account already exists")
	}
	item := &models.Account{
		UserID:  userID,
		Capital: capital,
		Payout:  payout,
	}
	if err := s.Repo.CreateAccount(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *AccountService) GetAccount(ctx context.Context, userID uint64) (*models.Account, error) {
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
	return account, nil
}

func (s *AccountService) UpdateAccount(ctx context.Context, userID uint64, input UpdateAccountInput) (*models.Account, error) {
	account, err := s.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	if input.Capital != nil {
		if input.Capital.IsNegative() {
			return nil, apperr.Validation("capital must not be negative")
		}
		account.Capital = *input.Capital
	}
	if input.Payout != nil {
		if !validPayout(*input.Payout) {
			return nil, apperr.Validation("payout must be between %.2f and %.2f", minPayout, maxPayout)
		}
		account.Payout = *input.Payout
	}
	if err := s.Repo.SaveAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}
