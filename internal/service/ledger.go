package service

import (
	"context"

	"github.com/shopspring/decimal"

	"tradegoal/internal/apperr"
	"tradegoal/internal/models"
	"tradegoal/internal/repository"
)

// Ledger owns the single mutation point for account capital. Deltas are
// applied as-is: no clamping, no rounding. Rounding happens at the
// presentation edge and inside the calendar engine's day math.
type Ledger struct {
	Repo repository.Repository
}

func (l *Ledger) ApplyDelta(ctx context.Context, account *models.Account, delta decimal.Decimal) error {
	if l == nil || l.Repo == nil {
		return nil
	}
	if account == nil {
		return apperr.NotFound("account not found")
	}
	account.Capital = account.Capital.Add(delta)
	return l.Repo.SaveAccount(ctx, account)
}
