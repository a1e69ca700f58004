package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"tradegoal/internal/apperr"
)

func newWithdrawalFixture(t *testing.T, capital string) (*WithdrawalService, *stubRepo, uint64) {
	t.Helper()
	repo := newStubRepo()
	_, userID := seedAccount(t, repo, capital)
	svc := &WithdrawalService{
		Repo:     repo,
		Ledger:   &Ledger{Repo: repo},
		Calendar: newTestCalendar(repo),
	}
	return svc, repo, userID
}

func TestWithdrawalInsufficientCapital(t *testing.T) {
	svc, _, userID := newWithdrawalFixture(t, "1000")

	_, err := svc.CreateWithdrawal(context.Background(), userID, decimal.RequireFromString("2000"), nil)
	if !apperr.IsValidation(err) {
		t.Fatalf("expected insufficient-capital validation error, got %v", err)
	}
}

func TestWithdrawalAppliesLedgerAndRegenerates(t *testing.T) {
	svc, repo, userID := newWithdrawalFixture(t, "1000")
	account, _ := repo.GetAccountByUserID(context.Background(), userID)
	goal := seedGoal(t, repo, account, "2000", fixedNow())

	item, err := svc.CreateWithdrawal(context.Background(), userID, decimal.RequireFromString("100"), nil)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if !item.CapitalBefore.Equal(decimal.RequireFromString("1000")) {
		t.Fatalf("capital before = %s, want 1000", item.CapitalBefore)
	}
	if !item.CapitalAfter.Equal(decimal.RequireFromString("900")) {
		t.Fatalf("capital after = %s, want 900", item.CapitalAfter)
	}
	if item.GoalID == nil || *item.GoalID != goal.ID {
		t.Fatal("withdrawal not linked to the active goal")
	}

	account, _ = repo.GetAccountByUserID(context.Background(), userID)
	if !account.Capital.Equal(decimal.RequireFromString("900")) {
		t.Fatalf("capital = %s, want 900", account.Capital)
	}
	if plans := mustPlans(t, repo, goal.ID, goal.StartDate); len(plans) == 0 {
		t.Fatal("active goal calendar was not regenerated")
	}
}

func TestWithdrawalRejectsNonPositive(t *testing.T) {
	svc, _, userID := newWithdrawalFixture(t, "1000")

	_, err := svc.CreateWithdrawal(context.Background(), userID, decimal.Zero, nil)
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for zero amount, got %v", err)
	}
}

func TestDeleteWithdrawalKeepsCapital(t *testing.T) {
	svc, repo, userID := newWithdrawalFixture(t, "1000")

	item, err := svc.CreateWithdrawal(context.Background(), userID, decimal.RequireFromString("100"), nil)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if err := svc.DeleteWithdrawal(context.Background(), userID, item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	account, _ := repo.GetAccountByUserID(context.Background(), userID)
	if !account.Capital.Equal(decimal.RequireFromString("900")) {
		t.Fatalf("capital = %s, deleting a withdrawal must not restore it", account.Capital)
	}
	if got, _ := repo.GetWithdrawalByID(context.Background(), item.ID); got != nil {
		t.Fatal("record still present after delete")
	}
}

func TestGetWithdrawalForeignAccountHidden(t *testing.T) {
	svc, _, userID := newWithdrawalFixture(t, "1000")

	item, err := svc.CreateWithdrawal(context.Background(), userID, decimal.RequireFromString("50"), nil)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if _, err := svc.GetWithdrawal(context.Background(), 9999, item.ID); !apperr.IsNotFound(err) {
		t.Fatalf("expected not-found for foreign withdrawal, got %v", err)
	}
}
