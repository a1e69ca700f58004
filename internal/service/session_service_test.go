package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tradegoal/internal/apperr"
	"tradegoal/internal/models"
)

func TestStartSessionCreatesTradingDay(t *testing.T) {
	repo := newStubRepo()
	_, userID := seedAccount(t, repo, "1000")
	svc := &SessionService{Repo: repo, Rules: testRules()}

	session, err := svc.StartSession(context.Background(), userID, "trader@example.com")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if session.SessionNumber != 1 {
		t.Fatalf("session number = %d, want 1", session.SessionNumber)
	}
	day, _ := repo.GetTradingDayByID(context.Background(), session.TradingDayID)
	if day == nil {
		t.Fatal("trading day was not created")
	}
	if !day.StartCapital.Equal(decimal.RequireFromString("1000")) {
		t.Fatalf("start capital = %s, want 1000", day.StartCapital)
	}
}

func TestStartSessionGlobalDailyCap(t *testing.T) {
	repo := newStubRepo()
	_, userID := seedAccount(t, repo, "1000")
	rules := testRules()
	rules.MaxSessionsPerDay = 2
	svc := &SessionService{Repo: repo, Rules: rules}

	for i := 0; i < 2; i++ {
		if _, err := svc.StartSession(context.Background(), userID, "trader@example.com"); err != nil {
			t.Fatalf("start %d: %v", i+1, err)
		}
	}
	if _, err := svc.StartSession(context.Background(), userID, "trader@example.com"); !apperr.IsAuthorization(err) {
		t.Fatalf("expected authorization error at the daily cap, got %v", err)
	}
}

func TestStartSessionFreePlanCap(t *testing.T) {
	repo := newStubRepo()
	_, userID := seedAccount(t, repo, "1000")
	svc := &SessionService{Repo: repo, Rules: testRules(), Caps: &CapabilityService{Repo: repo}}

	if _, err := svc.StartSession(context.Background(), userID, "trader@example.com"); err != nil {
		t.Fatalf("first session: %v", err)
	}
	if _, err := svc.StartSession(context.Background(), userID, "trader@example.com"); !apperr.IsAuthorization(err) {
		t.Fatalf("free tier must stop at one session, got %v", err)
	}
}

func TestExpiredDayBlockAutoClears(t *testing.T) {
	repo := newStubRepo()
	account, userID := seedAccount(t, repo, "1000")
	until := time.Now().UTC().Add(-time.Hour)
	day := &models.TradingDay{
		AccountID:    account.ID,
		Date:         dateOnly(time.Now().UTC()),
		StartCapital: account.Capital,
		Status:       models.TradingDayStatusBlocked,
		BlockedUntil: &until,
		LossCount:    2,
		Drawdown:     decimal.RequireFromString("40"),
	}
	if err := repo.CreateTradingDay(context.Background(), day); err != nil {
		t.Fatalf("create day: %v", err)
	}
	svc := &SessionService{Repo: repo, Rules: testRules()}

	if _, err := svc.StartSession(context.Background(), userID, "trader@example.com"); err != nil {
		t.Fatalf("start after cool-down: %v", err)
	}
	got, _ := repo.GetTradingDayByID(context.Background(), day.ID)
	if got.Status != models.TradingDayStatusActive || got.BlockedUntil != nil || got.LossCount != 0 {
		t.Fatalf("day block not cleared: status=%s loss=%d", got.Status, got.LossCount)
	}
}

func TestStartSessionStillBlocked(t *testing.T) {
	repo := newStubRepo()
	account, userID := seedAccount(t, repo, "1000")
	until := time.Now().UTC().Add(time.Hour)
	day := &models.TradingDay{
		AccountID:    account.ID,
		Date:         dateOnly(time.Now().UTC()),
		StartCapital: account.Capital,
		Status:       models.TradingDayStatusBlocked,
		BlockedUntil: &until,
	}
	if err := repo.CreateTradingDay(context.Background(), day); err != nil {
		t.Fatalf("create day: %v", err)
	}
	svc := &SessionService{Repo: repo, Rules: testRules()}

	if _, err := svc.StartSession(context.Background(), userID, "trader@example.com"); !apperr.IsAuthorization(err) {
		t.Fatalf("expected authorization error while blocked, got %v", err)
	}
}

func TestCloseSession(t *testing.T) {
	repo := newStubRepo()
	_, userID := seedAccount(t, repo, "1000")
	svc := &SessionService{Repo: repo, Rules: testRules()}

	session, err := svc.StartSession(context.Background(), userID, "trader@example.com")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	closed, err := svc.CloseSession(context.Background(), userID, session.ID)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != models.TradingSessionStatusClosed {
		t.Fatalf("status = %s, want %s", closed.Status, models.TradingSessionStatusClosed)
	}
	if closed.EndedAt == nil {
		t.Fatal("ended_at not stamped")
	}
}
