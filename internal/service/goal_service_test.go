package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"tradegoal/internal/apperr"
	"tradegoal/internal/models"
)

func newGoalFixture(t *testing.T, capital string) (*GoalService, *stubRepo, uint64) {
	t.Helper()
	repo := newStubRepo()
	_, userID := seedAccount(t, repo, capital)
	svc := &GoalService{Repo: repo, Calendar: newTestCalendar(repo)}
	return svc, repo, userID
}

func validGoalInput(target string) CreateGoalInput {
	return CreateGoalInput{
		TargetCapital:   decimal.RequireFromString(target),
		RiskPercent:     2,
		SessionsPerDay:  2,
		OpsPerSession:   5,
		WinrateEstimate: 0.60,
	}
}

func TestCreateGoalSnapshotsAndCalendar(t *testing.T) {
	svc, repo, userID := newGoalFixture(t, "1000")

	goal, err := svc.CreateGoal(context.Background(), userID, validGoalInput("2000"))
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if !goal.StartCapitalSnapshot.Equal(decimal.RequireFromString("1000")) {
		t.Fatalf("start capital snapshot = %s, want 1000", goal.StartCapitalSnapshot)
	}
	if goal.PayoutSnapshot != 0.85 {
		t.Fatalf("payout snapshot = %v, want 0.85", goal.PayoutSnapshot)
	}
	if goal.NotRecommended {
		t.Fatal("payout 0.85 should not flag not_recommended")
	}
	if plans := mustPlans(t, repo, goal.ID, goal.StartDate); len(plans) == 0 {
		t.Fatal("initial calendar was not built")
	}
}

func TestCreateGoalTargetBelowCapital(t *testing.T) {
	svc, _, userID := newGoalFixture(t, "1000")

	_, err := svc.CreateGoal(context.Background(), userID, validGoalInput("500"))
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for target 500 with capital 1000, got %v", err)
	}
	_, err = svc.CreateGoal(context.Background(), userID, validGoalInput("1000"))
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for target equal to capital, got %v", err)
	}
}

func TestCreateGoalConflictsWithOpenGoal(t *testing.T) {
	svc, _, userID := newGoalFixture(t, "1000")

	if _, err := svc.CreateGoal(context.Background(), userID, validGoalInput("2000")); err != nil {
		t.Fatalf("first goal: %v", err)
	}
	_, err := svc.CreateGoal(context.Background(), userID, validGoalInput("3000"))
	if !apperr.IsConflict(err) {
		t.Fatalf("expected conflict with open goal, got %v", err)
	}
}

func TestCreateGoalRejectsBadConfig(t *testing.T) {
	svc, _, userID := newGoalFixture(t, "1000")

	bad := validGoalInput("2000")
	bad.RiskPercent = 5
	if _, err := svc.CreateGoal(context.Background(), userID, bad); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for risk 5, got %v", err)
	}
	bad = validGoalInput("2000")
	bad.WinrateEstimate = 0.95
	if _, err := svc.CreateGoal(context.Background(), userID, bad); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for winrate 0.95, got %v", err)
	}
}

func TestUpdateGoalRegenerates(t *testing.T) {
	svc, repo, userID := newGoalFixture(t, "1000")

	goal, err := svc.CreateGoal(context.Background(), userID, validGoalInput("2000"))
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	before := len(mustPlans(t, repo, goal.ID, goal.StartDate))

	target := decimal.RequireFromString("1100")
	if _, err := svc.UpdateGoal(context.Background(), userID, goal.ID, UpdateGoalInput{TargetCapital: &target}); err != nil {
		t.Fatalf("update goal: %v", err)
	}
	after := len(mustPlans(t, repo, goal.ID, goal.StartDate))
	if after >= before {
		t.Fatalf("lowering the target should shrink the horizon: %d vs %d", after, before)
	}
}

func TestDeleteGoalCascadesPlans(t *testing.T) {
	svc, repo, userID := newGoalFixture(t, "1000")

	goal, err := svc.CreateGoal(context.Background(), userID, validGoalInput("2000"))
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if err := svc.DeleteGoal(context.Background(), userID, goal.ID); err != nil {
		t.Fatalf("delete goal: %v", err)
	}
	if plans := mustPlans(t, repo, goal.ID, goal.StartDate); len(plans) != 0 {
		t.Fatalf("%d plans survived goal deletion", len(plans))
	}
}

func TestGoalProgressUsesRealWinrate(t *testing.T) {
	svc, repo, userID := newGoalFixture(t, "1000")

	goal, err := svc.CreateGoal(context.Background(), userID, validGoalInput("2000"))
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}

	progress, err := svc.Progress(context.Background(), userID, goal.ID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if progress.RealWinrate != nil {
		t.Fatal("real winrate should be nil with no operations")
	}
	if progress.ETADays == nil {
		t.Fatal("eta should exist for a reachable goal")
	}

	account, _ := repo.GetAccountByUserID(context.Background(), userID)
	seedDayOps(t, repo, account.ID, goal.StartDate, []seedOp{
		{result: models.OperationResultWin, profit: "17"},
		{result: models.OperationResultWin, profit: "17"},
		{result: models.OperationResultLoss, profit: "-20"},
		{result: models.OperationResultDraw, profit: "0"},
	})
	progress, err = svc.Progress(context.Background(), userID, goal.ID)
	if err != nil {
		t.Fatalf("progress with ops: %v", err)
	}
	if progress.RealWinrate == nil || *progress.RealWinrate != 0.5 {
		t.Fatalf("real winrate = %v, want 0.5", progress.RealWinrate)
	}
}
