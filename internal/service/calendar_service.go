package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tradegoal/internal/apperr"
	"tradegoal/internal/models"
	"tradegoal/internal/projection"
	"tradegoal/internal/repository"
)

// MaxGeneratedDays caps the simulation horizon. A goal configuration that
// never reaches its target or depletes capital still terminates.
const MaxGeneratedDays = 730

const dayKeyLayout = "2006-01-02"

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dayKey(t time.Time) string {
	return dateOnly(t).Format(dayKeyLayout)
}

// dayActuals aggregates the settled operations of one calendar date.
type dayActuals struct {
	Ops         int
	Wins        int
	Losses      int
	Draws       int
	RealizedPnL decimal.Decimal
	Sessions    map[uint64]struct{}
}

func aggregateActuals(ops []repository.DatedOperation) map[string]*dayActuals {
	out := map[string]*dayActuals{}
	for _, op := range ops {
		key := dayKey(op.Date)
		agg, ok := out[key]
		if !ok {
			agg = &dayActuals{Sessions: map[uint64]struct{}{}}
			out[key] = agg
		}
		agg.Ops++
		switch op.Operation.Result {
		case models.OperationResultWin:
			agg.Wins++
		case models.OperationResultLoss:
			agg.Losses++
		default:
			agg.Draws++
		}
		agg.RealizedPnL = agg.RealizedPnL.Add(op.Operation.Profit)
		agg.Sessions[op.Operation.SessionID] = struct{}{}
	}
	return out
}

// CalendarService owns the daily-plan calendar: the regeneration engine,
// the aggregated calendar view and the manual close-day operation.
type CalendarService struct {
	Repo   repository.Repository
	Logger *zap.Logger

	// Now is overridable in tests; nil means time.Now.
	Now func() time.Time

	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

func (s *CalendarService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// goalLock serializes regeneration per goal so concurrent triggers (an
// operation post racing a withdrawal) cannot interleave partial rewrites.
func (s *CalendarService) goalLock(goalID uint64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks == nil {
		s.locks = map[uint64]*sync.Mutex{}
	}
	l, ok := s.locks[goalID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[goalID] = l
	}
	return l
}

// Regenerate rewrites the goal's full daily-plan calendar from its start
// date through goal completion, capital depletion or the horizon cap.
//
// This is an internal trigger: a missing goal or account, or a goal that is
// neither ACTIVE nor PAUSED, is a no-op rather than an error. Persistence
// failures are returned. The whole rewrite commits as one transaction and
// the result is idempotent: rerunning without intervening state changes
// produces identical rows.
func (s *CalendarService) Regenerate(ctx context.Context, goalID uint64) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	goal, err := s.Repo.GetGoalByID(ctx, goalID)
	if err != nil {
		return err
	}
	if goal == nil || !goal.IsOpen() {
		return nil
	}
	account, err := s.Repo.GetAccountByID(ctx, goal.AccountID)
	if err != nil {
		return err
	}
	if account == nil {
		return nil
	}

	lock := s.goalLock(goalID)
	lock.Lock()
	defer lock.Unlock()

	today := dateOnly(s.now())
	start := dateOnly(goal.StartDate)

	ops, err := s.Repo.ListDatedOperations(ctx, account.ID, start)
	if err != nil {
		return err
	}
	actuals := aggregateActuals(ops)

	plans, err := s.Repo.ListDailyPlansSince(ctx, goalID, start)
	if err != nil {
		return err
	}
	existing := make(map[string]*models.GoalDailyPlan, len(plans))
	for i := range plans {
		existing[dayKey(plans[i].Date)] = &plans[i]
	}

	projected := goal.StartCapitalSnapshot
	if projected.IsZero() {
		projected = account.Capital
	}
	opsPerDay := goal.SessionsPerDay * goal.OpsPerSession
	expectedReturn := projection.ExpectedReturnPerOp(goal.WinrateEstimate, goal.PayoutSnapshot)

	toSave := make([]*models.GoalDailyPlan, 0, MaxGeneratedDays)
	current := start
	last := start
	for i := 0; i < MaxGeneratedDays; i++ {
		key := dayKey(current)
		plan, ok := existing[key]
		if !ok {
			plan = &models.GoalDailyPlan{GoalID: goalID, Date: current}
		}

		capitalStart := projected.Round(2)
		// Stake never goes negative even when replayed losses have sunk
		// the projected capital below zero.
		stakeBase := capitalStart
		if stakeBase.IsNegative() {
			stakeBase = decimal.Zero
		}
		stake := stakeBase.
			Mul(decimal.NewFromInt(int64(goal.RiskPercent))).
			Div(decimal.NewFromInt(100)).
			Round(2)
		plan.CapitalStartOfDay = capitalStart
		plan.PlannedSessions = goal.SessionsPerDay
		plan.PlannedOpsTotal = opsPerDay
		plan.PlannedStake = stake
		plan.ExpectedWinProfit = stake.Mul(decimal.NewFromFloat(goal.PayoutSnapshot)).Round(2)
		plan.ExpectedLoss = stake
		expectedDaily := stake.
			Mul(decimal.NewFromInt(int64(opsPerDay))).
			Mul(decimal.NewFromFloat(expectedReturn)).
			Round(2)

		actual := actuals[key]
		state := classifyDay(plan.Status, actual != nil && actual.Ops > 0, current, today)
		switch state {
		case dayRealized:
			plan.ActualSessions = len(actual.Sessions)
			plan.ActualOps = actual.Ops
			plan.Wins = actual.Wins
			plan.Losses = actual.Losses
			plan.Draws = actual.Draws
			plan.RealizedPnL = actual.RealizedPnL.Round(2)
			if actual.Ops >= opsPerDay {
				plan.Status = models.DailyPlanStatusCompleted
			} else {
				plan.Status = models.DailyPlanStatusInProgress
			}
		case dayManuallyClosed:
			// Actual fields, realized pnl, notes and blocked reason all
			// survive as the user left them.
		default:
			plan.ActualSessions = 0
			plan.ActualOps = 0
			plan.Wins = 0
			plan.Losses = 0
			plan.Draws = 0
			plan.RealizedPnL = decimal.Zero
			plan.Status = models.DailyPlanStatusPlanned
			plan.BlockedReason = nil
		}
		contribution := dayContribution(state, current, today, plan.RealizedPnL, expectedDaily)

		toSave = append(toSave, plan)
		projected = capitalStart.Add(contribution).Round(2)
		last = current

		// Stop conditions are checked against the day just processed and
		// only once the loop has replayed history up to today. A depleted
		// or completed past must not truncate the calendar before real
		// data runs out, and the loop always generates through today even
		// when yesterday's results already cross the target.
		if !current.Before(today) {
			if projected.GreaterThanOrEqual(goal.TargetCapital) || projected.LessThanOrEqual(decimal.Zero) {
				break
			}
		}
		current = current.AddDate(0, 0, 1)
	}

	return s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		for _, plan := range toSave {
			if err := s.Repo.SaveDailyPlanTx(ctx, tx, plan); err != nil {
				return err
			}
		}
		pruned, err := s.Repo.DeleteStalePlansTx(ctx, tx, goalID, last)
		if err != nil {
			return err
		}
		if pruned > 0 && s.Logger != nil {
			s.Logger.Debug("pruned stale plans",
				zap.Uint64("goal_id", goalID),
				zap.Int64("count", pruned))
		}
		return nil
	})
}

// RegenerateActive refreshes the account's active goal, if any. Used by
// the capital-affecting triggers (operations, withdrawals).
func (s *CalendarService) RegenerateActive(ctx context.Context, accountID uint64) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	goal, err := s.Repo.GetActiveGoalByAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if goal == nil {
		return nil
	}
	return s.Regenerate(ctx, goal.ID)
}

type CalendarRange struct {
	From *time.Time
	To   *time.Time
	Days *int
}

type CalendarSummary struct {
	TotalDays     int              `json:"total_days"`
	CompletedDays int              `json:"completed_days"`
	BlockedDays   int              `json:"blocked_days"`
	TotalPnL      decimal.Decimal  `json:"total_pnl"`
	Wins          int              `json:"wins"`
	Losses        int              `json:"losses"`
	Draws         int              `json:"draws"`
	RealWinrate   *float64         `json:"real_winrate"`
}

type CalendarView struct {
	Plans   []models.GoalDailyPlan `json:"plans"`
	Summary CalendarSummary        `json:"summary"`
}

// ownedGoal resolves the goal and verifies the caller owns it. Ownership
// failures surface as not-found so goal ids don't leak across accounts.
func (s *CalendarService) ownedGoal(ctx context.Context, userID, goalID uint64) (*models.Goal, *models.Account, error) {
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

// GetCalendar regenerates first so callers never read a stale calendar,
// then returns the requested window with its aggregate summary.
func (s *CalendarService) GetCalendar(ctx context.Context, userID, goalID uint64, rng CalendarRange) (*CalendarView, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	goal, _, err := s.ownedGoal(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if err := s.Regenerate(ctx, goalID); err != nil {
		return nil, err
	}

	today := dateOnly(s.now())
	from := dateOnly(goal.StartDate)
	to := from.AddDate(0, 0, MaxGeneratedDays)
	switch {
	case rng.From != nil || rng.To != nil:
		if rng.From != nil {
			from = dateOnly(*rng.From)
		}
		if rng.To != nil {
			to = dateOnly(*rng.To)
		}
	case rng.Days != nil && *rng.Days > 0:
		from = today.AddDate(0, 0, -(*rng.Days - 1))
		to = today
	default:
		if latest, err := s.Repo.GetLatestDailyPlanDate(ctx, goalID); err != nil {
			return nil, err
		} else if latest != nil {
			to = dateOnly(*latest)
		}
	}
	if to.Before(from) {
		return nil, apperr.Validation("invalid date range")
	}

	plans, err := s.Repo.ListDailyPlansInRange(ctx, goalID, from, to)
	if err != nil {
		return nil, err
	}

	view := &CalendarView{Plans: plans}
	view.Summary.TotalDays = len(plans)
	view.Summary.TotalPnL = decimal.Zero
	for _, p := range plans {
		switch p.Status {
		case models.DailyPlanStatusCompleted:
			view.Summary.CompletedDays++
		case models.DailyPlanStatusBlocked:
			view.Summary.BlockedDays++
		}
		view.Summary.TotalPnL = view.Summary.TotalPnL.Add(p.RealizedPnL)
		view.Summary.Wins += p.Wins
		view.Summary.Losses += p.Losses
		view.Summary.Draws += p.Draws
	}
	total := view.Summary.Wins + view.Summary.Losses + view.Summary.Draws
	if rate, ok := projection.RealWinrate(view.Summary.Wins, total); ok {
		view.Summary.RealWinrate = &rate
	}
	return view, nil
}

type CloseDayInput struct {
	Date          *time.Time
	Notes         *string
	BlockedReason *string
	RealizedPnL   *decimal.Decimal
}

// CloseDay manually closes one calendar day: BLOCKED when a reason is
// given, COMPLETED otherwise. It regenerates before the mutation so the
// target row exists, and after it so the manual result seeds the next
// day's projected capital.
func (s *CalendarService) CloseDay(ctx context.Context, userID, goalID uint64, input CloseDayInput) (*models.GoalDailyPlan, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	if _, _, err := s.ownedGoal(ctx, userID, goalID); err != nil {
		return nil, err
	}
	if err := s.Regenerate(ctx, goalID); err != nil {
		return nil, err
	}

	date := dateOnly(s.now())
	if input.Date != nil {
		date = dateOnly(*input.Date)
	}
	plan, err := s.Repo.GetDailyPlanByDate(ctx, goalID, date)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, apperr.NotFound("no plan for %s", date.Format(dayKeyLayout))
	}

	if input.BlockedReason != nil && *input.BlockedReason != "" {
		plan.Status = models.DailyPlanStatusBlocked
		plan.BlockedReason = input.BlockedReason
	} else {
		plan.Status = models.DailyPlanStatusCompleted
		plan.BlockedReason = nil
	}
	if input.Notes != nil {
		plan.Notes = input.Notes
	}
	if input.RealizedPnL != nil {
		plan.RealizedPnL = input.RealizedPnL.Round(2)
	}
	if err := s.Repo.SaveDailyPlan(ctx, plan); err != nil {
		return nil, err
	}

	if err := s.Regenerate(ctx, goalID); err != nil {
		return nil, err
	}
	return s.Repo.GetDailyPlanByDate(ctx, goalID, date)
}
