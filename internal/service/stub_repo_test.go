package service

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"tradegoal/internal/models"
	"tradegoal/internal/repository"
)

// stubRepo is a test-only in-memory implementation of repository.Repository.
type stubRepo struct {
	nextID uint64

	users       map[uint64]models.User
	accounts    map[uint64]models.Account
	days        map[uint64]models.TradingDay
	sessions    map[uint64]models.TradingSession
	operations  map[uint64]models.Operation
	goals       map[uint64]models.Goal
	plans       map[uint64]map[string]models.GoalDailyPlan
	withdrawals map[uint64]models.Withdrawal
	planRows    map[uint64]models.Plan
	subs        map[uint64]models.Subscription
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		users:       map[uint64]models.User{},
		accounts:    map[uint64]models.Account{},
		days:        map[uint64]models.TradingDay{},
		sessions:    map[uint64]models.TradingSession{},
		operations:  map[uint64]models.Operation{},
		goals:       map[uint64]models.Goal{},
		plans:       map[uint64]map[string]models.GoalDailyPlan{},
		withdrawals: map[uint64]models.Withdrawal{},
		planRows:    map[uint64]models.Plan{},
		subs:        map[uint64]models.Subscription{},
	}
}

func (s *stubRepo) id() uint64 {
	s.nextID++
	return s.nextID
}

func (s *stubRepo) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

func (s *stubRepo) CreateUser(ctx context.Context, item *models.User) error {
	if item.ID == 0 {
		item.ID = s.id()
	}
	s.users[item.ID] = *item
	return nil
}

func (s *stubRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) GetUserByID(ctx context.Context, id uint64) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *stubRepo) CreateAccount(ctx context.Context, item *models.Account) error {
	if item.ID == 0 {
		item.ID = s.id()
	}
	s.accounts[item.ID] = *item
	return nil
}

func (s *stubRepo) GetAccountByID(ctx context.Context, id uint64) (*models.Account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *stubRepo) GetAccountByUserID(ctx context.Context, userID uint64) (*models.Account, error) {
	for _, a := range s.accounts {
		if a.UserID == userID {
			copied := a
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) SaveAccount(ctx context.Context, item *models.Account) error {
	s.accounts[item.ID] = *item
	return nil
}

func (s *stubRepo) GetTradingDay(ctx context.Context, accountID uint64, date time.Time) (*models.TradingDay, error) {
	for _, d := range s.days {
		if d.AccountID == accountID && dayKey(d.Date) == dayKey(date) {
			copied := d
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) GetTradingDayByID(ctx context.Context, id uint64) (*models.TradingDay, error) {
	d, ok := s.days[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (s *stubRepo) CreateTradingDay(ctx context.Context, item *models.TradingDay) error {
	if item.ID == 0 {
		item.ID = s.id()
	}
	s.days[item.ID] = *item
	return nil
}

func (s *stubRepo) SaveTradingDay(ctx context.Context, item *models.TradingDay) error {
	s.days[item.ID] = *item
	return nil
}

func (s *stubRepo) ListTradingDaysInRange(ctx context.Context, accountID uint64, from, to time.Time) ([]models.TradingDay, error) {
	var out []models.TradingDay
	for _, d := range s.days {
		if d.AccountID == accountID && !d.Date.Before(from) && !d.Date.After(to) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, item *models.TradingSession) error {
	if item.ID == 0 {
		item.ID = s.id()
	}
	s.sessions[item.ID] = *item
	return nil
}

func (s *stubRepo) GetSessionByID(ctx context.Context, id uint64) (*models.TradingSession, error) {
	v, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (s *stubRepo) SaveSession(ctx context.Context, item *models.TradingSession) error {
	s.sessions[item.ID] = *item
	return nil
}

func (s *stubRepo) ListSessionsByDay(ctx context.Context, tradingDayID uint64) ([]models.TradingSession, error) {
	var out []models.TradingSession
	for _, v := range s.sessions {
		if v.TradingDayID == tradingDayID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionNumber < out[j].SessionNumber })
	return out, nil
}

func (s *stubRepo) CountSessionsByDay(ctx context.Context, tradingDayID uint64) (int64, error) {
	items, _ := s.ListSessionsByDay(ctx, tradingDayID)
	return int64(len(items)), nil
}

func (s *stubRepo) InsertOperation(ctx context.Context, item *models.Operation) error {
	if item.ID == 0 {
		item.ID = s.id()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	s.operations[item.ID] = *item
	return nil
}

func (s *stubRepo) ListOperationsBySession(ctx context.Context, sessionID uint64) ([]models.Operation, error) {
	var out []models.Operation
	for _, v := range s.operations {
		if v.SessionID == sessionID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubRepo) CountOperationsBySession(ctx context.Context, sessionID uint64) (int64, error) {
	items, _ := s.ListOperationsBySession(ctx, sessionID)
	return int64(len(items)), nil
}

func (s *stubRepo) ListDatedOperations(ctx context.Context, accountID uint64, since time.Time) ([]repository.DatedOperation, error) {
	var out []repository.DatedOperation
	for _, op := range s.operations {
		session, ok := s.sessions[op.SessionID]
		if !ok {
			continue
		}
		day, ok := s.days[session.TradingDayID]
		if !ok || day.AccountID != accountID || day.Date.Before(since) {
			continue
		}
		out = append(out, repository.DatedOperation{Operation: op, Date: day.Date})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Operation.ID < out[j].Operation.ID
	})
	return out, nil
}

func (s *stubRepo) CreateGoal(ctx context.Context, item *models.Goal) error {
	if item.ID == 0 {
		item.ID = s.id()
	}
	s.goals[item.ID] = *item
	return nil
}

func (s *stubRepo) GetGoalByID(ctx context.Context, id uint64) (*models.Goal, error) {
	g, ok := s.goals[id]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (s *stubRepo) ListGoalsByAccount(ctx context.Context, accountID uint64) ([]models.Goal, error) {
	var out []models.Goal
	for _, g := range s.goals {
		if g.AccountID == accountID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubRepo) GetOpenGoalByAccount(ctx context.Context, accountID uint64) (*models.Goal, error) {
	for _, g := range s.goals {
		if g.AccountID == accountID && (g.Status == models.GoalStatusActive || g.Status == models.GoalStatusPaused) {
			copied := g
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) GetActiveGoalByAccount(ctx context.Context, accountID uint64) (*models.Goal, error) {
	for _, g := range s.goals {
		if g.AccountID == accountID && g.Status == models.GoalStatusActive {
			copied := g
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) ListOpenGoalIDs(ctx context.Context) ([]uint64, error) {
	var out []uint64
	for _, g := range s.goals {
		if g.Status == models.GoalStatusActive || g.Status == models.GoalStatusPaused {
			out = append(out, g.ID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s *stubRepo) SaveGoal(ctx context.Context, item *models.Goal) error {
	s.goals[item.ID] = *item
	return nil
}

func (s *stubRepo) DeleteGoal(ctx context.Context, id uint64) error {
	delete(s.goals, id)
	delete(s.plans, id)
	return nil
}

func (s *stubRepo) goalPlans(goalID uint64) map[string]models.GoalDailyPlan {
	m, ok := s.plans[goalID]
	if !ok {
		m = map[string]models.GoalDailyPlan{}
		s.plans[goalID] = m
	}
	return m
}

func (s *stubRepo) ListDailyPlansSince(ctx context.Context, goalID uint64, since time.Time) ([]models.GoalDailyPlan, error) {
	var out []models.GoalDailyPlan
	for _, p := range s.goalPlans(goalID) {
		if !p.Date.Before(since) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *stubRepo) ListDailyPlansInRange(ctx context.Context, goalID uint64, from, to time.Time) ([]models.GoalDailyPlan, error) {
	var out []models.GoalDailyPlan
	for _, p := range s.goalPlans(goalID) {
		if !p.Date.Before(from) && !p.Date.After(to) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *stubRepo) GetDailyPlanByDate(ctx context.Context, goalID uint64, date time.Time) (*models.GoalDailyPlan, error) {
	p, ok := s.goalPlans(goalID)[dayKey(date)]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *stubRepo) GetLatestDailyPlanDate(ctx context.Context, goalID uint64) (*time.Time, error) {
	var latest *time.Time
	for _, p := range s.goalPlans(goalID) {
		d := p.Date
		if latest == nil || d.After(*latest) {
			latest = &d
		}
	}
	return latest, nil
}

func (s *stubRepo) SaveDailyPlan(ctx context.Context, item *models.GoalDailyPlan) error {
	if item.ID == 0 {
		item.ID = s.id()
	}
	s.goalPlans(item.GoalID)[dayKey(item.Date)] = *item
	return nil
}

func (s *stubRepo) SaveDailyPlanTx(ctx context.Context, tx *gorm.DB, item *models.GoalDailyPlan) error {
	return s.SaveDailyPlan(ctx, item)
}

func (s *stubRepo) DeleteStalePlansTx(ctx context.Context, tx *gorm.DB, goalID uint64, after time.Time) (int64, error) {
	var n int64
	plans := s.goalPlans(goalID)
	for key, p := range plans {
		if p.Date.After(after) && p.ActualOps == 0 {
			delete(plans, key)
			n++
		}
	}
	return n, nil
}

func (s *stubRepo) InsertWithdrawal(ctx context.Context, item *models.Withdrawal) error {
	if item.ID == 0 {
		item.ID = s.id()
	}
	s.withdrawals[item.ID] = *item
	return nil
}

func (s *stubRepo) ListWithdrawals(ctx context.Context, params repository.ListWithdrawalsParams) ([]models.Withdrawal, error) {
	var out []models.Withdrawal
	for _, w := range s.withdrawals {
		if w.AccountID != params.AccountID {
			continue
		}
		if params.GoalID != nil && (w.GoalID == nil || *w.GoalID != *params.GoalID) {
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

func (s *stubRepo) GetWithdrawalByID(ctx context.Context, id uint64) (*models.Withdrawal, error) {
	w, ok := s.withdrawals[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (s *stubRepo) DeleteWithdrawal(ctx context.Context, id uint64) error {
	delete(s.withdrawals, id)
	return nil
}

func (s *stubRepo) UpsertPlan(ctx context.Context, item *models.Plan) error {
	for _, p := range s.planRows {
		if p.Name == item.Name {
			return nil
		}
	}
	if item.ID == 0 {
		item.ID = s.id()
	}
	s.planRows[item.ID] = *item
	return nil
}

func (s *stubRepo) GetPlanByName(ctx context.Context, name string) (*models.Plan, error) {
	for _, p := range s.planRows {
		if p.Name == name && p.IsActive {
			copied := p
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) GetPlanByID(ctx context.Context, id uint64) (*models.Plan, error) {
	p, ok := s.planRows[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *stubRepo) ListActivePlans(ctx context.Context) ([]models.Plan, error) {
	var out []models.Plan
	for _, p := range s.planRows {
		if p.IsActive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubRepo) GetActiveSubscription(ctx context.Context, userID uint64) (*models.Subscription, error) {
	var latest *models.Subscription
	for _, sub := range s.subs {
		if sub.UserID == userID && sub.Status == models.SubscriptionStatusActive {
			copied := sub
			if latest == nil || copied.ID > latest.ID {
				latest = &copied
			}
		}
	}
	return latest, nil
}

func (s *stubRepo) InsertSubscription(ctx context.Context, item *models.Subscription) error {
	if item.ID == 0 {
		item.ID = s.id()
	}
	s.subs[item.ID] = *item
	return nil
}

func (s *stubRepo) SaveSubscription(ctx context.Context, item *models.Subscription) error {
	s.subs[item.ID] = *item
	return nil
}

func (s *stubRepo) ExpireDueSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for id, sub := range s.subs {
		if sub.Status == models.SubscriptionStatusActive && sub.EndDate != nil && sub.EndDate.Before(now) {
			sub.Status = models.SubscriptionStatusExpired
			s.subs[id] = sub
			n++
		}
	}
	return n, nil
}

var _ repository.Repository = (*stubRepo)(nil)
