package gormrepository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"tradegoal/internal/models"
	"tradegoal/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// --- Users -------------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, item *models.User) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var item models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uint64) (*models.User, error) {
	var item models.User
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// --- Accounts ----------------------------------------------------------------

func (s *Store) CreateAccount(ctx context.Context, item *models.Account) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetAccountByID(ctx context.Context, id uint64) (*models.Account, error) {
	var item models.Account
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetAccountByUserID(ctx context.Context, userID uint64) (*models.Account, error) {
	var item models.Account
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) SaveAccount(ctx context.Context, item *models.Account) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

// --- Trading days & sessions -------------------------------------------------

func (s *Store) GetTradingDay(ctx context.Context, accountID uint64, date time.Time) (*models.TradingDay, error) {
	var item models.TradingDay
	err := s.db.WithContext(ctx).
		Where("account_id = ? AND date = ?", accountID, date).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetTradingDayByID(ctx context.Context, id uint64) (*models.TradingDay, error) {
	var item models.TradingDay
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) CreateTradingDay(ctx context.Context, item *models.TradingDay) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) SaveTradingDay(ctx context.Context, item *models.TradingDay) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) ListTradingDaysInRange(ctx context.Context, accountID uint64, from, to time.Time) ([]models.TradingDay, error) {
	var items []models.TradingDay
	err := s.db.WithContext(ctx).
		Where("account_id = ? AND date >= ? AND date <= ?", accountID, from, to).
		Order("date asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CreateSession(ctx context.Context, item *models.TradingSession) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetSessionByID(ctx context.Context, id uint64) (*models.TradingSession, error) {
	var item models.TradingSession
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) SaveSession(ctx context.Context, item *models.TradingSession) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) ListSessionsByDay(ctx context.Context, tradingDayID uint64) ([]models.TradingSession, error) {
	var items []models.TradingSession
	err := s.db.WithContext(ctx).
		Where("trading_day_id = ?", tradingDayID).
		Order("session_number asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountSessionsByDay(ctx context.Context, tradingDayID uint64) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.TradingSession{}).
		Where("trading_day_id = ?", tradingDayID).
		Count(&n).Error
	return n, err
}

// --- Operations --------------------------------------------------------------

func (s *Store) InsertOperation(ctx context.Context, item *models.Operation) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListOperationsBySession(ctx context.Context, sessionID uint64) ([]models.Operation, error) {
	var items []models.Operation
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountOperationsBySession(ctx context.Context, sessionID uint64) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.Operation{}).
		Where("session_id = ?", sessionID).
		Count(&n).Error
	return n, err
}

func (s *Store) ListDatedOperations(ctx context.Context, accountID uint64, since time.Time) ([]repository.DatedOperation, error) {
	type row struct {
		models.Operation
		DayDate time.Time `gorm:"column:day_date"`
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Table("operations").
		Select("operations.*, trading_days.date AS day_date").
		Joins("JOIN trading_sessions ON operations.session_id = trading_sessions.id").
		Joins("JOIN trading_days ON trading_sessions.trading_day_id = trading_days.id").
		Where("trading_days.account_id = ? AND trading_days.date >= ?", accountID, since).
		Order("trading_days.date asc, operations.created_at asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	items := make([]repository.DatedOperation, 0, len(rows))
	for _, r := range rows {
		items = append(items, repository.DatedOperation{Operation: r.Operation, Date: r.DayDate})
	}
	return items, nil
}

// --- Goals -------------------------------------------------------------------

func (s *Store) CreateGoal(ctx context.Context, item *models.Goal) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetGoalByID(ctx context.Context, id uint64) (*models.Goal, error) {
	var item models.Goal
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListGoalsByAccount(ctx context.Context, accountID uint64) ([]models.Goal, error) {
	var items []models.Goal
	err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) GetOpenGoalByAccount(ctx context.Context, accountID uint64) (*models.Goal, error) {
	var item models.Goal
	err := s.db.WithContext(ctx).
		Where("account_id = ? AND status IN ?", accountID, []string{models.GoalStatusActive, models.GoalStatusPaused}).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetActiveGoalByAccount(ctx context.Context, accountID uint64) (*models.Goal, error) {
	var item models.Goal
	err := s.db.WithContext(ctx).
		Where("account_id = ? AND status = ?", accountID, models.GoalStatusActive).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListOpenGoalIDs(ctx context.Context) ([]uint64, error) {
	var ids []uint64
	err := s.db.WithContext(ctx).
		Model(&models.Goal{}).
		Where("status IN ?", []string{models.GoalStatusActive, models.GoalStatusPaused}).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) SaveGoal(ctx context.Context, item *models.Goal) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) DeleteGoal(ctx context.Context, id uint64) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("goal_id = ?", id).Delete(&models.GoalDailyPlan{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Goal{}, id).Error
	})
}

// --- Daily plans -------------------------------------------------------------

func (s *Store) ListDailyPlansSince(ctx context.Context, goalID uint64, since time.Time) ([]models.GoalDailyPlan, error) {
	var items []models.GoalDailyPlan
	err := s.db.WithContext(ctx).
		Where("goal_id = ? AND date >= ?", goalID, since).
		Order("date asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListDailyPlansInRange(ctx context.Context, goalID uint64, from, to time.Time) ([]models.GoalDailyPlan, error) {
	var items []models.GoalDailyPlan
	err := s.db.WithContext(ctx).
		Where("goal_id = ? AND date >= ? AND date <= ?", goalID, from, to).
		Order("date asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) GetDailyPlanByDate(ctx context.Context, goalID uint64, date time.Time) (*models.GoalDailyPlan, error) {
	var item models.GoalDailyPlan
	err := s.db.WithContext(ctx).
		Where("goal_id = ? AND date = ?", goalID, date).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetLatestDailyPlanDate(ctx context.Context, goalID uint64) (*time.Time, error) {
	var item models.GoalDailyPlan
	err := s.db.WithContext(ctx).
		Where("goal_id = ?", goalID).
		Order("date desc").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	d := item.Date
	return &d, nil
}

func (s *Store) SaveDailyPlan(ctx context.Context, item *models.GoalDailyPlan) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) SaveDailyPlanTx(ctx context.Context, tx *gorm.DB, item *models.GoalDailyPlan) error {
	if tx == nil {
		return s.SaveDailyPlan(ctx, item)
	}
	return tx.WithContext(ctx).Save(item).Error
}

func (s *Store) DeleteStalePlansTx(ctx context.Context, tx *gorm.DB, goalID uint64, after time.Time) (int64, error) {
	db := tx
	if db == nil {
		db = s.db
	}
	res := db.WithContext(ctx).
		Where("goal_id = ? AND date > ? AND actual_ops = 0", goalID, after).
		Delete(&models.GoalDailyPlan{})
	return res.RowsAffected, res.Error
}

// --- Withdrawals -------------------------------------------------------------

func (s *Store) InsertWithdrawal(ctx context.Context, item *models.Withdrawal) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListWithdrawals(ctx context.Context, params repository.ListWithdrawalsParams) ([]models.Withdrawal, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Withdrawal{}).
		Where("account_id = ?", params.AccountID)
	if params.GoalID != nil {
		query = query.Where("goal_id = ?", *params.GoalID)
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 100
	}
	var items []models.Withdrawal
	err := query.Order("withdrawn_at desc").Limit(limit).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) GetWithdrawalByID(ctx context.Context, id uint64) (*models.Withdrawal, error) {
	var item models.Withdrawal
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) DeleteWithdrawal(ctx context.Context, id uint64) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Delete(&models.Withdrawal{}, id).Error
}

// --- Plans & subscriptions ---------------------------------------------------

func (s *Store) UpsertPlan(ctx context.Context, item *models.Plan) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	existing, err := s.GetPlanByName(ctx, item.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetPlanByName(ctx context.Context, name string) (*models.Plan, error) {
	var item models.Plan
	err := s.db.WithContext(ctx).
		Where("name = ? AND is_active = ?", name, true).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetPlanByID(ctx context.Context, id uint64) (*models.Plan, error) {
	var item models.Plan
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListActivePlans(ctx context.Context) ([]models.Plan, error) {
	var items []models.Plan
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("price_usd asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) GetActiveSubscription(ctx context.Context, userID uint64) (*models.Subscription, error) {
	var item models.Subscription
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
		Order("created_at desc").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) InsertSubscription(ctx context.Context, item *models.Subscription) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) SaveSubscription(ctx context.Context, item *models.Subscription) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) ExpireDueSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("status = ? AND end_date IS NOT NULL AND end_date < ?", models.SubscriptionStatusActive, now).
		Update("status", models.SubscriptionStatusExpired)
	return res.RowsAffected, res.Error
}
