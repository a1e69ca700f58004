package db

import (
	"tradegoal/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.TradingDay{},
		&models.TradingSession{},
		&models.Operation{},
		&models.Goal{},
		&models.GoalDailyPlan{},
		&models.Withdrawal{},
		// Billing
		&models.Plan{},
		&models.Subscription{},
	)
}
